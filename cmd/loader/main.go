// Command loader bulk-loads diagnostic code records from a JSON file into
// the SQLite store. Existing guidance columns are preserved on reload.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/sjwitcher/obd2-explorer/backend/internal/adapters/database"
	"github.com/sjwitcher/obd2-explorer/backend/internal/domain/entities"
	"github.com/sjwitcher/obd2-explorer/backend/internal/infrastructure/clients/sqlite"
	"github.com/sjwitcher/obd2-explorer/backend/internal/infrastructure/observability"
	"github.com/sjwitcher/obd2-explorer/backend/pkg/config"
)

type inputRecord struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Source      string `json:"source"`
}

func main() {
	dbPath := flag.String("db", "", "path to the SQLite database (defaults to DB_PATH)")
	inputPath := flag.String("input", "", "path to the JSON file of code records")
	flag.Parse()

	observability.InitLogger("obd2-loader", os.Getenv("APP_ENV"))

	if *inputPath == "" {
		log.Fatal().Msg("-input is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	data, err := os.ReadFile(*inputPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *inputPath).Msg("failed to read input file")
	}

	var records []inputRecord
	if err := json.Unmarshal(data, &records); err != nil {
		log.Fatal().Err(err).Msg("failed to parse input file")
	}

	client, err := sqlite.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer client.Close()

	ctx := context.Background()
	if err := client.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure database schema")
	}

	repo := database.NewCodeRecordAdapter(client, nil)

	loaded := 0
	skipped := 0
	for _, in := range records {
		code := strings.ToUpper(strings.TrimSpace(in.Code))
		if code == "" || strings.TrimSpace(in.Description) == "" {
			skipped++
			continue
		}
		record := &entities.CodeRecord{
			Code:        code,
			Description: strings.TrimSpace(in.Description),
			Source:      strings.TrimSpace(in.Source),
		}
		if err := repo.Upsert(ctx, record); err != nil {
			log.Fatal().Err(err).Str("code", code).Msg("failed to upsert record")
		}
		loaded++
	}

	log.Info().Int("loaded", loaded).Int("skipped", skipped).Msg("bulk load completed")
}
