package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/rs/zerolog/log"

	"github.com/sjwitcher/obd2-explorer/backend/pkg/config"
	"github.com/sjwitcher/obd2-explorer/backend/pkg/retry"
)

// recordColumns are the columns added after the original bulk load. They are
// created on startup if missing, without touching existing rows.
var recordColumns = []string{"summary", "diy_checks", "source", "ai_last_updated"}

// Client represents a SQLite database client
type Client struct {
	db *sql.DB
}

// NewClient opens the database file, verifies the connection with exponential
// backoff retry, and applies the pragmas the service relies on.
func NewClient(cfg *config.DatabaseConfig) (*Client, error) {
	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// lock contention between concurrent lookups that regenerate guidance.
	db.SetMaxOpenConns(1)

	retryConfig := retry.DefaultConfig()
	err = retry.DoWithLog(
		context.Background(),
		retryConfig,
		"SQLite",
		func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return db.PingContext(ctx)
		},
		func(attempt int, err error, nextDelay time.Duration) {
			log.Warn().Err(err).Int("attempt", attempt).Dur("next_delay", nextDelay).
				Msg("SQLite connection attempt failed, retrying")
		},
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to SQLite after retries: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if cfg.Path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	log.Info().Str("path", cfg.Path).Msg("SQLite database opened")
	return &Client{db: db}, nil
}

// DB returns the underlying database connection
func (c *Client) DB() *sql.DB {
	return c.db
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}

// EnsureSchema creates the obd_codes table if missing, adds any record
// columns introduced after the original bulk load, and creates the code
// lookup index. Existing rows are never migrated or backfilled.
func (c *Client) EnsureSchema(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS obd_codes (
			code TEXT PRIMARY KEY,
			description TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create obd_codes table: %w", err)
	}

	existing, err := c.tableColumns(ctx, "obd_codes")
	if err != nil {
		return err
	}

	for _, col := range recordColumns {
		if _, ok := existing[col]; ok {
			continue
		}
		if _, err := c.db.ExecContext(ctx, fmt.Sprintf("ALTER TABLE obd_codes ADD COLUMN %s TEXT", col)); err != nil {
			return fmt.Errorf("failed to add column %s: %w", col, err)
		}
		log.Info().Str("column", col).Msg("added missing obd_codes column")
	}

	if _, err := c.db.ExecContext(ctx, "CREATE INDEX IF NOT EXISTS idx_obd_codes_code ON obd_codes(code)"); err != nil {
		return fmt.Errorf("failed to create code index: %w", err)
	}

	return nil
}

func (c *Client) tableColumns(ctx context.Context, table string) (map[string]struct{}, error) {
	rows, err := c.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("failed to read table info for %s: %w", table, err)
	}
	defer rows.Close()

	columns := make(map[string]struct{})
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan table info row: %w", err)
		}
		columns[name] = struct{}{}
	}
	return columns, rows.Err()
}
