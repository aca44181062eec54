package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sjwitcher/obd2-explorer/backend/internal/adapters/cache"
	"github.com/sjwitcher/obd2-explorer/backend/internal/adapters/database"
	"github.com/sjwitcher/obd2-explorer/backend/internal/api/handlers"
	"github.com/sjwitcher/obd2-explorer/backend/internal/api/routes"
	"github.com/sjwitcher/obd2-explorer/backend/internal/application/services"
	"github.com/sjwitcher/obd2-explorer/backend/internal/domain/providers"
	"github.com/sjwitcher/obd2-explorer/backend/internal/infrastructure/clients/llama"
	redisclient "github.com/sjwitcher/obd2-explorer/backend/internal/infrastructure/clients/redis"
	"github.com/sjwitcher/obd2-explorer/backend/internal/infrastructure/clients/sqlite"
	"github.com/sjwitcher/obd2-explorer/backend/internal/infrastructure/observability"
	"github.com/sjwitcher/obd2-explorer/backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

	// Context for background tasks, cancelled on shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Warn().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	sqliteClient, err := sqlite.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize SQLite client")
	}
	defer sqliteClient.Close()

	if err := sqliteClient.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure database schema")
	}

	// The persistent guidance cache is optional; without Redis every
	// regeneration goes to the backend.
	var guidanceCache providers.CacheProvider
	redisClient, err := redisclient.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, running without persistent guidance cache")
	} else {
		defer redisClient.Close()
		guidanceCache = cache.NewRedisAdapter(redisClient)
		log.Info().Msg("Redis guidance cache initialized")
	}

	var completer providers.CompletionProvider
	llamaClient, err := llama.NewClient(&cfg.Llama)
	if err != nil {
		log.Warn().Err(err).Msg("llama client unavailable, guidance falls back to random selection")
	} else {
		completer = llamaClient
		log.Info().
			Str("base_url", cfg.Llama.BaseURL).
			Str("model", cfg.Llama.ModelPath).
			Int("ctx_size", cfg.Llama.ContextSize).
			Int("threads", cfg.Llama.Threads).
			Int("batch_size", cfg.Llama.BatchSize).
			Msg("llama.cpp backend configured")
	}

	codeRepo := database.NewCodeRecordAdapter(sqliteClient, metrics)

	memoryCache := cache.NewMemoryCache(cfg.Cache.MemoryTTL())
	go memoryCache.StartSweeper(ctx, cfg.Cache.SweepInterval())

	guidanceService := services.NewGuidanceService(
		guidanceCache,
		completer,
		cfg.Guidance.CacheTTL(),
		metrics,
	)
	lookupService := services.NewLookupService(
		codeRepo,
		guidanceService,
		memoryCache,
		cfg.Guidance.RefreshWindow(),
		metrics,
	)

	lookupHandler := handlers.NewLookupHandler(lookupService)
	router := routes.NewRouter(lookupHandler, metrics)
	handler := router.SetupRoutes()

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// Writes stay open long enough for a cold completion call.
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	// Stop the sweeper before draining connections.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("error during server shutdown")
	}

	log.Info().Msg("server stopped")
}
