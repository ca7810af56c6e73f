package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"telemetry-ingest/internal/auth"
	internalhttp "telemetry-ingest/internal/http"
	"telemetry-ingest/internal/ingestors"
	"telemetry-ingest/internal/ratelimit"
	"telemetry-ingest/internal/shared/configs"
	"telemetry-ingest/internal/shared/filestorages"
	"telemetry-ingest/internal/shared/loggers"
	"telemetry-ingest/internal/stores"
	"telemetry-ingest/internal/writers"
)

// App holds all application dependencies and manages lifecycle.
type App struct {
	config    *configs.Config
	appLogger loggers.Logger
	server    *http.Server

	sweeper        *ratelimit.Sweeper
	eventWriter    *writers.BatchWriter
	registryWriter *writers.BatchWriter

	backgroundCtx    context.Context
	backgroundCancel context.CancelFunc
}

// New creates and initializes a new App instance.
func New(config *configs.Config) (*App, error) {
	appLogger, err := loggers.New(config.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	appLogger = appLogger.With().
		Str(loggers.FieldApp, "telemetry-ingest").
		Logger()

	// Initialize durable storage
	fileStorage, err := filestorages.NewFileStorage(config.Storage.RootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	analyticsStore := stores.NewAnalyticsStore(fileStorage)
	registryStore, err := stores.NewToolRegistryStore(context.Background(), fileStorage)
	if err != nil {
		return nil, fmt.Errorf("failed to load tool registry: %w", err)
	}

	// Initialize batch writers
	writerLogger := appLogger.With().Str(loggers.FieldComponent, "writer").Logger()
	flushInterval := time.Duration(config.Writer.FlushIntervalMs) * time.Millisecond
	eventWriter := writers.NewBatchWriter("analytics", analyticsStore,
		config.Writer.FlushSize, flushInterval, config.Writer.BufferCap, writerLogger)
	registryWriter := writers.NewBatchWriter("tool_registry", registryStore,
		config.Writer.FlushSize, flushInterval, config.Writer.BufferCap, writerLogger)

	// Initialize rate limiting
	idleWindow := time.Duration(config.RateLimit.IdleEvictionSeconds) * time.Second
	perIPPool := ratelimit.NewPool("per_ip",
		config.RateLimit.PerIP.RatePerSecond, config.RateLimit.PerIP.Burst, idleWindow)
	perCredPool := ratelimit.NewPool("per_credential",
		config.RateLimit.PerCredential.RatePerSecond, config.RateLimit.PerCredential.Burst, idleWindow)
	sweeperLogger := appLogger.With().Str(loggers.FieldComponent, "sweeper").Logger()
	sweeper := ratelimit.NewSweeper(
		time.Duration(config.RateLimit.SweepIntervalSeconds)*time.Second,
		sweeperLogger, perIPPool, perCredPool)

	// Initialize authentication
	directory := auth.NewStaticDirectory(config.Auth.APIKeys)
	resolver := auth.NewCredentialResolver(directory,
		config.Auth.CacheMaxEntries, time.Duration(config.Auth.CacheTTLSeconds)*time.Second)
	tokens := auth.NewScopedTokenService(config.Auth.WidgetTokenSecret,
		time.Duration(config.Auth.WidgetTokenTTLMinutes)*time.Minute)
	authenticator := auth.NewAuthenticator(resolver, tokens)

	// Initialize ingestion pipeline
	ingestionService := ingestors.NewIngestionService(
		authenticator,
		perIPPool, perCredPool,
		ingestors.NewSchemaValidator(config.Limits.MaxBatchEvents),
		ingestors.NewFieldLimitEnforcer(),
		ingestors.NewRedactor(),
		ingestors.NewEnricher(),
		eventWriter, registryWriter,
		config.Limits.MaxBodyBytes,
	)

	// Initialize http router
	httpLogger := appLogger.With().Str(loggers.FieldComponent, "http").Logger()
	router := internalhttp.NewRouter(ingestionService, authenticator, tokens, httpLogger)

	// Create HTTP server
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", config.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: time.Duration(config.Server.ReadHeaderTimeout) * time.Second,
		ReadTimeout:       time.Duration(config.Server.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(config.Server.WriteTimeout) * time.Second,
		IdleTimeout:       time.Duration(config.Server.IdleTimeout) * time.Second,
	}

	return &App{
		config:         config,
		appLogger:      appLogger,
		server:         server,
		sweeper:        sweeper,
		eventWriter:    eventWriter,
		registryWriter: registryWriter,
	}, nil
}

// Start starts the HTTP server in a blocking manner.
func (app *App) Start() error {
	app.appLogger.Info().
		Msgf("Starting telemetry-ingest service on port %d (log_level=%s, storage_root_dir=%s)",
			app.config.Server.Port,
			app.config.Log.Level,
			app.config.Storage.RootDir)

	// start background workers
	app.backgroundCtx, app.backgroundCancel = context.WithCancel(context.Background())
	app.eventWriter.Start(app.backgroundCtx)
	app.registryWriter.Start(app.backgroundCtx)
	app.sweeper.Start(app.backgroundCtx)

	return app.server.ListenAndServe()
}

// Shutdown gracefully shuts down the application. The server stops accepting
// first so no new events land in the writers while they drain.
func (app *App) Shutdown(ctx context.Context) error {
	// 1) Shutdown server
	app.appLogger.Info().Msg("Shutting down server...")
	if err := app.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	app.appLogger.Info().Msg("Server stopped")

	// 2) Drain writers within the remaining shutdown budget
	if err := app.eventWriter.Shutdown(ctx); err != nil {
		app.appLogger.Error().Err(err).Msg("analytics writer drain failed")
	}
	if err := app.registryWriter.Shutdown(ctx); err != nil {
		app.appLogger.Error().Err(err).Msg("tool registry writer drain failed")
	}

	// 3) Stop remaining background workers
	app.sweeper.Stop()
	if app.backgroundCancel != nil {
		app.backgroundCancel()
	}
	app.appLogger.Info().Msg("Background workers stopped")

	return nil
}
