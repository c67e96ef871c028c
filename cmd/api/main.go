// Package main provides the entrypoint for the obsgrid API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/obsgrid/obsgrid/internal/api"
	"github.com/obsgrid/obsgrid/internal/api/middleware"
	"github.com/obsgrid/obsgrid/internal/config"
	"github.com/obsgrid/obsgrid/internal/database"
	"github.com/obsgrid/obsgrid/internal/geo"
	"github.com/obsgrid/obsgrid/internal/observation"
	"github.com/obsgrid/obsgrid/internal/observation/smhi"
	"github.com/obsgrid/obsgrid/internal/provider/resilience"
	"github.com/obsgrid/obsgrid/internal/querylog"
	"github.com/obsgrid/obsgrid/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "obsgrid-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting obsgrid API")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize OpenTelemetry
	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SampleRatio:    cfg.TraceSampleRatio,
		Enabled:        cfg.TelemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.TelemetryEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Query log: Postgres when the database is enabled, in-memory otherwise
	var queryLog querylog.Repository = querylog.NewInMemoryRepository(1000)
	if cfg.DatabaseEnabled {
		dbConfig := database.ConfigFromEnv()
		pool, connErr := database.Connect(ctx, dbConfig)
		if connErr != nil {
			log.Fatal().Err(connErr).Msg("failed to connect to database")
		}
		defer pool.Close()
		log.Info().
			Str("host", dbConfig.Host).
			Int("port", dbConfig.Port).
			Str("database", dbConfig.Database).
			Msg("database connected")
		queryLog = querylog.NewPostgresRepository(pool)
	}

	// Upstream client with retry and circuit breaking
	upstreamClient := resilience.NewClient(resilience.ClientConfig{
		Name:            smhi.ProviderName,
		Timeout:         cfg.UpstreamTimeout,
		MaxRetries:      3,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	})

	upstreams := resilience.NewRegistry()
	upstreams.Register(smhi.ProviderName, upstreamClient)

	provider := smhi.NewClient(smhi.ClientConfig{
		MetBaseURL:   cfg.MetBaseURL,
		HydroBaseURL: cfg.HydroBaseURL,
		HTTPClient:   upstreamClient,
	})
	log.Info().Msg("observation provider initialized")

	observationService := observation.NewService(observation.ServiceConfig{
		Provider: provider,
		Areas:    geo.NewResolver(geo.DefaultTable()),
		Logger:   log,
		QueryLog: queryLog,
	})
	log.Info().Msg("observation service initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:            Version,
		BuildTime:          BuildTime,
		Logger:             log,
		ServiceName:        serviceName,
		Metrics:            metrics,
		ObservationService: observationService,
		Upstreams:          upstreams,
		QueryLog:           queryLog,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
