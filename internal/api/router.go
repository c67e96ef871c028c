// Package api provides the HTTP API for the observation service.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/obsgrid/obsgrid/internal/api/handler"
	"github.com/obsgrid/obsgrid/internal/api/middleware"
	"github.com/obsgrid/obsgrid/internal/observation"
	"github.com/obsgrid/obsgrid/internal/provider/resilience"
	"github.com/obsgrid/obsgrid/internal/querylog"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version            string
	BuildTime          string
	Logger             zerolog.Logger
	ServiceName        string
	Metrics            *middleware.Metrics
	ObservationService *observation.Service
	Upstreams          *resilience.Registry
	QueryLog           querylog.Repository
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "obsgrid-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	observationHandler := handler.NewObservationHandler(cfg.ObservationService, cfg.Logger)
	stationHandler := handler.NewStationHandler(cfg.ObservationService, cfg.Logger)
	metadataHandler := handler.NewMetadataHandler(cfg.ObservationService.Registry())
	opsHandler := handler.NewOpsHandler(handler.OpsConfig{
		Version:   cfg.Version,
		BuildTime: cfg.BuildTime,
		Upstreams: cfg.Upstreams,
		QueryLog:  cfg.QueryLog,
		Logger:    cfg.Logger,
	})

	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 20 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Observation queries - upstream fan-out gets stricter limits
		r.With(standardRateLimit).Get("/observations", observationHandler.GetObservations)
		r.With(expensiveRateLimit, middleware.RequireJSON).Post("/observations:batch", observationHandler.BatchObservations)

		// Station lookup
		r.With(standardRateLimit).Get("/stations/nearest", stationHandler.GetNearest)

		// Metadata endpoints (static)
		r.With(standardRateLimit).Get("/metadata/parameters", metadataHandler.GetParameters)

		// Ops endpoints
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
			r.Get("/queries", opsHandler.QueryLog)
		})
	})

	return r
}
