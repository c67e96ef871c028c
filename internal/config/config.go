// Package config loads runtime configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the full runtime configuration for the API server.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port string

	// Environment is the deployment environment name (development, production).
	Environment string

	// MetBaseURL overrides the meteorological observations API base URL.
	// Empty means the built-in default.
	MetBaseURL string

	// HydroBaseURL overrides the hydrological observations API base URL.
	HydroBaseURL string

	// UpstreamTimeout bounds each upstream HTTP request.
	UpstreamTimeout time.Duration

	// DatabaseEnabled turns on the Postgres query log. When false the
	// in-memory repository is used instead.
	DatabaseEnabled bool

	// TelemetryEnabled turns on OTLP trace and metric export.
	TelemetryEnabled bool

	// OTLPEndpoint is the OTLP gRPC collector endpoint.
	OTLPEndpoint string

	// TraceSampleRatio is the fraction of traces to sample (0 < r <= 1).
	TraceSampleRatio float64
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() (*Config, error) {
	// Ignore a missing .env file, it only exists in local development.
	_ = godotenv.Load() //nolint:errcheck // optional file

	cfg := &Config{
		Port:             getenv("APP_PORT", "8080"),
		Environment:      getenv("APP_ENV", "development"),
		MetBaseURL:       os.Getenv("METOBS_BASE_URL"),
		HydroBaseURL:     os.Getenv("HYDROOBS_BASE_URL"),
		DatabaseEnabled:  os.Getenv("DB_ENABLED") == "true",
		TelemetryEnabled: os.Getenv("OTEL_ENABLED") == "true",
		OTLPEndpoint:     getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}

	timeout, err := parseDuration("UPSTREAM_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.UpstreamTimeout = timeout

	ratio, err := parseFloat("OTEL_TRACE_SAMPLE_RATIO", 1.0)
	if err != nil {
		return nil, err
	}
	if ratio <= 0 || ratio > 1 {
		return nil, fmt.Errorf("OTEL_TRACE_SAMPLE_RATIO must be in (0, 1], got %v", ratio)
	}
	cfg.TraceSampleRatio = ratio

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parseFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
