package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obsgrid/obsgrid/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Empty(t, cfg.MetBaseURL)
	assert.Empty(t, cfg.HydroBaseURL)
	assert.Equal(t, 30*time.Second, cfg.UpstreamTimeout)
	assert.False(t, cfg.DatabaseEnabled)
	assert.False(t, cfg.TelemetryEnabled)
	assert.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	assert.Equal(t, 1.0, cfg.TraceSampleRatio)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("METOBS_BASE_URL", "http://localhost:8081/api")
	t.Setenv("UPSTREAM_TIMEOUT", "10s")
	t.Setenv("DB_ENABLED", "true")
	t.Setenv("OTEL_TRACE_SAMPLE_RATIO", "0.25")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "http://localhost:8081/api", cfg.MetBaseURL)
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	assert.True(t, cfg.DatabaseEnabled)
	assert.Equal(t, 0.25, cfg.TraceSampleRatio)
}

func TestLoad_InvalidTimeout(t *testing.T) {
	t.Setenv("UPSTREAM_TIMEOUT", "not-a-duration")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UPSTREAM_TIMEOUT")
}

func TestLoad_InvalidSampleRatio(t *testing.T) {
	t.Setenv("OTEL_TRACE_SAMPLE_RATIO", "1.5")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OTEL_TRACE_SAMPLE_RATIO")
}
