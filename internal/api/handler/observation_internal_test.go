package handler

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obsgrid/obsgrid/internal/geo"
	"github.com/obsgrid/obsgrid/internal/observation"
)

func TestQueryFromValues_Defaults(t *testing.T) {
	values := url.Values{}
	values.Set("parameter", "temperature")

	q, err := queryFromValues(values)
	require.NoError(t, err)

	assert.Equal(t, observation.NetworkMeteorological, q.Network)
	assert.Equal(t, observation.PeriodLatestMonths, q.Period)
	assert.Nil(t, q.StationID)
	assert.Nil(t, q.From)
	assert.Nil(t, q.To)
}

func TestQueryFromValues_MissingParameter(t *testing.T) {
	_, err := queryFromValues(url.Values{})
	assert.Error(t, err)
}

func TestQueryFromValues_AllFields(t *testing.T) {
	values := url.Values{}
	values.Set("network", "hydroobs")
	values.Set("parameter", "water_flow")
	values.Set("period", "corrected-archive")
	values.Set("stationId", "2357")
	values.Set("from", "2020-01-01")
	values.Set("to", "2020-12-31")

	q, err := queryFromValues(values)
	require.NoError(t, err)

	assert.Equal(t, observation.NetworkHydrological, q.Network)
	assert.Equal(t, observation.PeriodArchive, q.Period)
	require.NotNil(t, q.StationID)
	assert.Equal(t, int64(2357), *q.StationID)

	require.NotNil(t, q.From)
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), *q.From)

	// A bare "to" date is inclusive: the bound covers the whole day.
	require.NotNil(t, q.To)
	assert.True(t, q.To.After(time.Date(2020, 12, 31, 23, 59, 59, 0, time.UTC)))
}

func TestQueryFromValues_InvalidNumbers(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"stationId", "abc"},
		{"lat", "north"},
		{"lon", "east"},
		{"from", "01/02/2020"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			values := url.Values{}
			values.Set("parameter", "temperature")
			values.Set(tt.key, tt.value)

			_, err := queryFromValues(values)
			assert.Error(t, err)
		})
	}
}

func TestProblemFor_StatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"no data", observation.ErrNoData, http.StatusNotFound},
		{"station not found", observation.ErrStationNotFound, http.StatusNotFound},
		{"area not found", geo.ErrAreaNotFound, http.StatusNotFound},
		{"unknown parameter", observation.ErrUnknownParameter, http.StatusBadRequest},
		{"invalid period", observation.ErrInvalidPeriod, http.StatusBadRequest},
		{"invalid network", observation.ErrInvalidNetwork, http.StatusBadRequest},
		{"no location", observation.ErrNoLocation, http.StatusBadRequest},
		{"partial location", observation.ErrPartialLocation, http.StatusBadRequest},
		{"invalid area code", geo.ErrInvalidAreaCode, http.StatusBadRequest},
		{"upstream", &observation.UpstreamError{StatusCode: 503}, http.StatusBadGateway},
		{"unexpected", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problem := problemFor("trace-1", tt.err)
			assert.Equal(t, tt.want, problem.Status)
			assert.Equal(t, "trace-1", problem.TraceID)
		})
	}
}
