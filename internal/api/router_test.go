package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obsgrid/obsgrid/internal/api"
	"github.com/obsgrid/obsgrid/internal/api/models"
	"github.com/obsgrid/obsgrid/internal/geo"
	"github.com/obsgrid/obsgrid/internal/observation"
	"github.com/obsgrid/obsgrid/internal/querylog"
)

// scriptedProvider serves a fixed roster and reading set.
type scriptedProvider struct {
	stations []observation.Station
	result   *observation.Result
	err      error
}

func (p *scriptedProvider) FetchStations(context.Context, observation.Network, int) ([]observation.Station, error) {
	return p.stations, p.err
}

func (p *scriptedProvider) FetchObservations(context.Context, observation.Network, int, int64, observation.Period) (*observation.Result, error) {
	return p.result, p.err
}

func (p *scriptedProvider) FetchArchive(context.Context, observation.Network, int, int64) (*observation.Result, error) {
	return p.result, p.err
}

func newTestRouter(t *testing.T, provider observation.Provider) http.Handler {
	t.Helper()

	service := observation.NewService(observation.ServiceConfig{
		Provider: provider,
		Areas:    geo.NewResolver(geo.DefaultTable()),
		Logger:   zerolog.Nop(),
		QueryLog: querylog.NewInMemoryRepository(10),
	})

	return api.NewRouter(api.RouterConfig{
		Version:            "test",
		BuildTime:          "now",
		Logger:             zerolog.Nop(),
		ObservationService: service,
		QueryLog:           querylog.NewInMemoryRepository(10),
	})
}

func fixtureResult() *observation.Result {
	start := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	readings := make([]observation.Reading, 24)
	for i := range readings {
		readings[i] = observation.Reading{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Value:     10 + float64(i)/10,
			Quality:   "G",
		}
	}
	return &observation.Result{
		Station:   observation.Station{ID: 98210, Name: "Stockholm A", Latitude: 59.34, Longitude: 18.05},
		Parameter: observation.ParameterInfo{Name: "Lufttemperatur", Unit: "celsius"},
		Period:    observation.PeriodInfo{From: start, To: start.Add(23 * time.Hour)},
		Readings:  readings,
	}
}

func TestRouter_GetObservations(t *testing.T) {
	router := newTestRouter(t, &scriptedProvider{result: fixtureResult()})

	req := httptest.NewRequest(http.MethodGet, "/v1/observations?parameter=temperature&period=latest-day&stationId=98210", http.NoBody)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var body models.ObservationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(98210), body.Station.ID)
	assert.Len(t, body.Readings, 24)
	assert.Nil(t, body.Aggregation)
}

func TestRouter_GetObservations_MissingParameter(t *testing.T) {
	router := newTestRouter(t, &scriptedProvider{result: fixtureResult()})

	req := httptest.NewRequest(http.MethodGet, "/v1/observations?stationId=98210", http.NoBody)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestRouter_GetObservations_NoData(t *testing.T) {
	router := newTestRouter(t, &scriptedProvider{err: observation.ErrNoData})

	req := httptest.NewRequest(http.MethodGet, "/v1/observations?parameter=temperature&period=latest-day&stationId=98210", http.NoBody)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_GetObservations_Aggregated(t *testing.T) {
	router := newTestRouter(t, &scriptedProvider{result: fixtureResult()})

	req := httptest.NewRequest(http.MethodGet,
		"/v1/observations?parameter=temperature&period=corrected-archive&stationId=98210&from=2023-05-01&to=2023-05-01", http.NoBody)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body models.ObservationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Readings)
	require.NotNil(t, body.Aggregation)
	assert.Equal(t, "day", body.Aggregation.Granularity)
	require.Len(t, body.Buckets, 1)
	assert.Equal(t, "2023-05-01", body.Buckets[0].PeriodLabel)
	assert.Equal(t, 24, body.Buckets[0].Count)
}

func TestRouter_BatchObservations(t *testing.T) {
	router := newTestRouter(t, &scriptedProvider{result: fixtureResult()})

	payload := `{
		"queries": [
			{"parameter": "temperature", "period": "latest-day", "stationId": 98210},
			{"parameter": "does-not-exist", "period": "latest-day", "stationId": 98210}
		]
	}`
	req := httptest.NewRequest(http.MethodPost, "/v1/observations:batch", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body models.BatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Items, 2)

	require.NotNil(t, body.Items[0].Result)
	assert.Equal(t, int64(98210), body.Items[0].Result.Station.ID)

	require.NotNil(t, body.Items[1].Error)
	assert.Equal(t, http.StatusBadRequest, body.Items[1].Error.Status)
}

func TestRouter_BatchObservations_EmptyQueries(t *testing.T) {
	router := newTestRouter(t, &scriptedProvider{result: fixtureResult()})

	req := httptest.NewRequest(http.MethodPost, "/v1/observations:batch", strings.NewReader(`{"queries": []}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_BatchObservations_RequiresJSONContentType(t *testing.T) {
	router := newTestRouter(t, &scriptedProvider{result: fixtureResult()})

	req := httptest.NewRequest(http.MethodPost, "/v1/observations:batch", strings.NewReader("<queries/>"))
	req.Header.Set("Content-Type", "application/xml")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestRouter_NearestStation(t *testing.T) {
	router := newTestRouter(t, &scriptedProvider{
		stations: []observation.Station{
			{ID: 98210, Name: "Stockholm A", Latitude: 59.34, Longitude: 18.05, Active: true},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/stations/nearest?parameter=temperature&lat=59.33&lon=18.07", http.NoBody)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body models.NearestStationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(98210), body.Station.ID)
	assert.True(t, body.Active)
}

func TestRouter_NearestStation_MissingCoordinates(t *testing.T) {
	router := newTestRouter(t, &scriptedProvider{})

	req := httptest.NewRequest(http.MethodGet, "/v1/stations/nearest?parameter=temperature", http.NoBody)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_MetadataParameters(t *testing.T) {
	router := newTestRouter(t, &scriptedProvider{})

	req := httptest.NewRequest(http.MethodGet, "/v1/metadata/parameters", http.NoBody)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body models.ParametersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Networks, 2)
	assert.Equal(t, "metobs", body.Networks[0].Network)
	assert.NotEmpty(t, body.Networks[0].Parameters)
}

func TestRouter_OpsEndpoints(t *testing.T) {
	router := newTestRouter(t, &scriptedProvider{})

	for _, path := range []string{"/v1/ops/health", "/v1/ops/ready", "/v1/ops/status", "/v1/ops/queries"} {
		req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
