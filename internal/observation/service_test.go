package observation_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obsgrid/obsgrid/internal/geo"
	"github.com/obsgrid/obsgrid/internal/observation"
	"github.com/obsgrid/obsgrid/internal/querylog"
)

func sampleResult(count int) *observation.Result {
	start := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	readings := make([]observation.Reading, count)
	for i := range readings {
		readings[i] = observation.Reading{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Value:     float64(i%20) + 0.5,
			Quality:   "G",
		}
	}
	return &observation.Result{
		Station:   observation.Station{ID: 98210, Name: "Stockholm A", Latitude: 59.34, Longitude: 18.05},
		Parameter: observation.ParameterInfo{Name: "temperature", Unit: "celsius"},
		Period:    observation.PeriodInfo{From: start, To: start.Add(time.Duration(count-1) * time.Hour)},
		Readings:  readings,
	}
}

func newService(p observation.Provider, log querylog.Repository) *observation.Service {
	return observation.NewService(observation.ServiceConfig{
		Provider: p,
		Areas:    geo.NewResolver(geo.DefaultTable()),
		Logger:   zerolog.Nop(),
		QueryLog: log,
	})
}

func int64Ptr(v int64) *int64       { return &v }
func floatPtr(v float64) *float64   { return &v }
func timePtr(t time.Time) *time.Time { return &t }

func TestGetObservations_ByStationID(t *testing.T) {
	provider := &fakeProvider{result: sampleResult(24)}
	svc := newService(provider, nil)

	resp, err := svc.GetObservations(context.Background(), observation.Query{
		Network:   observation.NetworkMeteorological,
		Parameter: "temperature",
		Period:    observation.PeriodLatestDay,
		StationID: int64Ptr(98210),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(98210), resp.Station.ID)
	assert.Len(t, resp.Readings, 24)
	assert.Nil(t, resp.Aggregation)
	assert.Equal(t, observation.PeriodLatestDay, provider.lastPeriod)
}

func TestGetObservations_ByCoordinates(t *testing.T) {
	provider := &fakeProvider{
		stations: []observation.Station{
			{ID: 98210, Name: "Stockholm A", Latitude: 59.34, Longitude: 18.05, Active: true},
		},
		result: sampleResult(24),
	}
	svc := newService(provider, nil)

	resp, err := svc.GetObservations(context.Background(), observation.Query{
		Network:   observation.NetworkMeteorological,
		Parameter: "temperature",
		Period:    observation.PeriodLatestDay,
		Latitude:  floatPtr(59.3293),
		Longitude: floatPtr(18.0686),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(98210), resp.Station.ID)
}

func TestGetObservations_StationIDWinsOverCoordinates(t *testing.T) {
	provider := &fakeProvider{
		stations: []observation.Station{
			{ID: 1, Name: "Other", Latitude: 59.0, Longitude: 18.0, Active: true},
		},
		result: sampleResult(1),
	}
	svc := newService(provider, nil)

	_, err := svc.GetObservations(context.Background(), observation.Query{
		Network:   observation.NetworkMeteorological,
		Parameter: "temperature",
		Period:    observation.PeriodLatestDay,
		StationID: int64Ptr(42),
		Latitude:  floatPtr(59.3293),
		Longitude: floatPtr(18.0686),
	})

	require.NoError(t, err)
	// The roster was never consulted.
	assert.Zero(t, provider.stationsCalls)
}

func TestGetObservations_ByAreaCode(t *testing.T) {
	provider := &fakeProvider{
		stations: []observation.Station{
			{ID: 98210, Name: "Stockholm A", Latitude: 59.34, Longitude: 18.05, Active: true},
		},
		result: sampleResult(24),
	}
	svc := newService(provider, nil)

	resp, err := svc.GetObservations(context.Background(), observation.Query{
		Network:   observation.NetworkMeteorological,
		Parameter: "temperature",
		Period:    observation.PeriodLatestDay,
		AreaCode:  "0180", // Stockholm municipality
	})

	require.NoError(t, err)
	assert.Equal(t, int64(98210), resp.Station.ID)
}

func TestGetObservations_PartialCoordinates(t *testing.T) {
	svc := newService(&fakeProvider{}, nil)

	_, err := svc.GetObservations(context.Background(), observation.Query{
		Network:   observation.NetworkMeteorological,
		Parameter: "temperature",
		Period:    observation.PeriodLatestDay,
		Latitude:  floatPtr(59.3293),
	})

	assert.ErrorIs(t, err, observation.ErrPartialLocation)
}

func TestGetObservations_NoLocation(t *testing.T) {
	svc := newService(&fakeProvider{}, nil)

	_, err := svc.GetObservations(context.Background(), observation.Query{
		Network:   observation.NetworkMeteorological,
		Parameter: "temperature",
		Period:    observation.PeriodLatestDay,
	})

	assert.ErrorIs(t, err, observation.ErrNoLocation)
}

func TestGetObservations_InvalidNetwork(t *testing.T) {
	svc := newService(&fakeProvider{}, nil)

	_, err := svc.GetObservations(context.Background(), observation.Query{
		Network:   "spaceobs",
		Parameter: "temperature",
		Period:    observation.PeriodLatestDay,
		StationID: int64Ptr(1),
	})

	assert.ErrorIs(t, err, observation.ErrInvalidNetwork)
}

func TestGetObservations_InvalidPeriod(t *testing.T) {
	svc := newService(&fakeProvider{}, nil)

	_, err := svc.GetObservations(context.Background(), observation.Query{
		Network:   observation.NetworkMeteorological,
		Parameter: "temperature",
		Period:    "latest-century",
		StationID: int64Ptr(1),
	})

	assert.ErrorIs(t, err, observation.ErrInvalidPeriod)
}

func TestGetObservations_EmptyReadings(t *testing.T) {
	provider := &fakeProvider{result: &observation.Result{
		Station: observation.Station{ID: 1},
	}}
	svc := newService(provider, nil)

	_, err := svc.GetObservations(context.Background(), observation.Query{
		Network:   observation.NetworkMeteorological,
		Parameter: "temperature",
		Period:    observation.PeriodLatestDay,
		StationID: int64Ptr(1),
	})

	assert.ErrorIs(t, err, observation.ErrNoData)
}

func TestGetObservations_ArchivePeriodUsesArchiveFetch(t *testing.T) {
	provider := &fakeProvider{archive: sampleResult(48)}
	svc := newService(provider, nil)

	resp, err := svc.GetObservations(context.Background(), observation.Query{
		Network:   observation.NetworkMeteorological,
		Parameter: "temperature",
		Period:    observation.PeriodArchive,
		StationID: int64Ptr(98210),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, provider.archiveCalls)
	assert.Len(t, resp.Readings, 48)
}

func TestGetObservations_DateWindowAggregates(t *testing.T) {
	provider := &fakeProvider{archive: sampleResult(7 * 24)} // a week of hourly readings
	svc := newService(provider, nil)

	resp, err := svc.GetObservations(context.Background(), observation.Query{
		Network:   observation.NetworkMeteorological,
		Parameter: "temperature",
		Period:    observation.PeriodArchive,
		StationID: int64Ptr(98210),
		From:      timePtr(time.Date(2023, 5, 2, 0, 0, 0, 0, time.UTC)),
		To:        timePtr(time.Date(2023, 5, 4, 23, 59, 59, 0, time.UTC)),
	})

	require.NoError(t, err)
	assert.Nil(t, resp.Readings)

	require.NotNil(t, resp.Aggregation)
	assert.Equal(t, observation.GranularityDay, resp.Aggregation.Granularity)
	assert.Equal(t, 3, resp.Aggregation.RangeDays)
	assert.Equal(t, 3*24, resp.Aggregation.RawCount)
	assert.Equal(t, 3, resp.Aggregation.AggregatedCount)
	require.Len(t, resp.Buckets, 3)
	assert.Equal(t, "2023-05-02", resp.Buckets[0].PeriodLabel)
}

func TestGetObservations_WindowOutsideData(t *testing.T) {
	provider := &fakeProvider{archive: sampleResult(24)}
	svc := newService(provider, nil)

	_, err := svc.GetObservations(context.Background(), observation.Query{
		Network:   observation.NetworkMeteorological,
		Parameter: "temperature",
		Period:    observation.PeriodArchive,
		StationID: int64Ptr(98210),
		From:      timePtr(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	})

	assert.ErrorIs(t, err, observation.ErrNoData)
}

func TestGetObservations_LongWindowUsesWeeklyBuckets(t *testing.T) {
	provider := &fakeProvider{archive: sampleResult(200 * 24)}
	svc := newService(provider, nil)

	resp, err := svc.GetObservations(context.Background(), observation.Query{
		Network:   observation.NetworkMeteorological,
		Parameter: "temperature",
		Period:    observation.PeriodArchive,
		StationID: int64Ptr(98210),
		From:      timePtr(time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)),
		To:        timePtr(time.Date(2023, 10, 31, 0, 0, 0, 0, time.UTC)),
	})

	require.NoError(t, err)
	require.NotNil(t, resp.Aggregation)
	assert.Equal(t, observation.GranularityWeek, resp.Aggregation.Granularity)
	for _, b := range resp.Buckets {
		assert.Equal(t, observation.GranularityWeek, b.Kind)
	}
}

func TestGetObservations_RecordsQueryLog(t *testing.T) {
	provider := &fakeProvider{result: sampleResult(24)}
	auditLog := querylog.NewInMemoryRepository(10)
	svc := newService(provider, auditLog)

	_, err := svc.GetObservations(context.Background(), observation.Query{
		Network:   observation.NetworkMeteorological,
		Parameter: "temperature",
		Period:    observation.PeriodLatestDay,
		StationID: int64Ptr(98210),
	})
	require.NoError(t, err)

	entries, err := auditLog.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "temperature", entries[0].Parameter)
	assert.Equal(t, int64(98210), entries[0].StationID)
	assert.Equal(t, 24, entries[0].ReadingCount)
}

func TestGetObservations_UnknownAreaCode(t *testing.T) {
	svc := newService(&fakeProvider{}, nil)

	_, err := svc.GetObservations(context.Background(), observation.Query{
		Network:   observation.NetworkMeteorological,
		Parameter: "temperature",
		Period:    observation.PeriodLatestDay,
		AreaCode:  "9901",
	})

	assert.ErrorIs(t, err, geo.ErrAreaNotFound)
}
