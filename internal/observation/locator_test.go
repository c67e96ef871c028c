package observation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obsgrid/obsgrid/internal/observation"
)

// fakeProvider is a scripted observation.Provider for tests.
type fakeProvider struct {
	stations    []observation.Station
	stationsErr error

	result     *observation.Result
	resultErr  error
	archive    *observation.Result
	archiveErr error

	lastParamCode int
	lastPeriod    observation.Period
	stationsCalls int
	archiveCalls  int
}

func (f *fakeProvider) FetchStations(_ context.Context, _ observation.Network, paramCode int) ([]observation.Station, error) {
	f.lastParamCode = paramCode
	f.stationsCalls++
	return f.stations, f.stationsErr
}

func (f *fakeProvider) FetchObservations(_ context.Context, _ observation.Network, paramCode int, _ int64, period observation.Period) (*observation.Result, error) {
	f.lastParamCode = paramCode
	f.lastPeriod = period
	return f.result, f.resultErr
}

func (f *fakeProvider) FetchArchive(_ context.Context, _ observation.Network, paramCode int, _ int64) (*observation.Result, error) {
	f.lastParamCode = paramCode
	f.archiveCalls++
	return f.archive, f.archiveErr
}

func newLocator(p observation.Provider) *observation.Locator {
	return observation.NewLocator(observation.LocatorConfig{
		Provider: p,
		Registry: observation.DefaultRegistry(),
		Logger:   zerolog.Nop(),
	})
}

func TestFindNearest_PicksClosestActiveStation(t *testing.T) {
	provider := &fakeProvider{
		stations: []observation.Station{
			{ID: 1, Name: "Far", Latitude: 65.0, Longitude: 20.0, Active: true},
			{ID: 2, Name: "Near", Latitude: 59.4, Longitude: 18.1, Active: true},
			{ID: 3, Name: "Nearest but inactive", Latitude: 59.33, Longitude: 18.07, Active: false},
		},
	}
	locator := newLocator(provider)

	station, err := locator.FindNearest(context.Background(), observation.NetworkMeteorological, 59.3293, 18.0686, "temperature")

	require.NoError(t, err)
	assert.Equal(t, int64(2), station.ID)
	assert.Equal(t, 1, provider.lastParamCode) // temperature maps to code 1
}

func TestFindNearest_NoActiveStations(t *testing.T) {
	provider := &fakeProvider{
		stations: []observation.Station{
			{ID: 1, Name: "Retired", Latitude: 59.0, Longitude: 18.0, Active: false},
		},
	}
	locator := newLocator(provider)

	_, err := locator.FindNearest(context.Background(), observation.NetworkMeteorological, 59.0, 18.0, "temperature")

	assert.ErrorIs(t, err, observation.ErrStationNotFound)
}

func TestFindNearest_EmptyRoster(t *testing.T) {
	locator := newLocator(&fakeProvider{})

	_, err := locator.FindNearest(context.Background(), observation.NetworkMeteorological, 59.0, 18.0, "temperature")

	assert.ErrorIs(t, err, observation.ErrStationNotFound)
}

func TestFindNearest_UnknownParameter(t *testing.T) {
	locator := newLocator(&fakeProvider{})

	_, err := locator.FindNearest(context.Background(), observation.NetworkMeteorological, 59.0, 18.0, "water_flow")

	assert.ErrorIs(t, err, observation.ErrUnknownParameter)
}

func TestFindNearest_RosterFetchError(t *testing.T) {
	upstream := errors.New("connection refused")
	locator := newLocator(&fakeProvider{stationsErr: upstream})

	_, err := locator.FindNearest(context.Background(), observation.NetworkMeteorological, 59.0, 18.0, "temperature")

	assert.ErrorIs(t, err, upstream)
}

func TestFindNearest_HydrologicalNetwork(t *testing.T) {
	provider := &fakeProvider{
		stations: []observation.Station{
			{ID: 10, Name: "Gauge", Latitude: 60.0, Longitude: 17.0, Active: true},
		},
	}
	locator := newLocator(provider)

	station, err := locator.FindNearest(context.Background(), observation.NetworkHydrological, 60.0, 17.0, "water_level")

	require.NoError(t, err)
	assert.Equal(t, int64(10), station.ID)
	assert.Equal(t, 3, provider.lastParamCode) // water_level maps to code 3
}
