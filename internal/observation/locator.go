package observation

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"
)

// LocatorConfig holds configuration for the station locator.
type LocatorConfig struct {
	// Provider supplies station rosters.
	Provider Provider

	// Registry maps logical parameter names to upstream codes.
	Registry *Registry

	// Logger for locator operations.
	Logger zerolog.Logger
}

// Locator finds the nearest active station reporting a given parameter.
// Rosters are fetched fresh per call; nothing is memoized.
type Locator struct {
	provider Provider
	registry *Registry
	logger   zerolog.Logger
}

// NewLocator creates a new station locator.
func NewLocator(cfg LocatorConfig) *Locator {
	return &Locator{
		provider: cfg.Provider,
		registry: cfg.Registry,
		logger:   cfg.Logger,
	}
}

// FindNearest fetches the station roster for the network and parameter,
// filters to active stations, and returns the one minimizing great-circle
// distance to the supplied coordinate. Ties go to the first minimal station
// in roster order.
func (l *Locator) FindNearest(ctx context.Context, network Network, lat, lon float64, parameter string) (*Station, error) {
	spec, ok := l.registry.Lookup(network, parameter)
	if !ok {
		return nil, fmt.Errorf("%w: %q in network %s", ErrUnknownParameter, parameter, network)
	}

	stations, err := l.provider.FetchStations(ctx, network, spec.Code)
	if err != nil {
		return nil, fmt.Errorf("fetch station roster: %w", err)
	}

	var nearest *Station
	var nearestDist float64

	for i := range stations {
		s := &stations[i]
		if !s.Active {
			continue
		}
		dist := haversineKm(lat, lon, s.Latitude, s.Longitude)
		if nearest == nil || dist < nearestDist {
			nearest = s
			nearestDist = dist
		}
	}

	if nearest == nil {
		return nil, ErrStationNotFound
	}

	l.logger.Debug().
		Str("network", string(network)).
		Str("parameter", parameter).
		Int64("station_id", nearest.ID).
		Str("station_name", nearest.Name).
		Float64("distance_km", nearestDist).
		Msg("nearest station located")

	cpy := *nearest
	return &cpy, nil
}

// haversineKm calculates the great-circle distance between two points in
// kilometers using the haversine formula.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371

	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}
