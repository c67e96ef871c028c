package observation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// FetcherConfig holds configuration for the observation fetcher.
type FetcherConfig struct {
	// Provider retrieves reading sets from the upstream network.
	Provider Provider

	// Registry maps logical parameter names to upstream codes.
	Registry *Registry

	// Logger for fetch operations.
	Logger zerolog.Logger
}

// Fetcher retrieves a reading set for a station, parameter, and period,
// normalizing both the structured recent windows and the bulk archive into
// the same Result representation.
type Fetcher struct {
	provider Provider
	registry *Registry
	logger   zerolog.Logger
}

// NewFetcher creates a new observation fetcher.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	return &Fetcher{
		provider: cfg.Provider,
		registry: cfg.Registry,
		logger:   cfg.Logger,
	}
}

// Fetch retrieves readings for the station and parameter over the period.
// Unmapped parameter names fail fast with ErrUnknownParameter. An upstream
// 404 surfaces as ErrNoData: "no data for this combination" is an expected
// outcome, not a failure.
func (f *Fetcher) Fetch(ctx context.Context, network Network, stationID int64, parameter string, period Period) (*Result, error) {
	if !period.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}

	spec, ok := f.registry.Lookup(network, parameter)
	if !ok {
		return nil, fmt.Errorf("%w: %q in network %s", ErrUnknownParameter, parameter, network)
	}

	var result *Result
	var err error

	if period == PeriodArchive {
		// Full history arrives as bulk delimited text. The archive format
		// omits station coordinates, so those fields stay zero-filled.
		result, err = f.provider.FetchArchive(ctx, network, spec.Code, stationID)
	} else {
		result, err = f.provider.FetchObservations(ctx, network, spec.Code, stationID, period)
	}
	if err != nil {
		return nil, err
	}

	f.logger.Debug().
		Str("network", string(network)).
		Int64("station_id", stationID).
		Str("parameter", parameter).
		Str("period", string(period)).
		Int("readings", len(result.Readings)).
		Msg("observations fetched")

	return result, nil
}
