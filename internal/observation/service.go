package observation

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/obsgrid/obsgrid/internal/geo"
	"github.com/obsgrid/obsgrid/internal/querylog"
)

// Provider defines the interface to the upstream observation network.
type Provider interface {
	// FetchStations fetches the station roster for a network and parameter.
	FetchStations(ctx context.Context, network Network, paramCode int) ([]Station, error)

	// FetchObservations fetches a pre-structured recent reading set.
	FetchObservations(ctx context.Context, network Network, paramCode int, stationID int64, period Period) (*Result, error)

	// FetchArchive fetches and parses the full-history archive document.
	FetchArchive(ctx context.Context, network Network, paramCode int, stationID int64) (*Result, error)
}

// Query describes one observation request. Location is resolved by
// priority: explicit station id, then coordinates, then administrative-area
// code. From/To are optional; nil means unfiltered and unaggregated.
type Query struct {
	Network   Network
	Parameter string
	Period    Period

	StationID *int64
	Latitude  *float64
	Longitude *float64
	AreaCode  string

	From *time.Time
	To   *time.Time
}

// ServiceConfig holds configuration for the observation service.
type ServiceConfig struct {
	// Provider is the upstream observation network.
	Provider Provider

	// Registry maps logical parameter names to upstream codes.
	// Defaults to DefaultRegistry.
	Registry *Registry

	// Areas resolves administrative-area codes to coordinates.
	Areas *geo.Resolver

	// Logger for service operations.
	Logger zerolog.Logger

	// QueryLog is an optional audit sink for resolved queries. Recording
	// failures are logged, never propagated.
	QueryLog querylog.Repository
}

// Service orchestrates the resolution pipeline: resolve location, locate a
// station when none is given, fetch readings, and aggregate when a date
// window is supplied. Every run is stateless with respect to prior runs.
type Service struct {
	fetcher  *Fetcher
	locator  *Locator
	registry *Registry
	areas    *geo.Resolver
	logger   zerolog.Logger
	queryLog querylog.Repository
}

// NewService creates a new observation service.
func NewService(cfg ServiceConfig) *Service {
	registry := cfg.Registry
	if registry == nil {
		registry = DefaultRegistry()
	}

	return &Service{
		fetcher: NewFetcher(FetcherConfig{
			Provider: cfg.Provider,
			Registry: registry,
			Logger:   cfg.Logger,
		}),
		locator: NewLocator(LocatorConfig{
			Provider: cfg.Provider,
			Registry: registry,
			Logger:   cfg.Logger,
		}),
		registry: registry,
		areas:    cfg.Areas,
		logger:   cfg.Logger,
		queryLog: cfg.QueryLog,
	}
}

// Registry returns the parameter registry in use.
func (s *Service) Registry() *Registry {
	return s.registry
}

// FindNearestStation exposes station location for callers that only need
// the roster lookup.
func (s *Service) FindNearestStation(ctx context.Context, network Network, lat, lon float64, parameter string) (*Station, error) {
	return s.locator.FindNearest(ctx, network, lat, lon, parameter)
}

// GetObservations runs the full resolution pipeline for one query.
func (s *Service) GetObservations(ctx context.Context, q Query) (*Response, error) {
	start := time.Now()

	if !q.Network.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNetwork, q.Network)
	}
	if !q.Period.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, q.Period)
	}

	stationID, err := s.resolveStation(ctx, q)
	if err != nil {
		return nil, err
	}

	result, err := s.fetcher.Fetch(ctx, q.Network, stationID, q.Parameter, q.Period)
	if err != nil {
		return nil, err
	}
	if len(result.Readings) == 0 {
		return nil, ErrNoData
	}

	resp := &Response{Result: *result}

	if q.From != nil || q.To != nil {
		if err := s.aggregateWindow(resp, q); err != nil {
			return nil, err
		}
	}

	s.record(ctx, q, resp, time.Since(start))

	return resp, nil
}

// resolveStation applies the location priority: explicit station id, then
// coordinates, then administrative-area code.
func (s *Service) resolveStation(ctx context.Context, q Query) (int64, error) {
	if q.StationID != nil {
		return *q.StationID, nil
	}

	if q.Latitude != nil || q.Longitude != nil {
		if q.Latitude == nil || q.Longitude == nil {
			return 0, ErrPartialLocation
		}
		station, err := s.locator.FindNearest(ctx, q.Network, *q.Latitude, *q.Longitude, q.Parameter)
		if err != nil {
			return 0, err
		}
		return station.ID, nil
	}

	if q.AreaCode != "" {
		coord, err := s.areas.Resolve(q.AreaCode)
		if err != nil {
			return 0, err
		}
		station, err := s.locator.FindNearest(ctx, q.Network, coord.Latitude, coord.Longitude, q.Parameter)
		if err != nil {
			return 0, err
		}
		return station.ID, nil
	}

	return 0, ErrNoLocation
}

// aggregateWindow filters the readings to the caller's window and replaces
// the raw list with date-bucketed summaries. The effective bounds are the
// caller-supplied ones where given, else the filtered set's extremes.
func (s *Service) aggregateWindow(resp *Response, q Query) error {
	filtered := FilterRange(resp.Readings, DateRange{From: q.From, To: q.To})
	if len(filtered) == 0 {
		return ErrNoData
	}

	from := filtered[0].Timestamp
	if q.From != nil {
		from = *q.From
	}
	to := filtered[len(filtered)-1].Timestamp
	if q.To != nil {
		to = *q.To
	}

	rangeDays := RangeDays(from, to)
	granularity := ChooseGranularity(rangeDays)
	buckets := Aggregate(filtered, granularity)

	resp.Readings = nil
	resp.Aggregation = &Aggregation{
		Granularity:     granularity,
		RangeDays:       rangeDays,
		RawCount:        len(filtered),
		AggregatedCount: len(buckets),
	}
	resp.Buckets = buckets

	s.logger.Info().
		Str("granularity", string(granularity)).
		Int("range_days", rangeDays).
		Int("raw_count", len(filtered)).
		Int("buckets", len(buckets)).
		Msg("readings aggregated")

	return nil
}

// record writes a best-effort audit entry for a completed query.
func (s *Service) record(ctx context.Context, q Query, resp *Response, took time.Duration) {
	if s.queryLog == nil {
		return
	}

	entry := querylog.Entry{
		Network:      string(q.Network),
		Parameter:    q.Parameter,
		Period:       string(q.Period),
		StationID:    resp.Station.ID,
		StationName:  resp.Station.Name,
		ReadingCount: len(resp.Readings),
		Duration:     took,
		CreatedAt:    time.Now(),
	}
	if resp.Aggregation != nil {
		entry.ReadingCount = resp.Aggregation.RawCount
		entry.BucketCount = resp.Aggregation.AggregatedCount
		entry.Granularity = string(resp.Aggregation.Granularity)
	}

	if err := s.queryLog.Record(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record query log entry")
	}
}
