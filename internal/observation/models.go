// Package observation provides station resolution, reading retrieval, and
// temporal aggregation for meteorological and hydrological sensor networks.
package observation

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors.
var (
	ErrStationNotFound  = errors.New("no matching station found")
	ErrNoData           = errors.New("no observation data available")
	ErrUnknownParameter = errors.New("unknown parameter name")
	ErrInvalidPeriod    = errors.New("invalid observation period")
	ErrInvalidNetwork   = errors.New("invalid network kind")
	ErrNoLocation       = errors.New("no location supplied")
	ErrPartialLocation  = errors.New("latitude and longitude must both be supplied")
)

// UpstreamError is returned when the upstream network answers with a
// non-2xx, non-404 status. It carries the offending status code and origin
// so the transport layer can report it.
type UpstreamError struct {
	StatusCode int
	Endpoint   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: status %d from %s", e.StatusCode, e.Endpoint)
}

// Network identifies an observation system.
type Network string

const (
	// NetworkMeteorological is the weather-station network.
	NetworkMeteorological Network = "metobs"

	// NetworkHydrological is the water-station network.
	NetworkHydrological Network = "hydroobs"
)

// Valid reports whether the network is one of the known kinds.
func (n Network) Valid() bool {
	return n == NetworkMeteorological || n == NetworkHydrological
}

// Period is one of the closed set of upstream request windows. All periods
// except the archive arrive as pre-structured JSON; the archive is a bulk
// delimited-text document covering the station's full history.
type Period string

const (
	PeriodLatestHour   Period = "latest-hour"
	PeriodLatestDay    Period = "latest-day"
	PeriodLatestMonths Period = "latest-months"
	PeriodArchive      Period = "corrected-archive"
)

// Valid reports whether the period is one of the supported windows.
func (p Period) Valid() bool {
	switch p {
	case PeriodLatestHour, PeriodLatestDay, PeriodLatestMonths, PeriodArchive:
		return true
	}
	return false
}

// Station is a read-only snapshot of an upstream sensor site.
type Station struct {
	ID        int64
	Name      string
	Latitude  float64
	Longitude float64
	Active    bool
	Height    float64
}

// Reading is a single timestamped value, the atomic unit of aggregation.
// Quality is a provider-supplied code and is carried through opaquely.
type Reading struct {
	Timestamp time.Time
	Value     float64
	Quality   string
}

// ParameterInfo summarizes the measured parameter as reported upstream.
type ParameterInfo struct {
	Name string
	Unit string
}

// PeriodInfo is the nominal coverage of a reading set.
type PeriodInfo struct {
	From time.Time
	To   time.Time
}

// Result is the normalized form of one fetched reading set. For archive
// fetches the station coordinates are zero-filled: the archive format does
// not carry them.
type Result struct {
	Station   Station
	Parameter ParameterInfo
	Period    PeriodInfo
	Readings  []Reading
}

// DateRange is an optional window used to slice a reading sequence after
// fetching. A nil bound means unfiltered on that side.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Contains reports whether t falls within the range.
func (r DateRange) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

// Granularity is the aggregation bucket size.
type Granularity string

const (
	GranularityDay  Granularity = "day"
	GranularityWeek Granularity = "week"
)

// Bucket is a daily or weekly summary of raw readings. PeriodLabel is an ISO
// date: the bucket's day, or the Monday of its ISO week, so labels sort
// chronologically.
type Bucket struct {
	PeriodLabel string
	Kind        Granularity
	Min         float64
	Max         float64
	Avg         float64
	Count       int
}

// Aggregation describes how a reading set was reduced.
type Aggregation struct {
	Granularity     Granularity
	RangeDays       int
	RawCount        int
	AggregatedCount int
}

// Response is the outcome of one resolution pipeline. Aggregation and
// Buckets are set only when a date window was supplied; in that case the
// raw reading list is omitted and RawCount reports its size.
type Response struct {
	Result
	Aggregation *Aggregation
	Buckets     []Bucket
}
