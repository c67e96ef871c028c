package models

// StationSummary describes the resolved station in a response.
type StationSummary struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Point  *Point  `json:"point,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// ParameterSummary describes the measured parameter in a response.
type ParameterSummary struct {
	Name string `json:"name"`
	Unit string `json:"unit"`
}

// PeriodSummary describes the nominal coverage of the reading set.
type PeriodSummary struct {
	From Timestamp `json:"from"`
	To   Timestamp `json:"to"`
}

// ReadingItem is one timestamped observation value.
type ReadingItem struct {
	Timestamp Timestamp `json:"timestamp"`
	Value     float64   `json:"value"`
	Quality   string    `json:"quality,omitempty"`
}

// BucketItem is one daily or weekly summary bucket.
type BucketItem struct {
	PeriodLabel string  `json:"periodLabel"`
	Kind        string  `json:"kind"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Avg         float64 `json:"avg"`
	Count       int     `json:"count"`
}

// AggregationSummary describes how the reading set was reduced.
type AggregationSummary struct {
	Granularity     string `json:"granularity"`
	RangeDays       int    `json:"rangeDays"`
	RawCount        int    `json:"rawCount"`
	AggregatedCount int    `json:"aggregatedCount"`
}

// ObservationResponse is the body of a resolved observation query. Readings
// and the aggregation fields are mutually exclusive: a date-windowed query
// returns buckets, everything else returns the raw ordered readings.
type ObservationResponse struct {
	Station     StationSummary      `json:"station"`
	Parameter   ParameterSummary    `json:"parameter"`
	Period      PeriodSummary       `json:"period"`
	Readings    []ReadingItem       `json:"readings,omitempty"`
	Aggregation *AggregationSummary `json:"aggregation,omitempty"`
	Buckets     []BucketItem        `json:"buckets,omitempty"`
}

// ObservationQuery is one query in a batch request. Fields mirror the query
// string of the single-query endpoint.
type ObservationQuery struct {
	Network   string   `json:"network"`
	Parameter string   `json:"parameter"`
	Period    string   `json:"period"`
	StationID *int64   `json:"stationId,omitempty"`
	Lat       *float64 `json:"lat,omitempty"`
	Lon       *float64 `json:"lon,omitempty"`
	AreaCode  string   `json:"areaCode,omitempty"`
	From      string   `json:"from,omitempty"`
	To        string   `json:"to,omitempty"`
}

// BatchRequest is the body of a batch observation request.
type BatchRequest struct {
	Queries []ObservationQuery `json:"queries"`
}

// BatchItem is one outcome in a batch response, index-aligned with the
// request's queries.
type BatchItem struct {
	Result *ObservationResponse `json:"result,omitempty"`
	Error  *Problem             `json:"error,omitempty"`
}

// BatchResponse is the body of a batch observation response.
type BatchResponse struct {
	Items []BatchItem `json:"items"`
}

// NearestStationResponse is the body of a nearest-station lookup.
type NearestStationResponse struct {
	Station StationSummary `json:"station"`
	Active  bool           `json:"active"`
}

// ParameterListing maps a network to its known logical parameters.
type ParameterListing struct {
	Network    string             `json:"network"`
	Parameters []ParameterSummary `json:"parameters"`
}

// ParametersResponse is the metadata listing of supported parameters.
type ParametersResponse struct {
	Networks []ParameterListing `json:"networks"`
}

// QueryLogItem is one audit entry on the ops surface.
type QueryLogItem struct {
	Network      string    `json:"network"`
	Parameter    string    `json:"parameter"`
	Period       string    `json:"period"`
	StationID    int64     `json:"stationId"`
	StationName  string    `json:"stationName"`
	ReadingCount int       `json:"readingCount"`
	BucketCount  int       `json:"bucketCount,omitempty"`
	Granularity  string    `json:"granularity,omitempty"`
	DurationMs   int64     `json:"durationMs"`
	CreatedAt    Timestamp `json:"createdAt"`
}

// QueryLogResponse lists recent resolved queries.
type QueryLogResponse struct {
	Items []QueryLogItem `json:"items"`
}
