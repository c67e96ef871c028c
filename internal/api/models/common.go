// Package models provides request and response models for the observations API.
package models

import "time"

// Point represents a geographic coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Timestamp serializes as RFC3339 UTC.
type Timestamp time.Time

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).UTC().Format(time.RFC3339) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	parsed, err := time.Parse(`"`+time.RFC3339+`"`, string(data))
	if err != nil {
		return err
	}
	*t = Timestamp(parsed)
	return nil
}

// HealthStatus represents the health status of a service.
type HealthStatus string

const (
	HealthStatusOK       HealthStatus = "OK"
	HealthStatusDegraded HealthStatus = "DEGRADED"
	HealthStatusFail     HealthStatus = "FAIL"
)

// Health is the liveness/readiness response body.
type Health struct {
	Status  HealthStatus           `json:"status"`
	Time    Timestamp              `json:"time"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// UpstreamStatus reports one upstream host's health on the ops surface.
type UpstreamStatus struct {
	Name          string     `json:"name"`
	Status        HealthStatus `json:"status"`
	LastSuccessAt *Timestamp `json:"lastSuccessAt,omitempty"`
	LastFailureAt *Timestamp `json:"lastFailureAt,omitempty"`
	LastError     string     `json:"lastError,omitempty"`
}

// SystemStatus is the ops status response body.
type SystemStatus struct {
	Status    HealthStatus     `json:"status"`
	Time      Timestamp        `json:"time"`
	Upstreams []UpstreamStatus `json:"upstreams,omitempty"`
}
