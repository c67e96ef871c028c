// Package smhi provides a client for the SMHI open-data observation APIs,
// covering the meteorological and hydrological station networks.
package smhi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/obsgrid/obsgrid/internal/observation"
	"github.com/obsgrid/obsgrid/internal/provider/resilience"
)

const (
	// DefaultMetBaseURL is the base URL for the meteorological network.
	DefaultMetBaseURL = "https://opendata-download-metobs.smhi.se/api"

	// DefaultHydroBaseURL is the base URL for the hydrological network.
	DefaultHydroBaseURL = "https://opendata-download-hydroobs.smhi.se/api"

	// ProviderName identifies this provider.
	ProviderName = "smhi"
)

// ClientConfig holds configuration for the SMHI client.
type ClientConfig struct {
	// MetBaseURL overrides the meteorological API base URL.
	MetBaseURL string

	// HydroBaseURL overrides the hydrological API base URL.
	HydroBaseURL string

	// HTTPClient is the HTTP client to use (must implement HTTPDoer).
	// If nil, a default resilient client is created.
	HTTPClient HTTPDoer

	// Timeout for individual API requests (default: 30s). Archive documents
	// span decades and take a while to come down the wire.
	Timeout time.Duration
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is an SMHI open-data API client. It implements
// observation.Provider.
type Client struct {
	metBaseURL   string
	hydroBaseURL string
	httpClient   HTTPDoer
	metrics      *clientMetrics
}

// NewClient creates a new SMHI client.
func NewClient(cfg ClientConfig) *Client {
	metBaseURL := cfg.MetBaseURL
	if metBaseURL == "" {
		metBaseURL = DefaultMetBaseURL
	}

	hydroBaseURL := cfg.HydroBaseURL
	if hydroBaseURL == "" {
		hydroBaseURL = DefaultHydroBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = resilience.NewClient(resilience.ClientConfig{
			Name:            ProviderName,
			Timeout:         timeout,
			MaxRetries:      3,
			InitialInterval: 200 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		})
	}

	return &Client{
		metBaseURL:   strings.TrimSuffix(metBaseURL, "/"),
		hydroBaseURL: strings.TrimSuffix(hydroBaseURL, "/"),
		httpClient:   httpClient,
		metrics:      newClientMetrics(),
	}
}

// API response types (from the SMHI open-data API).

type stationsResponse struct {
	Station []stationData `json:"station"`
}

type stationData struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Active    bool    `json:"active"`
	Height    float64 `json:"height"`
}

type dataResponse struct {
	Station   dataStation    `json:"station"`
	Parameter dataParameter  `json:"parameter"`
	Period    dataPeriod     `json:"period"`
	Position  []dataPosition `json:"position"`
	Value     []dataValue    `json:"value"`
}

type dataStation struct {
	Key    string  `json:"key"`
	Name   string  `json:"name"`
	Height float64 `json:"height"`
}

type dataParameter struct {
	Name string `json:"name"`
	Unit string `json:"unit"`
}

type dataPeriod struct {
	From int64 `json:"from"` // epoch milliseconds
	To   int64 `json:"to"`
}

type dataPosition struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type dataValue struct {
	Date    int64  `json:"date"` // epoch milliseconds
	Value   string `json:"value"`
	Quality string `json:"quality"`
}

// baseURL selects the API host for a network.
func (c *Client) baseURL(network observation.Network) string {
	if network == observation.NetworkHydrological {
		return c.hydroBaseURL
	}
	return c.metBaseURL
}

// FetchStations retrieves the station roster for a network and parameter.
func (c *Client) FetchStations(ctx context.Context, network observation.Network, paramCode int) ([]observation.Station, error) {
	url := fmt.Sprintf("%s/version/latest/parameter/%d.json", c.baseURL(network), paramCode)

	start := time.Now()
	body, err := c.get(ctx, url)
	c.metrics.recordFetch(ctx, "stations", network, start, err)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var result stationsResponse
	if err := json.NewDecoder(body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode stations response: %w", err)
	}

	stations := make([]observation.Station, 0, len(result.Station))
	for _, s := range result.Station {
		stations = append(stations, observation.Station{
			ID:        s.ID,
			Name:      s.Name,
			Latitude:  s.Latitude,
			Longitude: s.Longitude,
			Active:    s.Active,
			Height:    s.Height,
		})
	}

	return stations, nil
}

// FetchObservations retrieves a pre-structured reading set for a recent
// period.
func (c *Client) FetchObservations(ctx context.Context, network observation.Network, paramCode int, stationID int64, period observation.Period) (*observation.Result, error) {
	url := fmt.Sprintf("%s/version/latest/parameter/%d/station/%d/period/%s/data.json",
		c.baseURL(network), paramCode, stationID, period)

	start := time.Now()
	body, err := c.get(ctx, url)
	c.metrics.recordFetch(ctx, "observations", network, start, err)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var result dataResponse
	if err := json.NewDecoder(body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode data response: %w", err)
	}

	return c.toResult(&result), nil
}

// FetchArchive retrieves and parses the full-history archive document. The
// archive format omits station coordinates; those fields stay zero-filled.
func (c *Client) FetchArchive(ctx context.Context, network observation.Network, paramCode int, stationID int64) (*observation.Result, error) {
	url := fmt.Sprintf("%s/version/latest/parameter/%d/station/%d/period/%s/data.csv",
		c.baseURL(network), paramCode, stationID, observation.PeriodArchive)

	start := time.Now()
	body, err := c.get(ctx, url)
	c.metrics.recordFetch(ctx, "archive", network, start, err)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read archive document: %w", err)
	}

	parsed := ParseArchive(string(doc))
	c.metrics.recordArchiveReadings(ctx, network, len(parsed.Readings))
	if len(parsed.Readings) == 0 {
		// A non-empty document that yields no readings means the format was
		// not recognized or every row was corrupt. Either way there is
		// nothing to answer with.
		return nil, observation.ErrNoData
	}

	return &observation.Result{
		Station: observation.Station{
			ID:   parsed.StationID,
			Name: parsed.StationName,
		},
		Parameter: observation.ParameterInfo{
			Name: parsed.ParameterName,
			Unit: parsed.ParameterUnit,
		},
		Period: observation.PeriodInfo{
			From: parsed.From,
			To:   parsed.To,
		},
		Readings: parsed.Readings,
	}, nil
}

// get executes a GET request and applies the shared status policy: 404 is
// translated to ErrNoData, any other non-2xx status becomes an
// UpstreamError carrying the code and origin.
func (c *Client) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return resp.Body, nil
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, observation.ErrNoData
	default:
		resp.Body.Close()
		return nil, &observation.UpstreamError{StatusCode: resp.StatusCode, Endpoint: url}
	}
}

// toResult converts a structured data response to the domain Result.
// Non-numeric value fields are dropped; they signal gaps, not failures.
func (c *Client) toResult(d *dataResponse) *observation.Result {
	stationID, _ := strconv.ParseInt(d.Station.Key, 10, 64)

	station := observation.Station{
		ID:     stationID,
		Name:   d.Station.Name,
		Active: true,
		Height: d.Station.Height,
	}
	if len(d.Position) > 0 {
		// The latest position entry carries the current coordinates.
		pos := d.Position[len(d.Position)-1]
		station.Latitude = pos.Latitude
		station.Longitude = pos.Longitude
	}

	readings := make([]observation.Reading, 0, len(d.Value))
	for _, v := range d.Value {
		value, err := strconv.ParseFloat(v.Value, 64)
		if err != nil {
			continue
		}
		readings = append(readings, observation.Reading{
			Timestamp: time.UnixMilli(v.Date).UTC(),
			Value:     value,
			Quality:   v.Quality,
		})
	}

	return &observation.Result{
		Station: station,
		Parameter: observation.ParameterInfo{
			Name: d.Parameter.Name,
			Unit: d.Parameter.Unit,
		},
		Period: observation.PeriodInfo{
			From: time.UnixMilli(d.Period.From).UTC(),
			To:   time.UnixMilli(d.Period.To).UTC(),
		},
		Readings: readings,
	}
}
