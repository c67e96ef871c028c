// Package handler provides HTTP handlers for the obsgrid API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/obsgrid/obsgrid/internal/api/middleware"
	"github.com/obsgrid/obsgrid/internal/api/models"
	"github.com/obsgrid/obsgrid/internal/api/response"
	"github.com/obsgrid/obsgrid/internal/geo"
	"github.com/obsgrid/obsgrid/internal/observation"
	"github.com/obsgrid/obsgrid/pkg/group"
)

const (
	// batchGroupSize bounds concurrent upstream fan-out per batch request.
	batchGroupSize = 2

	// maxBatchQueries bounds the size of one batch request.
	maxBatchQueries = 20
)

// ObservationHandler handles observation query endpoints.
type ObservationHandler struct {
	service *observation.Service
	logger  zerolog.Logger
}

// NewObservationHandler creates a new ObservationHandler.
func NewObservationHandler(service *observation.Service, logger zerolog.Logger) *ObservationHandler {
	return &ObservationHandler{service: service, logger: logger}
}

// GetObservations handles GET /v1/observations - resolve one observation query.
func (h *ObservationHandler) GetObservations(w http.ResponseWriter, r *http.Request) {
	q, err := queryFromValues(r.URL.Query())
	if err != nil {
		response.BadRequest(w, r, err.Error())
		return
	}

	resp, err := h.service.GetObservations(r.Context(), q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, toObservationResponse(resp))
}

// BatchObservations handles POST /v1/observations:batch - resolve several
// queries in one request. Queries run in fixed-size groups; each outcome is
// reported independently, index-aligned with the request.
func (h *ObservationHandler) BatchObservations(w http.ResponseWriter, r *http.Request) {
	var input models.BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body")
		return
	}
	if len(input.Queries) == 0 {
		response.BadRequest(w, r, "queries must not be empty")
		return
	}
	if len(input.Queries) > maxBatchQueries {
		response.BadRequest(w, r, fmt.Sprintf("at most %d queries per batch", maxBatchQueries))
		return
	}

	traceID := middleware.GetRequestID(r.Context())

	results, errs := group.Run(r.Context(), input.Queries, batchGroupSize,
		func(ctx context.Context, item models.ObservationQuery) (*observation.Response, error) {
			q, err := queryFromBatchItem(item)
			if err != nil {
				return nil, err
			}
			return h.service.GetObservations(ctx, q)
		})

	items := make([]models.BatchItem, len(results))
	for i := range results {
		if errs[i] != nil {
			items[i] = models.BatchItem{Error: problemFor(traceID, errs[i])}
			continue
		}
		resp := toObservationResponse(results[i])
		items[i] = models.BatchItem{Result: &resp}
	}

	response.JSON(w, r, http.StatusOK, models.BatchResponse{Items: items})
}

// writeError maps domain errors to Problem responses.
func (h *ObservationHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	problem := problemFor(middleware.GetRequestID(r.Context()), err)
	if problem.Status >= http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("observation query failed")
	}
	response.Error(w, r, problem)
}

// queryFromValues builds a domain query from URL query parameters.
func queryFromValues(values url.Values) (observation.Query, error) {
	q := observation.Query{
		Network:   observation.Network(values.Get("network")),
		Parameter: values.Get("parameter"),
		Period:    observation.Period(values.Get("period")),
		AreaCode:  values.Get("areaCode"),
	}

	if q.Parameter == "" {
		return q, errors.New("parameter is required")
	}
	if q.Period == "" {
		q.Period = observation.PeriodLatestMonths
	}
	if q.Network == "" {
		q.Network = observation.NetworkMeteorological
	}

	if v := values.Get("stationId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return q, fmt.Errorf("invalid stationId: %q", v)
		}
		q.StationID = &id
	}
	if v := values.Get("lat"); v != "" {
		lat, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return q, fmt.Errorf("invalid lat: %q", v)
		}
		q.Latitude = &lat
	}
	if v := values.Get("lon"); v != "" {
		lon, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return q, fmt.Errorf("invalid lon: %q", v)
		}
		q.Longitude = &lon
	}

	from, err := parseDateBound(values.Get("from"), false)
	if err != nil {
		return q, err
	}
	q.From = from

	to, err := parseDateBound(values.Get("to"), true)
	if err != nil {
		return q, err
	}
	q.To = to

	return q, nil
}

// queryFromBatchItem builds a domain query from one batch request item.
func queryFromBatchItem(item models.ObservationQuery) (observation.Query, error) {
	values := url.Values{}
	values.Set("network", item.Network)
	values.Set("parameter", item.Parameter)
	values.Set("period", item.Period)
	values.Set("areaCode", item.AreaCode)
	values.Set("from", item.From)
	values.Set("to", item.To)
	if item.StationID != nil {
		values.Set("stationId", strconv.FormatInt(*item.StationID, 10))
	}
	if item.Lat != nil {
		values.Set("lat", strconv.FormatFloat(*item.Lat, 'f', -1, 64))
	}
	if item.Lon != nil {
		values.Set("lon", strconv.FormatFloat(*item.Lon, 'f', -1, 64))
	}
	return queryFromValues(values)
}

// parseDateBound parses an RFC3339 timestamp or a bare date. A bare "to"
// date is widened to the end of that day so the bound is inclusive.
func parseDateBound(v string, endOfDay bool) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, want RFC3339 or YYYY-MM-DD", v)
	}
	t = t.UTC()
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

// toObservationResponse converts a domain response to the wire form.
func toObservationResponse(resp *observation.Response) models.ObservationResponse {
	out := models.ObservationResponse{
		Station: models.StationSummary{
			ID:     resp.Station.ID,
			Name:   resp.Station.Name,
			Height: resp.Station.Height,
		},
		Parameter: models.ParameterSummary{
			Name: resp.Parameter.Name,
			Unit: resp.Parameter.Unit,
		},
		Period: models.PeriodSummary{
			From: models.Timestamp(resp.Period.From),
			To:   models.Timestamp(resp.Period.To),
		},
	}
	if resp.Station.Latitude != 0 || resp.Station.Longitude != 0 {
		out.Station.Point = &models.Point{Lat: resp.Station.Latitude, Lon: resp.Station.Longitude}
	}

	for _, reading := range resp.Readings {
		out.Readings = append(out.Readings, models.ReadingItem{
			Timestamp: models.Timestamp(reading.Timestamp),
			Value:     reading.Value,
			Quality:   reading.Quality,
		})
	}

	if resp.Aggregation != nil {
		out.Aggregation = &models.AggregationSummary{
			Granularity:     string(resp.Aggregation.Granularity),
			RangeDays:       resp.Aggregation.RangeDays,
			RawCount:        resp.Aggregation.RawCount,
			AggregatedCount: resp.Aggregation.AggregatedCount,
		}
		for _, bucket := range resp.Buckets {
			out.Buckets = append(out.Buckets, models.BucketItem{
				PeriodLabel: bucket.PeriodLabel,
				Kind:        string(bucket.Kind),
				Min:         bucket.Min,
				Max:         bucket.Max,
				Avg:         bucket.Avg,
				Count:       bucket.Count,
			})
		}
	}

	return out
}

// problemFor maps a domain error to an RFC7807 Problem.
func problemFor(traceID string, err error) *models.Problem {
	var upstream *observation.UpstreamError

	switch {
	case errors.Is(err, observation.ErrNoData),
		errors.Is(err, observation.ErrStationNotFound),
		errors.Is(err, geo.ErrAreaNotFound):
		return models.NewNotFound(traceID, err.Error())
	case errors.Is(err, observation.ErrUnknownParameter),
		errors.Is(err, observation.ErrInvalidPeriod),
		errors.Is(err, observation.ErrInvalidNetwork),
		errors.Is(err, observation.ErrNoLocation),
		errors.Is(err, observation.ErrPartialLocation),
		errors.Is(err, geo.ErrInvalidAreaCode):
		return models.NewBadRequest(traceID, err.Error())
	case errors.As(err, &upstream):
		return models.NewBadGateway(traceID, fmt.Sprintf("upstream returned status %d", upstream.StatusCode))
	default:
		return models.NewInternalError(traceID, "unexpected error resolving observations")
	}
}
