package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/obsgrid/obsgrid/internal/api/middleware"
	"github.com/obsgrid/obsgrid/internal/api/models"
	"github.com/obsgrid/obsgrid/internal/api/response"
	"github.com/obsgrid/obsgrid/internal/observation"
)

// StationHandler handles station lookup endpoints.
type StationHandler struct {
	service *observation.Service
	logger  zerolog.Logger
}

// NewStationHandler creates a new StationHandler.
func NewStationHandler(service *observation.Service, logger zerolog.Logger) *StationHandler {
	return &StationHandler{service: service, logger: logger}
}

// GetNearest handles GET /v1/stations/nearest - find the nearest active
// station measuring a parameter.
func (h *StationHandler) GetNearest(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	network := observation.Network(values.Get("network"))
	if network == "" {
		network = observation.NetworkMeteorological
	}

	parameter := values.Get("parameter")
	if parameter == "" {
		response.BadRequest(w, r, "parameter is required")
		return
	}

	lat, err := parseCoord(values.Get("lat"), "lat")
	if err != nil {
		response.BadRequest(w, r, err.Error())
		return
	}
	lon, err := parseCoord(values.Get("lon"), "lon")
	if err != nil {
		response.BadRequest(w, r, err.Error())
		return
	}

	station, err := h.service.FindNearestStation(r.Context(), network, lat, lon, parameter)
	if err != nil {
		problem := problemFor(middleware.GetRequestID(r.Context()), err)
		if problem.Status >= http.StatusInternalServerError {
			h.logger.Error().Err(err).Msg("nearest station lookup failed")
		}
		response.Error(w, r, problem)
		return
	}

	response.JSON(w, r, http.StatusOK, models.NearestStationResponse{
		Station: models.StationSummary{
			ID:     station.ID,
			Name:   station.Name,
			Point:  &models.Point{Lat: station.Latitude, Lon: station.Longitude},
			Height: station.Height,
		},
		Active: station.Active,
	})
}

func parseCoord(v, name string) (float64, error) {
	if v == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, v)
	}
	return f, nil
}
