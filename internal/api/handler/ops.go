package handler

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/obsgrid/obsgrid/internal/api/models"
	"github.com/obsgrid/obsgrid/internal/api/response"
	"github.com/obsgrid/obsgrid/internal/provider/resilience"
	"github.com/obsgrid/obsgrid/internal/querylog"
)

// queryLogLimit bounds the ops query log listing.
const queryLogLimit = 50

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	upstreams *resilience.Registry
	queryLog  querylog.Repository
	logger    zerolog.Logger
}

// OpsConfig holds configuration for the ops handler.
type OpsConfig struct {
	Version   string
	BuildTime string
	Upstreams *resilience.Registry
	QueryLog  querylog.Repository
	Logger    zerolog.Logger
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	return &OpsHandler{
		version:   cfg.Version,
		buildTime: cfg.BuildTime,
		upstreams: cfg.Upstreams,
		queryLog:  cfg.QueryLog,
		logger:    cfg.Logger,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. Reports
// degraded when any upstream circuit is open.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatusOK
	if h.upstreams != nil {
		for _, u := range h.upstreams.Health() {
			if !u.IsHealthy() {
				status = models.HealthStatusDegraded
				break
			}
		}
	}

	health := models.Health{
		Status: status,
		Time:   models.Timestamp(time.Now()),
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - upstream circuit status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}

	if h.upstreams != nil {
		for _, u := range h.upstreams.Health() {
			us := models.UpstreamStatus{
				Name:      u.Name,
				Status:    models.HealthStatusOK,
				LastError: u.LastError,
			}
			if !u.IsHealthy() {
				us.Status = models.HealthStatusDegraded
				status.Status = models.HealthStatusDegraded
			}
			if u.LastSuccessAt != nil {
				ts := models.Timestamp(*u.LastSuccessAt)
				us.LastSuccessAt = &ts
			}
			if u.LastFailureAt != nil {
				ts := models.Timestamp(*u.LastFailureAt)
				us.LastFailureAt = &ts
			}
			status.Upstreams = append(status.Upstreams, us)
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}

// QueryLog handles GET /v1/ops/queries - list recent resolved queries.
func (h *OpsHandler) QueryLog(w http.ResponseWriter, r *http.Request) {
	if h.queryLog == nil {
		response.JSON(w, r, http.StatusOK, models.QueryLogResponse{Items: []models.QueryLogItem{}})
		return
	}

	entries, err := h.queryLog.Recent(r.Context(), queryLogLimit)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list query log")
		response.InternalError(w, r, "failed to list query log")
		return
	}

	resp := models.QueryLogResponse{Items: make([]models.QueryLogItem, 0, len(entries))}
	for _, e := range entries {
		resp.Items = append(resp.Items, models.QueryLogItem{
			Network:      e.Network,
			Parameter:    e.Parameter,
			Period:       e.Period,
			StationID:    e.StationID,
			StationName:  e.StationName,
			ReadingCount: e.ReadingCount,
			BucketCount:  e.BucketCount,
			Granularity:  e.Granularity,
			DurationMs:   e.Duration.Milliseconds(),
			CreatedAt:    models.Timestamp(e.CreatedAt),
		})
	}

	response.JSON(w, r, http.StatusOK, resp)
}
