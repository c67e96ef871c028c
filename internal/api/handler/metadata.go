package handler

import (
	"net/http"

	"github.com/obsgrid/obsgrid/internal/api/models"
	"github.com/obsgrid/obsgrid/internal/api/response"
	"github.com/obsgrid/obsgrid/internal/observation"
)

// MetadataHandler handles static metadata endpoints.
type MetadataHandler struct {
	registry *observation.Registry
}

// NewMetadataHandler creates a new MetadataHandler.
func NewMetadataHandler(registry *observation.Registry) *MetadataHandler {
	return &MetadataHandler{registry: registry}
}

// GetParameters handles GET /v1/metadata/parameters - list the logical
// parameters known per network.
func (h *MetadataHandler) GetParameters(w http.ResponseWriter, r *http.Request) {
	networks := []observation.Network{
		observation.NetworkMeteorological,
		observation.NetworkHydrological,
	}

	resp := models.ParametersResponse{}
	for _, network := range networks {
		listing := models.ParameterListing{Network: string(network)}
		for _, name := range h.registry.Names(network) {
			spec, _ := h.registry.Lookup(network, name)
			listing.Parameters = append(listing.Parameters, models.ParameterSummary{
				Name: name,
				Unit: spec.Unit,
			})
		}
		resp.Networks = append(resp.Networks, listing)
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	response.JSON(w, r, http.StatusOK, resp)
}
