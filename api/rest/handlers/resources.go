package handlers

import (
	"context"
	"errors"
	"net/http"

	"mlpipe/core/models"
	"mlpipe/core/monitoring"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// InventorySource lists the resources matching the naming convention
type InventorySource interface {
	Inventory(ctx context.Context) (*models.Inventory, error)
}

// EndpointReader reads a single endpoint from the platform
type EndpointReader interface {
	DescribeEndpoint(ctx context.Context, name string) (*models.Endpoint, error)
}

// ResourceHandler handles endpoint, inventory and metrics requests
type ResourceHandler struct {
	inventory InventorySource
	endpoints EndpointReader
	exporter  *monitoring.MetricsExporter
}

// NewResourceHandler creates a new resource handler
func NewResourceHandler(inventory InventorySource, endpoints EndpointReader, exporter *monitoring.MetricsExporter) *ResourceHandler {
	return &ResourceHandler{
		inventory: inventory,
		endpoints: endpoints,
		exporter:  exporter,
	}
}

// GetEndpoint handles GET /v1/endpoints/{name}
func (h *ResourceHandler) GetEndpoint(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	ep, err := h.endpoints.DescribeEndpoint(r.Context(), name)
	if err != nil {
		if errors.Is(err, models.ErrEndpointNotFound) {
			http.Error(w, "Endpoint not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to describe endpoint: "+err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, ep)
}

// GetResources handles GET /v1/resources
func (h *ResourceHandler) GetResources(w http.ResponseWriter, r *http.Request) {
	inv, err := h.inventory.Inventory(r.Context())
	if err != nil {
		log.WithError(err).Error("Failed to build inventory")
		http.Error(w, "Failed to list resources: "+err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, inv)
}

// GetMetrics handles GET /metrics
func (h *ResourceHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	inv, err := h.inventory.Inventory(r.Context())
	if err != nil {
		http.Error(w, "Failed to list resources: "+err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(h.exporter.GetPrometheusMetrics(inv)))
}
