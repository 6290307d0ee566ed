package routes

import (
	"net/http"

	"mlpipe/api/rest/handlers"
	"mlpipe/core/monitoring"
	"mlpipe/core/repository"

	"github.com/gorilla/mux"
)

// Platform is everything the status API reads from the managed platform
type Platform interface {
	handlers.JobReader
	handlers.EndpointReader
}

// SetupRoutes configures all API routes
func SetupRoutes(r *mux.Router, platform Platform, inventory handlers.InventorySource, events repository.EventStore, filter string) {
	jobHandler := handlers.NewJobHandler(platform, events, filter)
	resourceHandler := handlers.NewResourceHandler(inventory, platform, monitoring.NewMetricsExporter())

	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	r.HandleFunc("/metrics", resourceHandler.GetMetrics).Methods("GET")

	api := r.PathPrefix("/v1").Subrouter()

	// Job endpoints
	api.HandleFunc("/jobs", jobHandler.ListJobs).Methods("GET")
	api.HandleFunc("/jobs/{name}", jobHandler.GetJob).Methods("GET")
	api.HandleFunc("/jobs/{name}/events", jobHandler.GetJobEvents).Methods("GET")

	// Endpoint and inventory endpoints
	api.HandleFunc("/endpoints/{name}", resourceHandler.GetEndpoint).Methods("GET")
	api.HandleFunc("/resources", resourceHandler.GetResources).Methods("GET")
}
