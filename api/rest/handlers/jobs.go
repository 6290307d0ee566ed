package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"mlpipe/core/models"
	"mlpipe/core/repository"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const defaultListLimit = 10

// JobReader reads training jobs from the platform
type JobReader interface {
	DescribeTrainingJob(ctx context.Context, name string) (*models.TrainingJob, error)
	ListTrainingJobs(ctx context.Context, nameContains string, limit int) ([]models.TrainingJob, error)
}

// JobHandler handles job-related HTTP requests
type JobHandler struct {
	jobs   JobReader
	events repository.EventStore
	filter string
}

// NewJobHandler creates a new job handler. filter is the default name_contains.
func NewJobHandler(jobs JobReader, events repository.EventStore, filter string) *JobHandler {
	return &JobHandler{
		jobs:   jobs,
		events: events,
		filter: filter,
	}
}

// ListJobs handles GET /v1/jobs
func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	nameContains := h.filter
	if q, ok := r.URL.Query()["name_contains"]; ok {
		nameContains = q[0]
	}

	limit, err := parseLimit(r, defaultListLimit)
	if err != nil {
		http.Error(w, "Invalid limit", http.StatusBadRequest)
		return
	}

	jobs, err := h.jobs.ListTrainingJobs(r.Context(), nameContains, limit)
	if err != nil {
		log.WithError(err).Error("Failed to list training jobs")
		http.Error(w, "Failed to list jobs: "+err.Error(), http.StatusBadGateway)
		return
	}
	if jobs == nil {
		jobs = []models.TrainingJob{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// GetJob handles GET /v1/jobs/{name}
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	job, err := h.jobs.DescribeTrainingJob(r.Context(), name)
	if err != nil {
		if errors.Is(err, models.ErrJobNotFound) {
			http.Error(w, "Job not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to describe job: "+err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, job)
}

// GetJobEvents handles GET /v1/jobs/{name}/events
func (h *JobHandler) GetJobEvents(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	limit, err := parseLimit(r, 100)
	if err != nil {
		http.Error(w, "Invalid limit", http.StatusBadRequest)
		return
	}

	events, err := h.events.ListEvents(r.Context(), models.ResourceTrainingJob, name, limit)
	if err != nil {
		http.Error(w, "Failed to fetch events: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []models.PipelineEvent{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"job":    name,
		"events": events,
	})
}

func parseLimit(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > 100 {
		return 0, errors.New("limit must be between 1 and 100")
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("Failed to write response")
	}
}
