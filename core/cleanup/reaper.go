package cleanup

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"mlpipe/core/models"
	"mlpipe/core/monitoring"

	log "github.com/sirupsen/logrus"
)

// Action is what happened to one candidate resource
type Action string

const (
	ActionDeleted     Action = "deleted"
	ActionWouldDelete Action = "would_delete"
	ActionNotFound    Action = "not_found"
	ActionFailed      Action = "failed"
)

// recentJobsLimit caps the training job listing in the inventory
const recentJobsLimit = 10

// PlatformClient is the slice of the platform API the reaper uses
type PlatformClient interface {
	ListEndpoints(ctx context.Context) ([]models.Endpoint, error)
	DescribeEndpoint(ctx context.Context, name string) (*models.Endpoint, error)
	DeleteEndpoint(ctx context.Context, name string) error
	DeleteEndpointConfig(ctx context.Context, name string) error
	ListModels(ctx context.Context) ([]models.Model, error)
	DeleteModel(ctx context.Context, name string) error
	ListTrainingJobs(ctx context.Context, nameContains string, limit int) ([]models.TrainingJob, error)
}

// Options configures a reaper
type Options struct {
	// Filter is matched case-insensitively as a substring of resource names; empty matches all
	Filter string
	DryRun bool
	// ModelMaxAge is the age after which a matching model is a sweep candidate
	ModelMaxAge time.Duration
	// InstanceType prices the savings estimate
	InstanceType string
}

// ResourceResult is the outcome for one resource
type ResourceResult struct {
	Kind       models.ResourceType `json:"kind"`
	Name       string              `json:"name"`
	ConfigName string              `json:"config_name,omitempty"`
	Status     string              `json:"status,omitempty"`
	Age        time.Duration       `json:"age,omitempty"`
	Action     Action              `json:"action"`
	Error      string              `json:"error,omitempty"`
}

// SweepReport collects per-resource outcomes
type SweepReport struct {
	DryRun  bool             `json:"dry_run"`
	Results []ResourceResult `json:"results"`
}

// Count returns how many results took the given action
func (r *SweepReport) Count(a Action) int {
	n := 0
	for _, res := range r.Results {
		if res.Action == a {
			n++
		}
	}
	return n
}

// Err reports per-resource failures as one error
func (r *SweepReport) Err() error {
	if failed := r.Count(ActionFailed); failed > 0 {
		return fmt.Errorf("%d resource(s) could not be deleted", failed)
	}
	return nil
}

// Reaper deletes stale endpoints and models by naming convention and age
type Reaper struct {
	client   PlatformClient
	costs    *monitoring.CostTracker
	recorder monitoring.EventRecorder
	opts     Options
	now      func() time.Time
}

// NewReaper creates a new reaper. costs and recorder may be nil.
func NewReaper(client PlatformClient, costs *monitoring.CostTracker, recorder monitoring.EventRecorder, opts Options) *Reaper {
	if opts.ModelMaxAge <= 0 {
		opts.ModelMaxAge = 7 * 24 * time.Hour
	}
	if costs == nil {
		costs = monitoring.NewCostTracker(nil, 0.05)
	}
	return &Reaper{
		client:   client,
		costs:    costs,
		recorder: recorder,
		opts:     opts,
		now:      time.Now,
	}
}

// Matches reports whether name passes the naming filter
func (r *Reaper) Matches(name string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(r.opts.Filter))
}

// DeleteEndpoint deletes one endpoint and its configuration, or reports it in dry-run mode
func (r *Reaper) DeleteEndpoint(ctx context.Context, name string) ResourceResult {
	res := ResourceResult{Kind: models.ResourceEndpoint, Name: name}
	logger := log.WithField("endpoint", name)

	ep, err := r.client.DescribeEndpoint(ctx, name)
	if err != nil {
		if errors.Is(err, models.ErrEndpointNotFound) {
			logger.Info("Endpoint not found")
			res.Action = ActionNotFound
			return res
		}
		return r.failed(res, err)
	}
	res.ConfigName = ep.ConfigName
	res.Status = string(ep.Status)
	res.Age = r.now().Sub(ep.CreatedAt)

	if r.opts.DryRun {
		logger.WithField("config", ep.ConfigName).Info("[DRY RUN] Would delete endpoint and its config")
		res.Action = ActionWouldDelete
		return res
	}

	logger.Info("Deleting endpoint")
	if err := r.client.DeleteEndpoint(ctx, name); err != nil {
		if errors.Is(err, models.ErrEndpointNotFound) {
			res.Action = ActionNotFound
			return res
		}
		return r.failed(res, err)
	}

	if ep.ConfigName != "" {
		logger.WithField("config", ep.ConfigName).Info("Deleting endpoint config")
		// the endpoint is already gone; a leftover config is reported, not failed
		if err := r.client.DeleteEndpointConfig(ctx, ep.ConfigName); err != nil {
			logger.WithError(err).WithField("config", ep.ConfigName).Warn("Endpoint deleted but its config was not")
			res.Error = fmt.Sprintf("endpoint config %s: %v", ep.ConfigName, err)
		}
	}

	res.Action = ActionDeleted
	r.record(ctx, res)
	return res
}

// SweepEndpoints deletes every endpoint matching the filter. Listing errors are
// fatal; per-endpoint errors are captured in the report.
func (r *Reaper) SweepEndpoints(ctx context.Context) (*SweepReport, error) {
	endpoints, err := r.client.ListEndpoints(ctx)
	if err != nil {
		return nil, err
	}

	var candidates []string
	for _, ep := range endpoints {
		if r.Matches(ep.Name) {
			candidates = append(candidates, ep.Name)
		}
	}
	sort.Strings(candidates)

	log.WithFields(log.Fields{
		"filter":  r.opts.Filter,
		"matched": len(candidates),
		"dry_run": r.opts.DryRun,
	}).Info("Sweeping endpoints")

	report := &SweepReport{DryRun: r.opts.DryRun}
	for _, name := range candidates {
		report.Results = append(report.Results, r.DeleteEndpoint(ctx, name))
	}
	return report, nil
}

// SweepModels deletes matching models older than ModelMaxAge
func (r *Reaper) SweepModels(ctx context.Context) (*SweepReport, error) {
	all, err := r.client.ListModels(ctx)
	if err != nil {
		return nil, err
	}

	now := r.now()
	cutoff := now.Add(-r.opts.ModelMaxAge)

	var candidates []models.Model
	for _, m := range all {
		if r.Matches(m.Name) && m.CreatedAt.Before(cutoff) {
			candidates = append(candidates, m)
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Name < candidates[j].Name })

	log.WithFields(log.Fields{
		"filter":  r.opts.Filter,
		"max_age": r.opts.ModelMaxAge,
		"matched": len(candidates),
		"dry_run": r.opts.DryRun,
	}).Info("Sweeping models")

	report := &SweepReport{DryRun: r.opts.DryRun}
	for _, m := range candidates {
		res := ResourceResult{Kind: models.ResourceModel, Name: m.Name, Age: m.Age(now)}
		logger := log.WithFields(log.Fields{"model": m.Name, "age_days": int(res.Age.Hours() / 24)})

		if r.opts.DryRun {
			logger.Info("[DRY RUN] Would delete model")
			res.Action = ActionWouldDelete
			report.Results = append(report.Results, res)
			continue
		}

		logger.Info("Deleting model")
		if err := r.client.DeleteModel(ctx, m.Name); err != nil {
			report.Results = append(report.Results, r.failed(res, err))
			continue
		}
		res.Action = ActionDeleted
		r.record(ctx, res)
		report.Results = append(report.Results, res)
	}
	return report, nil
}

// Inventory lists matching endpoints, models and recent training jobs, with the
// monthly cost of keeping the endpoints running.
func (r *Reaper) Inventory(ctx context.Context) (*models.Inventory, error) {
	endpoints, err := r.client.ListEndpoints(ctx)
	if err != nil {
		return nil, err
	}
	allModels, err := r.client.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	jobs, err := r.client.ListTrainingJobs(ctx, "", recentJobsLimit)
	if err != nil {
		return nil, err
	}

	inv := &models.Inventory{GeneratedAt: r.now().UTC()}
	for _, ep := range endpoints {
		if r.Matches(ep.Name) {
			inv.Endpoints = append(inv.Endpoints, ep)
		}
	}
	for _, m := range allModels {
		if r.Matches(m.Name) {
			inv.Models = append(inv.Models, m)
		}
	}
	for _, j := range jobs {
		if r.Matches(j.Name) {
			inv.TrainingJobs = append(inv.TrainingJobs, j)
		}
	}
	inv.MonthlyCostUSD = r.EstimateSavings(ctx, len(inv.Endpoints))

	return inv, nil
}

// EstimateSavings is the monthly cost of endpointCount endpoints of the configured instance type
func (r *Reaper) EstimateSavings(ctx context.Context, endpointCount int) float64 {
	return r.costs.MonthlyCost(ctx, r.opts.InstanceType, endpointCount)
}

func (r *Reaper) failed(res ResourceResult, err error) ResourceResult {
	log.WithError(err).WithFields(log.Fields{
		"kind": res.Kind,
		"name": res.Name,
	}).Error("Failed to delete resource")
	res.Action = ActionFailed
	res.Error = err.Error()
	return res
}

func (r *Reaper) record(ctx context.Context, res ResourceResult) {
	if r.recorder == nil {
		return
	}
	event := models.PipelineEvent{
		ResourceType: res.Kind,
		ResourceName: res.Name,
		Status:       "Deleted",
		At:           r.now().UTC(),
	}
	if res.ConfigName != "" {
		event.MetaJSON = map[string]interface{}{"config_name": res.ConfigName}
	}
	if err := r.recorder.Record(ctx, event); err != nil {
		log.WithError(err).WithField("name", res.Name).Warn("Failed to record deletion")
	}
}
