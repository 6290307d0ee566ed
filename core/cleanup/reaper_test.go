package cleanup

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"mlpipe/core/models"
	"mlpipe/core/monitoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fakePlatform struct {
	endpoints []models.Endpoint
	models    []models.Model
	jobs      []models.TrainingJob

	failDelete map[string]error
	deleted    []string
}

func (f *fakePlatform) ListEndpoints(context.Context) ([]models.Endpoint, error) {
	return f.endpoints, nil
}

func (f *fakePlatform) DescribeEndpoint(_ context.Context, name string) (*models.Endpoint, error) {
	for _, ep := range f.endpoints {
		if ep.Name == name {
			ep.ConfigName = name + "-config"
			return &ep, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", models.ErrEndpointNotFound, name)
}

func (f *fakePlatform) DeleteEndpoint(_ context.Context, name string) error {
	if err := f.failDelete[name]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, "endpoint:"+name)
	return nil
}

func (f *fakePlatform) DeleteEndpointConfig(_ context.Context, name string) error {
	if err := f.failDelete[name]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, "config:"+name)
	return nil
}

func (f *fakePlatform) ListModels(context.Context) ([]models.Model, error) {
	return f.models, nil
}

func (f *fakePlatform) DeleteModel(_ context.Context, name string) error {
	if err := f.failDelete[name]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, "model:"+name)
	return nil
}

func (f *fakePlatform) ListTrainingJobs(context.Context, string, int) ([]models.TrainingJob, error) {
	return f.jobs, nil
}

func platform() *fakePlatform {
	return &fakePlatform{
		endpoints: []models.Endpoint{
			{Name: "iris-endpoint", Status: models.EndpointStatusInService},
			{Name: "billing-endpoint", Status: models.EndpointStatusInService},
			{Name: "IRIS-canary", Status: models.EndpointStatusFailed},
		},
		models: []models.Model{
			{Name: "iris-model-new", CreatedAt: now.Add(-24 * time.Hour)},
			{Name: "iris-model-old", CreatedAt: now.Add(-30 * 24 * time.Hour)},
			{Name: "fraud-model-old", CreatedAt: now.Add(-30 * 24 * time.Hour)},
		},
		jobs: []models.TrainingJob{
			{Name: "iris-training-1", Status: models.JobStatusCompleted},
			{Name: "fraud-training-1", Status: models.JobStatusCompleted},
		},
		failDelete: map[string]error{},
	}
}

func newTestReaper(client PlatformClient, dryRun bool) *Reaper {
	r := NewReaper(client, monitoring.NewCostTracker(nil, 0.05), nil, Options{
		Filter:       "iris",
		DryRun:       dryRun,
		ModelMaxAge:  7 * 24 * time.Hour,
		InstanceType: "ml.t2.medium",
	})
	r.now = func() time.Time { return now }
	return r
}

func TestSweepEndpoints_FiltersCaseInsensitively(t *testing.T) {
	p := platform()
	r := newTestReaper(p, false)

	report, err := r.SweepEndpoints(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Count(ActionDeleted))
	assert.Equal(t, []string{
		"endpoint:IRIS-canary", "config:IRIS-canary-config",
		"endpoint:iris-endpoint", "config:iris-endpoint-config",
	}, p.deleted)
	assert.NoError(t, report.Err())
}

func TestSweepEndpoints_DryRunDeletesNothing(t *testing.T) {
	p := platform()
	r := newTestReaper(p, true)

	first, err := r.SweepEndpoints(context.Background())
	require.NoError(t, err)
	assert.Empty(t, p.deleted)
	assert.Equal(t, 2, first.Count(ActionWouldDelete))

	second, err := r.SweepEndpoints(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSweepEndpoints_FailuresAreIsolated(t *testing.T) {
	p := platform()
	p.failDelete["IRIS-canary"] = errors.New("ThrottlingException")
	r := newTestReaper(p, false)

	report, err := r.SweepEndpoints(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count(ActionFailed))
	assert.Equal(t, 1, report.Count(ActionDeleted))
	assert.Contains(t, p.deleted, "endpoint:iris-endpoint")
	assert.Error(t, report.Err())
}

func TestDeleteEndpoint_NotFound(t *testing.T) {
	r := newTestReaper(platform(), false)

	res := r.DeleteEndpoint(context.Background(), "gone")
	assert.Equal(t, ActionNotFound, res.Action)
	assert.Empty(t, res.Error)
}

func TestDeleteEndpoint_ConfigFailureStillReportsDeleted(t *testing.T) {
	client := platform()
	client.failDelete["iris-endpoint-config"] = errors.New("throttled")
	r := newTestReaper(client, false)

	res := r.DeleteEndpoint(context.Background(), "iris-endpoint")
	assert.Equal(t, ActionDeleted, res.Action)
	assert.Contains(t, res.Error, "iris-endpoint-config")
	assert.Contains(t, client.deleted, "endpoint:iris-endpoint")
	assert.NotContains(t, client.deleted, "config:iris-endpoint-config")

	report := &SweepReport{Results: []ResourceResult{res}}
	assert.NoError(t, report.Err())
	assert.Equal(t, 1, report.Count(ActionDeleted))
}

func TestSweepModels_AgeAndFilter(t *testing.T) {
	p := platform()
	r := newTestReaper(p, false)

	report, err := r.SweepModels(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, "iris-model-old", report.Results[0].Name)
	assert.Equal(t, []string{"model:iris-model-old"}, p.deleted)
}

func TestSweepModels_DryRun(t *testing.T) {
	p := platform()
	r := newTestReaper(p, true)

	report, err := r.SweepModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count(ActionWouldDelete))
	assert.Empty(t, p.deleted)
}

func TestInventory(t *testing.T) {
	r := newTestReaper(platform(), true)

	inv, err := r.Inventory(context.Background())
	require.NoError(t, err)
	assert.Len(t, inv.Endpoints, 2)
	assert.Len(t, inv.Models, 2)
	assert.Len(t, inv.TrainingJobs, 1)
	assert.InDelta(t, 2*0.05*730, inv.MonthlyCostUSD, 1e-9)
}
