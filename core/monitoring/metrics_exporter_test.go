package monitoring

import (
	"strings"
	"testing"

	"mlpipe/core/models"

	"github.com/stretchr/testify/assert"
)

func TestGetPrometheusMetrics(t *testing.T) {
	inv := &models.Inventory{
		Endpoints: []models.Endpoint{
			{Name: "iris-endpoint", Status: models.EndpointStatusInService},
			{Name: "iris-canary", Status: models.EndpointStatusInService},
			{Name: "iris-broken", Status: models.EndpointStatusFailed},
		},
		Models: []models.Model{{Name: "iris-model-1"}},
		TrainingJobs: []models.TrainingJob{
			{Name: "iris-training-1", Status: models.JobStatusCompleted},
		},
		MonthlyCostUSD: 73,
	}

	out := NewMetricsExporter().GetPrometheusMetrics(inv)

	assert.Contains(t, out, `mlpipe_endpoints{status="Failed"} 1`)
	assert.Contains(t, out, `mlpipe_endpoints{status="InService"} 2`)
	assert.Contains(t, out, "mlpipe_models 1\n")
	assert.Contains(t, out, `mlpipe_training_jobs{status="Completed"} 1`)
	assert.Contains(t, out, "mlpipe_endpoint_monthly_cost_usd 73.0000\n")

	// label values are emitted in a stable order
	assert.Less(t, strings.Index(out, `status="Failed"`), strings.Index(out, `status="InService"`))
}

func TestGetPrometheusMetrics_Empty(t *testing.T) {
	out := NewMetricsExporter().GetPrometheusMetrics(&models.Inventory{})

	assert.Contains(t, out, "mlpipe_models 0\n")
	assert.NotContains(t, out, "mlpipe_endpoints{")
}
