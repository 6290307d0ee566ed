package monitoring

import (
	"fmt"
	"sort"
	"strings"

	"mlpipe/core/models"
)

// MetricsExporter renders an inventory in the Prometheus text format
type MetricsExporter struct{}

// NewMetricsExporter creates a new metrics exporter
func NewMetricsExporter() *MetricsExporter {
	return &MetricsExporter{}
}

// GetPrometheusMetrics returns metrics in Prometheus format
func (me *MetricsExporter) GetPrometheusMetrics(inv *models.Inventory) string {
	var b strings.Builder

	endpointsByStatus := make(map[string]int)
	for _, ep := range inv.Endpoints {
		endpointsByStatus[string(ep.Status)]++
	}
	b.WriteString("# HELP mlpipe_endpoints Endpoints matching the naming filter, by status\n")
	b.WriteString("# TYPE mlpipe_endpoints gauge\n")
	for _, status := range sortedKeys(endpointsByStatus) {
		fmt.Fprintf(&b, "mlpipe_endpoints{status=%q} %d\n", status, endpointsByStatus[status])
	}

	b.WriteString("# HELP mlpipe_models Registered models matching the naming filter\n")
	b.WriteString("# TYPE mlpipe_models gauge\n")
	fmt.Fprintf(&b, "mlpipe_models %d\n", len(inv.Models))

	jobsByStatus := make(map[string]int)
	for _, job := range inv.TrainingJobs {
		jobsByStatus[string(job.Status)]++
	}
	b.WriteString("# HELP mlpipe_training_jobs Recent training jobs matching the naming filter, by status\n")
	b.WriteString("# TYPE mlpipe_training_jobs gauge\n")
	for _, status := range sortedKeys(jobsByStatus) {
		fmt.Fprintf(&b, "mlpipe_training_jobs{status=%q} %d\n", status, jobsByStatus[status])
	}

	b.WriteString("# HELP mlpipe_endpoint_monthly_cost_usd Estimated monthly cost of running endpoints\n")
	b.WriteString("# TYPE mlpipe_endpoint_monthly_cost_usd gauge\n")
	fmt.Fprintf(&b, "mlpipe_endpoint_monthly_cost_usd %.4f\n", inv.MonthlyCostUSD)

	return b.String()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
