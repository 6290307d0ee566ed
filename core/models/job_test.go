package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseJobStatus(t *testing.T) {
	assert.Equal(t, JobStatusCompleted, ParseJobStatus("Completed"))
	assert.Equal(t, JobStatusInProgress, ParseJobStatus("InProgress"))
	assert.Equal(t, JobStatusStopped, ParseJobStatus(" stopped "))
	assert.Equal(t, JobStatusUnknown, ParseJobStatus("Exploding"))
	assert.Equal(t, JobStatusUnknown, ParseJobStatus(""))
}

func TestJobStatus_IsTerminal(t *testing.T) {
	for _, s := range []JobStatus{JobStatusCompleted, JobStatusFailed, JobStatusStopped} {
		assert.True(t, s.IsTerminal(), s)
	}
	for _, s := range []JobStatus{JobStatusPending, JobStatusInProgress, JobStatusStopping, JobStatusUnknown} {
		assert.False(t, s.IsTerminal(), s)
	}
}

func TestParseEndpointStatus(t *testing.T) {
	assert.Equal(t, EndpointStatusInService, ParseEndpointStatus("InService"))
	assert.Equal(t, EndpointStatusOutOfService, ParseEndpointStatus("outofservice"))
	assert.Equal(t, EndpointStatusUnknown, ParseEndpointStatus("Melting"))
}

func TestSentinelMetrics(t *testing.T) {
	m := SentinelMetrics("metrics not found")
	assert.Equal(t, 0.0, m.Accuracy)
	assert.True(t, m.IsSentinel())

	real := &Metrics{Accuracy: 0.93, Precision: 0.94, Recall: 0.93, F1Score: 0.93}
	assert.False(t, real.IsSentinel())

	var missing *Metrics
	assert.False(t, missing.IsSentinel())
}
