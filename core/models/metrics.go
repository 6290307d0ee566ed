package models

import "time"

// Metrics is the evaluation document produced by a completed training job
type Metrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1Score   float64 `json:"f1_score"`
	Note      string  `json:"note,omitempty"`
}

// SentinelMetrics is the placeholder used when no metrics document could be located
func SentinelMetrics(note string) *Metrics {
	return &Metrics{Accuracy: 0.0, Note: note}
}

// IsSentinel reports whether m is a placeholder rather than a real document
func (m *Metrics) IsSentinel() bool {
	return m != nil && m.Note != "" && m.Accuracy == 0 && m.Precision == 0 && m.Recall == 0 && m.F1Score == 0
}

// TrainingJobInfo is the hand-off record written at the end of a training run.
// Metrics is non-nil only when Status is Completed.
type TrainingJobInfo struct {
	JobName        string    `json:"job_name"`
	ModelArtifacts string    `json:"model_artifacts"`
	Metrics        *Metrics  `json:"metrics"`
	Status         JobStatus `json:"status,omitempty"`
	FailureReason  string    `json:"failure_reason,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// EndpointInfo is the hand-off record written after a successful deployment
type EndpointInfo struct {
	EndpointName string    `json:"endpoint_name"`
	InstanceType string    `json:"instance_type"`
	Timestamp    time.Time `json:"timestamp"`
}
