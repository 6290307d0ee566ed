package models

import (
	"strings"
	"time"
)

// TrainingJob represents a remote asynchronous training run as observed on the platform
type TrainingJob struct {
	Name            string    `json:"name"`
	Status          JobStatus `json:"status"`
	SecondaryStatus string    `json:"secondary_status,omitempty"`
	ArtifactPath    string    `json:"model_artifacts,omitempty"` // s3:// URI of model.tar.gz, set once Completed
	FailureReason   string    `json:"failure_reason,omitempty"`  // empty if the platform did not supply one
	CreatedAt       time.Time `json:"created_at"`
}

// JobStatus represents the platform status of a training job
type JobStatus string

const (
	JobStatusPending    JobStatus = "Pending"
	JobStatusInProgress JobStatus = "InProgress"
	JobStatusStopping   JobStatus = "Stopping"
	JobStatusCompleted  JobStatus = "Completed"
	JobStatusFailed     JobStatus = "Failed"
	JobStatusStopped    JobStatus = "Stopped"
	JobStatusUnknown    JobStatus = "Unknown"
)

// ParseJobStatus maps a platform status string onto the closed JobStatus set.
// Anything unrecognized becomes JobStatusUnknown.
func ParseJobStatus(s string) JobStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return JobStatusPending
	case "inprogress":
		return JobStatusInProgress
	case "stopping":
		return JobStatusStopping
	case "completed":
		return JobStatusCompleted
	case "failed":
		return JobStatusFailed
	case "stopped":
		return JobStatusStopped
	default:
		return JobStatusUnknown
	}
}

// IsTerminal reports whether the job can no longer change state
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusStopped
}

// TrainingJobSpec describes a training job to submit
type TrainingJobSpec struct {
	NamePrefix       string
	EntryPoint       string // e.g. "train.py"
	SourceDir        string // local directory bundled as sourcedir.tar.gz; optional
	CodeLocation     string // s3:// prefix for the source bundle
	OutputPath       string // s3:// prefix for model artifacts
	RoleARN          string
	InstanceType     string
	InstanceCount    int
	VolumeSizeGB     int
	MaxRuntime       time.Duration
	FrameworkVersion string
	PythonVersion    string
	Hyperparameters  map[string]interface{} // numeric or string values
}

// TrainingJobRequest is a fully resolved CreateTrainingJob call
type TrainingJobRequest struct {
	Name              string
	Image             string
	RoleARN           string
	Hyperparameters   map[string]string // already encoded for the container
	OutputPath        string
	InstanceType      string
	InstanceCount     int
	VolumeSizeGB      int
	MaxRuntime        time.Duration
	MetricDefinitions map[string]string // metric name -> log regex
	Environment       map[string]string
}

// ModelRequest is a fully resolved CreateModel call
type ModelRequest struct {
	Name        string
	Image       string
	ModelData   string
	RoleARN     string
	Environment map[string]string
}

// EndpointConfigRequest is a fully resolved CreateEndpointConfig call
type EndpointConfigRequest struct {
	Name          string
	ModelName     string
	InstanceType  string
	InstanceCount int
}
