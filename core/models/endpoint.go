package models

import (
	"strings"
	"time"
)

// Endpoint represents a hosted prediction service
type Endpoint struct {
	Name          string         `json:"name"`
	Status        EndpointStatus `json:"status"`
	ConfigName    string         `json:"config_name,omitempty"`
	FailureReason string         `json:"failure_reason,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// EndpointStatus represents the platform status of an endpoint
type EndpointStatus string

const (
	EndpointStatusCreating       EndpointStatus = "Creating"
	EndpointStatusUpdating       EndpointStatus = "Updating"
	EndpointStatusSystemUpdating EndpointStatus = "SystemUpdating"
	EndpointStatusRollingBack    EndpointStatus = "RollingBack"
	EndpointStatusInService      EndpointStatus = "InService"
	EndpointStatusDeleting       EndpointStatus = "Deleting"
	EndpointStatusFailed         EndpointStatus = "Failed"
	EndpointStatusOutOfService   EndpointStatus = "OutOfService"
	EndpointStatusUnknown        EndpointStatus = "Unknown"
)

var endpointStatuses = []EndpointStatus{
	EndpointStatusCreating,
	EndpointStatusUpdating,
	EndpointStatusSystemUpdating,
	EndpointStatusRollingBack,
	EndpointStatusInService,
	EndpointStatusDeleting,
	EndpointStatusFailed,
	EndpointStatusOutOfService,
}

// ParseEndpointStatus maps a platform status string onto the closed EndpointStatus set
func ParseEndpointStatus(s string) EndpointStatus {
	for _, status := range endpointStatuses {
		if strings.EqualFold(string(status), strings.TrimSpace(s)) {
			return status
		}
	}
	return EndpointStatusUnknown
}

// Model represents a registered, deployable artifact bundle
type Model struct {
	Name      string    `json:"name"`
	Arn       string    `json:"arn"`
	CreatedAt time.Time `json:"created_at"`
}

// Age returns how long ago the model was registered relative to now
func (m Model) Age(now time.Time) time.Duration {
	return now.Sub(m.CreatedAt)
}

// DeploymentSpec describes an endpoint create-or-update request
type DeploymentSpec struct {
	ModelData        string // s3:// URI of model.tar.gz
	RoleARN          string
	EndpointName     string
	InstanceType     string
	InstanceCount    int
	AllowUpdate      bool
	SourceDir        string // local inference code directory; optional
	CodeLocation     string // s3:// prefix for the inference source bundle
	EntryPoint       string // e.g. "inference.py"
	FrameworkVersion string
	PythonVersion    string
}
