package models

import "time"

// ResourceType identifies which kind of platform resource an event concerns
type ResourceType string

const (
	ResourceTrainingJob ResourceType = "training_job"
	ResourceEndpoint    ResourceType = "endpoint"
	ResourceModel       ResourceType = "model"
)

// PipelineEvent is one observation recorded in the run history
type PipelineEvent struct {
	ID           int64                  `json:"id"`
	ResourceType ResourceType           `json:"resource_type"`
	ResourceName string                 `json:"resource_name"`
	Status       string                 `json:"status"`
	Reason       string                 `json:"reason,omitempty"`
	At           time.Time              `json:"at"`
	MetaJSON     map[string]interface{} `json:"meta,omitempty"` // Additional metadata
}
