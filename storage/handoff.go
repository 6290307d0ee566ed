package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"mlpipe/core/models"
)

// Default hand-off file names, written to the working directory
const (
	TrainingJobInfoFile = "training_job_info.json"
	EndpointInfoFile    = "endpoint_info.json"
)

// WriteTrainingJobInfo overwrites path with the indented training record
func WriteTrainingJobInfo(path string, info *models.TrainingJobInfo) error {
	return writeJSON(path, info)
}

// ReadTrainingJobInfo loads a training record written by WriteTrainingJobInfo
func ReadTrainingJobInfo(path string) (*models.TrainingJobInfo, error) {
	var info models.TrainingJobInfo
	if err := readJSON(path, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// WriteEndpointInfo overwrites path with the indented endpoint record
func WriteEndpointInfo(path string, info *models.EndpointInfo) error {
	return writeJSON(path, info)
}

// ReadEndpointInfo loads an endpoint record written by WriteEndpointInfo
func ReadEndpointInfo(path string) (*models.EndpointInfo, error) {
	var info models.EndpointInfo
	if err := readJSON(path, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
