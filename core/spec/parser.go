package spec

import (
	"fmt"
	"os"
	"time"

	"mlpipe/core/models"

	"gopkg.in/yaml.v3"
)

// JobSpec represents the YAML job specification
type JobSpec struct {
	Job JobSpecJob `yaml:"job"`
}

// JobSpecJob represents the job section of the spec
type JobSpecJob struct {
	NamePrefix      string                 `yaml:"name_prefix"`
	Framework       string                 `yaml:"framework"`
	Entrypoint      string                 `yaml:"entrypoint"`
	SourceDir       string                 `yaml:"source_dir"`
	RoleARN         string                 `yaml:"role_arn"`
	Resources       JobSpecResources       `yaml:"resources"`
	Data            JobSpecData            `yaml:"data"`
	Hyperparameters map[string]interface{} `yaml:"hyperparameters"`
}

// JobSpecResources represents compute requirements
type JobSpecResources struct {
	InstanceType     string `yaml:"instance_type"`
	InstanceCount    int    `yaml:"instance_count"`
	VolumeSizeGB     int    `yaml:"volume_size_gb"`
	MaxRuntime       string `yaml:"max_runtime"` // e.g. "2h"
	FrameworkVersion string `yaml:"framework_version"`
	PythonVersion    string `yaml:"python_version"`
}

// JobSpecData represents code and artifact locations
type JobSpecData struct {
	CodeLocation string `yaml:"code_location"`
	OutputPath   string `yaml:"output_path"`
}

// LoadJobSpec reads and parses a YAML job specification file
func LoadJobSpec(path string, defaults models.TrainingJobSpec) (*models.TrainingJobSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job spec: %w", err)
	}
	return ParseJobSpec(string(data), defaults)
}

// ParseJobSpec parses a YAML job specification. Fields left out of the YAML keep
// their value from defaults; hyperparameters are merged key by key.
func ParseJobSpec(specYAML string, defaults models.TrainingJobSpec) (*models.TrainingJobSpec, error) {
	var spec JobSpec
	if err := yaml.Unmarshal([]byte(specYAML), &spec); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	j := spec.Job

	if j.Framework != "" && j.Framework != "sklearn" {
		return nil, fmt.Errorf("unsupported framework %q", j.Framework)
	}

	out := defaults
	setString(&out.NamePrefix, j.NamePrefix)
	setString(&out.EntryPoint, j.Entrypoint)
	setString(&out.SourceDir, j.SourceDir)
	setString(&out.RoleARN, j.RoleARN)
	setString(&out.CodeLocation, j.Data.CodeLocation)
	setString(&out.OutputPath, j.Data.OutputPath)
	setString(&out.InstanceType, j.Resources.InstanceType)
	setString(&out.FrameworkVersion, j.Resources.FrameworkVersion)
	setString(&out.PythonVersion, j.Resources.PythonVersion)

	if j.Resources.InstanceCount > 0 {
		out.InstanceCount = j.Resources.InstanceCount
	}
	if j.Resources.VolumeSizeGB > 0 {
		out.VolumeSizeGB = j.Resources.VolumeSizeGB
	}

	// Parse max runtime
	if j.Resources.MaxRuntime != "" {
		d, err := time.ParseDuration(j.Resources.MaxRuntime)
		if err != nil {
			return nil, fmt.Errorf("invalid max_runtime: %w", err)
		}
		out.MaxRuntime = d
	}

	out.Hyperparameters = make(map[string]interface{}, len(defaults.Hyperparameters)+len(j.Hyperparameters))
	for k, v := range defaults.Hyperparameters {
		out.Hyperparameters[k] = v
	}
	for k, v := range j.Hyperparameters {
		out.Hyperparameters[k] = v
	}

	return &out, nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
