package training

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"mlpipe/core/models"
	"mlpipe/core/naming"
	"mlpipe/training/frameworks"

	log "github.com/sirupsen/logrus"
)

// AccuracyMetricRegex extracts the accuracy the training script prints to its log
const AccuracyMetricRegex = `accuracy: ([0-9.]+)`

const (
	defaultVolumeSizeGB = 30
	defaultMaxRuntime   = 24 * time.Hour
)

// JobCreator starts training jobs on the platform
type JobCreator interface {
	CreateTrainingJob(ctx context.Context, req models.TrainingJobRequest) error
}

// SourceUploader packs and uploads a local code directory, returning its URI
type SourceUploader interface {
	Upload(ctx context.Context, dir string, dest models.S3Location) (string, error)
}

// Submitter builds and starts training jobs without waiting for them
type Submitter struct {
	client  JobCreator
	sources SourceUploader
	names   *naming.Generator
	region  string
}

// NewSubmitter creates a new submitter. sources may be nil when jobs never carry a source dir.
func NewSubmitter(client JobCreator, sources SourceUploader, region string) *Submitter {
	return &Submitter{
		client:  client,
		sources: sources,
		names:   naming.NewGenerator(),
		region:  region,
	}
}

// WithNames replaces the name generator
func (s *Submitter) WithNames(g *naming.Generator) *Submitter {
	s.names = g
	return s
}

// Submit starts a job and returns its generated unique name
func (s *Submitter) Submit(ctx context.Context, spec models.TrainingJobSpec) (string, error) {
	if err := validateSpec(spec); err != nil {
		return "", err
	}

	name := s.names.Unique(spec.NamePrefix)
	logger := log.WithField("job", name)

	submitDir := ""
	if spec.SourceDir != "" {
		if s.sources == nil {
			return "", errors.New("source dir given but no source uploader configured")
		}
		codeLoc, err := models.ParseS3URI(spec.CodeLocation)
		if err != nil {
			return "", fmt.Errorf("code location: %w", err)
		}
		submitDir, err = s.sources.Upload(ctx, spec.SourceDir, codeLoc.Join(name, "source"))
		if err != nil {
			return "", fmt.Errorf("failed to upload source for %s: %w", name, err)
		}
	}

	setup := frameworks.NewSKLearnSetup(s.region, spec.FrameworkVersion, spec.PythonVersion)
	image, err := setup.ImageURI()
	if err != nil {
		return "", err
	}
	hyperparameters, err := setup.TrainingHyperparameters(spec.Hyperparameters, path.Base(spec.EntryPoint), submitDir)
	if err != nil {
		return "", err
	}

	req := models.TrainingJobRequest{
		Name:              name,
		Image:             image,
		RoleARN:           spec.RoleARN,
		Hyperparameters:   hyperparameters,
		OutputPath:        spec.OutputPath,
		InstanceType:      spec.InstanceType,
		InstanceCount:     max(spec.InstanceCount, 1),
		VolumeSizeGB:      spec.VolumeSizeGB,
		MaxRuntime:        spec.MaxRuntime,
		MetricDefinitions: map[string]string{"accuracy": AccuracyMetricRegex},
	}
	if req.VolumeSizeGB <= 0 {
		req.VolumeSizeGB = defaultVolumeSizeGB
	}
	if req.MaxRuntime <= 0 {
		req.MaxRuntime = defaultMaxRuntime
	}

	logger.WithFields(log.Fields{
		"image":           image,
		"instance_type":   req.InstanceType,
		"instance_count":  req.InstanceCount,
		"hyperparameters": frameworks.SortedKeys(hyperparameters),
	}).Info("Starting training job")

	if err := s.client.CreateTrainingJob(ctx, req); err != nil {
		return "", fmt.Errorf("failed to start training job %s: %w", name, err)
	}
	return name, nil
}

func validateSpec(spec models.TrainingJobSpec) error {
	switch {
	case spec.NamePrefix == "":
		return errors.New("job name prefix is required")
	case spec.EntryPoint == "":
		return errors.New("entry point is required")
	case spec.RoleARN == "":
		return errors.New("role ARN is required")
	case spec.OutputPath == "":
		return errors.New("output path is required")
	case spec.InstanceType == "":
		return errors.New("instance type is required")
	}
	return nil
}
