package deploy

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"mlpipe/core/models"
	"mlpipe/core/naming"
	"mlpipe/storage"
	"mlpipe/training/frameworks"

	log "github.com/sirupsen/logrus"
)

// ErrEndpointExists is returned when the endpoint exists and updating was not allowed
var ErrEndpointExists = errors.New("endpoint already exists; pass --update-endpoint to update it")

// EndpointFailedError reports an endpoint that settled in Failed
type EndpointFailedError struct {
	EndpointName string
	Reason       string
}

func (e *EndpointFailedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("endpoint %s failed", e.EndpointName)
	}
	return fmt.Sprintf("endpoint %s failed: %s", e.EndpointName, e.Reason)
}

// EndpointClient is the slice of the platform API the deployer drives
type EndpointClient interface {
	DescribeEndpoint(ctx context.Context, name string) (*models.Endpoint, error)
	CreateModel(ctx context.Context, req models.ModelRequest) error
	CreateEndpointConfig(ctx context.Context, req models.EndpointConfigRequest) error
	CreateEndpoint(ctx context.Context, name, configName string) error
	UpdateEndpoint(ctx context.Context, name, configName string) error
}

// EndpointWaiter blocks until an endpoint is InService or Failed
type EndpointWaiter interface {
	Wait(ctx context.Context, name string) (*models.Endpoint, error)
}

// SourceUploader packs and uploads inference code
type SourceUploader interface {
	Upload(ctx context.Context, dir string, dest models.S3Location) (string, error)
}

// Config holds naming and region settings for deployments
type Config struct {
	Region       string
	ModelPrefix  string
	ConfigPrefix string
}

// Deployer creates or updates hosted endpoints
type Deployer struct {
	client  EndpointClient
	waiter  EndpointWaiter
	sources SourceUploader
	names   *naming.Generator
	cfg     Config

	// InfoPath is where endpoint_info.json is written
	InfoPath string
	Now      func() time.Time
}

// NewDeployer creates a new deployer. sources may be nil when no inference source dir is used.
func NewDeployer(client EndpointClient, waiter EndpointWaiter, sources SourceUploader, cfg Config) *Deployer {
	if cfg.ModelPrefix == "" {
		cfg.ModelPrefix = "iris-model"
	}
	if cfg.ConfigPrefix == "" {
		cfg.ConfigPrefix = "iris-endpoint-config"
	}
	return &Deployer{
		client:   client,
		waiter:   waiter,
		sources:  sources,
		names:    naming.NewGenerator(),
		cfg:      cfg,
		InfoPath: storage.EndpointInfoFile,
		Now:      time.Now,
	}
}

// WithNames replaces the name generator
func (d *Deployer) WithNames(g *naming.Generator) *Deployer {
	d.names = g
	return d
}

// Deploy creates the endpoint, or updates it when it exists and spec.AllowUpdate is set.
// An existing endpoint without AllowUpdate yields ErrEndpointExists before anything is created.
func (d *Deployer) Deploy(ctx context.Context, spec models.DeploymentSpec) (*models.Endpoint, error) {
	if err := validateSpec(spec); err != nil {
		return nil, err
	}
	logger := log.WithField("endpoint", spec.EndpointName)

	exists, err := d.endpointExists(ctx, spec.EndpointName)
	if err != nil {
		return nil, err
	}
	if exists && !spec.AllowUpdate {
		return nil, fmt.Errorf("%w: %s", ErrEndpointExists, spec.EndpointName)
	}

	modelName := d.names.Unique(d.cfg.ModelPrefix)
	if err := d.createModel(ctx, modelName, spec); err != nil {
		return nil, err
	}

	configName := d.names.Unique(d.cfg.ConfigPrefix)
	if err := d.client.CreateEndpointConfig(ctx, models.EndpointConfigRequest{
		Name:          configName,
		ModelName:     modelName,
		InstanceType:  spec.InstanceType,
		InstanceCount: max(spec.InstanceCount, 1),
	}); err != nil {
		return nil, err
	}

	if exists {
		logger.WithField("config", configName).Info("Updating existing endpoint")
		err = d.client.UpdateEndpoint(ctx, spec.EndpointName, configName)
	} else {
		logger.WithField("config", configName).Info("Creating endpoint")
		err = d.client.CreateEndpoint(ctx, spec.EndpointName, configName)
	}
	if err != nil {
		return nil, err
	}

	ep, err := d.waiter.Wait(ctx, spec.EndpointName)
	if err != nil {
		return nil, fmt.Errorf("waiting for endpoint %s: %w", spec.EndpointName, err)
	}
	if ep.Status == models.EndpointStatusFailed {
		return ep, &EndpointFailedError{EndpointName: spec.EndpointName, Reason: ep.FailureReason}
	}

	logger.Info("Endpoint is InService")

	if err := storage.WriteEndpointInfo(d.InfoPath, &models.EndpointInfo{
		EndpointName: spec.EndpointName,
		InstanceType: spec.InstanceType,
		Timestamp:    d.Now().UTC(),
	}); err != nil {
		return ep, err
	}
	return ep, nil
}

func (d *Deployer) endpointExists(ctx context.Context, name string) (bool, error) {
	_, err := d.client.DescribeEndpoint(ctx, name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, models.ErrEndpointNotFound) {
		return false, nil
	}
	return false, err
}

func (d *Deployer) createModel(ctx context.Context, modelName string, spec models.DeploymentSpec) error {
	setup := frameworks.NewSKLearnSetup(d.cfg.Region, spec.FrameworkVersion, spec.PythonVersion)
	image, err := setup.ImageURI()
	if err != nil {
		return err
	}

	submitDir := ""
	if spec.SourceDir != "" {
		if d.sources == nil {
			return errors.New("source dir given but no source uploader configured")
		}
		codeLoc, err := models.ParseS3URI(spec.CodeLocation)
		if err != nil {
			return fmt.Errorf("code location: %w", err)
		}
		submitDir, err = d.sources.Upload(ctx, spec.SourceDir, codeLoc.Join(modelName))
		if err != nil {
			return fmt.Errorf("failed to upload inference source: %w", err)
		}
	}

	entryPoint := spec.EntryPoint
	if entryPoint == "" {
		entryPoint = "inference.py"
	}

	log.WithFields(log.Fields{
		"model":      modelName,
		"model_data": spec.ModelData,
	}).Info("Creating model")

	return d.client.CreateModel(ctx, models.ModelRequest{
		Name:        modelName,
		Image:       image,
		ModelData:   spec.ModelData,
		RoleARN:     spec.RoleARN,
		Environment: setup.ServingEnvironment(path.Base(entryPoint), submitDir),
	})
}

func validateSpec(spec models.DeploymentSpec) error {
	switch {
	case spec.EndpointName == "":
		return errors.New("endpoint name is required")
	case spec.ModelData == "":
		return errors.New("model data is required")
	case spec.RoleARN == "":
		return errors.New("role ARN is required")
	case spec.InstanceType == "":
		return errors.New("instance type is required")
	}
	return nil
}
