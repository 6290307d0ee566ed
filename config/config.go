package config

import (
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const placeholderBucket = "your-sagemaker-bucket"

// Config holds the application configuration
type Config struct {
	AWS      AWSConfig
	Training TrainingConfig
	Endpoint EndpointConfig
	Naming   NamingConfig
	Polling  PollingConfig

	// Model quality gate
	AccuracyThreshold float64

	// Run history; empty disables it
	DatabaseURL string

	// Status API
	ServerPort string

	Logger LoggerConfig
}

// AWSConfig holds account level settings
type AWSConfig struct {
	Region  string
	Bucket  string
	RoleARN string
}

// TrainingConfig holds training job defaults
type TrainingConfig struct {
	InstanceType     string
	InstanceCount    int
	NEstimators      int
	MaxDepth         int
	RandomState      int
	TestSize         float64
	FrameworkVersion string
	PythonVersion    string
}

// EndpointConfig holds hosting defaults
type EndpointConfig struct {
	Name          string
	InstanceType  string
	InstanceCount int
	HourlyPrice   float64 // fallback when the Pricing API has no answer
}

// NamingConfig holds resource naming conventions
type NamingConfig struct {
	Filter               string // case-insensitive substring used by cleanup
	TrainingJobPrefix    string
	ModelPrefix          string
	EndpointConfigPrefix string
}

// PollingConfig holds wait loop settings
type PollingConfig struct {
	Interval      time.Duration
	MaxPollErrors int // 0 means unbounded
}

// LoggerConfig holds logging settings
type LoggerConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("S3_BUCKET", placeholderBucket)
	v.SetDefault("SAGEMAKER_ROLE_ARN", "")

	v.SetDefault("TRAINING_INSTANCE_TYPE", "ml.m5.large")
	v.SetDefault("TRAINING_INSTANCE_COUNT", 1)
	v.SetDefault("N_ESTIMATORS", 100)
	v.SetDefault("MAX_DEPTH", 5)
	v.SetDefault("RANDOM_STATE", 42)
	v.SetDefault("TEST_SIZE", 0.2)
	v.SetDefault("FRAMEWORK_VERSION", "1.2-1")
	v.SetDefault("PYTHON_VERSION", "py3")

	v.SetDefault("ENDPOINT_NAME", "iris-endpoint")
	v.SetDefault("ENDPOINT_INSTANCE_TYPE", "ml.t2.medium")
	v.SetDefault("ENDPOINT_INSTANCE_COUNT", 1)
	v.SetDefault("ENDPOINT_HOURLY_PRICE", 0.05)

	v.SetDefault("NAME_FILTER", "iris")
	v.SetDefault("TRAINING_JOB_PREFIX", "iris-training")
	v.SetDefault("MODEL_PREFIX", "iris-model")
	v.SetDefault("ENDPOINT_CONFIG_PREFIX", "iris-endpoint-config")

	v.SetDefault("POLL_INTERVAL", "30s")
	v.SetDefault("MAX_POLL_ERRORS", 20)

	v.SetDefault("ACCURACY_THRESHOLD", 0.85)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")

	v.AutomaticEnv()

	interval, err := time.ParseDuration(v.GetString("POLL_INTERVAL"))
	if err != nil {
		return nil, fmt.Errorf("invalid POLL_INTERVAL: %w", err)
	}

	cfg := &Config{
		AWS: AWSConfig{
			Region:  v.GetString("AWS_REGION"),
			Bucket:  v.GetString("S3_BUCKET"),
			RoleARN: v.GetString("SAGEMAKER_ROLE_ARN"),
		},
		Training: TrainingConfig{
			InstanceType:     v.GetString("TRAINING_INSTANCE_TYPE"),
			InstanceCount:    v.GetInt("TRAINING_INSTANCE_COUNT"),
			NEstimators:      v.GetInt("N_ESTIMATORS"),
			MaxDepth:         v.GetInt("MAX_DEPTH"),
			RandomState:      v.GetInt("RANDOM_STATE"),
			TestSize:         v.GetFloat64("TEST_SIZE"),
			FrameworkVersion: v.GetString("FRAMEWORK_VERSION"),
			PythonVersion:    v.GetString("PYTHON_VERSION"),
		},
		Endpoint: EndpointConfig{
			Name:          v.GetString("ENDPOINT_NAME"),
			InstanceType:  v.GetString("ENDPOINT_INSTANCE_TYPE"),
			InstanceCount: v.GetInt("ENDPOINT_INSTANCE_COUNT"),
			HourlyPrice:   v.GetFloat64("ENDPOINT_HOURLY_PRICE"),
		},
		Naming: NamingConfig{
			Filter:               v.GetString("NAME_FILTER"),
			TrainingJobPrefix:    v.GetString("TRAINING_JOB_PREFIX"),
			ModelPrefix:          v.GetString("MODEL_PREFIX"),
			EndpointConfigPrefix: v.GetString("ENDPOINT_CONFIG_PREFIX"),
		},
		Polling: PollingConfig{
			Interval:      interval,
			MaxPollErrors: v.GetInt("MAX_POLL_ERRORS"),
		},
		AccuracyThreshold: v.GetFloat64("ACCURACY_THRESHOLD"),
		DatabaseURL:       v.GetString("DATABASE_URL"),
		ServerPort:        v.GetString("SERVER_PORT"),
		Logger: LoggerConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}

	return cfg, nil
}

// Validate checks the settings required to create platform resources
func (c *Config) Validate() error {
	if c.AWS.RoleARN == "" {
		return errors.New("SAGEMAKER_ROLE_ARN environment variable is required")
	}
	if c.AWS.Bucket == "" || c.AWS.Bucket == placeholderBucket {
		return errors.New("S3_BUCKET environment variable is required")
	}
	if c.Polling.Interval <= 0 {
		return errors.New("POLL_INTERVAL must be positive")
	}
	return nil
}

// ModelArtifactsPath is the output prefix for training jobs
func (c *Config) ModelArtifactsPath() string {
	return fmt.Sprintf("s3://%s/model-artifacts", c.AWS.Bucket)
}

// CodePath is the prefix for uploaded source bundles
func (c *Config) CodePath() string {
	return fmt.Sprintf("s3://%s/code", c.AWS.Bucket)
}

// Display logs the current configuration
func (c *Config) Display() {
	log.WithFields(log.Fields{
		"region":             c.AWS.Region,
		"bucket":             c.AWS.Bucket,
		"training_instance":  c.Training.InstanceType,
		"endpoint_instance":  c.Endpoint.InstanceType,
		"endpoint_name":      c.Endpoint.Name,
		"accuracy_threshold": c.AccuracyThreshold,
		"n_estimators":       c.Training.NEstimators,
		"max_depth":          c.Training.MaxDepth,
		"poll_interval":      c.Polling.Interval,
	}).Info("current configuration")
}

// InitLogger configures the package level logrus logger
func InitLogger(cfg LoggerConfig) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
