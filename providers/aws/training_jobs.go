package aws

import (
	"context"
	"fmt"
	"sort"

	"mlpipe/core/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
)

// CreateTrainingJob asynchronously starts a training job; it returns once the request is accepted
func (c *Client) CreateTrainingJob(ctx context.Context, req models.TrainingJobRequest) error {
	input := &sagemaker.CreateTrainingJobInput{
		TrainingJobName: aws.String(req.Name),
		RoleArn:         aws.String(req.RoleARN),
		AlgorithmSpecification: &types.AlgorithmSpecification{
			TrainingImage:                    aws.String(req.Image),
			TrainingInputMode:                types.TrainingInputModeFile,
			MetricDefinitions:                metricDefinitions(req.MetricDefinitions),
			EnableSageMakerMetricsTimeSeries: aws.Bool(len(req.MetricDefinitions) > 0),
		},
		HyperParameters: req.Hyperparameters,
		OutputDataConfig: &types.OutputDataConfig{
			S3OutputPath: aws.String(req.OutputPath),
		},
		ResourceConfig: &types.ResourceConfig{
			InstanceType:   types.TrainingInstanceType(req.InstanceType),
			InstanceCount:  aws.Int32(int32(req.InstanceCount)),
			VolumeSizeInGB: aws.Int32(int32(req.VolumeSizeGB)),
		},
		StoppingCondition: &types.StoppingCondition{
			MaxRuntimeInSeconds: aws.Int32(int32(req.MaxRuntime.Seconds())),
		},
		Environment: req.Environment,
		Tags: []types.Tag{
			{
				Key:   aws.String("ManagedBy"),
				Value: aws.String("mlpipe"),
			},
		},
	}

	if _, err := c.sageMaker.CreateTrainingJob(ctx, input); err != nil {
		return fmt.Errorf("failed to create training job %s: %w", req.Name, err)
	}
	return nil
}

// DescribeTrainingJob returns the current platform view of a training job
func (c *Client) DescribeTrainingJob(ctx context.Context, name string) (*models.TrainingJob, error) {
	out, err := c.sageMaker.DescribeTrainingJob(ctx, &sagemaker.DescribeTrainingJobInput{
		TrainingJobName: aws.String(name),
	})
	if err != nil {
		if isResourceNotFound(err) {
			return nil, fmt.Errorf("%w: %s", models.ErrJobNotFound, name)
		}
		return nil, fmt.Errorf("failed to describe training job %s: %w", name, err)
	}

	job := &models.TrainingJob{
		Name:            aws.ToString(out.TrainingJobName),
		Status:          models.ParseJobStatus(string(out.TrainingJobStatus)),
		SecondaryStatus: string(out.SecondaryStatus),
		FailureReason:   aws.ToString(out.FailureReason),
		CreatedAt:       aws.ToTime(out.CreationTime),
	}
	if job.Name == "" {
		job.Name = name
	}
	if out.ModelArtifacts != nil {
		job.ArtifactPath = aws.ToString(out.ModelArtifacts.S3ModelArtifacts)
	}
	return job, nil
}

// ListTrainingJobs returns the most recent training jobs whose name contains nameContains
func (c *Client) ListTrainingJobs(ctx context.Context, nameContains string, limit int) ([]models.TrainingJob, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	input := &sagemaker.ListTrainingJobsInput{
		MaxResults: aws.Int32(int32(limit)),
		SortBy:     types.SortByCreationTime,
		SortOrder:  types.SortOrderDescending,
	}
	if nameContains != "" {
		input.NameContains = aws.String(nameContains)
	}

	out, err := c.sageMaker.ListTrainingJobs(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to list training jobs: %w", err)
	}

	jobs := make([]models.TrainingJob, 0, len(out.TrainingJobSummaries))
	for _, s := range out.TrainingJobSummaries {
		jobs = append(jobs, models.TrainingJob{
			Name:      aws.ToString(s.TrainingJobName),
			Status:    models.ParseJobStatus(string(s.TrainingJobStatus)),
			CreatedAt: aws.ToTime(s.CreationTime),
		})
	}
	return jobs, nil
}

func metricDefinitions(defs map[string]string) []types.MetricDefinition {
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]types.MetricDefinition, 0, len(names))
	for _, name := range names {
		out = append(out, types.MetricDefinition{
			Name:  aws.String(name),
			Regex: aws.String(defs[name]),
		})
	}
	return out
}
