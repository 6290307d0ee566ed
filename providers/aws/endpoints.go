package aws

import (
	"context"
	"fmt"

	"mlpipe/core/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
)

// defaultVariantName routes all traffic to the single production variant
const defaultVariantName = "AllTraffic"

// DescribeEndpoint returns the endpoint, or models.ErrEndpointNotFound if it does not exist
func (c *Client) DescribeEndpoint(ctx context.Context, name string) (*models.Endpoint, error) {
	out, err := c.sageMaker.DescribeEndpoint(ctx, &sagemaker.DescribeEndpointInput{
		EndpointName: aws.String(name),
	})
	if err != nil {
		if isResourceNotFound(err) {
			return nil, fmt.Errorf("%w: %s", models.ErrEndpointNotFound, name)
		}
		return nil, fmt.Errorf("failed to describe endpoint %s: %w", name, err)
	}

	return &models.Endpoint{
		Name:          aws.ToString(out.EndpointName),
		Status:        models.ParseEndpointStatus(string(out.EndpointStatus)),
		ConfigName:    aws.ToString(out.EndpointConfigName),
		FailureReason: aws.ToString(out.FailureReason),
		CreatedAt:     aws.ToTime(out.CreationTime),
	}, nil
}

// CreateModel registers a deployable model
func (c *Client) CreateModel(ctx context.Context, req models.ModelRequest) error {
	_, err := c.sageMaker.CreateModel(ctx, &sagemaker.CreateModelInput{
		ModelName:        aws.String(req.Name),
		ExecutionRoleArn: aws.String(req.RoleARN),
		PrimaryContainer: &types.ContainerDefinition{
			Image:        aws.String(req.Image),
			ModelDataUrl: aws.String(req.ModelData),
			Environment:  req.Environment,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create model %s: %w", req.Name, err)
	}
	return nil
}

// CreateEndpointConfig creates a single-variant endpoint configuration
func (c *Client) CreateEndpointConfig(ctx context.Context, req models.EndpointConfigRequest) error {
	_, err := c.sageMaker.CreateEndpointConfig(ctx, &sagemaker.CreateEndpointConfigInput{
		EndpointConfigName: aws.String(req.Name),
		ProductionVariants: []types.ProductionVariant{
			{
				VariantName:          aws.String(defaultVariantName),
				ModelName:            aws.String(req.ModelName),
				InstanceType:         types.ProductionVariantInstanceType(req.InstanceType),
				InitialInstanceCount: aws.Int32(int32(req.InstanceCount)),
				InitialVariantWeight: aws.Float32(1),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create endpoint config %s: %w", req.Name, err)
	}
	return nil
}

// CreateEndpoint starts creating an endpoint from a configuration
func (c *Client) CreateEndpoint(ctx context.Context, name, configName string) error {
	_, err := c.sageMaker.CreateEndpoint(ctx, &sagemaker.CreateEndpointInput{
		EndpointName:       aws.String(name),
		EndpointConfigName: aws.String(configName),
	})
	if err != nil {
		return fmt.Errorf("failed to create endpoint %s: %w", name, err)
	}
	return nil
}

// UpdateEndpoint points an existing endpoint at a new configuration
func (c *Client) UpdateEndpoint(ctx context.Context, name, configName string) error {
	_, err := c.sageMaker.UpdateEndpoint(ctx, &sagemaker.UpdateEndpointInput{
		EndpointName:       aws.String(name),
		EndpointConfigName: aws.String(configName),
	})
	if err != nil {
		return fmt.Errorf("failed to update endpoint %s: %w", name, err)
	}
	return nil
}

// DeleteEndpoint deletes an endpoint
func (c *Client) DeleteEndpoint(ctx context.Context, name string) error {
	_, err := c.sageMaker.DeleteEndpoint(ctx, &sagemaker.DeleteEndpointInput{
		EndpointName: aws.String(name),
	})
	if err != nil {
		if isResourceNotFound(err) {
			return fmt.Errorf("%w: %s", models.ErrEndpointNotFound, name)
		}
		return fmt.Errorf("failed to delete endpoint %s: %w", name, err)
	}
	return nil
}

// DeleteEndpointConfig deletes an endpoint configuration
func (c *Client) DeleteEndpointConfig(ctx context.Context, name string) error {
	_, err := c.sageMaker.DeleteEndpointConfig(ctx, &sagemaker.DeleteEndpointConfigInput{
		EndpointConfigName: aws.String(name),
	})
	if err != nil {
		return fmt.Errorf("failed to delete endpoint config %s: %w", name, err)
	}
	return nil
}

// ListEndpoints returns all endpoints, newest first
func (c *Client) ListEndpoints(ctx context.Context) ([]models.Endpoint, error) {
	paginator := sagemaker.NewListEndpointsPaginator(c.sageMaker, &sagemaker.ListEndpointsInput{
		MaxResults: aws.Int32(100),
		SortBy:     types.EndpointSortKeyCreationTime,
		SortOrder:  types.OrderKeyDescending,
	})

	var endpoints []models.Endpoint
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list endpoints: %w", err)
		}
		for _, s := range page.Endpoints {
			endpoints = append(endpoints, models.Endpoint{
				Name:      aws.ToString(s.EndpointName),
				Status:    models.ParseEndpointStatus(string(s.EndpointStatus)),
				CreatedAt: aws.ToTime(s.CreationTime),
			})
		}
	}
	return endpoints, nil
}

// ListModels returns all registered models, newest first
func (c *Client) ListModels(ctx context.Context) ([]models.Model, error) {
	paginator := sagemaker.NewListModelsPaginator(c.sageMaker, &sagemaker.ListModelsInput{
		MaxResults: aws.Int32(100),
		SortBy:     types.ModelSortKeyCreationTime,
		SortOrder:  types.OrderKeyDescending,
	})

	var out []models.Model
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list models: %w", err)
		}
		for _, s := range page.Models {
			out = append(out, models.Model{
				Name:      aws.ToString(s.ModelName),
				Arn:       aws.ToString(s.ModelArn),
				CreatedAt: aws.ToTime(s.CreationTime),
			})
		}
	}
	return out, nil
}

// DeleteModel deletes a registered model
func (c *Client) DeleteModel(ctx context.Context, name string) error {
	_, err := c.sageMaker.DeleteModel(ctx, &sagemaker.DeleteModelInput{
		ModelName: aws.String(name),
	})
	if err != nil {
		return fmt.Errorf("failed to delete model %s: %w", name, err)
	}
	return nil
}
