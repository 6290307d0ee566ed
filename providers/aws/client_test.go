package aws

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"mlpipe/core/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/pricing"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSageMaker implements only what each test needs; other calls panic on the nil embedded interface
type fakeSageMaker struct {
	sageMakerAPI

	describeTrainingJob *sagemaker.DescribeTrainingJobOutput
	createTrainingJob   *sagemaker.CreateTrainingJobInput
	describeEndpointErr error
	deleteEndpointErr   error
	endpointPages       []*sagemaker.ListEndpointsOutput
	listCalls           int
}

func (f *fakeSageMaker) CreateTrainingJob(_ context.Context, in *sagemaker.CreateTrainingJobInput, _ ...func(*sagemaker.Options)) (*sagemaker.CreateTrainingJobOutput, error) {
	f.createTrainingJob = in
	return &sagemaker.CreateTrainingJobOutput{}, nil
}

func (f *fakeSageMaker) DescribeTrainingJob(_ context.Context, _ *sagemaker.DescribeTrainingJobInput, _ ...func(*sagemaker.Options)) (*sagemaker.DescribeTrainingJobOutput, error) {
	return f.describeTrainingJob, nil
}

func (f *fakeSageMaker) DescribeEndpoint(_ context.Context, in *sagemaker.DescribeEndpointInput, _ ...func(*sagemaker.Options)) (*sagemaker.DescribeEndpointOutput, error) {
	if f.describeEndpointErr != nil {
		return nil, f.describeEndpointErr
	}
	return &sagemaker.DescribeEndpointOutput{
		EndpointName:       in.EndpointName,
		EndpointStatus:     types.EndpointStatusInService,
		EndpointConfigName: aws.String("iris-endpoint-config-1"),
	}, nil
}

func (f *fakeSageMaker) DeleteEndpoint(_ context.Context, _ *sagemaker.DeleteEndpointInput, _ ...func(*sagemaker.Options)) (*sagemaker.DeleteEndpointOutput, error) {
	return &sagemaker.DeleteEndpointOutput{}, f.deleteEndpointErr
}

func (f *fakeSageMaker) ListEndpoints(_ context.Context, _ *sagemaker.ListEndpointsInput, _ ...func(*sagemaker.Options)) (*sagemaker.ListEndpointsOutput, error) {
	page := f.endpointPages[f.listCalls]
	f.listCalls++
	return page, nil
}

type fakeObjects struct {
	data map[string]string
}

func (f *fakeObjects) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.data[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{Message: aws.String("The specified key does not exist.")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewBufferString(body))}, nil
}

type fakePricing struct {
	priceList []string
}

func (f *fakePricing) GetProducts(_ context.Context, _ *pricing.GetProductsInput, _ ...func(*pricing.Options)) (*pricing.GetProductsOutput, error) {
	return &pricing.GetProductsOutput{PriceList: f.priceList}, nil
}

func TestDescribeTrainingJob_Translates(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	sm := &fakeSageMaker{describeTrainingJob: &sagemaker.DescribeTrainingJobOutput{
		TrainingJobName:   aws.String("iris-training-1"),
		TrainingJobStatus: types.TrainingJobStatusCompleted,
		CreationTime:      aws.Time(created),
		ModelArtifacts: &types.ModelArtifacts{
			S3ModelArtifacts: aws.String("s3://ml-bucket/model-artifacts/iris-training-1/output/model.tar.gz"),
		},
	}}
	c := &Client{sageMaker: sm}

	job, err := c.DescribeTrainingJob(context.Background(), "iris-training-1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, job.Status)
	assert.Equal(t, "s3://ml-bucket/model-artifacts/iris-training-1/output/model.tar.gz", job.ArtifactPath)
	assert.Equal(t, created, job.CreatedAt)
	assert.Empty(t, job.FailureReason)
}

func TestDescribeTrainingJob_FailureReason(t *testing.T) {
	sm := &fakeSageMaker{describeTrainingJob: &sagemaker.DescribeTrainingJobOutput{
		TrainingJobName:   aws.String("iris-training-2"),
		TrainingJobStatus: types.TrainingJobStatusFailed,
		FailureReason:     aws.String("AlgorithmError: boom"),
	}}
	c := &Client{sageMaker: sm}

	job, err := c.DescribeTrainingJob(context.Background(), "iris-training-2")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, job.Status)
	assert.Equal(t, "AlgorithmError: boom", job.FailureReason)
	assert.Empty(t, job.ArtifactPath)
}

func TestCreateTrainingJob_BuildsInput(t *testing.T) {
	sm := &fakeSageMaker{}
	c := &Client{sageMaker: sm}

	err := c.CreateTrainingJob(context.Background(), models.TrainingJobRequest{
		Name:              "iris-training-3",
		Image:             "683313688378.dkr.ecr.us-east-1.amazonaws.com/sagemaker-scikit-learn:1.2-1-cpu-py3",
		RoleARN:           "arn:aws:iam::123456789012:role/sm",
		Hyperparameters:   map[string]string{"n-estimators": "100"},
		OutputPath:        "s3://ml-bucket/model-artifacts",
		InstanceType:      "ml.m5.large",
		InstanceCount:     1,
		VolumeSizeGB:      30,
		MaxRuntime:        24 * time.Hour,
		MetricDefinitions: map[string]string{"accuracy": "accuracy: ([0-9.]+)"},
	})
	require.NoError(t, err)

	in := sm.createTrainingJob
	require.NotNil(t, in)
	assert.Equal(t, "iris-training-3", aws.ToString(in.TrainingJobName))
	assert.Equal(t, types.TrainingInstanceType("ml.m5.large"), in.ResourceConfig.InstanceType)
	assert.Equal(t, int32(86400), aws.ToInt32(in.StoppingCondition.MaxRuntimeInSeconds))
	require.Len(t, in.AlgorithmSpecification.MetricDefinitions, 1)
	assert.Equal(t, "accuracy", aws.ToString(in.AlgorithmSpecification.MetricDefinitions[0].Name))
	assert.Equal(t, "100", in.HyperParameters["n-estimators"])
}

func TestDescribeEndpoint_NotFound(t *testing.T) {
	sm := &fakeSageMaker{describeEndpointErr: &smithy.GenericAPIError{
		Code:    "ValidationException",
		Message: `Could not find endpoint "iris-endpoint".`,
	}}
	c := &Client{sageMaker: sm}

	_, err := c.DescribeEndpoint(context.Background(), "iris-endpoint")
	assert.ErrorIs(t, err, models.ErrEndpointNotFound)
}

func TestDescribeEndpoint_OtherErrorsPropagate(t *testing.T) {
	sm := &fakeSageMaker{describeEndpointErr: &smithy.GenericAPIError{
		Code:    "ThrottlingException",
		Message: "Rate exceeded",
	}}
	c := &Client{sageMaker: sm}

	_, err := c.DescribeEndpoint(context.Background(), "iris-endpoint")
	require.Error(t, err)
	assert.False(t, errors.Is(err, models.ErrEndpointNotFound))
}

func TestDescribeEndpoint_Found(t *testing.T) {
	c := &Client{sageMaker: &fakeSageMaker{}}

	ep, err := c.DescribeEndpoint(context.Background(), "iris-endpoint")
	require.NoError(t, err)
	assert.Equal(t, models.EndpointStatusInService, ep.Status)
	assert.Equal(t, "iris-endpoint-config-1", ep.ConfigName)
}

func TestDeleteEndpoint_NotFound(t *testing.T) {
	sm := &fakeSageMaker{deleteEndpointErr: &smithy.GenericAPIError{
		Code:    "ValidationException",
		Message: `Could not find endpoint "gone".`,
	}}
	c := &Client{sageMaker: sm}

	err := c.DeleteEndpoint(context.Background(), "gone")
	assert.ErrorIs(t, err, models.ErrEndpointNotFound)
}

func TestListEndpoints_FollowsPages(t *testing.T) {
	sm := &fakeSageMaker{endpointPages: []*sagemaker.ListEndpointsOutput{
		{
			Endpoints: []types.EndpointSummary{
				{EndpointName: aws.String("iris-endpoint"), EndpointStatus: types.EndpointStatusInService},
			},
			NextToken: aws.String("page-2"),
		},
		{
			Endpoints: []types.EndpointSummary{
				{EndpointName: aws.String("other-endpoint"), EndpointStatus: types.EndpointStatusCreating},
			},
		},
	}}
	c := &Client{sageMaker: sm}

	endpoints, err := c.ListEndpoints(context.Background())
	require.NoError(t, err)
	require.Len(t, endpoints, 2)
	assert.Equal(t, "iris-endpoint", endpoints[0].Name)
	assert.Equal(t, models.EndpointStatusCreating, endpoints[1].Status)
	assert.Equal(t, 2, sm.listCalls)
}

func TestGetObject(t *testing.T) {
	c := &Client{objects: &fakeObjects{data: map[string]string{
		"model-artifacts/job/output/metrics.json": `{"accuracy": 1}`,
	}}}

	data, err := c.GetObject(context.Background(), models.S3Location{Bucket: "b", Key: "model-artifacts/job/output/metrics.json"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"accuracy": 1}`, string(data))

	_, err = c.GetObject(context.Background(), models.S3Location{Bucket: "b", Key: "missing.json"})
	assert.ErrorIs(t, err, models.ErrObjectNotFound)
}

func TestFetchHostingPrice(t *testing.T) {
	doc := `{
		"product": {"attributes": {"instanceName": "ml.t2.medium"}},
		"terms": {"OnDemand": {"ABC.JRTCKXETXF": {"priceDimensions": {
			"ABC.JRTCKXETXF.6YS6EN2CT7": {"unit": "Hrs", "pricePerUnit": {"USD": "0.0560000000"}}
		}}}}
	}`
	c := &Client{pricingClient: &fakePricing{priceList: []string{`{"terms":{}}`, doc}}, region: "us-east-1"}

	price, err := c.FetchHostingPrice(context.Background(), "ml.t2.medium")
	require.NoError(t, err)
	assert.InDelta(t, 0.056, price, 1e-9)
}

func TestFetchHostingPrice_NoPrice(t *testing.T) {
	c := &Client{pricingClient: &fakePricing{}, region: "us-east-1"}

	_, err := c.FetchHostingPrice(context.Background(), "ml.t2.medium")
	assert.Error(t, err)
}
