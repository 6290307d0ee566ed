package training

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mlpipe/core/models"
	"mlpipe/core/monitoring"
	"mlpipe/core/naming"
	"mlpipe/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCreator struct {
	mock.Mock
}

func (m *mockCreator) CreateTrainingJob(ctx context.Context, req models.TrainingJobRequest) error {
	return m.Called(ctx, req).Error(0)
}

type fakeSources struct {
	dir  string
	dest models.S3Location
}

func (f *fakeSources) Upload(_ context.Context, dir string, dest models.S3Location) (string, error) {
	f.dir, f.dest = dir, dest
	return dest.Join(storage.SourceBundleName).String(), nil
}

func fixedNames() *naming.Generator {
	return &naming.Generator{
		Now:    func() time.Time { return time.Date(2024, 5, 1, 12, 30, 45, 0, time.UTC) },
		Suffix: func() string { return "a1b2c3" },
	}
}

func baseSpec() models.TrainingJobSpec {
	return models.TrainingJobSpec{
		NamePrefix:    "iris-training",
		EntryPoint:    "scripts/train.py",
		CodeLocation:  "s3://ml-bucket/code",
		OutputPath:    "s3://ml-bucket/model-artifacts",
		RoleARN:       "arn:aws:iam::123456789012:role/sm",
		InstanceType:  "ml.m5.large",
		InstanceCount: 1,
		Hyperparameters: map[string]interface{}{
			"n-estimators": 100,
			"test-size":    0.2,
		},
	}
}

func TestSubmit(t *testing.T) {
	creator := &mockCreator{}
	creator.On("CreateTrainingJob", mock.Anything, mock.MatchedBy(func(req models.TrainingJobRequest) bool {
		return req.Name == "iris-training-2024-05-01-12-30-45-a1b2c3" &&
			req.Hyperparameters["n-estimators"] == "100" &&
			req.Hyperparameters["sagemaker_program"] == `"train.py"` &&
			req.Hyperparameters["sagemaker_submit_directory"] == `"s3://ml-bucket/code/iris-training-2024-05-01-12-30-45-a1b2c3/source/sourcedir.tar.gz"` &&
			req.MetricDefinitions["accuracy"] == AccuracyMetricRegex &&
			req.VolumeSizeGB == 30 &&
			req.MaxRuntime == 24*time.Hour
	})).Return(nil).Once()

	sources := &fakeSources{}
	spec := baseSpec()
	spec.SourceDir = "scripts"

	s := NewSubmitter(creator, sources, "us-east-1").WithNames(fixedNames())
	name, err := s.Submit(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, "iris-training-2024-05-01-12-30-45-a1b2c3", name)
	assert.Equal(t, "scripts", sources.dir)
	creator.AssertExpectations(t)
}

func TestSubmit_CreateErrorIsReturned(t *testing.T) {
	boom := errors.New("ResourceLimitExceeded")
	creator := &mockCreator{}
	creator.On("CreateTrainingJob", mock.Anything, mock.Anything).Return(boom).Once()

	s := NewSubmitter(creator, nil, "us-east-1").WithNames(fixedNames())
	_, err := s.Submit(context.Background(), baseSpec())
	assert.ErrorIs(t, err, boom)
	creator.AssertNumberOfCalls(t, "CreateTrainingJob", 1)
}

func TestSubmit_InvalidSpec(t *testing.T) {
	creator := &mockCreator{}
	spec := baseSpec()
	spec.RoleARN = ""

	_, err := NewSubmitter(creator, nil, "us-east-1").Submit(context.Background(), spec)
	assert.Error(t, err)
	creator.AssertNotCalled(t, "CreateTrainingJob", mock.Anything, mock.Anything)
}

func TestSubmit_UniqueNamesWithinASecond(t *testing.T) {
	creator := &mockCreator{}
	creator.On("CreateTrainingJob", mock.Anything, mock.Anything).Return(nil)

	g := naming.NewGenerator()
	g.Now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }
	s := NewSubmitter(creator, nil, "us-east-1").WithNames(g)

	a, err := s.Submit(context.Background(), baseSpec())
	require.NoError(t, err)
	b, err := s.Submit(context.Background(), baseSpec())
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

type stubSubmitter struct{ name string }

func (s stubSubmitter) Submit(context.Context, models.TrainingJobSpec) (string, error) {
	return s.name, nil
}

type stubWaiter struct {
	result *monitoring.WaitResult
	err    error
}

func (s stubWaiter) Wait(context.Context, string) (*monitoring.WaitResult, error) {
	return s.result, s.err
}

type stubLocator struct {
	metrics *models.Metrics
	called  bool
}

func (s *stubLocator) FetchMetrics(context.Context, string) *models.Metrics {
	s.called = true
	return s.metrics
}

func TestRun_Completed(t *testing.T) {
	loc := &stubLocator{metrics: &models.Metrics{Accuracy: 0.97}}
	r := NewRunner(stubSubmitter{name: "job-1"}, stubWaiter{result: &monitoring.WaitResult{
		Job:       models.TrainingJob{Name: "job-1", Status: models.JobStatusCompleted, ArtifactPath: "s3://b/job-1/output/model.tar.gz"},
		Succeeded: true,
	}}, loc)
	r.InfoPath = filepath.Join(t.TempDir(), storage.TrainingJobInfoFile)

	info, err := r.Run(context.Background(), baseSpec())
	require.NoError(t, err)
	assert.Equal(t, 0.97, info.Metrics.Accuracy)

	written, err := storage.ReadTrainingJobInfo(r.InfoPath)
	require.NoError(t, err)
	assert.Equal(t, "job-1", written.JobName)
	assert.Equal(t, "s3://b/job-1/output/model.tar.gz", written.ModelArtifacts)
	assert.Equal(t, models.JobStatusCompleted, written.Status)
}

func TestRun_Failed(t *testing.T) {
	loc := &stubLocator{}
	r := NewRunner(stubSubmitter{name: "job-2"}, stubWaiter{result: &monitoring.WaitResult{
		Job: models.TrainingJob{Name: "job-2", Status: models.JobStatusFailed, FailureReason: "OOM"},
	}}, loc)
	r.InfoPath = filepath.Join(t.TempDir(), storage.TrainingJobInfoFile)

	info, err := r.Run(context.Background(), baseSpec())
	var failed *JobFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, "OOM", failed.Reason)
	assert.Nil(t, info.Metrics)
	assert.False(t, loc.called)

	written, err := storage.ReadTrainingJobInfo(r.InfoPath)
	require.NoError(t, err)
	assert.Nil(t, written.Metrics)
	assert.Equal(t, models.JobStatusFailed, written.Status)
}

func TestRun_WaitError(t *testing.T) {
	r := NewRunner(stubSubmitter{name: "job-3"}, stubWaiter{err: monitoring.ErrPollErrorsExhausted}, &stubLocator{})
	r.InfoPath = filepath.Join(t.TempDir(), storage.TrainingJobInfoFile)

	_, err := r.Run(context.Background(), baseSpec())
	assert.ErrorIs(t, err, monitoring.ErrPollErrorsExhausted)
	_, statErr := os.Stat(r.InfoPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCheckQuality(t *testing.T) {
	assert.NoError(t, CheckQuality(&models.TrainingJobInfo{Metrics: &models.Metrics{Accuracy: 0.9}}, 0.85))
	assert.NoError(t, CheckQuality(&models.TrainingJobInfo{Metrics: &models.Metrics{Accuracy: 0.85}}, 0.85))
	assert.ErrorIs(t, CheckQuality(&models.TrainingJobInfo{Metrics: &models.Metrics{Accuracy: 0.8}}, 0.85), ErrBelowThreshold)
	assert.ErrorIs(t, CheckQuality(&models.TrainingJobInfo{}, 0.85), ErrBelowThreshold)
	assert.ErrorIs(t, CheckQuality(nil, 0.85), ErrBelowThreshold)
	assert.ErrorIs(t, CheckQuality(&models.TrainingJobInfo{Metrics: models.SentinelMetrics("missing")}, 0), ErrBelowThreshold)
}
