package training

import (
	"context"
	"fmt"
	"time"

	"mlpipe/core/models"
	"mlpipe/core/monitoring"
	"mlpipe/storage"

	log "github.com/sirupsen/logrus"
)

// JobFailedError reports a job that ended Failed or Stopped
type JobFailedError struct {
	JobName string
	Status  models.JobStatus
	Reason  string
}

func (e *JobFailedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("training job %s ended %s", e.JobName, e.Status)
	}
	return fmt.Sprintf("training job %s ended %s: %s", e.JobName, e.Status, e.Reason)
}

// JobSubmitter starts a job and returns its name
type JobSubmitter interface {
	Submit(ctx context.Context, spec models.TrainingJobSpec) (string, error)
}

// JobWaiter blocks until a job is terminal
type JobWaiter interface {
	Wait(ctx context.Context, name string) (*monitoring.WaitResult, error)
}

// MetricsLocator resolves the metrics for a model artifact
type MetricsLocator interface {
	FetchMetrics(ctx context.Context, artifactPath string) *models.Metrics
}

// Runner drives submit, wait, metrics lookup and the hand-off record
type Runner struct {
	submitter JobSubmitter
	waiter    JobWaiter
	locator   MetricsLocator

	// InfoPath is where training_job_info.json is written
	InfoPath string
	Now      func() time.Time
}

// NewRunner creates a new runner writing to storage.TrainingJobInfoFile
func NewRunner(submitter JobSubmitter, waiter JobWaiter, locator MetricsLocator) *Runner {
	return &Runner{
		submitter: submitter,
		waiter:    waiter,
		locator:   locator,
		InfoPath:  storage.TrainingJobInfoFile,
		Now:       time.Now,
	}
}

// Run trains a model end to end. A job that ends Failed or Stopped still gets a
// hand-off record, with null metrics, and yields a *JobFailedError.
func (r *Runner) Run(ctx context.Context, spec models.TrainingJobSpec) (*models.TrainingJobInfo, error) {
	name, err := r.submitter.Submit(ctx, spec)
	if err != nil {
		return nil, err
	}
	log.WithField("job", name).Info("Training job submitted")

	result, err := r.waiter.Wait(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("waiting for %s: %w", name, err)
	}

	info := &models.TrainingJobInfo{
		JobName:        name,
		ModelArtifacts: result.Job.ArtifactPath,
		Status:         result.Job.Status,
		Timestamp:      r.Now().UTC(),
	}

	if !result.Succeeded {
		info.FailureReason = result.Job.FailureReason
		if err := storage.WriteTrainingJobInfo(r.InfoPath, info); err != nil {
			log.WithError(err).Warn("Failed to write training job info")
		}
		return info, &JobFailedError{
			JobName: name,
			Status:  result.Job.Status,
			Reason:  result.Job.FailureReason,
		}
	}

	info.Metrics = r.locator.FetchMetrics(ctx, result.Job.ArtifactPath)

	log.WithFields(log.Fields{
		"job":       name,
		"artifacts": info.ModelArtifacts,
		"accuracy":  info.Metrics.Accuracy,
		"f1_score":  info.Metrics.F1Score,
	}).Info("Training job completed")

	if err := storage.WriteTrainingJobInfo(r.InfoPath, info); err != nil {
		return info, err
	}
	return info, nil
}
