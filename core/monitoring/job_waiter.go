package monitoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mlpipe/core/models"

	log "github.com/sirupsen/logrus"
)

// ErrPollErrorsExhausted is returned when describing a job failed too many times in a row
var ErrPollErrorsExhausted = errors.New("too many consecutive polling errors")

const (
	DefaultPollInterval  = 30 * time.Second
	DefaultMaxPollErrors = 20
)

// JobDescriber fetches the current state of a training job
type JobDescriber interface {
	DescribeTrainingJob(ctx context.Context, name string) (*models.TrainingJob, error)
}

// EventRecorder receives observed status changes
type EventRecorder interface {
	Record(ctx context.Context, event models.PipelineEvent) error
}

// WaiterConfig controls polling
type WaiterConfig struct {
	PollInterval time.Duration
	// MaxPollErrors bounds consecutive describe failures; 0 retries forever
	MaxPollErrors int
}

// DefaultWaiterConfig returns a 30s interval with at most 20 consecutive errors
func DefaultWaiterConfig() WaiterConfig {
	return WaiterConfig{
		PollInterval:  DefaultPollInterval,
		MaxPollErrors: DefaultMaxPollErrors,
	}
}

// WaitResult is the terminal observation of a job
type WaitResult struct {
	Job       models.TrainingJob
	Succeeded bool
}

// JobWaiter polls a training job until it reaches a terminal status
type JobWaiter struct {
	client   JobDescriber
	recorder EventRecorder
	cfg      WaiterConfig
}

// NewJobWaiter creates a new job waiter. recorder may be nil.
func NewJobWaiter(client JobDescriber, recorder EventRecorder, cfg WaiterConfig) *JobWaiter {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.MaxPollErrors < 0 {
		cfg.MaxPollErrors = 0
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &JobWaiter{
		client:   client,
		recorder: recorder,
		cfg:      cfg,
	}
}

// Wait blocks until the job is Completed, Failed or Stopped, the context is
// cancelled, or the polling error bound is hit.
func (w *JobWaiter) Wait(ctx context.Context, name string) (*WaitResult, error) {
	logger := log.WithField("job", name)
	logger.WithField("interval", w.cfg.PollInterval).Info("Waiting for training job")

	var (
		lastStatus    models.JobStatus
		lastSecondary string
		pollErrors    int
	)

	for {
		job, err := w.client.DescribeTrainingJob(ctx, name)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			pollErrors++
			logger.WithError(err).WithField("attempt", pollErrors).Warn("Failed to describe training job, retrying")
			if w.cfg.MaxPollErrors > 0 && pollErrors >= w.cfg.MaxPollErrors {
				return nil, fmt.Errorf("%w (%d) for %s: %w", ErrPollErrorsExhausted, pollErrors, name, err)
			}
		} else {
			pollErrors = 0

			if job.Status != lastStatus || job.SecondaryStatus != lastSecondary {
				logger.WithFields(log.Fields{
					"status":    job.Status,
					"secondary": job.SecondaryStatus,
				}).Info("Training job status")
				w.record(ctx, job)
				lastStatus, lastSecondary = job.Status, job.SecondaryStatus
			}

			if job.Status == models.JobStatusUnknown {
				logger.Warn("Unrecognized training job status, continuing to poll")
			}

			if job.Status.IsTerminal() {
				return &WaitResult{
					Job:       *job,
					Succeeded: job.Status == models.JobStatusCompleted,
				}, nil
			}
		}

		if err := sleep(ctx, w.cfg.PollInterval); err != nil {
			return nil, err
		}
	}
}

func (w *JobWaiter) record(ctx context.Context, job *models.TrainingJob) {
	event := models.PipelineEvent{
		ResourceType: models.ResourceTrainingJob,
		ResourceName: job.Name,
		Status:       string(job.Status),
		Reason:       job.FailureReason,
		At:           time.Now().UTC(),
		MetaJSON: map[string]interface{}{
			"secondary_status": job.SecondaryStatus,
		},
	}
	if job.ArtifactPath != "" {
		event.MetaJSON["model_artifacts"] = job.ArtifactPath
	}
	// history is best-effort
	if err := w.recorder.Record(ctx, event); err != nil {
		log.WithError(err).WithField("job", job.Name).Warn("Failed to record job event")
	}
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, models.PipelineEvent) error { return nil }
