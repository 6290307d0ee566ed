package monitoring

import (
	"context"
	"time"

	"mlpipe/core/models"

	log "github.com/sirupsen/logrus"
)

// EndpointDescriber fetches the current state of an endpoint
type EndpointDescriber interface {
	DescribeEndpoint(ctx context.Context, name string) (*models.Endpoint, error)
}

// EndpointWaiter polls an endpoint until it is InService or Failed.
// Unlike JobWaiter, describe errors are not retried.
type EndpointWaiter struct {
	client       EndpointDescriber
	recorder     EventRecorder
	pollInterval time.Duration
}

// NewEndpointWaiter creates a new endpoint waiter. recorder may be nil.
func NewEndpointWaiter(client EndpointDescriber, recorder EventRecorder, pollInterval time.Duration) *EndpointWaiter {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &EndpointWaiter{
		client:       client,
		recorder:     recorder,
		pollInterval: pollInterval,
	}
}

// Wait returns the endpoint once it settles. The caller inspects Status to tell
// InService from Failed.
func (w *EndpointWaiter) Wait(ctx context.Context, name string) (*models.Endpoint, error) {
	logger := log.WithField("endpoint", name)
	var last models.EndpointStatus

	for {
		ep, err := w.client.DescribeEndpoint(ctx, name)
		if err != nil {
			return nil, err
		}

		if ep.Status != last {
			logger.WithField("status", ep.Status).Info("Endpoint status")
			last = ep.Status
			if err := w.recorder.Record(ctx, models.PipelineEvent{
				ResourceType: models.ResourceEndpoint,
				ResourceName: ep.Name,
				Status:       string(ep.Status),
				Reason:       ep.FailureReason,
				At:           time.Now().UTC(),
				MetaJSON:     map[string]interface{}{"config_name": ep.ConfigName},
			}); err != nil {
				logger.WithError(err).Warn("Failed to record endpoint event")
			}
		}

		switch ep.Status {
		case models.EndpointStatusInService, models.EndpointStatusFailed:
			return ep, nil
		}

		if err := sleep(ctx, w.pollInterval); err != nil {
			return nil, err
		}
	}
}
