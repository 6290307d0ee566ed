package probe

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"mlpipe/core/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEndpoint classifies by petal length and rejects malformed payloads
type stubEndpoint struct {
	lenient    bool   // accept malformed payloads
	corrupt    string // label that gets reported as "setosa"
	batchError error
	shortBatch bool
}

func classify(f []float64) string {
	switch {
	case f[2] < 2.5:
		return "setosa"
	case f[2] < 5.0:
		return "versicolor"
	default:
		return "virginica"
	}
}

func (s *stubEndpoint) label(f []float64) string {
	l := classify(f)
	if s.corrupt != "" && l == s.corrupt {
		return "setosa"
	}
	return l
}

func (s *stubEndpoint) InvokeEndpoint(_ context.Context, _ string, body []byte) ([]byte, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errors.New("ModelError: bad json")
	}

	if inst, ok := raw["instances"]; ok {
		if s.batchError != nil {
			return nil, s.batchError
		}
		var rows [][]float64
		if err := json.Unmarshal(inst, &rows); err != nil {
			return nil, errors.New("ModelError: bad instances")
		}
		var out models.BatchPrediction
		for _, r := range rows {
			out.Predictions = append(out.Predictions, models.Prediction{Prediction: s.label(r)})
		}
		if s.shortBatch {
			out.Predictions = out.Predictions[:1]
		}
		return json.Marshal(out)
	}

	var features []float64
	err := json.Unmarshal(raw["features"], &features)
	if err != nil || len(features) != 4 {
		if s.lenient {
			return json.Marshal(models.Prediction{Prediction: "setosa"})
		}
		return nil, errors.New("ModelError: received client error (400)")
	}
	return json.Marshal(models.Prediction{Prediction: s.label(features)})
}

func TestProbe_HealthyEndpoint(t *testing.T) {
	p := NewProber(&stubEndpoint{}, "iris-endpoint")
	report := p.Run(context.Background())

	for _, group := range [][]CheckResult{report.Single, report.Batch, report.Negative} {
		passed, failed := Tally(group)
		assert.Equal(t, 3, passed)
		assert.Zero(t, failed)
	}
	assert.Equal(t, []string{"setosa", "versicolor", "virginica"},
		[]string{report.Single[0].Got, report.Single[1].Got, report.Single[2].Got})
	assert.NoError(t, report.Err(true))
}

func TestProbe_OneCorruptedLabelFlipsOneCheck(t *testing.T) {
	p := NewProber(&stubEndpoint{corrupt: "virginica"}, "iris-endpoint")

	single := p.CheckSingle(context.Background())
	passed, failed := Tally(single)
	assert.Equal(t, 2, passed)
	assert.Equal(t, 1, failed)
	assert.False(t, single[2].Passed)
	assert.Equal(t, "setosa", single[2].Got)
}

func TestProbe_BatchErrorFailsAllPositions(t *testing.T) {
	p := NewProber(&stubEndpoint{batchError: errors.New("ThrottlingException")}, "iris-endpoint")
	report := p.Run(context.Background())

	_, singleFailed := Tally(report.Single)
	_, batchFailed := Tally(report.Batch)
	assert.Zero(t, singleFailed)
	assert.Equal(t, 3, batchFailed)
	for _, r := range report.Batch {
		assert.Contains(t, r.Error, "ThrottlingException")
	}
	assert.ErrorIs(t, report.Err(false), ErrProbeFailed)
}

func TestProbe_ShortBatchFailsMissingPositions(t *testing.T) {
	p := NewProber(&stubEndpoint{shortBatch: true}, "iris-endpoint")

	batch := p.CheckBatch(context.Background())
	require.Len(t, batch, 3)
	assert.True(t, batch[0].Passed)
	assert.False(t, batch[1].Passed)
	assert.False(t, batch[2].Passed)
}

func TestProbe_LenientEndpointFailsNegativeChecks(t *testing.T) {
	p := NewProber(&stubEndpoint{lenient: true}, "iris-endpoint")
	report := p.Run(context.Background())

	passed, failed := Tally(report.Negative)
	assert.Zero(t, passed)
	assert.Equal(t, 3, failed)

	// informational unless strict
	assert.NoError(t, report.Err(false))
	assert.ErrorIs(t, report.Err(true), ErrProbeFailed)
}

func TestProbe_SingleErrorsAreIsolated(t *testing.T) {
	calls := 0
	p := NewProber(invokerFunc(func(_ context.Context, _ string, body []byte) ([]byte, error) {
		calls++
		if calls == 2 {
			return nil, errors.New("connection reset")
		}
		var in models.SinglePayload
		require.NoError(t, json.Unmarshal(body, &in))
		return json.Marshal(models.Prediction{Prediction: classify(in.Features)})
	}), "iris-endpoint")

	single := p.CheckSingle(context.Background())
	assert.True(t, single[0].Passed)
	assert.False(t, single[1].Passed)
	assert.Equal(t, "connection reset", single[1].Error)
	assert.True(t, single[2].Passed)
}

type invokerFunc func(ctx context.Context, name string, body []byte) ([]byte, error)

func (f invokerFunc) InvokeEndpoint(ctx context.Context, name string, body []byte) ([]byte, error) {
	return f(ctx, name, body)
}
