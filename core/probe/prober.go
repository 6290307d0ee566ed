package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"mlpipe/core/models"

	log "github.com/sirupsen/logrus"
)

// ErrProbeFailed is returned by Report.Err when a gating check failed
var ErrProbeFailed = errors.New("endpoint probe failed")

// Invoker sends a JSON request body to an endpoint
type Invoker interface {
	InvokeEndpoint(ctx context.Context, endpointName string, body []byte) ([]byte, error)
}

// Sample is a labeled feature vector
type Sample struct {
	Features []float64
	Expected string
}

// CanonicalSamples are rows 0, 50 and 100 of the iris dataset, one per class
var CanonicalSamples = []Sample{
	{Features: []float64{5.1, 3.5, 1.4, 0.2}, Expected: "setosa"},
	{Features: []float64{7.0, 3.2, 4.7, 1.4}, Expected: "versicolor"},
	{Features: []float64{6.3, 3.3, 6.0, 2.5}, Expected: "virginica"},
}

// negativePayloads must each be rejected by a healthy endpoint
var negativePayloads = []struct {
	name    string
	payload interface{}
}{
	{"wrong key", map[string]interface{}{"invalid_key": []int{1, 2, 3, 4}}},
	{"wrong feature count", map[string]interface{}{"features": []int{1, 2, 3}}},
	{"wrong type", map[string]interface{}{"features": "not a list"}},
}

// CheckResult is the outcome of one comparison or negative request
type CheckResult struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Expected string `json:"expected,omitempty"`
	Got      string `json:"got,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Report collects the three check groups
type Report struct {
	Endpoint string        `json:"endpoint"`
	Single   []CheckResult `json:"single"`
	Batch    []CheckResult `json:"batch"`
	Negative []CheckResult `json:"negative"`
}

// Tally counts passes and failures in a check group
func Tally(results []CheckResult) (passed, failed int) {
	for _, r := range results {
		if r.Passed {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}

// Err returns ErrProbeFailed when any single or batch check failed. Negative
// checks only count when strict is set.
func (r *Report) Err(strict bool) error {
	_, singleFailed := Tally(r.Single)
	_, batchFailed := Tally(r.Batch)
	failed := singleFailed + batchFailed
	if strict {
		_, negativeFailed := Tally(r.Negative)
		failed += negativeFailed
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d check(s) failed on %s", ErrProbeFailed, failed, r.Endpoint)
	}
	return nil
}

// Prober runs smoke checks against a live endpoint
type Prober struct {
	client   Invoker
	endpoint string
	samples  []Sample
}

// NewProber creates a prober using CanonicalSamples
func NewProber(client Invoker, endpoint string) *Prober {
	return &Prober{
		client:   client,
		endpoint: endpoint,
		samples:  CanonicalSamples,
	}
}

// Run executes single, batch and negative checks in that order
func (p *Prober) Run(ctx context.Context) *Report {
	report := &Report{
		Endpoint: p.endpoint,
		Single:   p.CheckSingle(ctx),
		Batch:    p.CheckBatch(ctx),
		Negative: p.CheckNegative(ctx),
	}

	sp, sf := Tally(report.Single)
	bp, bf := Tally(report.Batch)
	np, nf := Tally(report.Negative)
	log.WithFields(log.Fields{
		"endpoint":        p.endpoint,
		"single_passed":   sp,
		"single_failed":   sf,
		"batch_passed":    bp,
		"batch_failed":    bf,
		"negative_passed": np,
		"negative_failed": nf,
	}).Info("Probe summary")

	return report
}

// CheckSingle sends one request per sample. An error fails only that sample.
func (p *Prober) CheckSingle(ctx context.Context) []CheckResult {
	results := make([]CheckResult, 0, len(p.samples))

	for i, s := range p.samples {
		res := CheckResult{
			Name:     fmt.Sprintf("single-%d", i+1),
			Expected: s.Expected,
		}

		pred, err := p.predict(ctx, s.Features)
		if err != nil {
			res.Error = err.Error()
		} else {
			res.Got = pred.Prediction
			res.Passed = pred.Prediction == s.Expected
		}

		logResult(res)
		results = append(results, res)
	}
	return results
}

// CheckBatch sends all samples in one request. A request-level error fails every position.
func (p *Prober) CheckBatch(ctx context.Context) []CheckResult {
	instances := make([][]float64, len(p.samples))
	for i, s := range p.samples {
		instances[i] = s.Features
	}

	var (
		batch    models.BatchPrediction
		batchErr error
	)
	body, err := p.invoke(ctx, models.BatchPayload{Instances: instances})
	if err != nil {
		batchErr = err
	} else if err := json.Unmarshal(body, &batch); err != nil {
		batchErr = fmt.Errorf("invalid batch response: %w", err)
	}

	results := make([]CheckResult, 0, len(p.samples))
	for i, s := range p.samples {
		res := CheckResult{
			Name:     fmt.Sprintf("batch-%d", i+1),
			Expected: s.Expected,
		}
		switch {
		case batchErr != nil:
			res.Error = batchErr.Error()
		case i >= len(batch.Predictions):
			res.Error = "no prediction returned for this position"
		default:
			res.Got = batch.Predictions[i].Prediction
			res.Passed = res.Got == s.Expected
		}

		logResult(res)
		results = append(results, res)
	}
	return results
}

// CheckNegative sends malformed payloads; an error response is a pass
func (p *Prober) CheckNegative(ctx context.Context) []CheckResult {
	results := make([]CheckResult, 0, len(negativePayloads))

	for _, np := range negativePayloads {
		res := CheckResult{Name: "negative: " + np.name}

		body, err := p.invoke(ctx, np.payload)
		if err != nil {
			res.Passed = true
			res.Error = err.Error()
		} else {
			res.Got = string(body)
		}

		logResult(res)
		results = append(results, res)
	}
	return results
}

func (p *Prober) predict(ctx context.Context, features []float64) (*models.Prediction, error) {
	body, err := p.invoke(ctx, models.SinglePayload{Features: features})
	if err != nil {
		return nil, err
	}
	var pred models.Prediction
	if err := json.Unmarshal(body, &pred); err != nil {
		return nil, fmt.Errorf("invalid prediction response: %w", err)
	}
	return &pred, nil
}

func (p *Prober) invoke(ctx context.Context, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return p.client.InvokeEndpoint(ctx, p.endpoint, body)
}

func logResult(res CheckResult) {
	entry := log.WithFields(log.Fields{
		"check":    res.Name,
		"expected": res.Expected,
		"got":      res.Got,
	})
	if res.Error != "" {
		entry = entry.WithField("error", res.Error)
	}
	if res.Passed {
		entry.Info("PASSED")
	} else {
		entry.Warn("FAILED")
	}
}
