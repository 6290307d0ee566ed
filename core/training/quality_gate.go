package training

import (
	"errors"
	"fmt"

	"mlpipe/core/models"
)

// ErrBelowThreshold is returned when a trained model does not meet the accuracy bar
var ErrBelowThreshold = errors.New("model accuracy below threshold")

// CheckQuality fails when the record has no real metrics or accuracy < threshold
func CheckQuality(info *models.TrainingJobInfo, threshold float64) error {
	if info == nil || info.Metrics == nil {
		return fmt.Errorf("%w: no metrics recorded", ErrBelowThreshold)
	}
	if info.Metrics.IsSentinel() {
		return fmt.Errorf("%w: %s", ErrBelowThreshold, info.Metrics.Note)
	}
	if info.Metrics.Accuracy < threshold {
		return fmt.Errorf("%w: %.4f < %.4f", ErrBelowThreshold, info.Metrics.Accuracy, threshold)
	}
	return nil
}
