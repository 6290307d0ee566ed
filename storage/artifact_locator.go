package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"mlpipe/core/models"

	log "github.com/sirupsen/logrus"
)

const (
	metricsFileName = "metrics.json"
	outputArchive   = "output.tar.gz"
)

// ObjectStore is the slice of the object storage API the locator needs
type ObjectStore interface {
	GetObject(ctx context.Context, loc models.S3Location) ([]byte, error)
	Download(ctx context.Context, loc models.S3Location, path string) error
}

// ArtifactLocator resolves the metrics document written next to a job's model artifact
type ArtifactLocator struct {
	store ObjectStore
	// TempDir is the parent of per-call scratch dirs; empty means os.TempDir
	TempDir string
}

// NewArtifactLocator creates a new artifact locator
func NewArtifactLocator(store ObjectStore) *ArtifactLocator {
	return &ArtifactLocator{store: store}
}

// FetchMetrics returns the metrics for the artifact at artifactPath.
//
// The direct object <parent>/metrics.json wins; otherwise <parent>/output.tar.gz is
// downloaded and searched. When neither yields a document a sentinel with accuracy
// 0.0 is returned. FetchMetrics never fails.
func (l *ArtifactLocator) FetchMetrics(ctx context.Context, artifactPath string) *models.Metrics {
	logger := log.WithField("artifact", artifactPath)

	loc, err := models.ParseS3URI(artifactPath)
	if err != nil {
		logger.WithError(err).Warn("Cannot resolve metrics for malformed artifact path")
		return models.SentinelMetrics(fmt.Sprintf("metrics not found in %s", artifactPath))
	}
	parent := loc.Parent()

	metrics, err := l.fetchDirect(ctx, parent)
	if err == nil {
		logger.Info("Loaded metrics from output object")
		return metrics
	}
	logger.WithError(err).Debug("Direct metrics lookup failed, trying output archive")

	metrics, err = l.fetchFromArchive(ctx, parent)
	if err == nil {
		logger.Info("Loaded metrics from output archive")
		return metrics
	}
	logger.WithError(err).Warn("Metrics not found, using sentinel")

	return models.SentinelMetrics(fmt.Sprintf("metrics not found in %s", artifactPath))
}

func (l *ArtifactLocator) fetchDirect(ctx context.Context, parent models.S3Location) (*models.Metrics, error) {
	data, err := l.store.GetObject(ctx, parent.Join(metricsFileName))
	if err != nil {
		return nil, err
	}
	return decodeMetrics(data)
}

func (l *ArtifactLocator) fetchFromArchive(ctx context.Context, parent models.S3Location) (*models.Metrics, error) {
	dir, err := os.MkdirTemp(l.TempDir, "mlpipe-output-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	archivePath := filepath.Join(dir, outputArchive)
	if err := l.store.Download(ctx, parent.Join(outputArchive), archivePath); err != nil {
		return nil, err
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return readMetricsArchive(f)
}

func readMetricsArchive(r io.Reader) (*models.Metrics, error) {
	data, err := ExtractFile(r, metricsFileName)
	if err != nil {
		return nil, err
	}
	return decodeMetrics(data)
}

func decodeMetrics(data []byte) (*models.Metrics, error) {
	var m models.Metrics
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid metrics document: %w", err)
	}
	return &m, nil
}
