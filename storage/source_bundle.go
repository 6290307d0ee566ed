package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"mlpipe/core/models"

	log "github.com/sirupsen/logrus"
)

// SourceBundleName is the archive name the framework containers look for
const SourceBundleName = "sourcedir.tar.gz"

// Uploader stores a stream at an object location
type Uploader interface {
	Upload(ctx context.Context, loc models.S3Location, body io.Reader) error
}

// SourceBundler packs a code directory and uploads it for the framework containers
type SourceBundler struct {
	uploader Uploader
}

// NewSourceBundler creates a new source bundler
func NewSourceBundler(uploader Uploader) *SourceBundler {
	return &SourceBundler{uploader: uploader}
}

// Upload packs dir into <dest>/sourcedir.tar.gz and returns the resulting URI
func (b *SourceBundler) Upload(ctx context.Context, dir string, dest models.S3Location) (string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("source dir: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("source dir %s is not a directory", dir)
	}

	var buf bytes.Buffer
	if err := PackDir(dir, &buf); err != nil {
		return "", err
	}

	target := dest.Join(SourceBundleName)
	log.WithFields(log.Fields{
		"dir":    dir,
		"target": target.String(),
		"bytes":  buf.Len(),
	}).Info("Uploading source bundle")

	if err := b.uploader.Upload(ctx, target, &buf); err != nil {
		return "", err
	}
	return target.String(), nil
}
