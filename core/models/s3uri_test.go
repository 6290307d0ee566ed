package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseS3URI(t *testing.T) {
	loc, err := ParseS3URI("s3://ml-bucket/model-artifacts/job-1/output/model.tar.gz")
	require.NoError(t, err)
	assert.Equal(t, "ml-bucket", loc.Bucket)
	assert.Equal(t, "model-artifacts/job-1/output/model.tar.gz", loc.Key)

	parent := loc.Parent()
	assert.Equal(t, "model-artifacts/job-1/output", parent.Key)
	assert.Equal(t, "s3://ml-bucket/model-artifacts/job-1/output/metrics.json", parent.Join("metrics.json").String())
}

func TestParseS3URI_Invalid(t *testing.T) {
	_, err := ParseS3URI("https://ml-bucket/key")
	assert.ErrorIs(t, err, ErrInvalidS3URI)

	_, err = ParseS3URI("s3:///key")
	assert.ErrorIs(t, err, ErrInvalidS3URI)
}

func TestS3Location_ParentOfTopLevelKey(t *testing.T) {
	loc, err := ParseS3URI("s3://ml-bucket/model.tar.gz")
	require.NoError(t, err)
	assert.Equal(t, "", loc.Parent().Key)
	assert.Equal(t, "metrics.json", loc.Parent().Join("metrics.json").Key)
}
