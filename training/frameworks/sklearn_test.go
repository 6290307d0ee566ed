package frameworks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageURI(t *testing.T) {
	s := NewSKLearnSetup("us-east-1", "", "")

	uri, err := s.ImageURI()
	require.NoError(t, err)
	assert.Equal(t, "683313688378.dkr.ecr.us-east-1.amazonaws.com/sagemaker-scikit-learn:1.2-1-cpu-py3", uri)
}

func TestImageURI_UnknownRegion(t *testing.T) {
	s := NewSKLearnSetup("mars-north-1", "1.2-1", "py3")

	_, err := s.ImageURI()
	assert.Error(t, err)
}

func TestTrainingHyperparameters(t *testing.T) {
	s := NewSKLearnSetup("eu-west-1", "1.2-1", "py3")

	hp, err := s.TrainingHyperparameters(map[string]interface{}{
		"n-estimators": 100,
		"test-size":    0.2,
		"criterion":    "gini",
	}, "train.py", "s3://ml-bucket/code/job/source/sourcedir.tar.gz")
	require.NoError(t, err)

	assert.Equal(t, "100", hp["n-estimators"])
	assert.Equal(t, "0.2", hp["test-size"])
	assert.Equal(t, `"gini"`, hp["criterion"])
	assert.Equal(t, `"train.py"`, hp[HyperparamProgram])
	assert.Equal(t, `"s3://ml-bucket/code/job/source/sourcedir.tar.gz"`, hp[HyperparamSubmitDirectory])
	assert.Equal(t, `"eu-west-1"`, hp[HyperparamRegion])
	assert.Equal(t, "20", hp[HyperparamLogLevel])
}

func TestTrainingHyperparameters_NoSubmitDirectory(t *testing.T) {
	s := NewSKLearnSetup("us-east-1", "", "")

	hp, err := s.TrainingHyperparameters(nil, "train.py", "")
	require.NoError(t, err)
	assert.NotContains(t, hp, HyperparamSubmitDirectory)
	assert.Equal(t, []string{HyperparamLogLevel, HyperparamProgram, HyperparamRegion}, SortedKeys(hp))
}

func TestServingEnvironment(t *testing.T) {
	s := NewSKLearnSetup("us-west-2", "", "")

	env := s.ServingEnvironment("inference.py", "s3://ml-bucket/code/m/sourcedir.tar.gz")
	assert.Equal(t, "inference.py", env[EnvProgram])
	assert.Equal(t, "s3://ml-bucket/code/m/sourcedir.tar.gz", env[EnvSubmitDirectory])
	assert.Equal(t, "us-west-2", env[EnvRegion])
}
