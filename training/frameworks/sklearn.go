package frameworks

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// sklearnAccounts maps a region to the ECR registry account hosting the
// prebuilt scikit-learn framework images.
var sklearnAccounts = map[string]string{
	"us-east-1":      "683313688378",
	"us-east-2":      "257758044811",
	"us-west-1":      "746614075791",
	"us-west-2":      "246618743249",
	"ca-central-1":   "341280168497",
	"eu-west-1":      "141502667606",
	"eu-west-2":      "764974769150",
	"eu-central-1":   "492215442770",
	"ap-south-1":     "720646828776",
	"ap-southeast-1": "121021644041",
	"ap-southeast-2": "783357654285",
	"ap-northeast-1": "354813040037",
}

// Container contract keys read by the framework containers
const (
	HyperparamProgram         = "sagemaker_program"
	HyperparamSubmitDirectory = "sagemaker_submit_directory"
	HyperparamRegion          = "sagemaker_region"
	HyperparamLogLevel        = "sagemaker_container_log_level"

	EnvProgram         = "SAGEMAKER_PROGRAM"
	EnvSubmitDirectory = "SAGEMAKER_SUBMIT_DIRECTORY"
	EnvRegion          = "SAGEMAKER_REGION"
	EnvLogLevel        = "SAGEMAKER_CONTAINER_LOG_LEVEL"

	// logging.INFO in the container's python logger
	defaultContainerLogLevel = 20
)

// SKLearnSetup resolves images and container settings for the scikit-learn framework
type SKLearnSetup struct {
	Region           string
	FrameworkVersion string
	PythonVersion    string
}

// NewSKLearnSetup creates a setup, filling empty versions with the defaults
func NewSKLearnSetup(region, frameworkVersion, pythonVersion string) *SKLearnSetup {
	if frameworkVersion == "" {
		frameworkVersion = "1.2-1"
	}
	if pythonVersion == "" {
		pythonVersion = "py3"
	}
	return &SKLearnSetup{
		Region:           region,
		FrameworkVersion: frameworkVersion,
		PythonVersion:    pythonVersion,
	}
}

// ImageURI returns the CPU image used for both training and serving
func (s *SKLearnSetup) ImageURI() (string, error) {
	account, ok := sklearnAccounts[s.Region]
	if !ok {
		return "", fmt.Errorf("no scikit-learn image mapping for region %s", s.Region)
	}

	domain := "amazonaws.com"
	if strings.HasPrefix(s.Region, "cn-") {
		domain = "amazonaws.com.cn"
	}

	return fmt.Sprintf("%s.dkr.ecr.%s.%s/sagemaker-scikit-learn:%s-cpu-%s",
		account, s.Region, domain, s.FrameworkVersion, s.PythonVersion), nil
}

// TrainingHyperparameters encodes user hyperparameters the way the container
// expects them: every value JSON-encoded, plus the program/submit-dir contract keys.
func (s *SKLearnSetup) TrainingHyperparameters(
	hyperparameters map[string]interface{},
	entryPoint string,
	submitDirectory string,
) (map[string]string, error) {
	out := make(map[string]string, len(hyperparameters)+4)

	for k, v := range hyperparameters {
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("hyperparameter %s: %w", k, err)
		}
		out[k] = string(encoded)
	}

	contract := map[string]interface{}{
		HyperparamProgram:  entryPoint,
		HyperparamRegion:   s.Region,
		HyperparamLogLevel: defaultContainerLogLevel,
	}
	if submitDirectory != "" {
		contract[HyperparamSubmitDirectory] = submitDirectory
	}
	for k, v := range contract {
		encoded, _ := json.Marshal(v)
		out[k] = string(encoded)
	}

	return out, nil
}

// ServingEnvironment returns the model container environment for hosting
func (s *SKLearnSetup) ServingEnvironment(entryPoint, submitDirectory string) map[string]string {
	env := map[string]string{
		EnvProgram:  entryPoint,
		EnvRegion:   s.Region,
		EnvLogLevel: fmt.Sprintf("%d", defaultContainerLogLevel),
	}
	if submitDirectory != "" {
		env[EnvSubmitDirectory] = submitDirectory
	}
	return env
}

// SortedKeys is a small helper for deterministic logging of hyperparameters
func SortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
