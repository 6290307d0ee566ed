package aws

import (
	"errors"
	"net/http"
	"strings"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// isObjectNotFound reports whether an S3 error means the key does not exist
func isObjectNotFound(err error) bool {
	var noSuchKey *s3types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *s3types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

// isResourceNotFound reports whether a SageMaker error means the named resource does not exist.
// SageMaker signals this with a ValidationException rather than a dedicated type.
func isResourceNotFound(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.ErrorCode() == "ResourceNotFound" {
		return true
	}
	if apiErr.ErrorCode() != "ValidationException" {
		return false
	}
	msg := apiErr.ErrorMessage()
	return strings.Contains(msg, "Could not find") || strings.Contains(msg, "Requested resource not found")
}
