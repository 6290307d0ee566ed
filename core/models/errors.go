package models

import "errors"

var (
	ErrObjectNotFound   = errors.New("object not found")
	ErrEndpointNotFound = errors.New("endpoint not found")
	ErrJobNotFound      = errors.New("training job not found")
	ErrInvalidS3URI     = errors.New("invalid s3 uri")
)
