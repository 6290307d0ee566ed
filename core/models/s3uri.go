package models

import (
	"fmt"
	"path"
	"strings"
)

// S3Location is a bucket plus key
type S3Location struct {
	Bucket string
	Key    string
}

// ParseS3URI splits "s3://bucket/key/..." into its parts
func ParseS3URI(uri string) (S3Location, error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return S3Location{}, fmt.Errorf("%w: %q", ErrInvalidS3URI, uri)
	}
	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return S3Location{}, fmt.Errorf("%w: %q has no bucket", ErrInvalidS3URI, uri)
	}
	return S3Location{Bucket: bucket, Key: key}, nil
}

// String renders the location as an s3:// URI
func (l S3Location) String() string {
	if l.Key == "" {
		return "s3://" + l.Bucket
	}
	return "s3://" + l.Bucket + "/" + l.Key
}

// Parent returns the location one key segment up
func (l S3Location) Parent() S3Location {
	dir := path.Dir(strings.TrimSuffix(l.Key, "/"))
	if dir == "." || dir == "/" {
		dir = ""
	}
	return S3Location{Bucket: l.Bucket, Key: dir}
}

// Join appends key segments
func (l S3Location) Join(elem ...string) S3Location {
	parts := append([]string{l.Key}, elem...)
	key := strings.TrimPrefix(path.Join(parts...), "/")
	return S3Location{Bucket: l.Bucket, Key: key}
}
