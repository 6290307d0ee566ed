package aws

import (
	"context"
	"fmt"
	"io"
	"os"

	"mlpipe/core/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// GetObject reads a whole object into memory; missing keys yield models.ErrObjectNotFound
func (c *Client) GetObject(ctx context.Context, loc models.S3Location) ([]byte, error) {
	out, err := c.objects.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		if isObjectNotFound(err) {
			return nil, fmt.Errorf("%w: %s", models.ErrObjectNotFound, loc)
		}
		return nil, fmt.Errorf("failed to get %s: %w", loc, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", loc, err)
	}
	return data, nil
}

// Download copies an object to a local file path
func (c *Client) Download(ctx context.Context, loc models.S3Location, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = c.downloader.Download(ctx, f, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		if isObjectNotFound(err) {
			return fmt.Errorf("%w: %s", models.ErrObjectNotFound, loc)
		}
		return fmt.Errorf("failed to download %s: %w", loc, err)
	}
	return f.Close()
}

// Upload streams body to the given location
func (c *Client) Upload(ctx context.Context, loc models.S3Location, body io.Reader) error {
	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
		Body:   body,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", loc, err)
	}
	return nil
}
