package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"
)

const contentTypeJSON = "application/json"

// InvokeEndpoint sends a JSON body to an endpoint and returns the raw response body.
// Model-side errors (4xx/5xx from the container) come back as errors.
func (c *Client) InvokeEndpoint(ctx context.Context, endpointName string, body []byte) ([]byte, error) {
	out, err := c.runtime.InvokeEndpoint(ctx, &sagemakerruntime.InvokeEndpointInput{
		EndpointName: aws.String(endpointName),
		ContentType:  aws.String(contentTypeJSON),
		Accept:       aws.String(contentTypeJSON),
		Body:         body,
	})
	if err != nil {
		return nil, fmt.Errorf("invoke %s: %w", endpointName, err)
	}
	return out.Body, nil
}
