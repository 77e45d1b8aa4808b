package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const contentTypeJSON = "application/json"

// s3API is the minimal S3 interface required by Client.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Client writes telemetry documents into the analytics bucket.
type Client struct {
	api    s3API
	bucket string
}

// New creates a Client for bucket.
func New(api s3API, bucket string) (*Client, error) {
	if api == nil {
		return nil, errors.New("archive: api must not be nil")
	}
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("archive: bucket must not be empty")
	}
	return &Client{api: api, bucket: bucket}, nil
}

// PutJSON stores body under key as application/json.
func (c *Client) PutJSON(ctx context.Context, key string, body []byte) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("archive: PutJSON: key is required")
	}
	_, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentTypeJSON),
	})
	if err != nil {
		return fmt.Errorf("archive: PutJSON s3://%s/%s: %w", c.bucket, key, err)
	}
	return nil
}
