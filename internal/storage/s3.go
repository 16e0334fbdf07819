package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Adapter stores blobs in AWS S3 or an S3-compatible service.
type S3Adapter struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// NewS3Adapter creates a new S3 storage adapter.
// For S3-compatible services, set the endpoint parameter.
func NewS3Adapter(ctx context.Context, accessKeyID, secretAccessKey, region, bucket, endpoint, publicURL string) (*S3Adapter, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID,
			secretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	if publicURL == "" {
		if endpoint != "" {
			publicURL = joinURL(endpoint, bucket)
		} else {
			publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
		}
	}

	return &S3Adapter{
		client:    client,
		bucket:    bucket,
		publicURL: publicURL,
	}, nil
}

func (a *S3Adapter) Put(ctx context.Context, path string, reader io.Reader) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if reader == nil {
		return "", fmt.Errorf("reader cannot be nil")
	}

	// Request signing needs a seekable body.
	body, ok := reader.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(reader)
		if err != nil {
			return "", fmt.Errorf("failed to read upload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(path),
		Body:        body,
		ContentType: aws.String(contentType(path)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object: %w", err)
	}

	return joinURL(a.publicURL, path), nil
}
