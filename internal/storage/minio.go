package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioAdapter struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func NewMinioAdapter(endpoint, accessKeyID, secretAccessKey, bucket, publicURL string, useSSL bool) (*MinioAdapter, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	if publicURL == "" {
		scheme := "http"
		if useSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, endpoint, bucket)
	}

	return &MinioAdapter{
		client:    client,
		bucket:    bucket,
		publicURL: publicURL,
	}, nil
}

func (a *MinioAdapter) Put(ctx context.Context, path string, reader io.Reader) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if reader == nil {
		return "", fmt.Errorf("reader cannot be nil")
	}

	_, err := a.client.PutObject(ctx, a.bucket, path, reader, -1, minio.PutObjectOptions{
		ContentType: contentType(path),
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object: %w", err)
	}

	return joinURL(a.publicURL, path), nil
}
