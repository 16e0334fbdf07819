// Package storage uploads task files to a blob store and returns their public URLs.
//
// Three providers are supported: the local filesystem (served by the API under
// /uploads), MinIO and AWS S3 or any S3-compatible endpoint.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/designdesk/task-desk-api/internal/config"
)

// Interface is the blob store contract used by the task engine.
type Interface interface {
	// Put stores the content under path and returns a URL clients can download it from.
	Put(ctx context.Context, path string, reader io.Reader) (string, error)
}

// Validate checks the configuration and fills provider defaults.
func Validate(c *config.StorageConfig) error {
	if c.Provider == "" {
		return errors.New("storage provider is required")
	}

	switch c.Provider {
	case "filesystem", "local":
		if c.Bucket == "" {
			c.Bucket = "./uploads"
		}
	case "s3", "aws-s3", "aws":
		if c.AccessKey == "" || c.SecretKey == "" || c.Bucket == "" {
			return errors.New("access key, secret key, and bucket are required for AWS S3")
		}
		if c.Region == "" {
			c.Region = "us-east-1"
		}
	case "minio":
		if c.AccessKey == "" || c.SecretKey == "" || c.Bucket == "" || c.Endpoint == "" {
			return errors.New("access key, secret key, bucket, and endpoint are required for MinIO")
		}
	default:
		return fmt.Errorf("unsupported storage provider: %s", c.Provider)
	}

	return nil
}

// New creates the blob store selected by cfg.Provider.
func New(ctx context.Context, cfg config.StorageConfig) (Interface, error) {
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid storage config: %w", err)
	}

	switch cfg.Provider {
	case "filesystem", "local":
		return NewFileSystem(cfg.Bucket, cfg.PublicURL)
	case "minio":
		return NewMinioAdapter(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey, cfg.Bucket, cfg.PublicURL, cfg.UseSSL)
	default:
		return NewS3Adapter(ctx, cfg.AccessKey, cfg.SecretKey, cfg.Region, cfg.Bucket, cfg.Endpoint, cfg.PublicURL)
	}
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// SafeFileName replaces every character outside [a-zA-Z0-9.-] with an underscore.
func SafeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	return unsafeChars.ReplaceAllString(name, "_")
}

// TaskFilePath builds the object key for a file uploaded to a task:
// tasks/{taskID}/{unixMillis}_{safeName}.
func TaskFilePath(taskID, fileName string, at time.Time) string {
	return fmt.Sprintf("tasks/%s/%d_%s", taskID, at.UnixMilli(), SafeFileName(fileName))
}

func contentType(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
