package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FileSystem stores blobs under a local directory.
type FileSystem struct {
	base      string
	publicURL string
}

// NewFileSystem creates the base directory if needed.
func NewFileSystem(base, publicURL string) (*FileSystem, error) {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileSystem{base: base, publicURL: publicURL}, nil
}

// Base returns the directory blobs are written to.
func (f *FileSystem) Base() string {
	return f.base
}

func (f *FileSystem) Put(ctx context.Context, path string, reader io.Reader) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if reader == nil {
		return "", fmt.Errorf("reader cannot be nil")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	full := filepath.Join(f.base, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return joinURL(f.publicURL, path), nil
}
