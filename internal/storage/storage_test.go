package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/designdesk/task-desk-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"logo.png", "logo.png"},
		{"мой логотип.png", "___________.png"},
		{"brief (final).pdf", "brief__final_.pdf"},
		{"../../etc/passwd", "passwd"},
		{"", "file"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeFileName(tt.in))
		})
	}
}

func TestTaskFilePath(t *testing.T) {
	at := time.UnixMilli(1704067200123)
	assert.Equal(t, "tasks/abc/1704067200123_mock_up.jpg", TaskFilePath("abc", "mock up.jpg", at))
}

func TestFileSystem_Put(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileSystem(dir, "http://localhost:8080/uploads/")
	require.NoError(t, err)

	url, err := fs.Put(context.Background(), "tasks/t1/1_a.txt", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/tasks/t1/1_a.txt", url)

	data, err := os.ReadFile(filepath.Join(dir, "tasks", "t1", "1_a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestFileSystem_PutCanceled(t *testing.T) {
	fs, err := NewFileSystem(t.TempDir(), "http://x")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = fs.Put(ctx, "a.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValidate(t *testing.T) {
	c := config.StorageConfig{Provider: "filesystem"}
	require.NoError(t, Validate(&c))
	assert.Equal(t, "./uploads", c.Bucket)

	c = config.StorageConfig{Provider: "s3", AccessKey: "a", SecretKey: "b", Bucket: "c"}
	require.NoError(t, Validate(&c))
	assert.Equal(t, "us-east-1", c.Region)

	c = config.StorageConfig{Provider: "minio", AccessKey: "a", SecretKey: "b", Bucket: "c"}
	assert.Error(t, Validate(&c))

	c = config.StorageConfig{Provider: "ftp"}
	assert.Error(t, Validate(&c))
}

func TestNew_FileSystem(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "blobs")
	store, err := New(context.Background(), config.StorageConfig{
		Provider:  "filesystem",
		Bucket:    dir,
		PublicURL: "http://cdn",
	})
	require.NoError(t, err)

	fs, ok := store.(*FileSystem)
	require.True(t, ok)
	assert.Equal(t, dir, fs.Base())
}
