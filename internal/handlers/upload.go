package handlers

import (
	"os"
	"path/filepath"

	apierrors "github.com/designdesk/task-desk-api/internal/errors"
	"github.com/designdesk/task-desk-api/internal/middleware"
	"github.com/gin-gonic/gin"
)

// UploadHandler serves files written by the filesystem blob store.
// Access is checked by RequireTaskAccess on the task that owns the file.
type UploadHandler struct {
	base string
}

func NewUploadHandler(base string) *UploadHandler {
	return &UploadHandler{
		base: base,
	}
}

// ServeTaskFile streams tasks/{id}/{file} from the storage directory
func (h *UploadHandler) ServeTaskFile(c *gin.Context) {
	task, exists := middleware.GetTask(c)
	if !exists {
		apierrors.InternalError(c, "Task not loaded")
		return
	}

	name := c.Param("file")
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		apierrors.NotFound(c, "File not found")
		return
	}

	path := filepath.Join(h.base, "tasks", task.ID, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		apierrors.NotFound(c, "File not found")
		return
	}

	c.File(path)
}
