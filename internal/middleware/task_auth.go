package middleware

import (
	"context"
	"errors"

	"github.com/designdesk/task-desk-api/internal/constants"
	apierrors "github.com/designdesk/task-desk-api/internal/errors"
	"github.com/designdesk/task-desk-api/internal/models"
	"github.com/designdesk/task-desk-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TaskLoader fetches a task on behalf of an actor.
type TaskLoader interface {
	GetTask(ctx context.Context, taskID string, actor services.Actor) (*models.Task, error)
}

// RequireTaskAccess checks if the actor may see the task named by the :id parameter.
// Tasks owned by another client are reported as not found.
func RequireTaskAccess(tasks TaskLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID := c.Param("id")
		if _, err := uuid.Parse(taskID); err != nil {
			apierrors.BadRequest(c, "Invalid task ID")
			c.Abort()
			return
		}

		actor, exists := GetActor(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		task, err := tasks.GetTask(c.Request.Context(), taskID, actor)
		if err != nil {
			if errors.Is(err, services.ErrTaskNotFound) {
				apierrors.NotFound(c, "Task not found")
			} else {
				apierrors.InternalError(c, "Failed to load task")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTask, *task)
		c.Next()
	}
}

// GetTask retrieves the task set by RequireTaskAccess
func GetTask(c *gin.Context) (models.Task, bool) {
	value, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return models.Task{}, false
	}
	task, ok := value.(models.Task)
	return task, ok
}
