package repository

import (
	"context"

	"github.com/designdesk/task-desk-api/internal/models"
	"github.com/designdesk/task-desk-api/internal/utils"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create assigns an ID when missing and the creation timestamp, then stores the task with its attachments
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task with attachments and comments ordered oldest-first
	FindByID(ctx context.Context, id string) (*models.Task, error)

	// List retrieves tasks matching the filter in store order
	List(ctx context.Context, filter TaskFilter) ([]models.Task, error)

	// UpdateFields writes a partial set of columns (last write wins)
	UpdateFields(ctx context.Context, id string, fields map[string]any) error

	// AppendComment appends a comment to the task's comment list
	AppendComment(ctx context.Context, taskID string, comment *models.TaskComment) error

	// AppendAttachments appends attachments in order
	AppendAttachments(ctx context.Context, taskID string, attachments []models.TaskAttachment) error

	// UpdateAttachmentURL replaces the URL of an existing attachment
	UpdateAttachmentURL(ctx context.Context, attachmentID uint64, url string) error

	// Delete soft deletes a task
	Delete(ctx context.Context, id string) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	UserID *string
	Status *models.TaskStatus
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create assigns an ID and stores the user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// List returns users ordered by email with pagination
	List(ctx context.Context, params utils.PaginationParams) ([]models.User, int64, error)

	// UpdateFields writes a partial set of columns
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
}
