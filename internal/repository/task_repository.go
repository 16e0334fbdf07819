package repository

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/designdesk/task-desk-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db, now: time.Now}
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	task.CreatedAt = r.now().UTC()
	for i := range task.Attachments {
		task.Attachments[i].TaskID = task.ID
	}
	return r.db.WithContext(ctx).Create(task).Error
}

// FindByID finds a task by ID with attachments and comments
func (r *GormTaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("task_attachments.id ASC")
		}).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("task_comments.id ASC")
		}).
		First(&task, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves tasks with filtering. Ordering is left to the caller.
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	var tasks []models.Task

	query := r.db.WithContext(ctx).Model(&models.Task{})
	if filter.UserID != nil {
		query = query.Where("tasks.user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}

	err := query.
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("task_attachments.id ASC")
		}).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("task_comments.id ASC")
		}).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateFields updates the given columns of a task
func (r *GormTaskRepository) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	values, err := r.serializeFields(ctx, fields)
	if err != nil {
		return err
	}

	res := r.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// serializeFields encodes values of columns tagged with a gorm serializer.
// Map updates hand values to the driver as is; only struct saves run the serializer.
func (r *GormTaskRepository) serializeFields(ctx context.Context, fields map[string]any) (map[string]any, error) {
	stmt := &gorm.Statement{DB: r.db}
	if err := stmt.Parse(&models.Task{}); err != nil {
		return nil, fmt.Errorf("failed to parse task schema: %w", err)
	}

	dst := reflect.ValueOf(&models.Task{}).Elem()
	values := make(map[string]any, len(fields))
	for k, v := range fields {
		if field := stmt.Schema.LookUpField(k); field != nil && field.Serializer != nil {
			encoded, err := field.Serializer.Value(ctx, field, dst, v)
			if err != nil {
				return nil, fmt.Errorf("failed to encode %s: %w", k, err)
			}
			v = encoded
		}
		values[k] = v
	}
	return values, nil
}

// AppendComment appends a comment to a task
func (r *GormTaskRepository) AppendComment(ctx context.Context, taskID string, comment *models.TaskComment) error {
	comment.TaskID = taskID
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = r.now().UTC()
	}
	return r.db.WithContext(ctx).Create(comment).Error
}

// AppendAttachments appends attachments to a task
func (r *GormTaskRepository) AppendAttachments(ctx context.Context, taskID string, attachments []models.TaskAttachment) error {
	if len(attachments) == 0 {
		return nil
	}
	for i := range attachments {
		attachments[i].TaskID = taskID
	}
	return r.db.WithContext(ctx).Create(&attachments).Error
}

// UpdateAttachmentURL replaces an attachment's URL
func (r *GormTaskRepository) UpdateAttachmentURL(ctx context.Context, attachmentID uint64, url string) error {
	return r.db.WithContext(ctx).Model(&models.TaskAttachment{}).
		Where("id = ?", attachmentID).
		Update("url", url).Error
}

// Delete soft deletes a task
func (r *GormTaskRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Task{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
