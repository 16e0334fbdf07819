package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/designdesk/task-desk-api/internal/constants"
	"github.com/designdesk/task-desk-api/internal/metrics"
	"github.com/designdesk/task-desk-api/internal/models"
	"github.com/designdesk/task-desk-api/internal/repository"
	"github.com/designdesk/task-desk-api/internal/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TaskService owns the task lifecycle: status transitions, the audit comments
// they produce and the attachment merge rules.
//
// Every status-changing operation writes the task first and appends its audit
// comment second. A failed second write is reported as *PartialWriteError and
// the first write is kept.
type TaskService struct {
	taskRepo     repository.TaskRepository
	store        storage.Interface
	log          *logrus.Logger
	now          func() time.Time
	revisionDays int
}

// NewTaskService creates a new TaskService. store may be nil when uploads are disabled.
func NewTaskService(taskRepo repository.TaskRepository, store storage.Interface, log *logrus.Logger, revisionDays int) *TaskService {
	if revisionDays <= 0 {
		revisionDays = constants.RevisionExtensionDays
	}
	return &TaskService{
		taskRepo:     taskRepo,
		store:        store,
		log:          log,
		now:          time.Now,
		revisionDays: revisionDays,
	}
}

// UploadFile is a file waiting to be stored in the blob store.
type UploadFile struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Deadline    *time.Time
	Services    []models.SelectedService
	ExampleLink string
	Attachments []models.TaskAttachment
	Files       []UploadFile
}

// EditTaskInput holds the fields an edit may change. Nil means unchanged.
type EditTaskInput struct {
	Title       *string
	Description *string
	Deadline    *time.Time
	Services    *[]models.SelectedService
	ExampleLink *string
	Files       []UploadFile
}

// ReviewInput is the package an administrator submits for design review.
type ReviewInput struct {
	Text  string
	Link  string
	Files []UploadFile
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Status *models.TaskStatus
	Page   int
	Limit  int
}

// GetTask returns a task the actor may see. Tasks owned by someone else are
// reported as not found.
func (s *TaskService) GetTask(ctx context.Context, taskID string, actor Actor) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if !actor.canSee(task) {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// CreateTask uploads the files, then stores a pending task owned by the actor.
func (s *TaskService) CreateTask(ctx context.Context, actor Actor, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if len(input.Files) > constants.MaxUploadFiles {
		return nil, ErrTooManyFiles
	}

	task := &models.Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: input.Description,
		Status:      models.TaskStatusPending,
		UserID:      actor.UserID,
		Author:      models.TaskAuthor{Email: actor.Email, Company: actor.Company},
		Services:    input.Services,
	}

	if input.Deadline != nil {
		task.Deadline = input.Deadline.UTC()
	} else {
		task.Deadline = defaultDeadline(s.now().UTC(), task.TotalHours())
	}

	if input.ExampleLink != "" {
		task.Attachments = append(task.Attachments, models.NewLinkAttachment(models.AttachmentPurposeExample, input.ExampleLink))
	}
	for _, a := range input.Attachments {
		if a.Purpose == "" {
			a.Purpose = models.AttachmentPurposeGeneral
		}
		task.Attachments = append(task.Attachments, models.TaskAttachment{
			Name:    a.Name,
			URL:     a.URL,
			Type:    a.Type,
			Purpose: a.Purpose,
		})
	}

	files, err := s.uploadFiles(ctx, task.ID, input.Files)
	if err != nil {
		return nil, err
	}
	task.Attachments = append(task.Attachments, files...)

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"task_id": task.ID,
		"user_id": actor.UserID,
	}).Info("Task created")

	return task, nil
}

// ChangeStatus moves a task to any valid status. Administrators only.
// Setting the current status again writes nothing.
func (s *TaskService) ChangeStatus(ctx context.Context, taskID string, status models.TaskStatus, actor Actor) (*models.Task, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	task, err := s.GetTask(ctx, taskID, actor)
	if err != nil {
		return nil, err
	}
	if !actor.Privileged {
		return nil, ErrTaskPermissionDenied
	}

	old := task.Status
	if old == status {
		return task, nil
	}

	if err := s.setStatus(ctx, task, status, nil); err != nil {
		return nil, err
	}

	comment := statusChangeComment(old, status, actor.commentAuthor())
	if err := s.appendAudit(ctx, task, "change_status", comment); err != nil {
		return nil, err
	}
	return task, nil
}

// SubmitForDesignReview attaches the review package and moves the task to
// design-review. Administrators only.
func (s *TaskService) SubmitForDesignReview(ctx context.Context, taskID string, actor Actor, input ReviewInput) (*models.Task, error) {
	text, err := requireText(input.Text, ErrReviewTextRequired)
	if err != nil {
		return nil, err
	}
	if len(input.Files) > constants.MaxUploadFiles {
		return nil, ErrTooManyFiles
	}
	link := strings.TrimSpace(input.Link)

	task, err := s.GetTask(ctx, taskID, actor)
	if err != nil {
		return nil, err
	}
	if !actor.Privileged {
		return nil, ErrTaskPermissionDenied
	}

	attachments, err := s.uploadFiles(ctx, task.ID, input.Files)
	if err != nil {
		return nil, err
	}
	if link != "" {
		attachments = append(attachments, models.NewLinkAttachment(models.AttachmentPurposeMockup, link))
	}

	if err := s.taskRepo.AppendAttachments(ctx, task.ID, attachments); err != nil {
		return nil, fmt.Errorf("failed to add review attachments: %w", err)
	}
	task.Attachments = append(task.Attachments, attachments...)

	old := task.Status
	if err := s.setStatus(ctx, task, models.TaskStatusDesignReview, nil); err != nil {
		return nil, err
	}

	comment := designReviewComment(old, text, link, actor.commentAuthor())
	if err := s.appendAudit(ctx, task, "submit_for_review", comment); err != nil {
		return nil, err
	}
	return task, nil
}

// RequestRevision sends the task back to in-progress and pushes the deadline
// out by the configured number of days.
func (s *TaskService) RequestRevision(ctx context.Context, taskID string, actor Actor, reason string) (*models.Task, error) {
	reason, err := requireText(reason, ErrRevisionReasonNeeded)
	if err != nil {
		return nil, err
	}

	task, err := s.GetTask(ctx, taskID, actor)
	if err != nil {
		return nil, err
	}

	// Calendar days, same wall-clock time.
	deadline := task.Deadline.AddDate(0, 0, s.revisionDays)

	old := task.Status
	if err := s.setStatus(ctx, task, models.TaskStatusInProgress, map[string]any{"deadline": deadline}); err != nil {
		return nil, err
	}
	task.Deadline = deadline

	comment := revisionComment(old, reason, deadline, actor.commentAuthor())
	if err := s.appendAudit(ctx, task, "request_revision", comment); err != nil {
		return nil, err
	}
	return task, nil
}

// CompleteTask marks the task completed. The status write is idempotent but
// every call appends a completion comment.
func (s *TaskService) CompleteTask(ctx context.Context, taskID string, actor Actor, resultLink string) (*models.Task, error) {
	task, err := s.GetTask(ctx, taskID, actor)
	if err != nil {
		return nil, err
	}

	resultLink = strings.TrimSpace(resultLink)
	if resultLink != "" {
		link := []models.TaskAttachment{models.NewLinkAttachment(models.AttachmentPurposeResult, resultLink)}
		if err := s.taskRepo.AppendAttachments(ctx, task.ID, link); err != nil {
			return nil, fmt.Errorf("failed to add result link: %w", err)
		}
		task.Attachments = append(task.Attachments, link...)
	}

	old := task.Status
	if err := s.setStatus(ctx, task, models.TaskStatusCompleted, nil); err != nil {
		return nil, err
	}

	comment := completionComment(old, resultLink, actor.commentAuthor())
	if err := s.appendAudit(ctx, task, "complete", comment); err != nil {
		return nil, err
	}
	return task, nil
}

// AddComment appends a user note to the task.
func (s *TaskService) AddComment(ctx context.Context, taskID string, actor Actor, text string) (*models.Task, error) {
	text, err := requireText(text, ErrCommentTextRequired)
	if err != nil {
		return nil, err
	}

	task, err := s.GetTask(ctx, taskID, actor)
	if err != nil {
		return nil, err
	}

	comment := userNote(text, actor.commentAuthor())
	if err := s.taskRepo.AppendComment(ctx, task.ID, comment); err != nil {
		metrics.AuditComments.WithLabelValues(string(comment.Kind), "failed").Inc()
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	metrics.AuditComments.WithLabelValues(string(comment.Kind), "ok").Inc()

	task.Comments = append(task.Comments, *comment)
	return task, nil
}

// EditTask applies the changed fields and appends one comment listing every
// change. An edit that changes nothing writes nothing.
func (s *TaskService) EditTask(ctx context.Context, taskID string, actor Actor, input EditTaskInput) (*models.Task, error) {
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return nil, ErrTitleRequired
	}
	if len(input.Files) > constants.MaxUploadFiles {
		return nil, ErrTooManyFiles
	}

	task, err := s.GetTask(ctx, taskID, actor)
	if err != nil {
		return nil, err
	}

	diff := diffTask(task, input)

	// The example link is a singleton replaced in place. Clearing it is not supported.
	var (
		example    *models.TaskAttachment
		newExample string
	)
	if input.ExampleLink != nil {
		link := strings.TrimSpace(*input.ExampleLink)
		current, ok := task.AttachmentByPurpose(models.AttachmentPurposeExample)
		switch {
		case link == "":
		case ok && current.URL != link:
			example, newExample = current, link
			diff.changes = append(diff.changes, changeExampleLink)
		case !ok:
			newExample = link
			diff.changes = append(diff.changes, changeExampleLink)
		}
	}

	files, err := s.uploadFiles(ctx, task.ID, input.Files)
	if err != nil {
		return nil, err
	}
	if len(files) > 0 {
		names := make([]string, len(files))
		for i, f := range files {
			names[i] = f.Name
		}
		diff.changes = append(diff.changes, changeFilesAdded+": "+strings.Join(names, ", "))
	}

	if diff.empty() {
		return task, nil
	}

	if len(diff.fields) > 0 {
		if err := s.taskRepo.UpdateFields(ctx, task.ID, diff.fields); err != nil {
			return nil, fmt.Errorf("failed to update task: %w", err)
		}
		applyFields(task, diff.fields)
	}

	if example != nil {
		if err := s.taskRepo.UpdateAttachmentURL(ctx, example.ID, newExample); err != nil {
			return nil, fmt.Errorf("failed to update example link: %w", err)
		}
		example.URL = newExample
	} else if newExample != "" {
		files = append([]models.TaskAttachment{models.NewLinkAttachment(models.AttachmentPurposeExample, newExample)}, files...)
	}

	if err := s.taskRepo.AppendAttachments(ctx, task.ID, files); err != nil {
		return nil, fmt.Errorf("failed to add attachments: %w", err)
	}
	task.Attachments = append(task.Attachments, files...)

	comment := editComment(diff.changes, actor.commentAuthor())
	if err := s.appendAudit(ctx, task, "edit", comment); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes a task the actor may see.
func (s *TaskService) DeleteTask(ctx context.Context, taskID string, actor Actor) error {
	task, err := s.GetTask(ctx, taskID, actor)
	if err != nil {
		return err
	}
	if err := s.taskRepo.Delete(ctx, task.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"task_id": task.ID,
		"user_id": actor.UserID,
	}).Info("Task deleted")
	return nil
}

// ListTasksFor returns every task for privileged users and only the user's own
// tasks otherwise, newest first.
func (s *TaskService) ListTasksFor(ctx context.Context, userID string, privileged bool) ([]models.Task, error) {
	tasks, _, err := s.ListTasks(ctx, Actor{UserID: userID, Privileged: privileged}, ListTasksInput{})
	return tasks, err
}

// ListTasks is ListTasksFor with an optional status filter and pagination
// applied after sorting. A zero Limit returns every match.
func (s *TaskService) ListTasks(ctx context.Context, actor Actor, input ListTasksInput) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{Status: input.Status}
	if !actor.Privileged {
		filter.UserID = &actor.UserID
	}

	tasks, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	SortTasksByCreatedAtDesc(tasks)
	total := int64(len(tasks))

	if input.Limit > 0 {
		page := input.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * input.Limit
		if start >= len(tasks) {
			return []models.Task{}, total, nil
		}
		end := min(start+input.Limit, len(tasks))
		tasks = tasks[start:end]
	}

	return tasks, total, nil
}

// setStatus writes the status together with any extra columns.
func (s *TaskService) setStatus(ctx context.Context, task *models.Task, status models.TaskStatus, extra map[string]any) error {
	fields := map[string]any{"status": status}
	for k, v := range extra {
		fields[k] = v
	}
	if err := s.taskRepo.UpdateFields(ctx, task.ID, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to update task status: %w", err)
	}

	if task.Status != status {
		metrics.StatusTransitions.WithLabelValues(string(task.Status), string(status)).Inc()
		s.log.WithFields(logrus.Fields{
			"task_id": task.ID,
			"from":    task.Status,
			"to":      status,
		}).Info("Task status changed")
	}
	task.Status = status
	return nil
}

// appendAudit is the second write of every status-changing operation.
func (s *TaskService) appendAudit(ctx context.Context, task *models.Task, op string, comment *models.TaskComment) error {
	if err := s.taskRepo.AppendComment(ctx, task.ID, comment); err != nil {
		metrics.AuditComments.WithLabelValues(string(comment.Kind), "failed").Inc()
		s.log.WithFields(logrus.Fields{
			"task_id":   task.ID,
			"operation": op,
			"kind":      comment.Kind,
		}).WithError(err).Error("Task updated but audit comment was not recorded")
		return &PartialWriteError{TaskID: task.ID, Operation: op, Err: err}
	}
	metrics.AuditComments.WithLabelValues(string(comment.Kind), "ok").Inc()

	task.Comments = append(task.Comments, *comment)
	return nil
}

// uploadFiles stores the files one at a time. The first failure aborts the
// batch; files already stored stay in the blob store.
func (s *TaskService) uploadFiles(ctx context.Context, taskID string, files []UploadFile) ([]models.TaskAttachment, error) {
	if len(files) == 0 {
		return nil, nil
	}

	attachments := make([]models.TaskAttachment, 0, len(files))
	for _, f := range files {
		url, err := s.uploadFile(ctx, taskID, f)
		if err != nil {
			metrics.Uploads.WithLabelValues("failed").Inc()

			orphaned := make([]string, len(attachments))
			for i, a := range attachments {
				orphaned[i] = a.URL
			}
			if len(orphaned) > 0 {
				s.log.WithFields(logrus.Fields{
					"task_id":  taskID,
					"file":     f.Name,
					"orphaned": orphaned,
				}).Warn("Upload batch aborted, stored files left orphaned")
			}
			return nil, &UploadError{FileName: f.Name, Orphaned: orphaned, Err: err}
		}

		metrics.Uploads.WithLabelValues("ok").Inc()
		attachments = append(attachments, models.TaskAttachment{
			Name:    f.Name,
			URL:     url,
			Type:    models.AttachmentTypeFile,
			Purpose: models.AttachmentPurposeGeneral,
		})
	}
	return attachments, nil
}

func (s *TaskService) uploadFile(ctx context.Context, taskID string, f UploadFile) (string, error) {
	if s.store == nil {
		return "", ErrStorageNotConfigured
	}

	reader, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	return s.store.Put(ctx, storage.TaskFilePath(taskID, f.Name, s.now()), reader)
}

func applyFields(task *models.Task, fields map[string]any) {
	if v, ok := fields["title"].(string); ok {
		task.Title = v
	}
	if v, ok := fields["description"].(string); ok {
		task.Description = v
	}
	if v, ok := fields["deadline"].(time.Time); ok {
		task.Deadline = v
	}
	if v, ok := fields["services"].([]models.SelectedService); ok {
		task.Services = v
	}
}
