package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/designdesk/task-desk-api/internal/constants"
	"github.com/designdesk/task-desk-api/internal/dto"
	apierrors "github.com/designdesk/task-desk-api/internal/errors"
	"github.com/designdesk/task-desk-api/internal/middleware"
	"github.com/designdesk/task-desk-api/internal/models"
	"github.com/designdesk/task-desk-api/internal/services"
	"github.com/designdesk/task-desk-api/internal/utils"
	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	taskService    *services.TaskService
	aiService      *services.AIService
	maxUploadBytes int64
}

// NewTaskHandler creates a new TaskHandler. aiService may be nil.
func NewTaskHandler(taskService *services.TaskService, aiService *services.AIService, maxUploadMB int64) *TaskHandler {
	return &TaskHandler{
		taskService:    taskService,
		aiService:      aiService,
		maxUploadBytes: maxUploadMB << 20,
	}
}

// ListTasks returns the tasks visible to the current user, newest first.
// Accepts ?status=, ?page= and ?limit=.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	input := services.ListTasksInput{}
	if raw := c.Query("status"); raw != "" {
		status := models.TaskStatus(raw)
		if !status.Valid() {
			apierrors.BadRequest(c, "Invalid status")
			return
		}
		input.Status = &status
	}

	params := utils.GetPaginationParams(c)
	input.Page = params.Page
	input.Limit = params.Limit

	tasks, total, err := h.taskService.ListTasks(c.Request.Context(), actor, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TaskListResponse{
		Tasks: dto.ToTaskListItemDTOs(tasks),
		Pagination: utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetTask returns a specific task by ID
// Task is already loaded by RequireTaskAccess middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(task))
}

type attachmentRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// CreateTask creates a new task from JSON or from a multipart form with a
// "payload" JSON field and "files" parts.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTaskRequest struct {
		Title       string                   `json:"title"`
		Description string                   `json:"description"`
		Deadline    *time.Time               `json:"deadline"`
		Services    []models.SelectedService `json:"services"`
		ExampleLink string                   `json:"example_link"`
		Attachments []attachmentRequest      `json:"attachments"`
	}

	var req CreateTaskRequest
	files, err := h.bindPayload(c, &req)
	if err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	links := make([]models.TaskAttachment, 0, len(req.Attachments))
	for _, a := range req.Attachments {
		if strings.TrimSpace(a.URL) == "" {
			continue
		}
		name := a.Name
		if name == "" {
			name = a.URL
		}
		links = append(links, models.TaskAttachment{
			Name:    name,
			URL:     a.URL,
			Type:    models.AttachmentTypeLink,
			Purpose: models.AttachmentPurposeGeneral,
		})
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), actor, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline,
		Services:    req.Services,
		ExampleLink: strings.TrimSpace(req.ExampleLink),
		Attachments: links,
		Files:       files,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// EditTask updates the given fields of a task. Omitted fields are left unchanged.
func (h *TaskHandler) EditTask(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type EditTaskRequest struct {
		Title       *string                   `json:"title"`
		Description *string                   `json:"description"`
		Deadline    *time.Time                `json:"deadline"`
		Services    *[]models.SelectedService `json:"services"`
		ExampleLink *string                   `json:"example_link"`
	}

	var req EditTaskRequest
	files, err := h.bindPayload(c, &req)
	if err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.EditTask(c.Request.Context(), c.Param("id"), actor, services.EditTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline,
		Services:    req.Services,
		ExampleLink: req.ExampleLink,
		Files:       files,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), c.Param("id"), actor); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// AddComment appends a note to the task
func (h *TaskHandler) AddComment(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type AddCommentRequest struct {
		Text string `json:"text"`
	}

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.AddComment(c.Request.Context(), c.Param("id"), actor, req.Text)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// ChangeStatus moves the task to another status. Administrators only.
func (h *TaskHandler) ChangeStatus(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type ChangeStatusRequest struct {
		Status models.TaskStatus `json:"status" binding:"required"`
	}

	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.ChangeStatus(c.Request.Context(), c.Param("id"), req.Status, actor)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// SubmitReview sends the task to design review with a note, an optional
// mockup link and files. Administrators only.
func (h *TaskHandler) SubmitReview(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type SubmitReviewRequest struct {
		Text string `json:"text"`
		Link string `json:"link"`
	}

	var req SubmitReviewRequest
	files, err := h.bindPayload(c, &req)
	if err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.SubmitForDesignReview(c.Request.Context(), c.Param("id"), actor, services.ReviewInput{
		Text:  req.Text,
		Link:  strings.TrimSpace(req.Link),
		Files: files,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// RequestRevision returns the task to work and extends its deadline
func (h *TaskHandler) RequestRevision(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type RevisionRequest struct {
		Reason string `json:"reason"`
	}

	var req RevisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.RequestRevision(c.Request.Context(), c.Param("id"), actor, req.Reason)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CompleteTask accepts the result. The body is optional.
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CompleteRequest struct {
		ResultLink string `json:"result_link"`
	}

	var req CompleteRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apierrors.BadRequest(c, "Invalid request body")
			return
		}
	}

	task, err := h.taskService.CompleteTask(c.Request.Context(), c.Param("id"), actor, strings.TrimSpace(req.ResultLink))
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DraftTask turns a free-form brief into a suggested task using AI
func (h *TaskHandler) DraftTask(c *gin.Context) {
	type DraftTaskRequest struct {
		Brief string `json:"brief" binding:"required"`
	}

	var req DraftTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if h.aiService == nil {
		apierrors.ServiceUnavailable(c, "AI service is not configured. Please set OPENAI_API_KEY environment variable.")
		return
	}

	draft, err := h.aiService.DraftTaskFromBrief(c.Request.Context(), req.Brief)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"draft": draft})
}

// bindPayload decodes the request into dst. Multipart requests carry the JSON
// in the "payload" field and files in "files" parts.
func (h *TaskHandler) bindPayload(c *gin.Context, dst any) ([]services.UploadFile, error) {
	if c.ContentType() != "multipart/form-data" {
		return nil, c.ShouldBindJSON(dst)
	}

	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("failed to parse multipart form: %w", err)
	}

	if values := form.Value["payload"]; len(values) > 0 && values[0] != "" {
		if err := json.Unmarshal([]byte(values[0]), dst); err != nil {
			return nil, fmt.Errorf("failed to decode payload: %w", err)
		}
	}

	headers := form.File["files"]
	files := make([]services.UploadFile, 0, len(headers))
	for _, fh := range headers {
		files = append(files, services.UploadFile{
			Name: fh.Filename,
			Open: func() (io.ReadCloser, error) {
				f, err := fh.Open()
				if err != nil {
					return nil, err
				}
				return f, nil
			},
		})
	}
	return files, nil
}

func respondTaskError(c *gin.Context, err error) {
	var (
		uploadErr  *services.UploadError
		partialErr *services.PartialWriteError
	)

	switch {
	case errors.Is(err, services.ErrStorageNotConfigured),
		errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, err.Error())
	case errors.As(err, &uploadErr):
		apierrors.UploadFailed(c, fmt.Sprintf("Failed to upload %s", uploadErr.FileName), gin.H{
			"file":     uploadErr.FileName,
			"orphaned": uploadErr.Orphaned,
		})
	case errors.As(err, &partialErr):
		apierrors.PartialWrite(c, fmt.Sprintf("%s was saved but its audit comment was not recorded", partialErr.Operation))
	case errors.Is(err, services.ErrTooManyFiles):
		apierrors.BadRequest(c, fmt.Sprintf("At most %d files can be uploaded at once", constants.MaxUploadFiles))
	case errors.Is(err, services.ErrValidation):
		apierrors.BadRequest(c, strings.TrimPrefix(err.Error(), services.ErrValidation.Error()+": "))
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	case errors.Is(err, services.ErrTaskPermissionDenied):
		apierrors.Forbidden(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
