package dto

import (
	"time"

	"github.com/designdesk/task-desk-api/internal/models"
	"github.com/designdesk/task-desk-api/internal/utils"
)

// AuthorDTO is the {email, company} shown next to tasks and comments
type AuthorDTO struct {
	Email   string `json:"email"`
	Company string `json:"company"`
}

// AttachmentDTO represents an attachment in API responses
type AttachmentDTO struct {
	ID      uint64                   `json:"id"`
	Name    string                   `json:"name"`
	URL     string                   `json:"url"`
	Type    models.AttachmentType    `json:"type"`
	Purpose models.AttachmentPurpose `json:"purpose"`
}

// CommentDTO represents a comment in API responses
type CommentDTO struct {
	ID        uint64                `json:"id"`
	Kind      models.CommentKind    `json:"kind"`
	Audit     bool                  `json:"audit"`
	Text      string                `json:"text"`
	Author    AuthorDTO             `json:"author"`
	Payload   models.CommentPayload `json:"payload"`
	CreatedAt time.Time             `json:"created_at"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          string                   `json:"id"`
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	Status      models.TaskStatus        `json:"status"`
	StatusLabel string                   `json:"status_label"`
	UserID      string                   `json:"user_id"`
	Author      AuthorDTO                `json:"author"`
	Deadline    time.Time                `json:"deadline"`
	Services    []models.SelectedService `json:"services"`
	TotalHours  int                      `json:"total_hours"`
	TotalPrice  float64                  `json:"total_price"`
	Attachments []AttachmentDTO          `json:"attachments"`
	Comments    []CommentDTO             `json:"comments"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

// TaskListItemDTO represents a task in list responses (minimal data)
type TaskListItemDTO struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Status       models.TaskStatus `json:"status"`
	StatusLabel  string            `json:"status_label"`
	Author       AuthorDTO         `json:"author"`
	Deadline     time.Time         `json:"deadline"`
	TotalPrice   float64           `json:"total_price"`
	CommentCount int               `json:"comment_count"`
	CreatedAt    time.Time         `json:"created_at"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskListItemDTO        `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// Conversion functions

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	attachments := make([]AttachmentDTO, len(task.Attachments))
	for i, a := range task.Attachments {
		attachments[i] = AttachmentDTO{
			ID:      a.ID,
			Name:    a.Name,
			URL:     a.URL,
			Type:    a.Type,
			Purpose: a.Purpose,
		}
	}

	comments := make([]CommentDTO, len(task.Comments))
	for i, c := range task.Comments {
		comments[i] = CommentDTO{
			ID:        c.ID,
			Kind:      c.Kind,
			Audit:     c.Kind.IsAudit(),
			Text:      c.Text,
			Author:    AuthorDTO{Email: c.Author.Email, Company: c.Author.Company},
			Payload:   c.Payload,
			CreatedAt: c.CreatedAt,
		}
	}

	services := task.Services
	if services == nil {
		services = []models.SelectedService{}
	}

	return TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		StatusLabel: task.Status.Label(),
		UserID:      task.UserID,
		Author:      AuthorDTO{Email: task.Author.Email, Company: task.Author.Company},
		Deadline:    task.Deadline,
		Services:    services,
		TotalHours:  task.TotalHours(),
		TotalPrice:  task.TotalPrice(),
		Attachments: attachments,
		Comments:    comments,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// ToTaskListItemDTO converts a Task model to TaskListItemDTO
func ToTaskListItemDTO(task models.Task) TaskListItemDTO {
	return TaskListItemDTO{
		ID:           task.ID,
		Title:        task.Title,
		Status:       task.Status,
		StatusLabel:  task.Status.Label(),
		Author:       AuthorDTO{Email: task.Author.Email, Company: task.Author.Company},
		Deadline:     task.Deadline,
		TotalPrice:   task.TotalPrice(),
		CommentCount: len(task.Comments),
		CreatedAt:    task.CreatedAt,
	}
}

// ToTaskListItemDTOs converts a slice of tasks, keeping their order
func ToTaskListItemDTOs(tasks []models.Task) []TaskListItemDTO {
	items := make([]TaskListItemDTO, len(tasks))
	for i, t := range tasks {
		items[i] = ToTaskListItemDTO(t)
	}
	return items
}
