package models

import (
	"time"

	"gorm.io/gorm"
)

// TaskAuthor is the {email, company} snapshot taken when the task is created.
type TaskAuthor struct {
	Email   string `gorm:"column:author_email;type:varchar(255)" json:"email"`
	Company string `gorm:"column:author_company;type:varchar(255)" json:"company"`
}

// SelectedService is a catalog service the client picked for the order.
type SelectedService struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description,omitempty"`
	Price          float64 `json:"price"`
	EstimatedHours int     `json:"estimated_hours"`
	Category       string  `json:"category,omitempty"`
}

type Task struct {
	ID          string            `gorm:"primarykey;type:varchar(36)" json:"id"`
	Title       string            `gorm:"not null" json:"title"`
	Description string            `gorm:"type:text" json:"description"`
	Status      TaskStatus        `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	UserID      string            `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Author      TaskAuthor        `gorm:"embedded" json:"author"`
	Services    []SelectedService `gorm:"type:text;serializer:json" json:"services"`
	Deadline    time.Time         `gorm:"not null" json:"deadline"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	DeletedAt   gorm.DeletedAt    `gorm:"index" json:"-"`

	// Relations
	Attachments []TaskAttachment `gorm:"foreignKey:TaskID" json:"attachments"`
	Comments    []TaskComment    `gorm:"foreignKey:TaskID" json:"comments"`
}

// TotalHours sums the estimated hours of the selected services.
func (t *Task) TotalHours() int {
	total := 0
	for _, s := range t.Services {
		total += s.EstimatedHours
	}
	return total
}

// TotalPrice sums the prices of the selected services.
func (t *Task) TotalPrice() float64 {
	total := 0.0
	for _, s := range t.Services {
		total += s.Price
	}
	return total
}

// AttachmentByPurpose returns the first attachment with the given purpose.
func (t *Task) AttachmentByPurpose(purpose AttachmentPurpose) (*TaskAttachment, bool) {
	for i := range t.Attachments {
		if t.Attachments[i].Purpose == purpose {
			return &t.Attachments[i], true
		}
	}
	return nil, false
}
