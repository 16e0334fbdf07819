package models

import "time"

// CommentKind distinguishes user notes from the audit comments the engine writes.
type CommentKind string

const (
	CommentKindUserNote     CommentKind = "user_note"
	CommentKindStatusChange CommentKind = "status_change"
	CommentKindDesignReview CommentKind = "design_review"
	CommentKindRevision     CommentKind = "revision"
	CommentKindCompletion   CommentKind = "completion"
	CommentKindEdit         CommentKind = "edit"
)

// IsAudit reports whether comments of this kind are machine-generated.
func (k CommentKind) IsAudit() bool {
	return k != CommentKindUserNote
}

// CommentAuthor is the {email, company} of whoever wrote the comment.
type CommentAuthor struct {
	Email   string `gorm:"column:author_email;type:varchar(255)" json:"email"`
	Company string `gorm:"column:author_company;type:varchar(255)" json:"company"`
}

// CommentPayload carries the structured data of audit comments.
type CommentPayload struct {
	OldStatus   TaskStatus `json:"old_status,omitempty"`
	NewStatus   TaskStatus `json:"new_status,omitempty"`
	Reason      string     `json:"reason,omitempty"`
	Link        string     `json:"link,omitempty"`
	NewDeadline *time.Time `json:"new_deadline,omitempty"`
	Changes     []string   `json:"changes,omitempty"`
}

type TaskComment struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	TaskID    string         `gorm:"type:varchar(36);not null;index" json:"task_id"`
	Kind      CommentKind    `gorm:"type:varchar(20);not null;default:'user_note'" json:"kind"`
	Text      string         `gorm:"type:text;not null" json:"text"`
	Author    CommentAuthor  `gorm:"embedded" json:"author"`
	Payload   CommentPayload `gorm:"type:text;serializer:json" json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}
