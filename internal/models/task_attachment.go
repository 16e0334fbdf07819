package models

import "time"

type AttachmentType string

const (
	AttachmentTypeFile AttachmentType = "file"
	AttachmentTypeLink AttachmentType = "link"
)

// AttachmentPurpose tags what an attachment is for.
type AttachmentPurpose string

const (
	AttachmentPurposeGeneral AttachmentPurpose = "general"
	AttachmentPurposeExample AttachmentPurpose = "example"
	AttachmentPurposeMockup  AttachmentPurpose = "mockup"
	AttachmentPurposeResult  AttachmentPurpose = "result"
)

var purposeNames = map[AttachmentPurpose]string{
	AttachmentPurposeExample: "Ссылка на пример",
	AttachmentPurposeMockup:  "Ссылка на макет",
	AttachmentPurposeResult:  "Ссылка на результат",
}

// DisplayName is the fixed name shown for purpose-tagged links.
// General attachments have no fixed name and return "".
func (p AttachmentPurpose) DisplayName() string {
	return purposeNames[p]
}

type TaskAttachment struct {
	ID        uint64            `gorm:"primarykey" json:"id"`
	TaskID    string            `gorm:"type:varchar(36);not null;index" json:"task_id"`
	Name      string            `gorm:"type:varchar(255);not null" json:"name"`
	URL       string            `gorm:"type:text;not null" json:"url"`
	Type      AttachmentType    `gorm:"type:varchar(10);not null" json:"type"`
	Purpose   AttachmentPurpose `gorm:"type:varchar(20);not null;default:'general'" json:"purpose"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewLinkAttachment builds a purpose-tagged link using the purpose's display name.
func NewLinkAttachment(purpose AttachmentPurpose, url string) TaskAttachment {
	name := purpose.DisplayName()
	if name == "" {
		name = url
	}
	return TaskAttachment{
		Name:    name,
		URL:     url,
		Type:    AttachmentTypeLink,
		Purpose: purpose,
	}
}
