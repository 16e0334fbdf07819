package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleClient UserRole = "client"
	RoleAdmin  UserRole = "admin"
)

// User is an account together with its company profile.
type User struct {
	ID                 string         `gorm:"primarykey;type:varchar(36)" json:"id"`
	Email              string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash       string         `gorm:"type:varchar(255);not null" json:"-"`
	Role               UserRole       `gorm:"type:varchar(20);not null;default:'client'" json:"role"`
	CompanyName        string         `gorm:"type:varchar(255)" json:"company_name"`
	CompanyWebsite     string         `gorm:"type:varchar(255)" json:"company_website"`
	CompanyDescription string         `gorm:"type:text" json:"company_description"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Tasks []Task `gorm:"foreignKey:UserID" json:"-"`
}

// IsPrivileged reports whether the user has cross-tenant access.
func (u *User) IsPrivileged() bool {
	return u.Role == RoleAdmin
}
