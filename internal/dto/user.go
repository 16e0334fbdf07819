package dto

import (
	"time"

	"github.com/designdesk/task-desk-api/internal/models"
	"github.com/designdesk/task-desk-api/internal/services"
	"github.com/designdesk/task-desk-api/internal/utils"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID          string          `json:"id"`
	Email       string          `json:"email"`
	Role        models.UserRole `json:"role"`
	CompanyName string          `json:"company_name"`
}

// CompanySettingsDTO is the company profile edited on the settings page
type CompanySettingsDTO struct {
	CompanyName        string    `json:"company_name"`
	CompanyWebsite     string    `json:"company_website"`
	CompanyDescription string    `json:"company_description"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// UserListResponse represents a paginated list of users
type UserListResponse struct {
	Users      []UserDTO                `json:"users"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// UserDetailDTO is a profile with its tasks and task statistics
type UserDetailDTO struct {
	UserDTO
	Company CompanySettingsDTO      `json:"company"`
	Tasks   []TaskListItemDTO       `json:"tasks"`
	Stats   services.TaskStatistics `json:"stats"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		Email:       user.Email,
		Role:        user.Role,
		CompanyName: user.CompanyName,
	}
}

// ToCompanySettingsDTO converts a User model to its company profile
func ToCompanySettingsDTO(user models.User) CompanySettingsDTO {
	return CompanySettingsDTO{
		CompanyName:        user.CompanyName,
		CompanyWebsite:     user.CompanyWebsite,
		CompanyDescription: user.CompanyDescription,
		UpdatedAt:          user.UpdatedAt,
	}
}

// ToUserDetailDTO converts a user detail view
func ToUserDetailDTO(detail services.UserDetail) UserDetailDTO {
	return UserDetailDTO{
		UserDTO: ToUserDTO(*detail.User),
		Company: ToCompanySettingsDTO(*detail.User),
		Tasks:   ToTaskListItemDTOs(detail.Tasks),
		Stats:   detail.Stats,
	}
}
