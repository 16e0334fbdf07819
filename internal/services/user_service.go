package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/designdesk/task-desk-api/internal/models"
	"github.com/designdesk/task-desk-api/internal/repository"
	"github.com/designdesk/task-desk-api/internal/utils"
	"gorm.io/gorm"
)

// UserService manages company profiles and the administrator's user directory.
type UserService struct {
	userRepo repository.UserRepository
	taskRepo repository.TaskRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository, taskRepo repository.TaskRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
		taskRepo: taskRepo,
	}
}

// CompanySettingsInput holds the editable company profile fields. Nil means unchanged.
type CompanySettingsInput struct {
	CompanyName        *string
	CompanyWebsite     *string
	CompanyDescription *string
}

// UserDetail is a profile with its tasks (newest first) and their statistics.
type UserDetail struct {
	User  *models.User
	Tasks []models.Task
	Stats TaskStatistics
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// UpdateCompanySettings saves the company profile. Tasks keep the author
// snapshot taken when they were created.
func (s *UserService) UpdateCompanySettings(ctx context.Context, userID string, input CompanySettingsInput) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if input.CompanyName != nil {
		user.CompanyName = strings.TrimSpace(*input.CompanyName)
		fields["company_name"] = user.CompanyName
	}
	if input.CompanyWebsite != nil {
		user.CompanyWebsite = strings.TrimSpace(*input.CompanyWebsite)
		fields["company_website"] = user.CompanyWebsite
	}
	if input.CompanyDescription != nil {
		user.CompanyDescription = *input.CompanyDescription
		fields["company_description"] = user.CompanyDescription
	}
	if len(fields) == 0 {
		return user, nil
	}

	if err := s.userRepo.UpdateFields(ctx, userID, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update company settings: %w", err)
	}
	return user, nil
}

// ListUsers returns one page of users ordered by email.
func (s *UserService) ListUsers(ctx context.Context, params utils.PaginationParams) ([]models.User, int64, error) {
	users, total, err := s.userRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// GetUserDetail loads a profile with every task it owns.
func (s *UserService) GetUserDetail(ctx context.Context, id string) (*UserDetail, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.List(ctx, repository.TaskFilter{UserID: &user.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to list user tasks: %w", err)
	}
	SortTasksByCreatedAtDesc(tasks)

	return &UserDetail{
		User:  user,
		Tasks: tasks,
		Stats: TaskStats(tasks),
	}, nil
}
