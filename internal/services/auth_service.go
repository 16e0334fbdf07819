package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/designdesk/task-desk-api/internal/constants"
	"github.com/designdesk/task-desk-api/internal/models"
	"github.com/designdesk/task-desk-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidEmail         = fmt.Errorf("%w: invalid email address", ErrValidation)
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrPasswordTooShort     = fmt.Errorf("%w: password too short", ErrValidation)
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrFailedToCreateUser   = errors.New("failed to create user")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo    repository.UserRepository
	adminEmails map[string]struct{}
}

// NewAuthService creates a new AuthService. Accounts registered with one of
// adminEmails receive the admin role.
func NewAuthService(userRepo repository.UserRepository, adminEmails []string) *AuthService {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		admins[normalizeEmail(email)] = struct{}{}
	}
	return &AuthService{
		userRepo:    userRepo,
		adminEmails: admins,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Email          string
	Password       string
	CompanyName    string
	CompanyWebsite string
}

// Signup creates a new user with its company profile.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*models.User, error) {
	email := normalizeEmail(input.Email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, ErrInvalidEmail
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Email:          email,
		PasswordHash:   string(hashedPassword),
		Role:           models.RoleClient,
		CompanyName:    strings.TrimSpace(input.CompanyName),
		CompanyWebsite: strings.TrimSpace(input.CompanyWebsite),
	}
	if _, ok := s.adminEmails[email]; ok {
		user.Role = models.RoleAdmin
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, ErrFailedToCreateUser
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// GrantAdmin gives the account registered with email the admin role.
func (s *AuthService) GrantAdmin(ctx context.Context, email string) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user.Role == models.RoleAdmin {
		return user, nil
	}
	if err := s.userRepo.UpdateFields(ctx, user.ID, map[string]any{"role": models.RoleAdmin}); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	user.Role = models.RoleAdmin
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
