package handlers

import (
	"errors"
	"net/http"

	"github.com/designdesk/task-desk-api/internal/dto"
	apierrors "github.com/designdesk/task-desk-api/internal/errors"
	"github.com/designdesk/task-desk-api/internal/middleware"
	"github.com/designdesk/task-desk-api/internal/services"
	"github.com/designdesk/task-desk-api/internal/utils"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetCompanySettings returns the current user's company profile
func (h *UserHandler) GetCompanySettings(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCompanySettingsDTO(*user))
}

// UpdateCompanySettings updates the current user's company profile.
// Existing tasks keep the company name they were created with.
func (h *UserHandler) UpdateCompanySettings(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type UpdateCompanyRequest struct {
		CompanyName        *string `json:"company_name"`
		CompanyWebsite     *string `json:"company_website"`
		CompanyDescription *string `json:"company_description"`
	}

	var req UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.UpdateCompanySettings(c.Request.Context(), userID, services.CompanySettingsInput{
		CompanyName:        req.CompanyName,
		CompanyWebsite:     req.CompanyWebsite,
		CompanyDescription: req.CompanyDescription,
	})
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCompanySettingsDTO(*user))
}

// ListUsers returns every account ordered by email. Administrators only.
func (h *UserHandler) ListUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	users, total, err := h.userService.ListUsers(c.Request.Context(), params)
	if err != nil {
		respondUserError(c, err)
		return
	}

	userDTOs := make([]dto.UserDTO, len(users))
	for i, u := range users {
		userDTOs[i] = dto.ToUserDTO(u)
	}

	c.JSON(http.StatusOK, dto.UserListResponse{
		Users: userDTOs,
		Pagination: utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetUser returns a profile with its tasks and task statistics. Administrators only.
func (h *UserHandler) GetUser(c *gin.Context) {
	detail, err := h.userService.GetUserDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDetailDTO(*detail))
}

func respondUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
