package middleware

import (
	"context"
	"errors"

	"github.com/designdesk/task-desk-api/internal/constants"
	apierrors "github.com/designdesk/task-desk-api/internal/errors"
	"github.com/designdesk/task-desk-api/internal/models"
	"github.com/designdesk/task-desk-api/internal/services"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// RequireAuth checks if the user is authenticated via session
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := session.Get(constants.ContextKeyUserID).(string)

		if !ok || userID == "" {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		// Store user ID in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok && id != ""
}

// UserLoader looks up the profile behind a session.
type UserLoader interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// LoadActor resolves the session user into a services.Actor.
// A session whose user no longer exists is treated as logged out.
func LoadActor(users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		user, err := users.GetUser(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				apierrors.Unauthorized(c, "Session user no longer exists")
			} else {
				apierrors.InternalError(c, "Failed to load user")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyActor, services.ActorFromUser(user))
		c.Next()
	}
}

// GetActor retrieves the actor set by LoadActor
func GetActor(c *gin.Context) (services.Actor, bool) {
	value, exists := c.Get(constants.ContextKeyActor)
	if !exists {
		return services.Actor{}, false
	}
	actor, ok := value.(services.Actor)
	return actor, ok
}

// RequireAdmin rejects actors without the admin role
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, exists := GetActor(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		if !actor.Privileged {
			apierrors.Forbidden(c, "Administrator access required")
			c.Abort()
			return
		}
		c.Next()
	}
}
