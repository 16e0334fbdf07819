package middleware

import (
	apierrors "github.com/designdesk/task-desk-api/internal/errors"
	"github.com/designdesk/task-desk-api/internal/ratelimit"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RateLimit throttles requests per client IP. Limiter failures let the request through.
func RateLimit(limiter ratelimit.Limiter, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.WithError(err).Warn("rate limiter unavailable")
			c.Next()
			return
		}
		if !allowed {
			apierrors.TooManyRequests(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}
