package main

import (
	"net/http"

	"github.com/designdesk/task-desk-api/internal/constants"
	"github.com/designdesk/task-desk-api/internal/handlers"
	"github.com/designdesk/task-desk-api/internal/metrics"
	"github.com/designdesk/task-desk-api/internal/middleware"
	"github.com/designdesk/task-desk-api/internal/ratelimit"
	"github.com/designdesk/task-desk-api/internal/services"
	"github.com/designdesk/task-desk-api/internal/storage"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type routerDeps struct {
	log          *logrus.Logger
	sessionStore sessions.Store
	limiter      ratelimit.Limiter
	authService  *services.AuthService
	userService  *services.UserService
	taskService  *services.TaskService
	aiService    *services.AIService
	maxUploadMB  int64
	store        storage.Interface
}

func newRouter(deps routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(deps.log), metrics.Middleware())
	r.Use(sessions.Sessions(constants.SessionCookieName, deps.sessionStore))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(deps.authService)
	userHandler := handlers.NewUserHandler(deps.userService)
	taskHandler := handlers.NewTaskHandler(deps.taskService, deps.aiService, deps.maxUploadMB)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Task Desk API is running",
		})
	})
	r.GET("/metrics", metrics.Handler())

	requireActor := []gin.HandlerFunc{middleware.RequireAuth(), middleware.LoadActor(deps.authService)}
	taskAccess := middleware.RequireTaskAccess(deps.taskService)

	// Files written by the filesystem adapter are served by the API itself,
	// to the same users who can open the task.
	if fs, ok := deps.store.(*storage.FileSystem); ok {
		uploadHandler := handlers.NewUploadHandler(fs.Base())
		uploads := r.Group("/uploads/tasks")
		uploads.Use(requireActor...)
		uploads.GET("/:id/:file", taskAccess, uploadHandler.ServeTaskFile)
	}

	// API routes
	api := r.Group("/api")
	api.Use(middleware.RateLimit(deps.limiter, deps.log))
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		settings := api.Group("/settings")
		settings.Use(requireActor...)
		{
			settings.GET("/company", userHandler.GetCompanySettings)
			settings.PUT("/company", userHandler.UpdateCompanySettings)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(requireActor...)
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.POST("/draft", taskHandler.DraftTask)
			tasks.GET("/:id", taskAccess, taskHandler.GetTask)
			tasks.PATCH("/:id", taskAccess, taskHandler.EditTask)
			tasks.DELETE("/:id", taskAccess, taskHandler.DeleteTask)
			tasks.POST("/:id/comments", taskAccess, taskHandler.AddComment)
			tasks.POST("/:id/status", taskAccess, middleware.RequireAdmin(), taskHandler.ChangeStatus)
			tasks.POST("/:id/review", taskAccess, middleware.RequireAdmin(), taskHandler.SubmitReview)
			tasks.POST("/:id/revision", taskAccess, taskHandler.RequestRevision)
			tasks.POST("/:id/complete", taskAccess, taskHandler.CompleteTask)
		}

		// User administration (admin only)
		users := api.Group("/users")
		users.Use(requireActor...)
		users.Use(middleware.RequireAdmin())
		{
			users.GET("", userHandler.ListUsers)
			users.GET("/:id", userHandler.GetUser)
		}
	}

	return r
}
