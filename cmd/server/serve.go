package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/designdesk/task-desk-api/internal/config"
	"github.com/designdesk/task-desk-api/internal/constants"
	"github.com/designdesk/task-desk-api/internal/database"
	"github.com/designdesk/task-desk-api/internal/ratelimit"
	"github.com/designdesk/task-desk-api/internal/repository"
	"github.com/designdesk/task-desk-api/internal/services"
	"github.com/designdesk/task-desk-api/internal/storage"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(opts)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Run migrations
	if err := database.Migrate(log); err != nil {
		return err
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	sessionStore, err := newSessionStore(cfg)
	if err != nil {
		return err
	}

	limiter, closeLimiter, err := newLimiter(cfg)
	if err != nil {
		return err
	}
	defer closeLimiter()

	// Initialize AI service
	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}

	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	r := newRouter(routerDeps{
		log:          log,
		sessionStore: sessionStore,
		limiter:      limiter,
		authService:  services.NewAuthService(userRepo, cfg.AdminEmails),
		userService:  services.NewUserService(userRepo, taskRepo),
		taskService:  services.NewTaskService(taskRepo, store, log, cfg.RevisionExtensionDays),
		aiService:    aiService,
		maxUploadMB:  cfg.MaxUploadMB,
		store:        store,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	switch cfg.SessionStore {
	case "cookie":
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	default:
		rs, err := redisStore.NewStore(
			10,              // Redis pool size
			"tcp",           // network type
			cfg.RedisAddr(), // Redis address from config
			"",              // username (empty for default user)
			"",              // password (empty = no password)
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis store: %w", err)
		}
		store = rs
	}

	// Configure session options based on environment
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}

func newLimiter(cfg *config.Config) (ratelimit.Limiter, func(), error) {
	if cfg.RateLimitBackend != "redis" {
		return ratelimit.NewMemoryLimiter(cfg.RateLimitPerMinute, time.Minute), func() {}, nil
	}

	client, err := ratelimit.NewRedisClient(cfg.RedisAddr())
	if err != nil {
		return nil, nil, err
	}
	limiter := ratelimit.NewRedisLimiter(client, constants.SessionCookieName+":ratelimit:", cfg.RateLimitPerMinute, time.Minute)
	return limiter, client.Close, nil
}
