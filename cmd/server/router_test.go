package main

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/designdesk/task-desk-api/internal/constants"
	"github.com/designdesk/task-desk-api/internal/dto"
	"github.com/designdesk/task-desk-api/internal/logging"
	"github.com/designdesk/task-desk-api/internal/models"
	"github.com/designdesk/task-desk-api/internal/ratelimit"
	"github.com/designdesk/task-desk-api/internal/repository"
	"github.com/designdesk/task-desk-api/internal/services"
	"github.com/designdesk/task-desk-api/internal/storage"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Task{}, &models.TaskAttachment{}, &models.TaskComment{}))

	store, err := storage.NewFileSystem(t.TempDir(), "http://localhost:8080/uploads")
	require.NoError(t, err)

	log := logging.Discard()
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	return newRouter(routerDeps{
		log:          log,
		sessionStore: cookie.NewStore([]byte("secret")),
		limiter:      ratelimit.NewMemoryLimiter(1000, time.Minute),
		authService:  services.NewAuthService(userRepo, []string{"admin@studio.test"}),
		userService:  services.NewUserService(userRepo, taskRepo),
		taskService:  services.NewTaskService(taskRepo, store, log, constants.RevisionExtensionDays),
		maxUploadMB:  5,
		store:        store,
	})
}

type client struct {
	t       *testing.T
	r       *gin.Engine
	cookies []*http.Cookie
}

func (c *client) do(method, path string, payload any) *httptest.ResponseRecorder {
	c.t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(c.t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	c.r.ServeHTTP(w, req)
	return w
}

func signupAndLogin(t *testing.T, r *gin.Engine, email string) *client {
	t.Helper()
	c := &client{t: t, r: r}

	w := c.do(http.MethodPost, "/api/auth/signup", map[string]string{
		"email":        email,
		"password":     "supersecret",
		"company_name": "Acme",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = c.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": "supersecret",
	})
	require.Equal(t, http.StatusOK, w.Code)
	c.cookies = w.Result().Cookies()
	require.NotEmpty(t, c.cookies)
	return c
}

func TestRouter_Health(t *testing.T) {
	r := setupRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_RequiresSession(t *testing.T) {
	r := setupRouter(t)
	anonymous := &client{t: t, r: r}

	assert.Equal(t, http.StatusUnauthorized, anonymous.do(http.MethodGet, "/api/tasks", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, anonymous.do(http.MethodGet, "/api/auth/me", nil).Code)
}

func TestRouter_TaskWorkflow(t *testing.T) {
	r := setupRouter(t)
	owner := signupAndLogin(t, r, "client@acme.test")
	stranger := signupAndLogin(t, r, "other@globex.test")
	admin := signupAndLogin(t, r, "admin@studio.test")

	w := owner.do(http.MethodPost, "/api/tasks", map[string]any{"title": "Logo"})
	require.Equal(t, http.StatusCreated, w.Code)
	var task dto.TaskDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))

	assert.Equal(t, http.StatusNotFound, stranger.do(http.MethodGet, "/api/tasks/"+task.ID, nil).Code)
	assert.Equal(t, http.StatusBadRequest, owner.do(http.MethodGet, "/api/tasks/not-a-uuid", nil).Code)

	// Status changes are reserved for administrators.
	assert.Equal(t, http.StatusForbidden, owner.do(http.MethodPost, "/api/tasks/"+task.ID+"/status", map[string]string{"status": "in-progress"}).Code)
	assert.Equal(t, http.StatusOK, admin.do(http.MethodPost, "/api/tasks/"+task.ID+"/status", map[string]string{"status": "in-progress"}).Code)

	w = admin.do(http.MethodPost, "/api/tasks/"+task.ID+"/review", map[string]string{"text": "Concepts attached"})
	require.Equal(t, http.StatusOK, w.Code)

	w = owner.do(http.MethodPost, "/api/tasks/"+task.ID+"/complete", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = owner.do(http.MethodGet, "/api/tasks/"+task.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))
	assert.Equal(t, models.TaskStatusCompleted, task.Status)
	require.Len(t, task.Comments, 3)
	assert.Equal(t, models.CommentKindStatusChange, task.Comments[0].Kind)
	assert.Equal(t, models.CommentKindDesignReview, task.Comments[1].Kind)
	assert.Equal(t, models.CommentKindCompletion, task.Comments[2].Kind)
}

func TestRouter_UsersAdminOnly(t *testing.T) {
	r := setupRouter(t)
	owner := signupAndLogin(t, r, "client@acme.test")
	admin := signupAndLogin(t, r, "admin@studio.test")

	assert.Equal(t, http.StatusForbidden, owner.do(http.MethodGet, "/api/users", nil).Code)

	w := admin.do(http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var response dto.UserListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response.Users, 2)
}

func TestRouter_UploadsRequireTaskAccess(t *testing.T) {
	r := setupRouter(t)
	owner := signupAndLogin(t, r, "client@acme.test")
	stranger := signupAndLogin(t, r, "other@globex.test")
	admin := signupAndLogin(t, r, "admin@studio.test")
	anonymous := &client{t: t, r: r}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("payload", `{"title":"Poster"}`))
	part, err := mw.CreateFormFile("files", "brief.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("pdf-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/tasks", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for _, ck := range owner.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var task dto.TaskDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))
	require.Len(t, task.Attachments, 1)
	path := strings.TrimPrefix(task.Attachments[0].URL, "http://localhost:8080")
	require.True(t, strings.HasPrefix(path, "/uploads/tasks/"+task.ID+"/"))

	w = owner.do(http.MethodGet, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pdf-bytes", w.Body.String())
	assert.Equal(t, http.StatusOK, admin.do(http.MethodGet, path, nil).Code)

	assert.Equal(t, http.StatusNotFound, stranger.do(http.MethodGet, path, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, anonymous.do(http.MethodGet, path, nil).Code)
}
