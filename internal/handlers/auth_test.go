package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/designdesk/task-desk-api/internal/constants"
	"github.com/designdesk/task-desk-api/internal/database"
	"github.com/designdesk/task-desk-api/internal/dto"
	"github.com/designdesk/task-desk-api/internal/models"
	"github.com/designdesk/task-desk-api/internal/repository"
	"github.com/designdesk/task-desk-api/internal/services"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type authTestEnv struct {
	db          *gorm.DB
	handler     *AuthHandler
	authService *services.AuthService
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	err = db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.TaskAttachment{},
		&models.TaskComment{},
	)
	require.NoError(t, err)

	database.SetDB(db)
	return db
}

func setupAuthTestEnv(t *testing.T) authTestEnv {
	t.Helper()

	db := openTestDB(t)
	userRepo := repository.NewUserRepository(db)
	authService := services.NewAuthService(userRepo, []string{"admin@designdesk.test"})
	handler := NewAuthHandler(authService)

	return authTestEnv{
		db:          db,
		handler:     handler,
		authService: authService,
	}
}

func newSessionRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))
	return r
}

func postJSON(t *testing.T, r *gin.Engine, url string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Signup(t *testing.T) {
	env := setupAuthTestEnv(t)

	r := newSessionRouter()
	r.POST("/api/auth/signup", env.handler.Signup)

	w := postJSON(t, r, "/api/auth/signup", map[string]string{
		"email":        "Client@Example.com",
		"password":     "supersecret",
		"company_name": "Acme",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "client@example.com", response.Email)
	require.Equal(t, models.RoleClient, response.Role)
	require.Equal(t, "Acme", response.CompanyName)
}

func TestAuthHandler_Signup_AdminEmail(t *testing.T) {
	env := setupAuthTestEnv(t)

	r := newSessionRouter()
	r.POST("/api/auth/signup", env.handler.Signup)

	w := postJSON(t, r, "/api/auth/signup", map[string]string{
		"email":    "admin@designdesk.test",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, models.RoleAdmin, response.Role)
}

func TestAuthHandler_Signup_Errors(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.authService.Signup(context.Background(), services.SignupInput{
		Email:    "taken@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	r := newSessionRouter()
	r.POST("/api/auth/signup", env.handler.Signup)

	cases := []struct {
		name    string
		payload map[string]string
		code    int
	}{
		{"missing password", map[string]string{"email": "a@example.com"}, http.StatusBadRequest},
		{"short password", map[string]string{"email": "a@example.com", "password": "short"}, http.StatusBadRequest},
		{"invalid email", map[string]string{"email": "not-an-email", "password": "supersecret"}, http.StatusBadRequest},
		{"email taken", map[string]string{"email": "taken@example.com", "password": "supersecret"}, http.StatusConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(t, r, "/api/auth/signup", tc.payload)
			require.Equal(t, tc.code, w.Code)
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.authService.Signup(context.Background(), services.SignupInput{
		Email:    "existing@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	r := newSessionRouter()
	r.POST("/api/auth/login", env.handler.Login)

	w := postJSON(t, r, "/api/auth/login", map[string]string{
		"email":    "existing@example.com",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "existing@example.com", response.Email)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies, "expected session cookie to be set")

	w = postJSON(t, r, "/api/auth/login", map[string]string{
		"email":    "existing@example.com",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_GetCurrentUser(t *testing.T) {
	env := setupAuthTestEnv(t)

	user, err := env.authService.Signup(context.Background(), services.SignupInput{
		Email:    "current@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	c.Set(constants.ContextKeyUserID, user.ID)

	env.handler.GetCurrentUser(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, user.Email, response.Email)
}

func TestAuthHandler_Logout(t *testing.T) {
	env := setupAuthTestEnv(t)

	r := newSessionRouter()
	r.POST("/api/auth/logout", env.handler.Logout)

	w := postJSON(t, r, "/api/auth/logout", map[string]string{})
	require.Equal(t, http.StatusOK, w.Code)
}
