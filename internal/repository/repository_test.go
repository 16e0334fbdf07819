package repository

import (
	"context"
	"testing"
	"time"

	"github.com/designdesk/task-desk-api/internal/models"
	"github.com/designdesk/task-desk-api/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.TaskAttachment{},
		&models.TaskComment{},
	))

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

func TestTaskRepository_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db).(*GormTaskRepository)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	repo.now = func() time.Time { return created }
	ctx := context.Background()

	task := &models.Task{
		Title:    "Logo",
		Status:   models.TaskStatusPending,
		UserID:   "u1",
		Deadline: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		Services: []models.SelectedService{{ID: "logo", Name: "Логотип", Price: 15000, EstimatedHours: 16}},
		Attachments: []models.TaskAttachment{
			models.NewLinkAttachment(models.AttachmentPurposeExample, "https://example.com"),
			{Name: "brief.pdf", URL: "https://cdn/brief.pdf", Type: models.AttachmentTypeFile, Purpose: models.AttachmentPurposeGeneral},
		},
	}
	require.NoError(t, repo.Create(ctx, task))
	require.NotEmpty(t, task.ID)

	for _, text := range []string{"first", "second", "third"} {
		require.NoError(t, repo.AppendComment(ctx, task.ID, &models.TaskComment{Kind: models.CommentKindUserNote, Text: text}))
	}

	found, err := repo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, created.Equal(found.CreatedAt))
	assert.Equal(t, "Logo", found.Title)
	require.Len(t, found.Services, 1)
	assert.Equal(t, 16, found.Services[0].EstimatedHours)

	require.Len(t, found.Attachments, 2)
	assert.Equal(t, "Ссылка на пример", found.Attachments[0].Name)
	assert.Equal(t, "brief.pdf", found.Attachments[1].Name)

	require.Len(t, found.Comments, 3)
	assert.Equal(t, "first", found.Comments[0].Text)
	assert.Equal(t, "third", found.Comments[2].Text)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestTaskRepository_ListFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	create := func(user string, status models.TaskStatus) {
		require.NoError(t, repo.Create(ctx, &models.Task{
			Title:    "t",
			Status:   status,
			UserID:   user,
			Deadline: time.Now(),
		}))
	}
	create("u1", models.TaskStatusPending)
	create("u1", models.TaskStatusCompleted)
	create("u2", models.TaskStatusPending)

	all, err := repo.List(ctx, TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	user := "u1"
	own, err := repo.List(ctx, TaskFilter{UserID: &user})
	require.NoError(t, err)
	assert.Len(t, own, 2)

	status := models.TaskStatusPending
	pending, err := repo.List(ctx, TaskFilter{UserID: &user, Status: &status})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "u1", pending[0].UserID)
}

func TestTaskRepository_UpdateAndDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	task := &models.Task{Title: "t", Status: models.TaskStatusPending, UserID: "u1", Deadline: time.Now()}
	require.NoError(t, repo.Create(ctx, task))

	require.NoError(t, repo.UpdateFields(ctx, task.ID, map[string]any{
		"status":   models.TaskStatusInProgress,
		"services": []models.SelectedService{{ID: "x", Name: "X"}},
	}))
	found, err := repo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusInProgress, found.Status)
	require.Len(t, found.Services, 1)
	assert.Equal(t, "X", found.Services[0].Name)

	assert.ErrorIs(t, repo.UpdateFields(ctx, "missing", map[string]any{"title": "x"}), gorm.ErrRecordNotFound)

	require.NoError(t, repo.Delete(ctx, task.ID))
	_, err = repo.FindByID(ctx, task.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, task.ID), gorm.ErrRecordNotFound)
}

func TestTaskRepository_UpdateServicesStoredAsJSON(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	task := &models.Task{Title: "t", Status: models.TaskStatusPending, UserID: "u1", Deadline: time.Now()}
	require.NoError(t, repo.Create(ctx, task))

	require.NoError(t, repo.UpdateFields(ctx, task.ID, map[string]any{
		"services": []models.SelectedService{{ID: "web", Name: "Web", Price: 500, EstimatedHours: 24}},
	}))

	var raw string
	require.NoError(t, db.Raw("SELECT services FROM tasks WHERE id = ?", task.ID).Scan(&raw).Error)
	assert.JSONEq(t, `[{"id":"web","name":"Web","price":500,"estimated_hours":24}]`, raw)

	found, err := repo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, found.Services, 1)
	assert.Equal(t, 24, found.Services[0].EstimatedHours)
	assert.Equal(t, 24, found.TotalHours())
}

func TestTaskRepository_UpdateAttachmentURL(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	task := &models.Task{Title: "t", Status: models.TaskStatusPending, UserID: "u1", Deadline: time.Now()}
	require.NoError(t, repo.Create(ctx, task))
	require.NoError(t, repo.AppendAttachments(ctx, task.ID, []models.TaskAttachment{
		models.NewLinkAttachment(models.AttachmentPurposeExample, "https://old"),
	}))

	found, err := repo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateAttachmentURL(ctx, found.Attachments[0].ID, "https://new"))

	found, err = repo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, found.Attachments, 1)
	assert.Equal(t, "https://new", found.Attachments[0].URL)
	assert.Equal(t, "Ссылка на пример", found.Attachments[0].Name)
}

func TestUserRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	for _, email := range []string{"Zed@x.test", "amy@x.test", "bob@x.test"} {
		require.NoError(t, repo.Create(ctx, &models.User{Email: email, PasswordHash: "x"}))
	}

	user, err := repo.FindByEmail(ctx, " ZED@x.test")
	require.NoError(t, err)
	assert.Equal(t, "zed@x.test", user.Email)
	assert.Len(t, user.ID, 36)

	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, byID.Email)

	page, total, err := repo.List(ctx, utils.PaginationParams{Page: 2, Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 1)
	assert.Equal(t, "zed@x.test", page[0].Email)

	require.NoError(t, repo.UpdateFields(ctx, user.ID, map[string]any{"role": models.RoleAdmin}))
	byID, err = repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, byID.IsPrivileged())

	_, err = repo.FindByEmail(ctx, "nobody@x.test")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
