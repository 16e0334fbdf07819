package database

import (
	"fmt"

	"github.com/designdesk/task-desk-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type indexSpec struct {
	model   any
	table   string
	name    string
	columns string
}

var indexes = []indexSpec{
	// Task listing filters
	{&models.Task{}, "tasks", "idx_tasks_status", "status"},
	{&models.Task{}, "tasks", "idx_tasks_created_at", "created_at"},
	{&models.Task{}, "tasks", "idx_tasks_deadline", "deadline"},

	// Child tables are always read per task
	{&models.TaskComment{}, "task_comments", "idx_task_comments_task_id", "task_id"},
	{&models.TaskAttachment{}, "task_attachments", "idx_task_attachments_task_id", "task_id"},
}

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB, log *logrus.Logger) error {
	migrator := db.Migrator()

	for _, idx := range indexes {
		if migrator.HasIndex(idx.model, idx.name) {
			log.WithField("index", idx.name).Debug("Index already exists, skipping")
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.WithFields(logrus.Fields{
			"index":   idx.name,
			"table":   idx.table,
			"columns": idx.columns,
		}).Info("Created index")
	}

	return nil
}
