package services

import (
	"slices"

	"github.com/designdesk/task-desk-api/internal/models"
)

// SortTasksByCreatedAtDesc orders tasks newest first. Tasks created at the
// same instant keep their fetch order.
func SortTasksByCreatedAtDesc(tasks []models.Task) {
	slices.SortStableFunc(tasks, func(a, b models.Task) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}

// TaskStatistics counts tasks in total and per status.
type TaskStatistics struct {
	Total    int                       `json:"total"`
	ByStatus map[models.TaskStatus]int `json:"by_status"`
}

// TaskStats summarizes tasks. Every known status is present in ByStatus.
func TaskStats(tasks []models.Task) TaskStatistics {
	stats := TaskStatistics{
		Total:    len(tasks),
		ByStatus: make(map[models.TaskStatus]int, len(models.AllTaskStatuses)),
	}
	for _, status := range models.AllTaskStatuses {
		stats.ByStatus[status] = 0
	}
	for _, task := range tasks {
		stats.ByStatus[task.Status]++
	}
	return stats
}
