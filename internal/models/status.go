package models

type TaskStatus string

const (
	TaskStatusPending      TaskStatus = "pending"
	TaskStatusInProgress   TaskStatus = "in-progress"
	TaskStatusDesignReview TaskStatus = "design-review"
	TaskStatusCompleted    TaskStatus = "completed"
)

var statusLabels = map[TaskStatus]string{
	TaskStatusPending:      "В ожидании",
	TaskStatusInProgress:   "В процессе",
	TaskStatusDesignReview: "Дизайн-ревью",
	TaskStatusCompleted:    "Завершено",
}

// AllTaskStatuses lists statuses in workflow order.
var AllTaskStatuses = []TaskStatus{
	TaskStatusPending,
	TaskStatusInProgress,
	TaskStatusDesignReview,
	TaskStatusCompleted,
}

// Valid reports whether s is one of the four workflow states.
func (s TaskStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the display label. Unknown statuses render as their raw value.
func (s TaskStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}
