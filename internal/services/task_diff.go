package services

import (
	"strings"
	"time"

	"github.com/designdesk/task-desk-api/internal/constants"
	"github.com/designdesk/task-desk-api/internal/models"
)

// taskDiff is the set of column writes and human-readable change lines an edit produces.
type taskDiff struct {
	fields  map[string]any
	changes []string
}

func (d *taskDiff) set(column string, value any, change string) {
	d.fields[column] = value
	d.changes = append(d.changes, change)
}

func (d *taskDiff) empty() bool {
	return len(d.changes) == 0
}

// diffTask compares the requested edit with the stored task. Only the scalar
// columns and the service list are covered here; attachments are diffed by the caller.
func diffTask(task *models.Task, in EditTaskInput) taskDiff {
	d := taskDiff{fields: map[string]any{}}

	if in.Title != nil {
		if title := strings.TrimSpace(*in.Title); title != task.Title {
			d.set("title", title, changeTitle)
		}
	}
	if in.Description != nil && *in.Description != task.Description {
		d.set("description", *in.Description, changeDescription)
	}
	if in.Deadline != nil && !in.Deadline.Equal(task.Deadline) {
		d.set("deadline", in.Deadline.UTC(), changeDeadline)
	}
	if in.Services != nil {
		added, removed := diffServices(task.Services, *in.Services)
		if len(added) > 0 || len(removed) > 0 {
			d.fields["services"] = *in.Services
		}
		if len(added) > 0 {
			d.changes = append(d.changes, changeServicesAdded+": "+strings.Join(added, ", "))
		}
		if len(removed) > 0 {
			d.changes = append(d.changes, changeServicesRemoved+": "+strings.Join(removed, ", "))
		}
	}

	return d
}

// diffServices returns the names of services present only in next (added)
// and only in prev (removed), compared by ID and listed in input order.
func diffServices(prev, next []models.SelectedService) (added, removed []string) {
	prevIDs := make(map[string]struct{}, len(prev))
	for _, s := range prev {
		prevIDs[s.ID] = struct{}{}
	}
	nextIDs := make(map[string]struct{}, len(next))
	for _, s := range next {
		nextIDs[s.ID] = struct{}{}
		if _, ok := prevIDs[s.ID]; !ok {
			added = append(added, s.Name)
		}
	}
	for _, s := range prev {
		if _, ok := nextIDs[s.ID]; !ok {
			removed = append(removed, s.Name)
		}
	}
	return added, removed
}

// defaultDeadline is one working day per eight estimated hours, counted from now.
func defaultDeadline(now time.Time, totalHours int) time.Time {
	days := (totalHours + constants.WorkHoursPerDay - 1) / constants.WorkHoursPerDay
	return now.AddDate(0, 0, days)
}
