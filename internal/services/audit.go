package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/designdesk/task-desk-api/internal/constants"
	"github.com/designdesk/task-desk-api/internal/models"
)

// Audit comment texts. The structured payload carries the same data so
// clients never need to parse the text.
const (
	textDesignReview = "Задача отправлена на дизайн-ревью"
	textRevision     = "Задача отправлена на доработку"
	textCompleted    = "Задача завершена"
	textEdited       = "Задача отредактирована:"
)

// Edit diff lines.
const (
	changeTitle           = "Изменено название задачи"
	changeDescription     = "Изменено описание задачи"
	changeDeadline        = "Изменен дедлайн"
	changeServicesAdded   = "Добавлены услуги"
	changeServicesRemoved = "Удалены услуги"
	changeFilesAdded      = "Добавлены файлы"
	changeExampleLink     = "Обновлена ссылка на пример"
)

// FormatDeadline renders a deadline the way audit comments show it.
func FormatDeadline(t time.Time) string {
	return t.Format(constants.DeadlineLayout)
}

func newComment(kind models.CommentKind, text string, author models.CommentAuthor, payload models.CommentPayload) *models.TaskComment {
	return &models.TaskComment{
		Kind:    kind,
		Text:    text,
		Author:  author,
		Payload: payload,
	}
}

func userNote(text string, author models.CommentAuthor) *models.TaskComment {
	return newComment(models.CommentKindUserNote, text, author, models.CommentPayload{})
}

func statusChangeComment(from, to models.TaskStatus, author models.CommentAuthor) *models.TaskComment {
	text := fmt.Sprintf("Статус изменен: «%s» → «%s»", from.Label(), to.Label())
	return newComment(models.CommentKindStatusChange, text, author, models.CommentPayload{
		OldStatus: from,
		NewStatus: to,
	})
}

func designReviewComment(from models.TaskStatus, reviewText, link string, author models.CommentAuthor) *models.TaskComment {
	sections := []string{textDesignReview, reviewText}
	if link != "" {
		sections = append(sections, models.AttachmentPurposeMockup.DisplayName()+": "+link)
	}
	return newComment(models.CommentKindDesignReview, strings.Join(sections, "\n\n"), author, models.CommentPayload{
		OldStatus: from,
		NewStatus: models.TaskStatusDesignReview,
		Reason:    reviewText,
		Link:      link,
	})
}

func revisionComment(from models.TaskStatus, reason string, deadline time.Time, author models.CommentAuthor) *models.TaskComment {
	text := strings.Join([]string{
		textRevision,
		"Причина: " + reason,
		"Новый дедлайн: " + FormatDeadline(deadline),
	}, "\n\n")
	return newComment(models.CommentKindRevision, text, author, models.CommentPayload{
		OldStatus:   from,
		NewStatus:   models.TaskStatusInProgress,
		Reason:      reason,
		NewDeadline: &deadline,
	})
}

func completionComment(from models.TaskStatus, resultLink string, author models.CommentAuthor) *models.TaskComment {
	text := textCompleted
	if resultLink != "" {
		text += "\n\n" + models.AttachmentPurposeResult.DisplayName() + ": " + resultLink
	}
	return newComment(models.CommentKindCompletion, text, author, models.CommentPayload{
		OldStatus: from,
		NewStatus: models.TaskStatusCompleted,
		Link:      resultLink,
	})
}

func editComment(changes []string, author models.CommentAuthor) *models.TaskComment {
	lines := make([]string, 0, len(changes)+1)
	lines = append(lines, textEdited)
	for _, change := range changes {
		lines = append(lines, "- "+change)
	}
	return newComment(models.CommentKindEdit, strings.Join(lines, "\n"), author, models.CommentPayload{
		Changes: changes,
	})
}
