package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrTaskPermissionDenied = errors.New("user does not have permission to modify this task")
	ErrStorageNotConfigured = errors.New("file storage is not configured")

	// ErrValidation is wrapped by every input rejection raised before a write.
	ErrValidation = errors.New("validation failed")

	ErrTitleRequired        = fmt.Errorf("%w: title is required", ErrValidation)
	ErrCommentTextRequired  = fmt.Errorf("%w: comment text is required", ErrValidation)
	ErrReviewTextRequired   = fmt.Errorf("%w: review text is required", ErrValidation)
	ErrRevisionReasonNeeded = fmt.Errorf("%w: revision reason is required", ErrValidation)
	ErrInvalidStatus        = fmt.Errorf("%w: unknown task status", ErrValidation)
	ErrTooManyFiles         = fmt.Errorf("%w: too many files", ErrValidation)
)

// UploadError reports a blob upload that aborted a file batch.
// URLs of files stored before the failure are listed in Orphaned.
type UploadError struct {
	FileName string
	Orphaned []string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("failed to upload %q: %v", e.FileName, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// PartialWriteError reports a task change that was persisted while the audit
// comment describing it was not.
type PartialWriteError struct {
	TaskID    string
	Operation string
	Err       error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("%s on task %s saved without audit comment: %v", e.Operation, e.TaskID, e.Err)
}

func (e *PartialWriteError) Unwrap() error {
	return e.Err
}

func requireText(text string, err error) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", err
	}
	return text, nil
}
