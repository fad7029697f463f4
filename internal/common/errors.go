package common

import (
	"errors"
	"fmt"
)

var (
	// ErrorNotFound is returned when a resource does not exist.
	ErrorNotFound = errors.New("not found")

	// ErrUnexpectedState marks a server response that cannot be acted upon,
	// e.g. a created file without an upload policy.
	ErrUnexpectedState = errors.New("unexpected server state")
)

// AppError is a generic, message-only application failure.
type AppError struct {
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// NewAppError returns an AppError with the given message wrapping err.
func NewAppError(message string, err error) *AppError {
	return &AppError{Message: message, Err: err}
}

// UploadErrorKind tells which upload phase failed and how.
type UploadErrorKind string

const (
	UploadCreateFailed   UploadErrorKind = "create_failed"
	UploadPutFailed      UploadErrorKind = "put_failed"
	UploadFinalizeFailed UploadErrorKind = "finalize_failed"
	UploadTimeout        UploadErrorKind = "timeout"
)

// NextAction is the recovery the caller should offer after an upload failure.
type NextAction string

const (
	// ActionRetry repeats the failed phase.
	ActionRetry NextAction = "retry"
	// ActionReinitiate requests a fresh upload policy for the existing item
	// and uploads again.
	ActionReinitiate NextAction = "reinitiate"
	// ActionContactAdmin means the user cannot recover alone.
	ActionContactAdmin NextAction = "contact_admin"
)

// UploadError is a classified failure of the file upload pipeline.
//
// ItemID is set once the placeholder item exists, so the caller can recover
// it (finalize again or reinitiate) instead of creating a new one.
type UploadError struct {
	Kind       UploadErrorKind
	NextAction NextAction
	ItemID     string
	Message    string
	Err        error
}

func (e *UploadError) Error() string {
	msg := fmt.Sprintf("upload %s (next action: %s)", e.Kind, e.NextAction)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UploadError) Unwrap() error { return e.Err }
