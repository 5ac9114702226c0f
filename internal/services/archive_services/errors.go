package archive_services

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrTypeAuthRequired ErrorType = "AUTH_REQUIRED"
	ErrTypeValidation   ErrorType = "VALIDATION"
	ErrTypeRemote       ErrorType = "REMOTE"
	ErrTypeNotFound     ErrorType = "NOT_FOUND"
)

// ArchiveError is returned by every archive service operation. Message is
// written for the person using the page.
type ArchiveError struct {
	Type      ErrorType
	Operation string
	Message   string
	Cause     error
}

func (e *ArchiveError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("archive %s error in %s: %s (caused by: %v)", e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("archive %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *ArchiveError) Unwrap() error { return e.Cause }

func NewAuthRequiredError(operation string) *ArchiveError {
	return &ArchiveError{Type: ErrTypeAuthRequired, Operation: operation, Message: "Please sign in to continue"}
}

func NewValidationError(operation, msg string) *ArchiveError {
	return &ArchiveError{Type: ErrTypeValidation, Operation: operation, Message: msg}
}

func NewRemoteError(operation, msg string, cause error) *ArchiveError {
	return &ArchiveError{Type: ErrTypeRemote, Operation: operation, Message: msg, Cause: cause}
}

func NewNotFoundError(operation, msg string, cause error) *ArchiveError {
	return &ArchiveError{Type: ErrTypeNotFound, Operation: operation, Message: msg, Cause: cause}
}

// IsType reports whether err is an ArchiveError of type t.
func IsType(err error, t ErrorType) bool {
	var archiveErr *ArchiveError
	return errors.As(err, &archiveErr) && archiveErr.Type == t
}
