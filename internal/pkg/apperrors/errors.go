package apperrors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")

	// Authentication errors
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
)

// Entity lookups. Each one matches ErrResourceNotFound with errors.Is.
var (
	ErrUserNotFound  = &CustomError{Err: ErrResourceNotFound, Message: "user not found"}
	ErrGroupNotFound = &CustomError{Err: ErrResourceNotFound, Message: "group not found"}
	ErrPostNotFound  = &CustomError{Err: ErrResourceNotFound, Message: "post not found"}
)

// Uniqueness violations
var (
	ErrUsernameTaken = &CustomError{Err: ErrConflict, Message: "a user with that username already exists"}
	ErrSlugTaken     = &CustomError{Err: ErrConflict, Message: "a group with that slug already exists"}
)

// NewValidationError wraps ErrValidationFailed with the offending field.
func NewValidationError(field, message string) *CustomError {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
		Field:   field,
	}
}

// IsNotFound reports whether err means a missing Group, User or Post.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrResourceNotFound)
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Field   string // form field the error belongs to, if any
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// Wrap attaches an underlying cause while keeping the sentinel matchable.
func Wrap(sentinel error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
