package service

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("authentication required")
	ErrConflict        = errors.New("conflict")
)

// Error carries a user-facing message alongside its kind
type Error struct {
	Kind    error
	Field   string
	Message string
}

// NewError creates a new service error
func NewError(kind error, field, message string) *Error {
	return &Error{
		Kind:    kind,
		Field:   field,
		Message: message,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the kind to errors.Is
func (e *Error) Unwrap() error {
	return e.Kind
}

func notFound(format string, args ...interface{}) error {
	return NewError(ErrNotFound, "", fmt.Sprintf(format, args...))
}

func invalid(field, message string) error {
	return NewError(ErrValidation, field, message)
}

// FieldMessage returns the message for a validation error on field, if any.
func FieldMessage(err error, field string) string {
	var se *Error
	if errors.As(err, &se) && se.Field == field {
		return se.Message
	}
	return ""
}
