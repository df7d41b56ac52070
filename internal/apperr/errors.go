package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration = errors.New("configuration error")
	ErrStoreAccess   = errors.New("store access error")
	ErrTransport     = errors.New("transport error")
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrUnauthorized  = errors.New("unauthorized")
)

// ValidationError carries per-field messages for a rejected payload.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 1 {
		for field, msg := range e.Fields {
			return fmt.Sprintf("validation: %s: %s", field, msg)
		}
	}
	return fmt.Sprintf("validation: %d errors", len(e.Fields))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// StoreAccess wraps a driver failure so callers can classify it with errors.Is.
func StoreAccess(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreAccess, err)
}
