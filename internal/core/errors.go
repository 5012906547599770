package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers entities that are absent or not owned by the
	// caller. Both cases look identical to the outside.
	ErrNotFound = errors.New("not found")

	// ErrConflict signals a write that lost against a concurrent or
	// pre-existing one. The caller may retry the whole read-modify-write.
	ErrConflict = errors.New("conflict")

	// ErrValidation is the base of every field-level validation failure.
	ErrValidation = errors.New("validation failed")

	ErrInvalidAmount            = errors.New("invalid amount")
	ErrGoalCompleted            = errors.New("goal already completed")
	ErrDefaultCategoryImmutable = errors.New("default categories cannot be modified")
)

// ValidationError carries field-level detail for the caller. It matches
// errors.Is(err, ErrValidation).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a ValidationError for one field.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
