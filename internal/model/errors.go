package model

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that an operation targeted a missing article or
// attachment. It carries no side effects: nothing was mutated.
var ErrNotFound = errors.New("not found")

// ValidationError reports rejected input. It is always returned before any
// mutation, so a caller seeing one can assume no partial write happened.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StorageError wraps an I/O failure on a record or content file. Secondary
// cleanup failures are logged instead of wrapped; only the primary operation's
// failure surfaces as a StorageError.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
