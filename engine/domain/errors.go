package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the retrieval engine. Callers match with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrEmbedding         = errors.New("embedding failed")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotReady          = errors.New("index not yet built")
)

// ValidationError wraps ErrValidation with the offending field and value.
type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s (value=%q)", e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError.
func NewValidationError(field, value string) *ValidationError {
	return &ValidationError{Field: field, Value: value}
}
