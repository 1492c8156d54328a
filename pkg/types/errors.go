package types

import (
	"errors"
	"fmt"
)

// Repository operation errors.
var (
	ErrNotFound  = errors.New("entity not found")
	ErrMissingID = errors.New("entity must have an ID")
)

// Query construction errors.
var (
	ErrProjectRequired = errors.New("project ID is required")
	ErrInvalidFilter   = errors.New("invalid filter value")
	ErrInvalidSort     = errors.New("invalid sort field")
)

// Store lifecycle errors.
var (
	ErrStoreClosed     = errors.New("store is closed")
	ErrPoolSizeInvalid = errors.New("pool sizes must be positive and initial must not exceed max")
)

// Setting lookup errors.
var (
	ErrSettingNotFound = errors.New("project setting not found")
)

// Relationship errors.
var (
	ErrInvalidRelationship = errors.New("invalid relationship type")
)

// FieldValidationError reports a field value that failed validation against
// its field definition. It identifies the offending field by ID and label so
// callers can surface the failure next to the right input.
type FieldValidationError struct {
	FieldID string
	Label   string
	Message string
}

func (e *FieldValidationError) Error() string {
	return fmt.Sprintf("field %q (%s): %s", e.Label, e.FieldID, e.Message)
}

// NewFieldValidationError builds a FieldValidationError for the given field.
func NewFieldValidationError(fieldID, label, message string) *FieldValidationError {
	return &FieldValidationError{FieldID: fieldID, Label: label, Message: message}
}
