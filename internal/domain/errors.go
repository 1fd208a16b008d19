package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Common domain errors.
var (
	// ErrUnknownValue indicates that an identifier is not part of a closed set.
	ErrUnknownValue = errors.New("unknown value")

	// ErrInvalidRound indicates that a persisted round does not carry
	// exactly one data shape matching its kind.
	ErrInvalidRound = errors.New("invalid round")

	// ErrRejected is matched by every *RejectionError.
	ErrRejected = errors.New("competition rejected")
)

// ValidationError represents an error that occurred during validation.
// It can contain multiple validation failures.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the list of validation error messages.
	Errors []string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %v", e.Entity, e.Errors)
}

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: make([]string, 0),
	}
}

// RejectionError carries the reasons of a rejecting verdict as an error value.
type RejectionError struct {
	Reasons []Reason
}

// Error implements the error interface for RejectionError.
func (e *RejectionError) Error() string {
	parts := make([]string, len(e.Reasons))
	for i, r := range e.Reasons {
		parts[i] = r.String()
	}
	return fmt.Sprintf("%v: %s", ErrRejected, strings.Join(parts, "; "))
}

// Is lets errors.Is match ErrRejected.
func (e *RejectionError) Is(target error) bool { return target == ErrRejected }
