package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	t.Run("single error", func(t *testing.T) {
		err := NewValidationError("Competition adult_D_std")
		err.AddError("missing judges")

		assert.Equal(t, "validation error for Competition adult_D_std: missing judges", err.Error())
		assert.True(t, err.HasErrors(), "Should have errors")
		assert.Len(t, err.Errors, 1, "Should have one error")
	})

	t.Run("multiple errors", func(t *testing.T) {
		err := NewValidationError("Event")
		err.AddError("name is required")
		err.AddError("duplicate bib")

		assert.Contains(t, err.Error(), "validation errors for Event")
		assert.Len(t, err.Errors, 2, "Should have two errors")
		assert.Equal(t, "name is required", err.Errors[0], "First error should be preserved")
	})

	t.Run("no errors", func(t *testing.T) {
		err := NewValidationError("Config")

		assert.False(t, err.HasErrors(), "Should not have errors")
		assert.Empty(t, err.Errors, "Errors slice should be empty")
	})
}

func TestRejectionError(t *testing.T) {
	err := &RejectionError{Reasons: []Reason{
		{Code: ReasonEmptyParticipants},
		{Code: ReasonInsufficientOfficials, Expected: 3, Actual: 1},
	}}

	assert.Equal(t, "competition rejected: empty_participants; insufficient_officials", err.Error())
	assert.True(t, errors.Is(err, ErrRejected))
	assert.False(t, errors.Is(err, ErrInvalidRound))

	wrapped := fmt.Errorf("verify adult_D_std: %w", err)
	assert.True(t, errors.Is(wrapped, ErrRejected), "Should match through wrapping")
	var rej *RejectionError
	require.ErrorAs(t, wrapped, &rej)
	assert.Len(t, rej.Reasons, 2)
}

func TestCommonDomainErrors(t *testing.T) {
	tests := []struct {
		err     error
		message string
	}{
		{ErrUnknownValue, "unknown value"},
		{ErrInvalidRound, "invalid round"},
		{ErrRejected, "competition rejected"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.message, tt.err.Error(), "Error message mismatch")
		})
	}
}
