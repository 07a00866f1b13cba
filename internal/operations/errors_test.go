package operations_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabclean/internal/operations"
)

func TestOperationErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      *operations.OperationError
		expected string
	}{
		{
			name:     "validation with step",
			err:      operations.NewValidationError("geocode", "region must be two digits"),
			expected: "[validation] geocode: region must be two digits",
		},
		{
			name:     "io with cause",
			err:      operations.NewIOError("save", errors.New("disk full")),
			expected: "[io] save: storage operation failed: disk full",
		},
		{
			name:     "no step",
			err:      &operations.OperationError{Type: operations.ErrorTypeBusy, Message: "busy"},
			expected: "[busy] busy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestOperationErrorUnwrap(t *testing.T) {
	cause := errors.New("permission denied")
	err := operations.NewIOError("split", cause)

	assert.ErrorIs(t, err, cause)
	assert.Nil(t, operations.NewValidationError("split", "bad").Unwrap())

	var nilErr *operations.OperationError
	assert.Nil(t, nilErr.Unwrap())
	assert.Equal(t, "unknown operation error", nilErr.Error())
}

func TestMissingColumnsError(t *testing.T) {
	err := operations.NewMissingColumnsError("geocode", []string{"PWARD", "PHAMLET"})

	assert.True(t, operations.IsValidation(err))
	assert.Contains(t, err.Error(), "missing required columns: PWARD, PHAMLET")
	require.Contains(t, err.Context, "missing_columns")
	assert.Equal(t, []string{"PWARD", "PHAMLET"}, err.Context["missing_columns"])
}

func TestErrorPredicates(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		validation bool
		cancelled  bool
		io         bool
		busy       bool
		errType    operations.ErrorType
	}{
		{name: "validation", err: operations.NewValidationError("s", "m"), validation: true, errType: operations.ErrorTypeValidation},
		{name: "cancelled", err: operations.NewCancelledError("s"), cancelled: true, errType: operations.ErrorTypeCancelled},
		{name: "io", err: operations.NewIOError("s", errors.New("x")), io: true, errType: operations.ErrorTypeIO},
		{name: "busy", err: operations.NewBusyError("s"), busy: true, errType: operations.ErrorTypeBusy},
		{name: "not loaded", err: operations.NewNotLoadedError("s"), errType: operations.ErrorTypeNotLoaded},
		{name: "wrapped", err: fmt.Errorf("outer: %w", operations.NewCancelledError("s")), cancelled: true, errType: operations.ErrorTypeCancelled},
		{name: "plain", err: errors.New("plain")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.validation, operations.IsValidation(tt.err))
			assert.Equal(t, tt.cancelled, operations.IsCancelled(tt.err))
			assert.Equal(t, tt.io, operations.IsIO(tt.err))
			assert.Equal(t, tt.busy, operations.IsBusy(tt.err))
			assert.Equal(t, tt.errType, operations.TypeOf(tt.err))
		})
	}
}

func TestCancelledErrorMessage(t *testing.T) {
	assert.Contains(t, operations.NewCancelledError("split").Error(), "save operation canceled")
	assert.Contains(t, operations.NewNotLoadedError("split").Error(), "no data loaded")
	assert.Contains(t, operations.NewNotFoundError("jobs", "job 42").Error(), "job 42 not found")
}
