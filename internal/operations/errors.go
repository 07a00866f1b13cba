package operations

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents the category of an operation error
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeCancelled  ErrorType = "cancelled"
	ErrorTypeBusy       ErrorType = "busy"
	ErrorTypeNotLoaded  ErrorType = "not_loaded"
	ErrorTypeNotFound   ErrorType = "not_found"
)

// OperationError represents an operation-specific error
type OperationError struct {
	Type    ErrorType              `json:"type"`
	Step    string                 `json:"step,omitempty"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *OperationError) Error() string {
	if e == nil {
		return "unknown operation error"
	}
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Step != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Type, e.Step, msg)
	}
	return fmt.Sprintf("[%s] %s", e.Type, msg)
}

// Unwrap returns the underlying error
func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// WithContext attaches a key/value pair and returns the error
func (e *OperationError) WithContext(key string, value interface{}) *OperationError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewValidationError creates an error for rejected input. Validation errors are
// raised before the table or storage is touched.
func NewValidationError(step, message string) *OperationError {
	return &OperationError{
		Type:    ErrorTypeValidation,
		Step:    step,
		Message: message,
	}
}

// NewValidationErrorf is NewValidationError with formatting
func NewValidationErrorf(step, format string, args ...interface{}) *OperationError {
	return NewValidationError(step, fmt.Sprintf(format, args...))
}

// NewMissingColumnsError reports every absent column at once
func NewMissingColumnsError(step string, missing []string) *OperationError {
	return NewValidationErrorf(step, "missing required columns: %s", strings.Join(missing, ", ")).
		WithContext("missing_columns", missing)
}

// NewIOError wraps a storage failure
func NewIOError(step string, cause error) *OperationError {
	return &OperationError{
		Type:    ErrorTypeIO,
		Step:    step,
		Message: "storage operation failed",
		Cause:   cause,
	}
}

// NewCancelledError signals the user dismissed a destination chooser
func NewCancelledError(step string) *OperationError {
	return &OperationError{
		Type:    ErrorTypeCancelled,
		Step:    step,
		Message: "save operation canceled",
	}
}

// NewBusyError signals another operation holds the table
func NewBusyError(step string) *OperationError {
	return &OperationError{
		Type:    ErrorTypeBusy,
		Step:    step,
		Message: "another operation is already running on this dataset",
	}
}

// NewNotLoadedError signals no table has been loaded yet
func NewNotLoadedError(step string) *OperationError {
	return &OperationError{
		Type:    ErrorTypeNotLoaded,
		Step:    step,
		Message: "no data loaded",
	}
}

// NewNotFoundError signals an unknown task or resource
func NewNotFoundError(step, resource string) *OperationError {
	return &OperationError{
		Type:    ErrorTypeNotFound,
		Step:    step,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// TypeOf returns the category of err, or "" when it is not an OperationError
func TypeOf(err error) ErrorType {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Type
	}
	return ""
}

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool {
	return TypeOf(err) == ErrorTypeValidation
}

// IsCancelled reports whether err is a benign cancellation
func IsCancelled(err error) bool {
	return TypeOf(err) == ErrorTypeCancelled
}

// IsIO reports whether err is a storage error
func IsIO(err error) bool {
	return TypeOf(err) == ErrorTypeIO
}

// IsBusy reports whether err was caused by a concurrent operation
func IsBusy(err error) bool {
	return TypeOf(err) == ErrorTypeBusy
}
