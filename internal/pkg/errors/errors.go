// Package errors provides custom error types and error handling utilities.
package errors

import (
	"errors"
	"fmt"
)

// Error codes.
const (
	// Recoverable processing errors.
	CodeParseFailure        = "PARSE_FAILURE"
	CodeValidationFailure   = "VALIDATION_FAILURE"
	CodeResourceExhausted   = "RESOURCE_EXHAUSTED"
	CodeErrorBudgetExceeded = "ERROR_BUDGET_EXCEEDED"
	CodeEmptyInput          = "EMPTY_INPUT"
	CodeTimeout             = "TIMEOUT"

	// Hard failures.
	CodeUnrecoverableIO = "UNRECOVERABLE_IO"
	CodeInternal        = "INTERNAL_ERROR"
)

// AppError represents a processing error with code and details.
type AppError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
	Err     error             `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Recoverable reports whether the error triggers tier fallback rather than
// aborting the processing call. Only unrecoverable IO and internal errors
// escape the strategy loop.
func (e *AppError) Recoverable() bool {
	switch e.Code {
	case CodeUnrecoverableIO, CodeInternal:
		return false
	default:
		return true
	}
}

// New creates a new AppError.
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with an AppError.
func Wrap(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithDetails adds details to the error.
func (e *AppError) WithDetails(details map[string]string) *AppError {
	e.Details = details
	return e
}

// WithDetail adds a single detail to the error.
func (e *AppError) WithDetail(key, value string) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// Convenience constructors.

// ParseFailure creates a parse failure error. Third-party grammar errors are
// wrapped here so parser types never reach callers.
func ParseFailure(message string, err error) *AppError {
	return Wrap(CodeParseFailure, message, err)
}

// ValidationFailure creates a candidate validation error.
func ValidationFailure(message string) *AppError {
	return New(CodeValidationFailure, message)
}

// ResourceExhausted creates a memory ceiling error.
func ResourceExhausted(message string) *AppError {
	return New(CodeResourceExhausted, message)
}

// ErrorBudgetExceeded creates a consecutive-error budget error.
func ErrorBudgetExceeded(message string) *AppError {
	return New(CodeErrorBudgetExceeded, message)
}

// EmptyInput creates an empty input marker error.
func EmptyInput() *AppError {
	return New(CodeEmptyInput, "content is empty")
}

// TimeoutError creates a tier time budget error.
func TimeoutError(operation string) *AppError {
	message := "operation timed out"
	if operation != "" {
		message = fmt.Sprintf("%s timed out", operation)
	}
	return New(CodeTimeout, message)
}

// UnrecoverableIO creates a hard input error.
func UnrecoverableIO(message string, err error) *AppError {
	return Wrap(CodeUnrecoverableIO, message, err)
}

// InternalError creates an internal error.
func InternalError(message string, err error) *AppError {
	return Wrap(CodeInternal, message, err)
}

// CodeOf returns the error code of err, or empty string for non-AppErrors.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// IsParseFailure checks if error is a parse failure.
func IsParseFailure(err error) bool {
	return CodeOf(err) == CodeParseFailure
}

// IsValidationFailure checks if error is a validation failure.
func IsValidationFailure(err error) bool {
	return CodeOf(err) == CodeValidationFailure
}

// IsResourceExhausted checks if error is a resource exhaustion error.
func IsResourceExhausted(err error) bool {
	return CodeOf(err) == CodeResourceExhausted
}

// IsEmptyInput checks if error marks empty input.
func IsEmptyInput(err error) bool {
	return CodeOf(err) == CodeEmptyInput
}

// IsUnrecoverable checks if error aborts processing instead of falling back.
func IsUnrecoverable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return !appErr.Recoverable()
	}
	// Unknown error types are treated as recoverable; the strategy loop
	// converts them into fallback decisions.
	return false
}
