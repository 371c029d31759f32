package errors

import (
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid     = "CONFIG_INVALID"
	CodeValidationError   = "VALIDATION_ERROR"
	CodeEmptyInput        = "EMPTY_INPUT"
	CodeMalformedResponse = "MALFORMED_RESPONSE"
	CodeDegenerateData    = "DEGENERATE_DATA"
	CodeEmptySubset       = "EMPTY_SUBSET"
	CodeMergeFailed       = "MERGE_FAILED"
	CodeDatabaseError     = "DATABASE_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeInternalError     = "INTERNAL_ERROR"
	CodeInvalidInput      = "INVALID_INPUT"
)

// Common error constructors

func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func ValidationError(message string) *AppError {
	return New(CodeValidationError, message)
}

// EmptyInput names the input that was empty so the caller can localize it
func EmptyInput(input string) *AppError {
	return New(CodeEmptyInput, fmt.Sprintf("%s must not be empty", input))
}

// MalformedResponse names the offending call and what was missing
func MalformedResponse(callID, detail string) *AppError {
	return New(CodeMalformedResponse, fmt.Sprintf("response %s is malformed: %s", callID, detail))
}

// DegenerateData flags zero-variance inputs that would divide by zero
func DegenerateData(context string) *AppError {
	return New(CodeDegenerateData, fmt.Sprintf("degenerate (zero-variance) data in %s", context))
}

// EmptySubset flags an area/metric slice with no finite values
func EmptySubset(area, metric string) *AppError {
	return New(CodeEmptySubset, fmt.Sprintf("area %s has no finite values for metric %s", area, metric))
}

// MergeFailed wraps a stage failure; a merge either fully succeeds or fully fails
func MergeFailed(stage string, cause error) *AppError {
	return &AppError{
		Code:    CodeMergeFailed,
		Message: fmt.Sprintf("merge failed at stage %q", stage),
		Cause:   cause,
	}
}

func DatabaseError(message string) *AppError {
	return New(CodeDatabaseError, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}
