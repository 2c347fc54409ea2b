package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Blueprint error code.
type ErrorCode string

const (
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"     // 400
	ErrInvalidCredentials ErrorCode = "INVALID_CREDENTIALS" // 401
	ErrUnauthenticated    ErrorCode = "UNAUTHENTICATED"     // 401
	ErrNotFound           ErrorCode = "NOT_FOUND"           // 404
	ErrFileTooLarge       ErrorCode = "FILE_TOO_LARGE"      // 413
	ErrParse              ErrorCode = "PARSE_ERROR"         // 422
	ErrPersistenceFailure ErrorCode = "PERSISTENCE_FAILURE" // 500
	ErrInternal           ErrorCode = "INTERNAL"            // 500
)

// BlueprintError represents a structured error with code, status, and details.
type BlueprintError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any

	cause error
}

// Error implements the error interface.
func (e *BlueprintError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *BlueprintError) Unwrap() error {
	return e.cause
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *BlueprintError {
	return &BlueprintError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidCredentials creates a 401 error for a failed login.
func NewInvalidCredentials() *BlueprintError {
	return &BlueprintError{
		Code:    ErrInvalidCredentials,
		Status:  401,
		Message: "invalid email or password",
	}
}

// NewUnauthenticated creates a 401 error for operations that need a signed-in user.
func NewUnauthenticated(op string) *BlueprintError {
	return &BlueprintError{
		Code:    ErrUnauthenticated,
		Status:  401,
		Message: fmt.Sprintf("%s requires a signed-in user", op),
		Details: map[string]any{"operation": op},
	}
}

// NewNotFound creates a 404 error for a missing item, project, or file.
func NewNotFound(kind, identifier string) *BlueprintError {
	return &BlueprintError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
		Details: map[string]any{"kind": kind, "identifier": identifier},
	}
}

// NewFileNotFound creates a 404 error for a missing file on disk.
func NewFileNotFound(path string) *BlueprintError {
	return NewNotFound("file", path)
}

// NewFileTooLarge creates a 413 error when an upload exceeds the size limit.
func NewFileTooLarge(max, actual int) *BlueprintError {
	return &BlueprintError{
		Code:    ErrFileTooLarge,
		Status:  413,
		Message: fmt.Sprintf("file exceeds maximum size: %d bytes (max %d)", actual, max),
		Details: map[string]any{"max_bytes": max, "actual_bytes": actual},
	}
}

// NewParse creates a 422 error for a malformed CSV or JSON payload.
func NewParse(fileName, format string, err error) *BlueprintError {
	msg := fmt.Sprintf("could not parse %s as %s", fileName, format)
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &BlueprintError{
		Code:    ErrParse,
		Status:  422,
		Message: msg,
		Details: map[string]any{"file_name": fileName, "format": format},
		cause:   err,
	}
}

// NewPersistenceFailure creates a 500 error for a failed record store write.
func NewPersistenceFailure(key string, err error) *BlueprintError {
	msg := fmt.Sprintf("failed to persist %s", key)
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &BlueprintError{
		Code:    ErrPersistenceFailure,
		Status:  500,
		Message: msg,
		Details: map[string]any{"key": key},
		cause:   err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message stays generic; the original error is kept in Details for logging.
func NewInternal(err error) *BlueprintError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &BlueprintError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
		cause:   err,
	}
}

// Is checks if an error is (or wraps) a BlueprintError with the given code.
func Is(err error, code ErrorCode) bool {
	var bErr *BlueprintError
	if stderrors.As(err, &bErr) {
		return bErr.Code == code
	}
	return false
}

// As returns the BlueprintError in err's chain, or nil.
func As(err error) *BlueprintError {
	var bErr *BlueprintError
	if stderrors.As(err, &bErr) {
		return bErr
	}
	return nil
}
