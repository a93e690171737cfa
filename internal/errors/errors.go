package errors

import "fmt"

// ErrorCode represents an omikuji error code.
type ErrorCode string

const (
	ErrInvalidRequest   ErrorCode = "INVALID_REQUEST"   // 400
	ErrNotFound         ErrorCode = "NOT_FOUND"         // 404
	ErrInvalidRecord    ErrorCode = "INVALID_RECORD"    // 422
	ErrGenerationFailed ErrorCode = "GENERATION_FAILED" // 502
	ErrLockTimeout      ErrorCode = "LOCK_TIMEOUT"      // 503, transient
	ErrInternal         ErrorCode = "INTERNAL"          // 500
)

// OmikujiError represents a structured error with code, status, and details.
type OmikujiError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	Wrapped error
}

// Error implements the error interface.
func (e *OmikujiError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *OmikujiError) Unwrap() error {
	return e.Wrapped
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *OmikujiError {
	return &OmikujiError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing corpus entry or daily slot.
func NewNotFound(identifier string) *OmikujiError {
	return &OmikujiError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewInvalidRecord creates a 422 error for a fortune that fails validation.
func NewInvalidRecord(msg string, details map[string]any) *OmikujiError {
	return &OmikujiError{
		Code:    ErrInvalidRecord,
		Status:  422,
		Message: msg,
		Details: details,
	}
}

// NewGenerationFailed wraps a failure from the external generation call.
// The cause is preserved so callers can inspect it; this layer never retries.
func NewGenerationFailed(err error) *OmikujiError {
	msg := "fortune generation failed"
	if err != nil {
		msg = fmt.Sprintf("fortune generation failed: %v", err)
	}
	return &OmikujiError{
		Code:    ErrGenerationFailed,
		Status:  502,
		Message: msg,
		Wrapped: err,
	}
}

// NewLockTimeout creates a 503 error for a merge that could not acquire
// its key lock within the configured wait. Callers may retry.
func NewLockTimeout(level, theme string) *OmikujiError {
	return &OmikujiError{
		Code:    ErrLockTimeout,
		Status:  503,
		Message: fmt.Sprintf("timed out waiting for corpus lock on (%s, %s)", level, theme),
		Details: map[string]any{"level": level, "theme": theme},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *OmikujiError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &OmikujiError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		Wrapped: err,
	}
}

// Is checks if an error is an OmikujiError with the given code.
func Is(err error, code ErrorCode) bool {
	if oErr, ok := err.(*OmikujiError); ok {
		return oErr.Code == code
	}
	return false
}

// IsTransient reports whether the error indicates a condition the caller
// can retry (lock contention) rather than unavailable content.
func IsTransient(err error) bool {
	return Is(err, ErrLockTimeout)
}
