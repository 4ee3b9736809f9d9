// Package errors defines the error taxonomy for the transcription pipeline.
// Every failure that crosses a component boundary is wrapped in an AppError
// carrying a machine-readable code and the HTTP status the API layer should
// respond with.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode is a machine-readable error code.
type ErrorCode string

const (
	// ErrCodeValidation covers bad, missing or oversized uploads.
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
	// ErrCodeAuth covers a rejected outbound credential (upstream 401).
	ErrCodeAuth ErrorCode = "AUTH_ERROR"
	// ErrCodeRateLimited covers upstream 429, passed through to the caller.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
	// ErrCodeUpstreamRejected covers upstream 400/413 (bad request, payload too large).
	ErrCodeUpstreamRejected ErrorCode = "UPSTREAM_REJECTED"
	// ErrCodeTransport covers timeouts, DNS failures and connection errors.
	ErrCodeTransport ErrorCode = "TRANSPORT_ERROR"
	// ErrCodeUpstream covers any other non-2xx from an external API.
	ErrCodeUpstream ErrorCode = "UPSTREAM_ERROR"
	// ErrCodePersistence covers a failed database write or read.
	ErrCodePersistence ErrorCode = "PERSISTENCE_ERROR"
	// ErrCodeNotFound covers a missing persisted record.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// AppError is the unified application error type.
type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// Validation creates an AppError for a rejected upload.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeValidation, Message: message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// Auth creates an AppError for a rejected outbound credential. The upstream
// 401 is reported as a 500 to the caller and the message never includes the
// credential itself.
func Auth() *AppError {
	return &AppError{
		Code: ErrCodeAuth, Message: "Invalid API credentials. Please check the server configuration.",
		HTTPStatus: http.StatusInternalServerError,
	}
}

// RateLimited creates an AppError for an upstream 429.
func RateLimited() *AppError {
	return &AppError{
		Code: ErrCodeRateLimited, Message: "Rate limit exceeded. Please try again later.",
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// UpstreamRejected creates an AppError for an upstream 400 or 413.
func UpstreamRejected(status int, message string) *AppError {
	if message == "" {
		message = "The external API rejected the request."
	}
	return &AppError{
		Code: ErrCodeUpstreamRejected, Message: fmt.Sprintf("Upstream rejected the request (status %d): %s", status, message),
		HTTPStatus: http.StatusInternalServerError,
	}
}

// Transport creates an AppError for a network-level failure.
func Transport(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTransport, Message: fmt.Sprintf("The %s request failed to reach the external API.", operation),
		HTTPStatus: http.StatusInternalServerError,
	}
}

// Upstream creates an AppError for any other non-2xx upstream reply. The
// upstream status is kept in the message for diagnostics.
func Upstream(status int, message string) *AppError {
	if message == "" {
		message = "Unknown error"
	}
	return &AppError{
		Code: ErrCodeUpstream, Message: fmt.Sprintf("External API error (status %d): %s", status, message),
		HTTPStatus: http.StatusInternalServerError,
	}
}

// Persistence creates an AppError for a failed database operation with the
// driver message attached.
func Persistence(cause error) *AppError {
	return &AppError{
		Code: ErrCodePersistence, Message: "Failed to store the transcription record.",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NotFound creates an AppError for a missing record.
func NotFound(resource string) *AppError {
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

// FromUpstreamStatus classifies a non-2xx status from either external API
// into the taxonomy above.
func FromUpstreamStatus(status int, message string) *AppError {
	switch status {
	case http.StatusUnauthorized:
		return Auth()
	case http.StatusTooManyRequests:
		return RateLimited()
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return UpstreamRejected(status, message)
	default:
		return Upstream(status, message)
	}
}

// As unwraps err to an *AppError if one is present in its chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// StatusOf returns the HTTP status for err, defaulting to 500 for errors
// outside the taxonomy.
func StatusOf(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}
