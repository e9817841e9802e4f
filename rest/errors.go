package rest

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorCode classifies client failures.
type ErrorCode int

const (
	// ErrCodeTimeout indicates a request deadline or cancellation.
	ErrCodeTimeout ErrorCode = iota
	// ErrCodeConnection indicates a transport failure (refused, DNS, reset).
	ErrCodeConnection
	// ErrCodeAuth indicates an authentication/authorization failure (401/403).
	ErrCodeAuth
	// ErrCodeNotFound indicates the resource was not found (404).
	ErrCodeNotFound
	// ErrCodeRateLimit indicates rate limiting (429).
	ErrCodeRateLimit
	// ErrCodeValidation covers other 4xx responses and requests rejected before sending.
	ErrCodeValidation
	// ErrCodeServer indicates a server-side error (5xx).
	ErrCodeServer
	// ErrCodeDecode indicates a response body that is not valid JSON for a User.
	ErrCodeDecode
	// ErrCodeInvalidResponse indicates a decoded User that fails its field rules.
	ErrCodeInvalidResponse
)

// String returns the error code name.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeTimeout:
		return "timeout"
	case ErrCodeConnection:
		return "connection"
	case ErrCodeAuth:
		return "auth"
	case ErrCodeNotFound:
		return "not_found"
	case ErrCodeRateLimit:
		return "rate_limit"
	case ErrCodeValidation:
		return "validation"
	case ErrCodeServer:
		return "server"
	case ErrCodeDecode:
		return "decode"
	case ErrCodeInvalidResponse:
		return "invalid_response"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by adapters.
type Error struct {
	// StatusCode is the HTTP status code (0 when no response arrived).
	StatusCode int
	// Code classifies the error.
	Code ErrorCode
	// Message describes the error.
	Message string
	// Body is the raw response body, if any.
	Body []byte
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("rest: %s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("rest: %s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewTimeoutError creates a timeout error.
func NewTimeoutError(err error) *Error {
	return &Error{Code: ErrCodeTimeout, Message: err.Error(), Err: err}
}

// NewConnectionError creates a connection error.
func NewConnectionError(err error) *Error {
	return &Error{Code: ErrCodeConnection, Message: err.Error(), Err: err}
}

// NewTransportError classifies a failure reported by the underlying transport
// before any response arrived.
func NewTransportError(ctx context.Context, err error) *Error {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewTimeoutError(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewTimeoutError(err)
	}
	return NewConnectionError(err)
}

// NewValidationError creates an error for a request rejected before sending.
func NewValidationError(msg string) *Error {
	return &Error{Code: ErrCodeValidation, Message: msg}
}

// NewDecodeError creates an error for a response body that could not be parsed.
func NewDecodeError(statusCode int, body []byte, err error) *Error {
	return &Error{
		StatusCode: statusCode,
		Code:       ErrCodeDecode,
		Message:    fmt.Sprintf("decode response: %v", err),
		Body:       body,
		Err:        err,
	}
}

// NewInvalidResponseError creates an error for a decoded User that fails validation.
func NewInvalidResponseError(statusCode int, body []byte, err error) *Error {
	return &Error{
		StatusCode: statusCode,
		Code:       ErrCodeInvalidResponse,
		Message:    err.Error(),
		Body:       body,
		Err:        err,
	}
}

// ClassifyStatusCode converts an HTTP status code into a typed error.
// Returns nil for 2xx status codes.
func ClassifyStatusCode(statusCode int, body []byte) *Error {
	e := &Error{
		StatusCode: statusCode,
		Message:    fmt.Sprintf("HTTP %d", statusCode),
		Body:       body,
	}
	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil
	case statusCode == 401 || statusCode == 403:
		e.Code = ErrCodeAuth
	case statusCode == 404:
		e.Code = ErrCodeNotFound
	case statusCode == 429:
		e.Code = ErrCodeRateLimit
	case statusCode >= 400 && statusCode < 500:
		e.Code = ErrCodeValidation
	default:
		e.Code = ErrCodeServer
	}
	return e
}

// CodeOf returns the classification of err, and false if err is not an *Error.
func CodeOf(err error) (ErrorCode, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}

func hasCode(err error, code ErrorCode) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool { return hasCode(err, ErrCodeTimeout) }

// IsConnection checks if an error is a connection error.
func IsConnection(err error) bool { return hasCode(err, ErrCodeConnection) }

// IsAuth checks if an error is an authentication error.
func IsAuth(err error) bool { return hasCode(err, ErrCodeAuth) }

// IsNotFound checks if an error is a not-found error.
func IsNotFound(err error) bool { return hasCode(err, ErrCodeNotFound) }

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool { return hasCode(err, ErrCodeValidation) }

// IsServerError checks if an error is a server error.
func IsServerError(err error) bool { return hasCode(err, ErrCodeServer) }

// IsDecode checks if an error is a response decoding error.
func IsDecode(err error) bool { return hasCode(err, ErrCodeDecode) }

// IsInvalidResponse checks if an error is a response validation error.
func IsInvalidResponse(err error) bool { return hasCode(err, ErrCodeInvalidResponse) }

// IsTransport reports whether err happened before any response arrived.
func IsTransport(err error) bool { return IsTimeout(err) || IsConnection(err) }

// StatusCode returns the HTTP status attached to err, or 0.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}
