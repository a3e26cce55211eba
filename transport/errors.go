package transport

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
)

// ErrorCode classifies transport errors.
type ErrorCode int

const (
	// ErrCodeTimeout indicates a request or connection timeout.
	ErrCodeTimeout ErrorCode = iota
	// ErrCodeConnection indicates a connection failure (refused, DNS, proxy, TLS).
	ErrCodeConnection
	// ErrCodeAuth indicates an authentication/authorization failure (401/403/407).
	ErrCodeAuth
	// ErrCodeNotFound indicates the resource was not found (404).
	ErrCodeNotFound
	// ErrCodeRateLimit indicates rate limiting (429).
	ErrCodeRateLimit
	// ErrCodeValidation indicates any other 4xx status.
	ErrCodeValidation
	// ErrCodeServer indicates a server-side error (5xx).
	ErrCodeServer
	// ErrCodeProtocol indicates a malformed response from the peer.
	ErrCodeProtocol
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
	case ErrCodeProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// Error is a classified transport error.
type Error struct {
	// StatusCode is the HTTP status code (0 for connection-level errors).
	StatusCode int
	// Code classifies the error.
	Code ErrorCode
	// Message describes the error.
	Message string
	// Retryable indicates whether the request can be retried.
	Retryable bool
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("transport: %s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("transport: %s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewTimeoutError creates a timeout error.
func NewTimeoutError(err error) *Error {
	return &Error{Code: ErrCodeTimeout, Message: err.Error(), Retryable: true, Err: err}
}

// NewConnectionError creates a connection error.
func NewConnectionError(err error) *Error {
	return &Error{Code: ErrCodeConnection, Message: err.Error(), Retryable: true, Err: err}
}

// NewProtocolError creates an error for an unreadable response.
func NewProtocolError(err error) *Error {
	return &Error{Code: ErrCodeProtocol, Message: err.Error(), Err: err}
}

// FromNetError classifies a dial, read or write failure. ctx is consulted so
// that cancellation and deadlines surface as timeouts.
func FromNetError(ctx context.Context, err error) *Error {
	if err == nil {
		return nil
	}
	var te *Error
	if stderrors.As(err, &te) {
		return te
	}
	if ctx != nil && ctx.Err() != nil {
		return NewTimeoutError(err)
	}
	var ne net.Error
	if stderrors.As(err, &ne) && ne.Timeout() {
		return NewTimeoutError(err)
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError(err)
	}
	return NewConnectionError(err)
}

// ClassifyStatusCode converts an HTTP status code into a typed error.
// Returns nil for statuses below 400.
func ClassifyStatusCode(statusCode int) *Error {
	msg := fmt.Sprintf("HTTP %d", statusCode)
	switch {
	case statusCode < 400:
		return nil
	case statusCode == 401 || statusCode == 403 || statusCode == 407:
		return &Error{StatusCode: statusCode, Code: ErrCodeAuth, Message: msg}
	case statusCode == 404:
		return &Error{StatusCode: statusCode, Code: ErrCodeNotFound, Message: msg}
	case statusCode == 429:
		return &Error{StatusCode: statusCode, Code: ErrCodeRateLimit, Message: msg, Retryable: true}
	case statusCode < 500:
		return &Error{StatusCode: statusCode, Code: ErrCodeValidation, Message: msg}
	default:
		return &Error{StatusCode: statusCode, Code: ErrCodeServer, Message: msg, Retryable: true}
	}
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var e *Error
	return stderrors.As(err, &e) && e.Code == ErrCodeTimeout
}

// IsConnection checks if an error is a connection error.
func IsConnection(err error) bool {
	var e *Error
	return stderrors.As(err, &e) && e.Code == ErrCodeConnection
}

// IsAuth checks if an error is an authentication error.
func IsAuth(err error) bool {
	var e *Error
	return stderrors.As(err, &e) && e.Code == ErrCodeAuth
}

// IsNotFound checks if an error is a not-found error.
func IsNotFound(err error) bool {
	var e *Error
	return stderrors.As(err, &e) && e.Code == ErrCodeNotFound
}

// IsServerError checks if an error is a server error.
func IsServerError(err error) bool {
	var e *Error
	return stderrors.As(err, &e) && e.Code == ErrCodeServer
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var e *Error
	return stderrors.As(err, &e) && e.Retryable
}
