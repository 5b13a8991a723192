package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorType says why a lookup produced no record.
type ErrorType string

const (
	// ErrorTypeNetwork covers connection failures (refused, reset, DNS)
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeTimeout means the request exceeded its deadline
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeStatus means the API answered with a non-2xx status
	ErrorTypeStatus ErrorType = "status"
	// ErrorTypeDecode means a 2xx body could not be parsed
	ErrorTypeDecode ErrorType = "decode"
	// ErrorTypeValidation means the body parsed but lacks the expected section
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeUnknown is reported for errors that are not a *FetchError
	ErrorTypeUnknown ErrorType = "unknown"
)

// FetchError describes a failed lookup. Lookups are attempted exactly once,
// so the type is informational: every failure ends in a missing record.
type FetchError struct {
	Type       ErrorType
	StatusCode int
	Message    string
	Cause      error
}

func (e *FetchError) Error() string {
	switch {
	case e.StatusCode > 0:
		return fmt.Sprintf("%s error (status %d): %s", e.Type, e.StatusCode, e.Message)
	case e.Cause != nil:
		return fmt.Sprintf("%s error: %s: %v", e.Type, e.Message, e.Cause)
	default:
		return fmt.Sprintf("%s error: %s", e.Type, e.Message)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// NewStatusError reports a non-2xx response.
func NewStatusError(statusCode int) *FetchError {
	msg := http.StatusText(statusCode)
	if msg == "" {
		msg = "unexpected status"
	}
	return &FetchError{
		Type:       ErrorTypeStatus,
		StatusCode: statusCode,
		Message:    msg,
	}
}

// NewDecodeError reports a body that could not be parsed.
func NewDecodeError(cause error) *FetchError {
	return &FetchError{
		Type:    ErrorTypeDecode,
		Message: "malformed response body",
		Cause:   cause,
	}
}

// NewValidationError reports a parsed body with the wrong shape.
func NewValidationError(message string) *FetchError {
	return &FetchError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewTimeoutError reports a request that ran past its deadline.
func NewTimeoutError(cause error) *FetchError {
	return &FetchError{
		Type:    ErrorTypeTimeout,
		Message: "request timed out",
		Cause:   cause,
	}
}

// NewNetworkError reports a transport failure.
func NewNetworkError(cause error) *FetchError {
	return &FetchError{
		Type:    ErrorTypeNetwork,
		Message: "request failed",
		Cause:   cause,
	}
}

// ClassifyTransportError maps an error returned by the HTTP client to a
// FetchError, separating timeouts from other network failures. An error that
// already wraps a *FetchError is returned as that FetchError.
func ClassifyTransportError(err error) *FetchError {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError(err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewTimeoutError(err)
	}

	return NewNetworkError(err)
}

// TypeOf returns the ErrorType carried by err, or ErrorTypeUnknown.
func TypeOf(err error) ErrorType {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Type
	}
	return ErrorTypeUnknown
}
