package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Failure categories. Every RequestError unwraps to exactly one of these,
// so call sites can branch with errors.Is.
var (
	// ErrNetwork is returned when the request was sent but no response
	// arrived (timeout, connection refused, DNS failure).
	ErrNetwork = errors.New("apiclient: network failure")

	// ErrConfig is returned when the request could not be constructed
	// and was never sent.
	ErrConfig = errors.New("apiclient: request configuration failure")

	// ErrHTTP is returned when the server responded with a non-2xx status.
	ErrHTTP = errors.New("apiclient: http failure")

	// ErrBusiness is returned when a 2xx response carried a non-success
	// status envelope.
	ErrBusiness = errors.New("apiclient: business failure")
)

// Default user-facing messages.
const (
	msgNetworkFailure = "network connection failed"
	msgConfigFailure  = "request configuration error"
	msgRequestFailed  = "request failed"
)

// RequestError is the uniform error shape produced for every failure path.
// Code carries the HTTP status for server failures, 400 for business-level
// failures, and 0 when no response was received or the request was never
// sent. Details holds the raw response body when one exists.
type RequestError struct {
	kind    error
	Message string
	Details json.RawMessage
	Code    int
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
}

func (e *RequestError) Unwrap() error {
	return e.kind
}

func newNetworkError() *RequestError {
	return &RequestError{kind: ErrNetwork, Code: 0, Message: msgNetworkFailure}
}

func newConfigError() *RequestError {
	return &RequestError{kind: ErrConfig, Code: 0, Message: msgConfigFailure}
}

func newHTTPError(status int, message string, body []byte) *RequestError {
	if message == "" {
		message = fmt.Sprintf("%s (%d)", msgRequestFailed, status)
	}
	return &RequestError{kind: ErrHTTP, Code: status, Message: message, Details: body}
}

func newBusinessError(message string, body []byte) *RequestError {
	if message == "" {
		message = msgRequestFailed
	}
	return &RequestError{kind: ErrBusiness, Code: 400, Message: message, Details: body}
}
