package apiclient

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an API error into one of the caller-facing failure domains.
type Kind string

const (
	// KindTransport covers network failures, timeouts and malformed success responses.
	KindTransport Kind = "transport"
	// KindUploadFailure covers errors raised by the file upload subsystem.
	KindUploadFailure Kind = "upload_failure"
	// KindPageOperationFailure covers errors raised by page and block mutations.
	KindPageOperationFailure Kind = "page_operation_failure"
	// KindInvalidArgument covers malformed caller input rejected before any network call.
	KindInvalidArgument Kind = "invalid_argument"
)

// APIError is the single error type surfaced by all API operations. It is
// immutable once constructed.
type APIError struct {
	Kind       Kind
	StatusCode int
	Message    string
	Code       string
	RawBody    []byte
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status: %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewTransportError wraps a connection/timeout/decode failure.
func NewTransportError(message string, err error) *APIError {
	return &APIError{
		Kind:    KindTransport,
		Message: message,
		Err:     err,
	}
}

// NewUploadError creates an upload subsystem error.
func NewUploadError(message string, statusCode int, rawBody []byte) *APIError {
	return &APIError{
		Kind:       KindUploadFailure,
		StatusCode: statusCode,
		Message:    message,
		RawBody:    rawBody,
	}
}

// NewPageError creates a page/block mutation error.
func NewPageError(message string, statusCode int, rawBody []byte) *APIError {
	return &APIError{
		Kind:       KindPageOperationFailure,
		StatusCode: statusCode,
		Message:    message,
		RawBody:    rawBody,
	}
}

// NewInvalidArgumentError reports malformed caller input.
func NewInvalidArgumentError(message string) *APIError {
	return &APIError{
		Kind:    KindInvalidArgument,
		Message: message,
	}
}

// KindOf returns the Kind of err if it is (or wraps) an APIError, or an empty
// Kind otherwise.
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// FormatErrorDetail reassembles a server error message into one itemized line
// per sentence for user-facing diagnostics.
func FormatErrorDetail(message string) string {
	parts := strings.Split(message, ". ")
	lines := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSuffix(strings.TrimSpace(p), ".")
		if p == "" {
			continue
		}
		lines = append(lines, "- "+p)
	}
	if len(lines) == 0 {
		return message
	}
	return strings.Join(lines, "\n")
}
