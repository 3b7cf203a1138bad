package errors

import (
	"fmt"
	"net/http"
)

// UpstreamError reports a platform response outside the accepted status set.
// The operation is aborted; nothing is retried.
type UpstreamError struct {
	// Operation names the platform call, e.g. "Get Account jane@example.com".
	Operation string

	// StatusCode is the HTTP status returned by the platform.
	StatusCode int

	// Body is the raw response body.
	Body string
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("Issue when trying to perform %s - %d - %s", e.Operation, e.StatusCode, e.Body)
}

// Unwrap maps the status onto a sentinel so exit codes and HTTP mappings
// can use errors.Is.
func (e *UpstreamError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrPermission
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return ErrUpstream
	}
}
