package httpclient

import (
	"fmt"
	"net/http"
)

// StatusError is returned (wrapped in a *fault.Error) when the server replies
// with a non-2xx status. Its HTTPStatus method feeds the fault classifier's
// status adapter, so the resulting kind follows the standard status mapping.
type StatusError struct {
	Status int
	Body   []byte
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP request failed with status %d", e.Status)
}

// HTTPStatus exposes the response status to the classifier.
func (e *StatusError) HTTPStatus() int {
	return e.Status
}

// IsSuccessStatus reports whether a status code is in the 2xx range.
func IsSuccessStatus(statusCode int) bool {
	return statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices
}
