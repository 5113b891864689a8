// Package server provides the HTTP boundary helpers consumed by Echo route
// handlers: the standard response envelope and the error-handling middleware
// that converts normalized errors into JSON responses.
package server

import (
	"time"

	"github.com/gaborage/go-resilience/fault"
)

// APIResponse is the standardized response envelope. Timestamp and RequestID
// are always populated.
type APIResponse struct {
	Success   bool           `json:"success"`
	Data      any            `json:"data,omitempty"`
	Message   string         `json:"message,omitempty"`
	ErrorCode string         `json:"error_code,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	RequestID string         `json:"request_id"`
}

// NewSuccessResponse builds a success envelope around data.
func NewSuccessResponse(data any, requestID string) APIResponse {
	return APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}

// NewErrorResponse builds an error envelope from a normalized error. Only the
// public fields of the fault are exposed; the cause stays internal.
func NewErrorResponse(fe *fault.Error, requestID string) APIResponse {
	return APIResponse{
		Success:   false,
		Message:   fe.Message,
		ErrorCode: fe.Code,
		Details: map[string]any{
			"kind":     string(fe.Kind),
			"severity": string(fe.Severity),
		},
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}
