// Package monitoring batches normalized error records and delivers them to an
// external collector. Delivery is always best-effort and never blocks or
// fails the caller that produced the error.
package monitoring

import (
	"time"

	"github.com/gaborage/go-resilience/fault"
)

// Event is the lossy projection of a fault.Error shipped to the collector,
// plus routing tags identifying the emitting process. The underlying cause is
// intentionally absent.
type Event struct {
	Kind        string         `json:"kind"`
	Code        string         `json:"code,omitempty"`
	Message     string         `json:"message"`
	Severity    string         `json:"severity"`
	HTTPStatus  int            `json:"http_status"`
	UserID      string         `json:"user_id,omitempty"`
	RequestID   string         `json:"request_id,omitempty"`
	Endpoint    string         `json:"endpoint,omitempty"`
	Method      string         `json:"method,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
	Service     string         `json:"service"`
	Environment string         `json:"environment"`
	Version     string         `json:"version,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// newEvent projects a fault.Error into an Event tagged with the sink's
// routing information.
func newEvent(fe *fault.Error, cfg Config, extra map[string]any) Event {
	ts := fe.Context.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return Event{
		Kind:        string(fe.Kind),
		Code:        fe.Code,
		Message:     fe.Message,
		Severity:    string(fe.Severity),
		HTTPStatus:  fe.HTTPStatus,
		UserID:      fe.Context.UserID,
		RequestID:   fe.Context.RequestID,
		Endpoint:    fe.Context.Endpoint,
		Method:      fe.Context.Method,
		Timestamp:   ts,
		Service:     cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
		Extra:       extra,
	}
}

// batchPayload is the JSON body posted to the collector.
type batchPayload struct {
	Service     string  `json:"service"`
	Environment string  `json:"environment"`
	Version     string  `json:"version,omitempty"`
	Events      []Event `json:"events"`
}
