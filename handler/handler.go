// Package handler ties the fault classifier, retry executor, and monitoring
// sink together behind a single injectable facade. One Handler is constructed
// at process startup and passed explicitly to every route or service that
// needs it; there is no lazily initialized global.
package handler

import (
	"context"

	"github.com/gaborage/go-resilience/fault"
	"github.com/gaborage/go-resilience/logger"
	"github.com/gaborage/go-resilience/monitoring"
	"github.com/gaborage/go-resilience/retry"
)

// Handler is the resilient call wrapper facade. Every error it propagates is
// a *fault.Error with a valid HTTP status and non-empty message.
type Handler struct {
	classifier *fault.Classifier
	executor   *retry.Executor
	sink       *monitoring.Sink
	log        logger.Logger

	policyOverride *retry.Policy
}

// Option configures a Handler during construction.
type Option func(*Handler)

// WithClassifier injects a custom classifier, typically one extended with
// vendor adapters.
func WithClassifier(c *fault.Classifier) Option {
	return func(h *Handler) { h.classifier = c }
}

// WithPolicy sets the retry policy used for Do.
func WithPolicy(p retry.Policy) Option {
	return func(h *Handler) {
		h.executor = nil
		h.policyOverride = &p
	}
}

// WithExecutor injects a fully built retry executor, overriding WithPolicy.
func WithExecutor(e *retry.Executor) Option {
	return func(h *Handler) { h.executor = e }
}

// WithSink attaches a monitoring sink. Terminal failures from Do and explicit
// Record calls are forwarded to it.
func WithSink(s *monitoring.Sink) Option {
	return func(h *Handler) { h.sink = s }
}

// New creates a Handler with the default classifier and retry policy unless
// overridden by options.
func New(log logger.Logger, opts ...Option) *Handler {
	h := &Handler{log: log}
	for _, opt := range opts {
		opt(h)
	}
	if h.classifier == nil {
		h.classifier = fault.NewClassifier()
	}
	if h.executor == nil {
		policy := retry.Default()
		if h.policyOverride != nil {
			policy = *h.policyOverride
		}
		h.executor = retry.NewExecutor(policy, h.classifier, log)
	}
	return h
}

// Classify maps any error to a normalized *fault.Error.
func (h *Handler) Classify(err error, reqCtx ...fault.Context) *fault.Error {
	return h.classifier.Classify(err, reqCtx...)
}

// Classifier returns the handler's classifier for sharing with other
// components.
func (h *Handler) Classifier() *fault.Classifier {
	return h.classifier
}

// Do executes op under the handler's retry policy. The terminal failure, if
// any, is recorded to the monitoring sink and returned as a *fault.Error.
func (h *Handler) Do(ctx context.Context, op retry.Operation) error {
	err := h.executor.Do(ctx, op)
	if err == nil {
		return nil
	}
	fe := h.classifier.Classify(err)
	if h.sink != nil {
		h.sink.Record(fe, nil)
	}
	return fe
}

// Record classifies err and forwards it to the monitoring sink. It is a
// no-op when no sink is attached or err is nil.
func (h *Handler) Record(err error, extra map[string]any) {
	if err == nil || h.sink == nil {
		return
	}
	h.sink.Record(h.classifier.Classify(err), extra)
}

// Flush forces delivery of queued monitoring events.
func (h *Handler) Flush(ctx context.Context) error {
	if h.sink == nil {
		return nil
	}
	return h.sink.Flush(ctx)
}

// Shutdown stops the monitoring sink after a final best-effort flush.
func (h *Handler) Shutdown(ctx context.Context) error {
	if h.sink == nil {
		return nil
	}
	return h.sink.Shutdown(ctx)
}

// DoValue executes op under the handler and returns its result. It is the
// generic companion to Handler.Do.
func DoValue[T any](ctx context.Context, h *Handler, op func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := h.Do(ctx, func(ctx context.Context) error {
		var opErr error
		result, opErr = op(ctx)
		return opErr
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
