package fault

import (
	"errors"
	"time"
)

// Adapter normalizes failures from one specific source (HTTP-style errors,
// database driver errors, native net errors). Normalize returns false when
// the adapter does not recognize the error, letting the next adapter try.
type Adapter interface {
	Normalize(err error) (*Error, bool)
}

// AdapterFunc adapts a plain function to the Adapter interface.
type AdapterFunc func(err error) (*Error, bool)

// Normalize implements Adapter.
func (f AdapterFunc) Normalize(err error) (*Error, bool) {
	return f(err)
}

// Classifier maps an arbitrary error to exactly one *Error by running an
// ordered adapter chain. It has no side effects beyond reading the clock and
// is safe for concurrent use.
type Classifier struct {
	adapters []Adapter
	now      func() time.Time
}

// NewClassifier creates a Classifier with the built-in adapter chain:
// HTTP status carriers, database driver errors, then native network and
// timeout signatures. Extra adapters run before the built-ins so vendor
// integrations can take precedence.
func NewClassifier(extra ...Adapter) *Classifier {
	adapters := make([]Adapter, 0, len(extra)+3)
	adapters = append(adapters, extra...)
	adapters = append(adapters,
		AdapterFunc(normalizeStatus),
		AdapterFunc(normalizeDatabase),
		AdapterFunc(normalizeNative),
	)
	return &Classifier{
		adapters: adapters,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the classifier's clock. Tests use this for
// deterministic timestamps.
func (c *Classifier) WithClock(now func() time.Time) *Classifier {
	c.now = now
	return c
}

// Classify maps err to a fully populated *Error. An already-normalized error
// is returned unchanged, which makes Classify idempotent. The optional
// context is applied only when the error does not already carry one, and its
// timestamp is auto-filled if absent. Classify(nil) returns nil.
func (c *Classifier) Classify(err error, reqCtx ...Context) *Error {
	if err == nil {
		return nil
	}

	var fe *Error
	if errors.As(err, &fe) {
		return fe
	}

	for _, a := range c.adapters {
		if norm, ok := a.Normalize(err); ok {
			return c.finish(norm, err, reqCtx)
		}
	}

	fallback := New(KindInternal, err.Error())
	return c.finish(fallback, err, reqCtx)
}

func (c *Classifier) finish(norm *Error, cause error, reqCtx []Context) *Error {
	if norm.cause == nil {
		norm.cause = cause
	}
	if len(reqCtx) > 0 {
		norm.WithContext(reqCtx[0])
	}
	if norm.Context.Timestamp.IsZero() {
		norm.Context.Timestamp = c.now()
	}
	if norm.Message == "" {
		norm.Message = cause.Error()
	}
	return norm
}
