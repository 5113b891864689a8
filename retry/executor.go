package retry

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/gaborage/go-resilience/fault"
	"github.com/gaborage/go-resilience/logger"
)

// Operation is a retryable unit of work. It must honor ctx cancellation.
type Operation func(ctx context.Context) error

// Executor runs operations under a Policy, classifying each failure to decide
// retryability. Executors are immutable after construction and safe for
// concurrent use; each Do invocation keeps its own attempt counter and delay
// state.
type Executor struct {
	policy     Policy
	classifier *fault.Classifier
	log        logger.Logger
	clock      Clock
	randFloat  func() float64
}

// NewExecutor creates an Executor. A zero-value policy is replaced with
// Default(); partial policies keep their explicit fields and inherit defaults
// for the rest.
func NewExecutor(policy Policy, classifier *fault.Classifier, log logger.Logger) *Executor {
	return &Executor{
		policy:     withDefaults(policy),
		classifier: classifier,
		log:        log,
		clock:      realClock{},
		randFloat:  rand.Float64,
	}
}

// WithClock overrides the executor's clock. Tests use this to avoid real
// sleeps.
func (e *Executor) WithClock(clock Clock) *Executor {
	e.clock = clock
	return e
}

// WithRand overrides the jitter randomness source. Tests use this for
// deterministic delays.
func (e *Executor) WithRand(randFloat func() float64) *Executor {
	e.randFloat = randFloat
	return e
}

// Policy returns the executor's effective policy.
func (e *Executor) Policy() Policy {
	return e.policy
}

func withDefaults(p Policy) Policy {
	if p.MaxAttempts == 0 && p.BaseDelay == 0 && p.MaxDelay == 0 && p.Multiplier == 0 {
		return Default()
	}
	d := Default()
	if p.MaxAttempts < 1 {
		p.MaxAttempts = d.MaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = d.BaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = d.MaxDelay
	}
	if p.MaxDelay < p.BaseDelay {
		p.MaxDelay = p.BaseDelay
	}
	if p.Multiplier <= 1 {
		p.Multiplier = d.Multiplier
	}
	if p.RetryableKinds == nil {
		p.RetryableKinds = d.RetryableKinds
	}
	return p
}

// Do executes op up to MaxAttempts times. It returns nil on the first
// success. On failure the error is classified; a non-retryable kind, a kind
// outside the policy, or exhausted attempts propagate the classified error.
// Otherwise the executor logs the retry, sleeps with exponential backoff, and
// tries again. Cancelling ctx aborts an in-flight wait and returns the last
// classified error.
func (e *Executor) Do(ctx context.Context, op Operation) error {
	for attempt := 1; ; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}

		classified := e.classifier.Classify(err)
		if !classified.Retryable || !e.policy.allows(classified.Kind) {
			return classified
		}
		if attempt >= e.policy.MaxAttempts {
			if e.log != nil {
				e.log.Error().
					Int("attempts", attempt).
					Str("kind", string(classified.Kind)).
					Err(classified).
					Msg("Retry attempts exhausted")
			}
			return classified
		}

		delay := e.delayFor(attempt)
		if e.log != nil {
			e.log.Warn().
				Int("attempt", attempt).
				Dur("delay", delay).
				Str("kind", string(classified.Kind)).
				Str("error", classified.Message).
				Msg("Operation failed, retrying")
		}

		if sleepErr := e.clock.Sleep(ctx, delay); sleepErr != nil {
			return classified
		}
	}
}

// delayFor computes the backoff for attempt n, applying a uniform jitter
// factor in [0.5, 1.0) when enabled.
func (e *Executor) delayFor(attempt int) time.Duration {
	d := e.policy.Delay(attempt)
	if e.policy.Jitter {
		factor := 0.5 + e.randFloat()/2
		d = time.Duration(float64(d) * factor)
	}
	return d
}

// Do executes op with the default policy and no logging. It is a convenience
// for one-off calls; construct an Executor for anything long-lived.
func Do(ctx context.Context, classifier *fault.Classifier, op Operation) error {
	return NewExecutor(Default(), classifier, nil).Do(ctx, op)
}

// DoValue executes op under the executor and returns its result. It is the
// generic companion to Executor.Do for operations that produce a value.
func DoValue[T any](ctx context.Context, e *Executor, op func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := e.Do(ctx, func(ctx context.Context) error {
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
