// Package retry executes operations with exponential backoff, consulting the
// fault classifier after each failure to decide whether another attempt is
// worthwhile.
package retry

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/gaborage/go-resilience/fault"
)

// Default policy values.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 1 * time.Second
	DefaultMaxDelay    = 30 * time.Second
	DefaultMultiplier  = 2.0
)

// Policy configures the retry executor. The executor never retries an error
// whose retryable flag is false, nor one whose kind is absent from
// RetryableKinds, regardless of remaining attempts.
type Policy struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	Multiplier     float64
	Jitter         bool
	RetryableKinds []fault.Kind
}

// Default returns the stock policy: 3 attempts, 1s base delay, 30s max delay,
// multiplier 2, jitter enabled, retrying network, timeout, rate-limit,
// service-unavailable, and internal kinds.
func Default() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		MaxDelay:    DefaultMaxDelay,
		Multiplier:  DefaultMultiplier,
		Jitter:      true,
		RetryableKinds: []fault.Kind{
			fault.KindNetwork,
			fault.KindTimeout,
			fault.KindRateLimit,
			fault.KindServiceUnavailable,
			fault.KindInternal,
		},
	}
}

// Validate checks policy invariants: at least one attempt, positive base
// delay, max delay no smaller than base delay, multiplier above one.
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be >= 1, got %d", p.MaxAttempts)
	}
	if p.BaseDelay <= 0 {
		return fmt.Errorf("base delay must be positive, got %v", p.BaseDelay)
	}
	if p.MaxDelay < p.BaseDelay {
		return fmt.Errorf("max delay %v must be >= base delay %v", p.MaxDelay, p.BaseDelay)
	}
	if p.Multiplier <= 1 {
		return fmt.Errorf("multiplier must be > 1, got %v", p.Multiplier)
	}
	return nil
}

// allows reports whether the policy permits retrying the given kind.
func (p Policy) allows(kind fault.Kind) bool {
	return slices.Contains(p.RetryableKinds, kind)
}

// Delay computes the backoff for attempt n (1-indexed) without jitter:
// min(MaxDelay, BaseDelay * Multiplier^(n-1)).
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt-1))
	if d > float64(p.MaxDelay) || d < 0 || math.IsInf(d, 1) {
		return p.MaxDelay
	}
	return time.Duration(d)
}
