package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// Policy configures timeout and retry behavior for one logical operation.
type Policy struct {
	// Timeout bounds every single attempt.
	// Default: 10 seconds
	Timeout time.Duration

	// MaxRetries is the number of additional attempts after the first one.
	// Negative values are treated as zero.
	// Default: 2 (only applied by DefaultPolicy)
	MaxRetries int

	// BaseDelay is the backoff before the first retry. Retry k waits
	// BaseDelay * 2^k, scaled to a random 50-100% of that value.
	// Default: 1 second
	BaseDelay time.Duration

	// IsTransient decides whether a failure is worth retrying.
	// Default: IsTransient
	IsTransient func(err error) bool

	// OnRetry is called before sleeping ahead of each retry.
	// attempt is 1 for the first retry.
	OnRetry func(attempt int, err error, delay time.Duration)

	// rand returns a value in [0, 1). Tests replace it.
	rand func() float64
}

// DefaultPolicy returns the policy used for credential verification calls.
// Timeout: 10s, MaxRetries: 2, BaseDelay: 1s
func DefaultPolicy() Policy {
	return Policy{
		Timeout:    10 * time.Second,
		MaxRetries: 2,
		BaseDelay:  time.Second,
	}
}

func (p Policy) withDefaults() Policy {
	if p.Timeout <= 0 {
		p.Timeout = 10 * time.Second
	}
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = time.Second
	}
	if p.IsTransient == nil {
		p.IsTransient = IsTransient
	}
	if p.rand == nil {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		p.rand = rand.Float64
	}
	return p
}

// Execute runs op with a per-attempt timeout, retrying transient failures
// with jittered exponential backoff.
//
// Permanent failures are returned immediately. When retries are exhausted
// the last observed error is returned unchanged so callers see the real cause.
func Execute[T any](ctx context.Context, policy Policy, op func(context.Context) (T, error)) (T, error) {
	return execute(ctx, policy, nil, op)
}

// execute is Execute with an optional hook run before every attempt, outside
// the attempt timeout.
func execute[T any](ctx context.Context, policy Policy, before func(context.Context) error, op func(context.Context) (T, error)) (T, error) {
	policy = policy.withDefaults()

	var (
		zero    T
		lastErr error
	)

	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if before != nil {
			if err := before(ctx); err != nil {
				return zero, err
			}
		}

		value, err := attemptWithTimeout(ctx, policy.Timeout, op)
		if err == nil {
			return value, nil
		}
		lastErr = err

		// Parent cancellation is never retried.
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		if !policy.IsTransient(err) {
			return zero, err
		}

		if attempt >= policy.MaxRetries {
			break
		}

		delay := policy.Backoff(attempt)
		if policy.OnRetry != nil {
			policy.OnRetry(attempt+1, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, lastErr
}

// Backoff returns the jittered delay before retry k (k = 0 for the first retry).
// The result lies in [BaseDelay*2^k/2, BaseDelay*2^k].
func (p Policy) Backoff(k int) time.Duration {
	p = p.withDefaults()
	if k < 0 {
		k = 0
	}
	full := float64(p.BaseDelay) * math.Pow(2, float64(k))
	scale := 0.5 + p.rand()*0.5
	return time.Duration(full * scale)
}
