package resilience

import (
	"context"
	"time"
)

// Executor binds a Policy to an optional rate limiter so every call against
// one endpoint shares the same budget.
type Executor struct {
	policy  Policy
	limiter *RateLimiter
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor creates an executor for the given policy.
func NewExecutor(policy Policy, opts ...ExecutorOption) *Executor {
	e := &Executor{policy: policy.withDefaults()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithRateLimiter gates every attempt on rl.
func WithRateLimiter(rl *RateLimiter) ExecutorOption {
	return func(e *Executor) {
		e.limiter = rl
	}
}

// WithOnRetry installs a retry callback, keeping any callback already set on
// the policy.
func WithOnRetry(fn func(attempt int, err error, delay time.Duration)) ExecutorOption {
	return func(e *Executor) {
		prev := e.policy.OnRetry
		e.policy.OnRetry = func(attempt int, err error, delay time.Duration) {
			if prev != nil {
				prev(attempt, err, delay)
			}
			fn(attempt, err, delay)
		}
	}
}

// Policy returns the effective policy.
func (e *Executor) Policy() Policy {
	return e.policy
}

// Do runs op through the executor's policy.
//
// The rate limiter is consulted before each attempt, outside the attempt
// timeout, so waiting for a token never eats into the verification deadline.
func Do[T any](ctx context.Context, e *Executor, op func(context.Context) (T, error)) (T, error) {
	if e.limiter == nil {
		return execute(ctx, e.policy, nil, op)
	}
	return execute(ctx, e.policy, e.limiter.Wait, op)
}
