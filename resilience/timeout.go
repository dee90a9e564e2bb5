package resilience

import (
	"context"
	"fmt"
	"time"
)

type attemptResult[T any] struct {
	value T
	err   error
}

// attemptWithTimeout races op against a timer.
//
// If the timer fires first the attempt is abandoned: op keeps its cancelled
// context and its eventual result lands in a buffered channel nobody reads.
func attemptWithTimeout[T any](ctx context.Context, timeout time.Duration, op func(context.Context) (T, error)) (T, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan attemptResult[T], 1)

	go func() {
		v, err := op(attemptCtx)
		done <- attemptResult[T]{value: v, err: err}
	}()

	var zero T
	select {
	case r := <-done:
		return r.value, r.err
	case <-attemptCtx.Done():
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		return zero, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
}

// ExecuteWithTimeout runs op once, bounded by timeout. No retries.
func ExecuteWithTimeout[T any](ctx context.Context, timeout time.Duration, op func(context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return attemptWithTimeout(ctx, timeout, op)
}
