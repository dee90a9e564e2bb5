package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

// BenchmarkExecute_Success measures the overhead of a successful attempt.
func BenchmarkExecute_Success(b *testing.B) {
	policy := fastPolicy(2)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Execute(ctx, policy, func(ctx context.Context) (int, error) {
			return 1, nil
		})
	}
}

// BenchmarkExecute_Permanent measures failing fast on a permanent error.
func BenchmarkExecute_Permanent(b *testing.B) {
	policy := fastPolicy(2)
	ctx := context.Background()
	err := errors.New("invalid credential")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Execute(ctx, policy, func(ctx context.Context) (int, error) {
			return 0, err
		})
	}
}

// BenchmarkIsTransient measures error classification.
func BenchmarkIsTransient(b *testing.B) {
	err := errors.New("upstream returned: invalid credential supplied")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = IsTransient(err)
	}
}

// BenchmarkBackoff measures jittered delay calculation.
func BenchmarkBackoff(b *testing.B) {
	p := Policy{BaseDelay: 100 * time.Millisecond}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = p.Backoff(i % 5)
	}
}

// BenchmarkRateLimiter_Allow measures token acquisition.
func BenchmarkRateLimiter_Allow(b *testing.B) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 1e9, Burst: 1 << 30})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = rl.Allow()
	}
}
