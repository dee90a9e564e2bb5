package health

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonwraymond/credwatch/resilience"
)

// fakeVerifier records calls and delegates to fn.
type fakeVerifier struct {
	mu         sync.Mutex
	calls      map[string]int
	candidates []string
	fn         func(ctx context.Context, service string, candidate *string) (Outcome, error)
}

func newFakeVerifier(fn func(ctx context.Context, service string, candidate *string) (Outcome, error)) *fakeVerifier {
	if fn == nil {
		fn = func(context.Context, string, *string) (Outcome, error) {
			return Outcome{Valid: true, Latency: 42 * time.Millisecond}, nil
		}
	}
	return &fakeVerifier{calls: make(map[string]int), fn: fn}
}

func (v *fakeVerifier) Verify(ctx context.Context, service string, candidate *string) (Outcome, error) {
	v.mu.Lock()
	v.calls[service]++
	if candidate != nil {
		v.candidates = append(v.candidates, *candidate)
	}
	v.mu.Unlock()
	return v.fn(ctx, service, candidate)
}

func (v *fakeVerifier) Calls(service string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.calls[service]
}

func (v *fakeVerifier) TotalCalls() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := 0
	for _, c := range v.calls {
		n += c
	}
	return n
}

// testClock is a manually advanced clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func fastPolicy() resilience.Policy {
	return resilience.Policy{
		Timeout:    50 * time.Millisecond,
		MaxRetries: 2,
		BaseDelay:  time.Millisecond,
	}
}

func newTestService(t *testing.T, v Verifier, clock *testClock, opts ...Option) *Service {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Policy = fastPolicy()
	if clock != nil {
		cfg.Now = clock.Now
		cfg.Cache.Now = clock.Now
	}
	svc, err := NewService(cfg, v, opts...)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}
