package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonwraymond/credwatch/credential"
	"github.com/jonwraymond/credwatch/health"
	"github.com/jonwraymond/credwatch/resilience"
)

var testNow = time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)

// stubVerifier accepts every stored credential except those in reject, and
// accepts a candidate only when it equals "good-key".
type stubVerifier struct {
	mu     sync.Mutex
	calls  map[string]int
	reject map[string]string
}

func newStubVerifier(reject map[string]string) *stubVerifier {
	return &stubVerifier{calls: make(map[string]int), reject: reject}
}

func (v *stubVerifier) Verify(_ context.Context, service string, candidate *string) (health.Outcome, error) {
	v.mu.Lock()
	v.calls[service]++
	v.mu.Unlock()

	if candidate != nil {
		if *candidate == "good-key" {
			return health.Outcome{Valid: true, Latency: 5 * time.Millisecond}, nil
		}
		return health.Outcome{Valid: false, Message: "Invalid API key"}, nil
	}
	if msg, ok := v.reject[service]; ok {
		return health.Outcome{Valid: false, Message: msg}, nil
	}
	return health.Outcome{Valid: true, Latency: 10 * time.Millisecond}, nil
}

func (v *stubVerifier) Calls(service string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.calls[service]
}

type pingStore struct {
	*credential.MemoryStore
	err error
}

func (s *pingStore) Ping(context.Context) error { return s.err }

var errStoreDown = errors.New("store down")

type failingStore struct{}

func (failingStore) Records(context.Context, []string) ([]credential.Record, error) {
	return nil, errStoreDown
}

func (failingStore) Close() error { return nil }

func testHealthConfig() health.Config {
	cfg := health.DefaultConfig()
	cfg.Policy = resilience.Policy{Timeout: 100 * time.Millisecond, MaxRetries: 1, BaseDelay: time.Millisecond}
	cfg.Now = func() time.Time { return testNow }
	return cfg
}

func testRecords() []credential.Record {
	return []credential.Record{
		{Service: "github", UpdatedAt: testNow.Add(-10 * 24 * time.Hour)},
		{Service: "stripe", CreatedAt: testNow.Add(-400 * 24 * time.Hour)},
		{Service: "slack", CreatedAt: testNow.Add(-90 * 24 * time.Hour), LastCheckedStatus: health.StatusError},
	}
}

func newTestEngine(t *testing.T, v health.Verifier, store credential.Store, opts ...Option) *Engine {
	t.Helper()
	if store == nil {
		store = credential.NewMemoryStore(testRecords()...)
	}
	e, err := New(testHealthConfig(), v, store, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}
