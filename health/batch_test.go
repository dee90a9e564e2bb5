package health

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonwraymond/credwatch/observe"
)

func serviceNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("svc-%02d", i)
	}
	return names
}

func TestCheckAll_EmptyInput(t *testing.T) {
	v := newFakeVerifier(nil)
	svc := newTestService(t, v, newTestClock())

	var calls [][2]int
	results := svc.CheckAll(context.Background(), nil, BatchOptions{
		OnProgress: func(completed, total int) { calls = append(calls, [2]int{completed, total}) },
		OnResult:   func(string, HealthResult) { t.Error("OnResult should not be called for empty input") },
	})

	if len(results) != 0 {
		t.Errorf("results = %v, want empty", results)
	}
	if len(calls) != 1 || calls[0] != [2]int{0, 0} {
		t.Errorf("OnProgress calls = %v, want exactly [(0, 0)]", calls)
	}
	if v.TotalCalls() != 0 {
		t.Error("verifier should not be called")
	}
}

func TestCheckAll_PreservesInputOrder(t *testing.T) {
	v := newFakeVerifier(func(context.Context, string, *string) (Outcome, error) {
		time.Sleep(time.Duration(rand.IntN(8)) * time.Millisecond)
		return Outcome{Valid: true}, nil
	})
	svc := newTestService(t, v, newTestClock())
	services := serviceNames(23)

	for round := 0; round < 3; round++ {
		results := svc.CheckAll(context.Background(), services, BatchOptions{Concurrency: 5, SkipCache: true})

		if len(results) != len(services) {
			t.Fatalf("len(results) = %d, want %d", len(results), len(services))
		}
		for i, r := range results {
			if r.Service != services[i] {
				t.Fatalf("round %d: results[%d].Service = %q, want %q", round, i, r.Service, services[i])
			}
			if r.Status != StatusOperational {
				t.Errorf("results[%d].Status = %v, want operational", i, r.Status)
			}
		}
	}
}

func TestCheckAll_ChunksRunSequentially(t *testing.T) {
	const concurrency = 3
	services := serviceNames(10)
	index := make(map[string]int, len(services))
	for i, s := range services {
		index[s] = i
	}

	var (
		mu       sync.Mutex
		finished = make(map[int]bool)
		inFlight int
		maxSeen  int
	)
	v := newFakeVerifier(func(_ context.Context, service string, _ *string) (Outcome, error) {
		i := index[service]
		chunkStart := i / concurrency * concurrency

		mu.Lock()
		for j := 0; j < chunkStart; j++ {
			if !finished[j] {
				t.Errorf("%s started before earlier chunk member %d finished", service, j)
			}
		}
		inFlight++
		maxSeen = max(maxSeen, inFlight)
		mu.Unlock()

		time.Sleep(time.Duration(rand.IntN(5)) * time.Millisecond)

		mu.Lock()
		inFlight--
		finished[i] = true
		mu.Unlock()
		return Outcome{Valid: true}, nil
	})
	svc := newTestService(t, v, newTestClock())

	svc.CheckAll(context.Background(), services, BatchOptions{Concurrency: concurrency})

	if maxSeen > concurrency {
		t.Errorf("max concurrent verifications = %d, want <= %d", maxSeen, concurrency)
	}
	if v.TotalCalls() != len(services) {
		t.Errorf("verifier calls = %d, want %d", v.TotalCalls(), len(services))
	}
}

func TestCheckAll_DefaultConcurrency(t *testing.T) {
	var inFlight, maxSeen atomic.Int32
	v := newFakeVerifier(func(context.Context, string, *string) (Outcome, error) {
		n := inFlight.Add(1)
		for {
			cur := maxSeen.Load()
			if n <= cur || maxSeen.CompareAndSwap(cur, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return Outcome{Valid: true}, nil
	})
	svc := newTestService(t, v, newTestClock())

	svc.CheckAll(context.Background(), serviceNames(14), BatchOptions{})

	if got := maxSeen.Load(); got > 6 {
		t.Errorf("max concurrent verifications = %d, want <= 6", got)
	}
}

func TestCheckAll_ProgressAndResultCallbacks(t *testing.T) {
	v := newFakeVerifier(func(context.Context, string, *string) (Outcome, error) {
		time.Sleep(time.Duration(rand.IntN(4)) * time.Millisecond)
		return Outcome{Valid: true}, nil
	})
	svc := newTestService(t, v, newTestClock())
	services := serviceNames(9)

	var (
		active    atomic.Int32
		progress  []int
		seen      = make(map[string]HealthResult)
		totals    = make(map[int]bool)
		overlapped atomic.Bool
	)
	enter := func() {
		if active.Add(1) > 1 {
			overlapped.Store(true)
		}
	}
	leave := func() { active.Add(-1) }

	results := svc.CheckAll(context.Background(), services, BatchOptions{
		Concurrency: 4,
		OnProgress: func(completed, total int) {
			enter()
			defer leave()
			progress = append(progress, completed)
			totals[total] = true
		},
		OnResult: func(service string, result HealthResult) {
			enter()
			defer leave()
			seen[service] = result
		},
	})

	if overlapped.Load() {
		t.Error("callbacks were invoked concurrently")
	}
	if len(progress) != len(services) {
		t.Fatalf("OnProgress calls = %d, want %d", len(progress), len(services))
	}
	for i, c := range progress {
		if c != i+1 {
			t.Errorf("progress[%d] = %d, want %d", i, c, i+1)
		}
	}
	if len(totals) != 1 || !totals[len(services)] {
		t.Errorf("totals = %v, want only %d", totals, len(services))
	}
	for i, s := range services {
		if seen[s] != results[i] {
			t.Errorf("OnResult(%s) = %+v, want %+v", s, seen[s], results[i])
		}
	}
}

func TestCheckAll_FailureDoesNotAbortBatch(t *testing.T) {
	v := newFakeVerifier(func(_ context.Context, service string, _ *string) (Outcome, error) {
		if service == "svc-02" {
			return Outcome{}, errors.New("permission denied")
		}
		return Outcome{Valid: true}, nil
	})
	svc := newTestService(t, v, newTestClock())

	results := svc.CheckAll(context.Background(), serviceNames(5), BatchOptions{Concurrency: 2})

	for i, r := range results {
		want := StatusOperational
		if i == 2 {
			want = StatusError
		}
		if r.Status != want {
			t.Errorf("results[%d].Status = %v, want %v", i, r.Status, want)
		}
	}
	if results[2].Message != "permission denied" {
		t.Errorf("Message = %q, want 'permission denied'", results[2].Message)
	}
}

func TestCheckAll_CallbackPanicsAreContained(t *testing.T) {
	v := newFakeVerifier(nil)
	var logs bytes.Buffer
	mw := observe.LoggingMiddleware(observe.NewLoggerWithWriter("error", &logs))
	svc := newTestService(t, v, newTestClock(), WithMiddleware(mw))

	var progressCalls atomic.Int32
	results := svc.CheckAll(context.Background(), serviceNames(4), BatchOptions{
		Concurrency: 2,
		OnResult:    func(string, HealthResult) { panic("render failed") },
		OnProgress:  func(int, int) { progressCalls.Add(1) },
	})

	for i, r := range results {
		if r.Status != StatusOperational {
			t.Errorf("results[%d].Status = %v, want operational", i, r.Status)
		}
	}
	if got := progressCalls.Load(); got != 4 {
		t.Errorf("OnProgress calls = %d, want 4 despite OnResult panics", got)
	}
	if n := strings.Count(logs.String(), "batch callback panicked"); n != 4 {
		t.Errorf("panic log lines = %d, want 4", n)
	}
	if !strings.Contains(logs.String(), "render failed") {
		t.Error("panic value should be logged")
	}
}

func TestCheckAll_UsesCacheUnlessSkipped(t *testing.T) {
	v := newFakeVerifier(nil)
	svc := newTestService(t, v, newTestClock())
	services := serviceNames(4)

	svc.CheckAll(context.Background(), services, BatchOptions{})
	svc.CheckAll(context.Background(), services, BatchOptions{})
	if got := v.TotalCalls(); got != 4 {
		t.Errorf("verifier calls = %d, want 4 (second batch cached)", got)
	}

	svc.CheckAll(context.Background(), services, BatchOptions{SkipCache: true})
	if got := v.TotalCalls(); got != 8 {
		t.Errorf("verifier calls = %d, want 8 after skipCache batch", got)
	}
}

func TestCheckAll_PropagatesBatchID(t *testing.T) {
	var (
		mu  sync.Mutex
		ids = make(map[string]bool)
	)
	v := newFakeVerifier(func(ctx context.Context, _ string, _ *string) (Outcome, error) {
		mu.Lock()
		ids[BatchID(ctx)] = true
		mu.Unlock()
		return Outcome{Valid: true}, nil
	})
	svc := newTestService(t, v, newTestClock())

	svc.CheckAll(context.Background(), serviceNames(5), BatchOptions{Concurrency: 2})

	if len(ids) != 1 {
		t.Fatalf("distinct batch IDs = %d, want 1", len(ids))
	}
	for id := range ids {
		if id == "" {
			t.Error("batch ID should be set inside a batch")
		}
	}
	if BatchID(context.Background()) != "" {
		t.Error("BatchID outside a batch should be empty")
	}
}
