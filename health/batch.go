package health

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/credwatch/observe"
)

// BatchOptions configures CheckAll.
type BatchOptions struct {
	// Concurrency is the chunk size. Chunks run one after another; checks
	// within a chunk run concurrently.
	// Default: the service's Concurrency (6)
	Concurrency int

	// SkipCache forces live verification of every service.
	SkipCache bool

	// OnProgress is called after each completion with the running count.
	OnProgress func(completed, total int)

	// OnResult is called after each completion with the caller-supplied
	// identifier and its result.
	OnResult func(service string, result HealthResult)
}

type batchIDKey struct{}

// BatchID returns the ID of the batch ctx belongs to, or "".
func BatchID(ctx context.Context) string {
	id, _ := ctx.Value(batchIDKey{}).(string)
	return id
}

// batchNotifier serializes callbacks and contains their panics.
type batchNotifier struct {
	mu        sync.Mutex
	opts      BatchOptions
	total     int
	completed int
	logger    observe.Logger
}

func (n *batchNotifier) progress(ctx context.Context) {
	if n.opts.OnProgress == nil {
		return
	}
	n.guard(ctx, "progress", func() { n.opts.OnProgress(n.completed, n.total) })
}

func (n *batchNotifier) done(ctx context.Context, service string, result HealthResult) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.completed++
	if n.opts.OnResult != nil {
		n.guard(ctx, "result", func() { n.opts.OnResult(service, result) })
	}
	n.progress(ctx)
}

func (n *batchNotifier) guard(ctx context.Context, callback string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error(ctx, "batch callback panicked",
				observe.F("callback", callback),
				observe.F("panic", fmt.Sprint(r)),
			)
		}
	}()
	fn()
}

// CheckAll checks every service and returns the results in input order.
//
// Services are processed in consecutive chunks of opts.Concurrency. A failing
// service yields an error result at its index and never aborts the batch.
// Callbacks fire in completion order and are never called concurrently.
func (s *Service) CheckAll(ctx context.Context, services []string, opts BatchOptions) []HealthResult {
	total := len(services)
	results := make([]HealthResult, total)

	notifier := &batchNotifier{opts: opts, total: total, logger: s.mw.Logger()}

	if total == 0 {
		notifier.progress(ctx)
		return results
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = s.config.Concurrency
	}

	batchID := uuid.NewString()
	ctx = context.WithValue(ctx, batchIDKey{}, batchID)
	notifier.logger = notifier.logger.With(observe.F("batch_id", batchID))

	s.mw.Wrap(func(ctx context.Context, meta observe.CheckMeta) observe.Outcome {
		for start := 0; start < total; start += concurrency {
			end := min(start+concurrency, total)

			var g errgroup.Group
			for i := start; i < end; i++ {
				g.Go(func() error {
					result := s.Check(ctx, services[i], opts.SkipCache)
					results[i] = result
					notifier.done(ctx, services[i], result)
					return nil
				})
			}
			_ = g.Wait()
		}
		return observe.Outcome{}
	})(ctx, observe.CheckMeta{Operation: observe.OpBatch, BatchID: batchID})

	return results
}
