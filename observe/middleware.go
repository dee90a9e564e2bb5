package observe

import (
	"context"
	"time"
)

// CheckFunc is the signature of an instrumented credential operation.
type CheckFunc func(ctx context.Context, meta CheckMeta) Outcome

// Middleware wraps credential operations with observability (tracing, metrics, logging).
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe CheckFunc.
//   - Context: Propagates context through tracing spans.
//   - Errors: The wrapped Outcome is recorded and returned unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// NopMiddleware returns a middleware that records nothing.
func NopMiddleware() *Middleware {
	return NewMiddleware(newNoopTracer(), &noopMetrics{}, NopLogger())
}

// LoggingMiddleware returns a middleware that only logs, for callers that run
// without OpenTelemetry.
func LoggingMiddleware(logger Logger) *Middleware {
	if logger == nil {
		logger = NopLogger()
	}
	return NewMiddleware(newNoopTracer(), &noopMetrics{}, logger)
}

// Logger returns the middleware's logger.
func (m *Middleware) Logger() Logger {
	return m.logger
}

// Wrap wraps a CheckFunc with tracing, metrics, and logging.
func (m *Middleware) Wrap(fn CheckFunc) CheckFunc {
	return func(ctx context.Context, meta CheckMeta) Outcome {
		ctx, span := m.tracer.StartSpan(ctx, meta)

		start := time.Now()
		outcome := fn(ctx, meta)
		duration := time.Since(start)

		m.tracer.EndSpan(span, outcome)
		m.metrics.RecordCheck(ctx, meta, duration, outcome)

		fields := append(meta.fields(),
			F("duration_ms", float64(duration.Milliseconds())),
			F("cache_hit", outcome.CacheHit),
		)
		if outcome.Status != "" {
			fields = append(fields, F("status", outcome.Status))
		}

		if outcome.Err != nil {
			fields = append(fields, F("error", outcome.Err.Error()))
			m.logger.Warn(ctx, "credential operation failed", fields...)
		} else {
			m.logger.Debug(ctx, "credential operation completed", fields...)
		}

		return outcome
	}
}

// Retry records a retry of meta's verification call. attempt is 1 for the
// first retry.
func (m *Middleware) Retry(ctx context.Context, meta CheckMeta, attempt int, err error, delay time.Duration) {
	m.metrics.RecordRetry(ctx, meta)

	fields := append(meta.fields(),
		F("attempt", attempt),
		F("delay_ms", float64(delay.Milliseconds())),
	)
	if err != nil {
		fields = append(fields, F("error", err.Error()))
	}
	m.logger.Info(ctx, "retrying verification", fields...)
}

// MiddlewareFromObserver creates a Middleware from an Observer.
// This is a convenience function for common use cases.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	tracer := newTracer(obs.Tracer())

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(tracer, metrics, obs.Logger()), nil
}
