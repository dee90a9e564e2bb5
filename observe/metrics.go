package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Outcome summarizes how a credential operation finished.
type Outcome struct {
	// Status is the resulting health status name, such as "operational".
	Status string
	// CacheHit reports whether the result was served from cache.
	CacheHit bool
	// Err is the underlying failure, if any.
	Err error
}

// Metrics records credential check metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordCheck records one finished operation with its duration and outcome.
	RecordCheck(ctx context.Context, meta CheckMeta, duration time.Duration, outcome Outcome)

	// RecordRetry records one retry of a verification call.
	RecordRetry(ctx context.Context, meta CheckMeta)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter        metric.Meter
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	cacheHits    metric.Int64Counter
	retryCount   metric.Int64Counter
	durationHist metric.Float64Histogram
}

// newMetrics creates a new Metrics instance with the given meter.
func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	totalCount, err := meter.Int64Counter(
		"credential.check.total",
		metric.WithDescription("Total number of credential operations"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"credential.check.errors",
		metric.WithDescription("Total number of credential operations that ended in error"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	cacheHits, err := meter.Int64Counter(
		"credential.check.cache_hits",
		metric.WithDescription("Total number of checks served from the result cache"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	retryCount, err := meter.Int64Counter(
		"credential.check.retries",
		metric.WithDescription("Total number of verification retries"),
		metric.WithUnit("{retry}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"credential.check.duration_ms",
		metric.WithDescription("Credential operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:        meter,
		totalCount:   totalCount,
		errorCount:   errorCount,
		cacheHits:    cacheHits,
		retryCount:   retryCount,
		durationHist: durationHist,
	}, nil
}

// RecordCheck records metrics for one credential operation.
func (m *metricsImpl) RecordCheck(ctx context.Context, meta CheckMeta, duration time.Duration, outcome Outcome) {
	attrs := []attribute.KeyValue{
		attribute.String("credential.operation", meta.Operation),
	}
	if meta.Service != "" {
		attrs = append(attrs, attribute.String("credential.service", meta.Service))
	}
	if outcome.Status != "" {
		attrs = append(attrs, attribute.String("credential.status", outcome.Status))
	}

	opt := metric.WithAttributes(attrs...)

	m.totalCount.Add(ctx, 1, opt)

	if outcome.Err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	if outcome.CacheHit {
		m.cacheHits.Add(ctx, 1, opt)
	}

	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

// RecordRetry records one retry for the given operation.
func (m *metricsImpl) RecordRetry(ctx context.Context, meta CheckMeta) {
	m.retryCount.Add(ctx, 1, metric.WithAttributes(meta.attributes()...))
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordCheck(ctx context.Context, meta CheckMeta, duration time.Duration, outcome Outcome) {
}

func (m *noopMetrics) RecordRetry(ctx context.Context, meta CheckMeta) {}
