package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Operation names used in CheckMeta.
const (
	OpCheck = "check"
	OpTest  = "test"
	OpProbe = "probe"
	OpBatch = "batch"
	OpScore = "score"
)

// CheckMeta describes one credential operation for telemetry purposes.
type CheckMeta struct {
	Service   string // Canonical service identifier (empty for batch/probe spans)
	Operation string // One of the Op* constants (required)
	BatchID   string // Set when the check runs inside a batch
}

// SpanName returns the deterministic span name for this operation.
// Format: credential.<operation>
func (m CheckMeta) SpanName() string {
	return "credential." + m.Operation
}

func (m CheckMeta) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("credential.operation", m.Operation),
	}
	if m.Service != "" {
		attrs = append(attrs, attribute.String("credential.service", m.Service))
	}
	if m.BatchID != "" {
		attrs = append(attrs, attribute.String("credential.batch_id", m.BatchID))
	}
	return attrs
}

func (m CheckMeta) fields() []Field {
	fields := []Field{F("operation", m.Operation)}
	if m.Service != "" {
		fields = append(fields, F("service", m.Service))
	}
	if m.BatchID != "" {
		fields = append(fields, F("batch_id", m.BatchID))
	}
	return fields
}

// Tracer wraps OpenTelemetry tracing with credential-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for a credential operation.
	StartSpan(ctx context.Context, meta CheckMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording the resulting status and any error.
	EndSpan(span trace.Span, outcome Outcome)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// newTracer creates a new Tracer wrapping the given OpenTelemetry tracer.
func newTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with credential metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta CheckMeta) (context.Context, trace.Span) {
	attrs := append(meta.attributes(), attribute.Bool("credential.error", false))

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, outcome Outcome) {
	if outcome.Status != "" {
		span.SetAttributes(attribute.String("credential.status", outcome.Status))
	}
	span.SetAttributes(attribute.Bool("credential.cache_hit", outcome.CacheHit))

	if outcome.Err != nil {
		span.SetStatus(codes.Error, outcome.Err.Error())
		span.SetAttributes(attribute.Bool("credential.error", true))
		span.RecordError(outcome.Err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// newNoopTracer creates a no-op tracer.
func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta CheckMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, outcome Outcome) {
	span.End()
}

// Validate reports whether meta carries the fields every span needs.
func (m CheckMeta) Validate() error {
	if m.Operation == "" {
		return ErrMissingOperation
	}
	return nil
}
