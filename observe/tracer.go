package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// TaskMeta identifies a unit of asynchronous work for telemetry purposes.
type TaskMeta struct {
	ID      string // Task identity for result correlation (required)
	Kind    string // Work kind: "task", "request", "stage" (optional)
	Target  string // Logical target, e.g. an endpoint host (optional)
	Attempt int    // Attempt number for retried work, 1-based (optional)
}

// SpanName returns the deterministic span name for this unit of work.
// Format: async.<kind>.<id> or async.task.<id> when kind is empty.
func (m TaskMeta) SpanName() string {
	kind := m.Kind
	if kind == "" {
		kind = "task"
	}
	return "async." + kind + "." + m.ID
}

// Tracer wraps OpenTelemetry tracing with task-scoped span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for a unit of work.
	StartSpan(ctx context.Context, meta TaskMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with task metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta TaskMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("task.id", meta.ID),
		attribute.Bool("task.error", false), // Updated in EndSpan on error
	}
	if meta.Kind != "" {
		attrs = append(attrs, attribute.String("task.kind", meta.Kind))
	}
	if meta.Target != "" {
		attrs = append(attrs, attribute.String("task.target", meta.Target))
	}
	if meta.Attempt > 0 {
		attrs = append(attrs, attribute.Int("task.attempt", meta.Attempt))
	}

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("task.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// NewNoopTracer creates a no-op tracer.
func NewNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta TaskMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
