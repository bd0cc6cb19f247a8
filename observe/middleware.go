package observe

import (
	"context"
	"time"
)

// ExecFunc is the signature for instrumented operations.
type ExecFunc func(ctx context.Context) error

// Middleware wraps operation execution with observability (tracing,
// metrics, logging). The runner applies it around each task when an
// observer is configured.
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe ExecFunc.
//   - Context: propagates context through tracing spans.
//   - Errors: errors from the wrapped function are recorded and propagated
//     unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a Middleware with the given observability components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Wrap instruments fn with a span, an execution metric, and a log line
// carrying the task metadata.
func (m *Middleware) Wrap(meta TaskMeta, fn ExecFunc) ExecFunc {
	return func(ctx context.Context) error {
		ctx, span := m.tracer.StartSpan(ctx, meta)
		start := time.Now()

		err := fn(ctx)

		duration := time.Since(start)
		m.tracer.EndSpan(span, err)
		m.metrics.RecordExecution(ctx, meta, duration, err)

		taskLogger := m.logger.WithTask(meta)
		fields := []Field{
			{Key: "duration_ms", Value: float64(duration.Milliseconds())},
		}
		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			taskLogger.Error(ctx, "task execution failed", fields...)
		} else {
			taskLogger.Info(ctx, "task execution completed", fields...)
		}

		return err
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
