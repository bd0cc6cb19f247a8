package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records execution metrics for units of asynchronous work.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordExecution records one execution with duration and error status.
	RecordExecution(ctx context.Context, meta TaskMeta, duration time.Duration, err error)
}

type metricsImpl struct {
	meter        metric.Meter
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewMetrics creates a Metrics instance backed by the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		"async.exec.total",
		metric.WithDescription("Total number of task executions"),
		metric.WithUnit("{task}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"async.exec.errors",
		metric.WithDescription("Total number of task execution errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"async.exec.duration_ms",
		metric.WithDescription("Task execution duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:        meter,
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
	}, nil
}

// RecordExecution records metrics for one task execution.
func (m *metricsImpl) RecordExecution(ctx context.Context, meta TaskMeta, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("task.id", meta.ID),
	}
	if meta.Kind != "" {
		attrs = append(attrs, attribute.String("task.kind", meta.Kind))
	}
	if meta.Target != "" {
		attrs = append(attrs, attribute.String("task.target", meta.Target))
	}

	opt := metric.WithAttributes(attrs...)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordExecution(ctx context.Context, meta TaskMeta, duration time.Duration, err error) {
}

// NewNoopMetrics returns a Metrics that discards everything.
func NewNoopMetrics() Metrics {
	return &noopMetrics{}
}
