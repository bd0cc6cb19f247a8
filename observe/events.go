package observe

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Events is the narrow observability collaborator consumed by the runtime:
// a single best-effort "record event" call on task start/completion/failure
// and on circuit breaker state transitions.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: Record must be best-effort and must not panic; the runtime
//   behaves identically whether Events is a no-op or absent.
type Events interface {
	Record(ctx context.Context, name string, fields ...Field)
}

// noopEvents discards all events.
type noopEvents struct{}

func (noopEvents) Record(ctx context.Context, name string, fields ...Field) {}

// NewNoopEvents returns an Events that discards everything.
func NewNoopEvents() Events {
	return noopEvents{}
}

// eventsImpl counts events through the meter and mirrors them to the logger
// at debug level.
type eventsImpl struct {
	logger  Logger
	counter metric.Int64Counter
}

// NewEvents creates an Events recorder backed by the observer's meter and
// logger.
func NewEvents(obs Observer) (Events, error) {
	counter, err := obs.Meter().Int64Counter(
		"async.events",
		metric.WithDescription("Runtime events by name"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	return &eventsImpl{
		logger:  obs.Logger(),
		counter: counter,
	}, nil
}

func (e *eventsImpl) Record(ctx context.Context, name string, fields ...Field) {
	attrs := make([]attribute.KeyValue, 0, len(fields)+1)
	attrs = append(attrs, attribute.String("event", name))
	for _, f := range fields {
		attrs = append(attrs, attribute.String(f.Key, toString(f.Value)))
	}

	e.counter.Add(ctx, 1, metric.WithAttributes(attrs...))
	e.logger.Debug(ctx, name, fields...)
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case error:
		return s.Error()
	case interface{ String() string }:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}
