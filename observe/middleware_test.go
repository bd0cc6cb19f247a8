package observe

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestMiddleware_Success(t *testing.T) {
	var buf bytes.Buffer
	mw := NewMiddleware(NewNoopTracer(), NewNoopMetrics(), NewLoggerWithWriter("info", &buf))

	calls := 0
	fn := mw.Wrap(TaskMeta{ID: "t-1", Kind: "task"}, func(ctx context.Context) error {
		calls++
		return nil
	})

	if err := fn(context.Background()); err != nil {
		t.Fatalf("wrapped fn error = %v, want nil", err)
	}
	if calls != 1 {
		t.Errorf("wrapped fn called %d times, want 1", calls)
	}

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("got %d log entries, want 1", len(entries))
	}
	if entries[0]["msg"] != "task execution completed" {
		t.Errorf("msg = %v, want task execution completed", entries[0]["msg"])
	}
	if entries[0]["task.id"] != "t-1" {
		t.Errorf("task.id = %v, want t-1", entries[0]["task.id"])
	}
	if _, ok := entries[0]["duration_ms"]; !ok {
		t.Error("duration_ms missing from log entry")
	}
}

func TestMiddleware_Error(t *testing.T) {
	var buf bytes.Buffer
	mw := NewMiddleware(NewNoopTracer(), NewNoopMetrics(), NewLoggerWithWriter("info", &buf))

	wantErr := errors.New("boom")
	fn := mw.Wrap(TaskMeta{ID: "t-2"}, func(ctx context.Context) error {
		return wantErr
	})

	if err := fn(context.Background()); !errors.Is(err, wantErr) {
		t.Fatalf("wrapped fn error = %v, want %v", err, wantErr)
	}

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("got %d log entries, want 1", len(entries))
	}
	if entries[0]["level"] != "error" {
		t.Errorf("level = %v, want error", entries[0]["level"])
	}
	if entries[0]["error"] != "boom" {
		t.Errorf("error field = %v, want boom", entries[0]["error"])
	}
}

func TestMiddleware_ContextPropagation(t *testing.T) {
	mw := NewMiddleware(NewNoopTracer(), NewNoopMetrics(), NewNoopLogger())

	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "value")

	fn := mw.Wrap(TaskMeta{ID: "t-3"}, func(ctx context.Context) error {
		if ctx.Value(key{}) != "value" {
			t.Error("context value lost through middleware")
		}
		return nil
	})

	if err := fn(ctx); err != nil {
		t.Fatalf("wrapped fn error = %v", err)
	}
}

func TestMiddlewareFromObserver(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{ServiceName: "test"})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	defer obs.Shutdown(context.Background())

	mw, err := MiddlewareFromObserver(obs)
	if err != nil {
		t.Fatalf("MiddlewareFromObserver() error = %v", err)
	}

	fn := mw.Wrap(TaskMeta{ID: "t-4"}, func(ctx context.Context) error { return nil })
	if err := fn(context.Background()); err != nil {
		t.Errorf("wrapped fn error = %v", err)
	}
}
