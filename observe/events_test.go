package observe

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestNoopEvents(t *testing.T) {
	ev := NewNoopEvents()
	// Must not panic.
	ev.Record(context.Background(), "task.start", Field{Key: "task.id", Value: "t-1"})
}

func TestEvents_Record(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{
		ServiceName: "test",
		Logging:     LoggingConfig{Enabled: true, Level: "debug"},
	})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	defer obs.Shutdown(context.Background())

	ev, err := NewEvents(obs)
	if err != nil {
		t.Fatalf("NewEvents() error = %v", err)
	}

	ev.Record(context.Background(), "breaker.open",
		Field{Key: "endpoint", Value: "api.example.com"},
		Field{Key: "failures", Value: 5},
	)
}

func TestEvents_DebugLogMirror(t *testing.T) {
	var buf bytes.Buffer
	obs, err := NewObserver(context.Background(), Config{ServiceName: "test"})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	defer obs.Shutdown(context.Background())

	meterEv, err := NewEvents(obs)
	if err != nil {
		t.Fatalf("NewEvents() error = %v", err)
	}
	impl, ok := meterEv.(*eventsImpl)
	if !ok {
		t.Fatalf("NewEvents() returned %T, want *eventsImpl", meterEv)
	}
	impl.logger = NewLoggerWithWriter("debug", &buf)

	impl.Record(context.Background(), "task.failed", Field{Key: "error", Value: errors.New("boom")})

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("got %d log entries, want 1", len(entries))
	}
	if entries[0]["msg"] != "task.failed" {
		t.Errorf("msg = %v, want task.failed", entries[0]["msg"])
	}
}

func TestToString(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"plain", "plain"},
		{errors.New("an error"), "an error"},
		{42, "42"},
		{StateFromStringer{}, "stringer"},
	}
	for _, tt := range tests {
		if got := toString(tt.in); got != tt.want {
			t.Errorf("toString(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// StateFromStringer exercises the fmt.Stringer branch of toString.
type StateFromStringer struct{}

func (StateFromStringer) String() string { return "stringer" }
