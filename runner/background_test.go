package runner

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBackground_Wait(t *testing.T) {
	h := Background(context.Background(), func(ctx context.Context) (int, error) {
		return 42, nil
	})

	value, err := h.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if value != 42 {
		t.Errorf("Wait() = %d, want 42", value)
	}
}

func TestBackground_Error(t *testing.T) {
	wantErr := errors.New("boom")
	h := Background(context.Background(), func(ctx context.Context) (string, error) {
		return "", wantErr
	})

	if _, err := h.Wait(context.Background()); !errors.Is(err, wantErr) {
		t.Errorf("Wait() error = %v, want %v", err, wantErr)
	}
}

func TestBackground_WaitCancelled(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	h := Background(context.Background(), func(ctx context.Context) (int, error) {
		<-release
		return 1, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := h.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want context.DeadlineExceeded", err)
	}

	// The task itself is unaffected by the abandoned wait.
	select {
	case <-h.Done():
		t.Error("task finished early; wait cancellation must not cancel the task")
	default:
	}
}

func TestBackground_Cancel(t *testing.T) {
	h := Background(context.Background(), func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})

	h.Cancel()

	_, err := h.Wait(context.Background())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() error = %v, want context.Canceled", err)
	}
}

func TestBackground_Done(t *testing.T) {
	h := Background(context.Background(), func(ctx context.Context) (int, error) {
		return 1, nil
	})

	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("Done() channel never closed")
	}
}
