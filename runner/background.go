package runner

import "context"

// Handle tracks a detached background task.
type Handle[T any] struct {
	done   chan struct{}
	cancel context.CancelFunc

	value T
	err   error
}

// Background starts fn in its own goroutine and returns a Handle for
// awaiting or cancelling it. Unlike Run, the task is not bounded by any
// worker pool.
func Background[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Handle[T] {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle[T]{
		done:   make(chan struct{}),
		cancel: cancel,
	}

	go func() {
		defer close(h.done)
		h.value, h.err = fn(ctx)
	}()

	return h
}

// Wait blocks until the task finishes or ctx is cancelled. Cancelling
// the wait does not cancel the task.
func (h *Handle[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-h.done:
		return h.value, h.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Cancel cancels the task's context. The task finishes on its own
// schedule; use Wait to observe the outcome.
func (h *Handle[T]) Cancel() {
	h.cancel()
}

// Done returns a channel closed when the task has finished.
func (h *Handle[T]) Done() <-chan struct{} {
	return h.done
}
