package runner

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/jonwraymond/asyncops/observe"
)

// Task is a unit of work submitted to a Runner.
type Task[T any] struct {
	// ID identifies the task for result correlation. It is carried into
	// the matching Result unchanged.
	ID string

	// Timeout bounds this task's execution. Zero means no per-task
	// timeout; the run context still applies.
	Timeout time.Duration

	// Fn is the work. It must honor ctx cancellation.
	Fn func(ctx context.Context) (T, error)
}

// Result is the outcome of one task. Exactly one of Value/Err is
// meaningful: Err == nil means Value holds the task's result.
type Result[T any] struct {
	ID      string
	Value   T
	Err     error
	Elapsed time.Duration
}

// Config configures a Runner.
type Config struct {
	// MaxWorkers is the maximum number of tasks executing concurrently.
	// Default: 10
	MaxWorkers int

	// FailFast cancels the remaining tasks after the first failure.
	// In-flight tasks see their context cancelled; unstarted tasks fail
	// with the cancellation error. Default: false
	FailFast bool

	// Events receives task lifecycle events (start/completed/failed).
	// Default: no-op
	Events observe.Events

	// Middleware, when set, instruments each task execution with a span,
	// metrics, and a log line.
	Middleware *observe.Middleware
}

// Runner executes batches of tasks concurrently with a bounded worker
// count, returning results in submission order.
type Runner[T any] struct {
	config Config
	sem    *semaphore.Weighted
}

// New creates a new Runner.
func New[T any](config Config) *Runner[T] {
	// Apply defaults
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = 10
	}
	if config.Events == nil {
		config.Events = observe.NewNoopEvents()
	}

	return &Runner[T]{
		config: config,
		sem:    semaphore.NewWeighted(int64(config.MaxWorkers)),
	}
}

// Config returns the runner configuration.
func (r *Runner[T]) Config() Config {
	return r.config
}

// Run executes all tasks and returns one Result per task, in the same
// order as the input regardless of completion order. It blocks until
// every started task has finished. A nil or empty task slice returns an
// empty result slice.
func (r *Runner[T]) Run(ctx context.Context, tasks []Task[T]) []Result[T] {
	results := make([]Result[T], len(tasks))
	if len(tasks) == 0 {
		return results
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for i := range tasks {
		if err := r.sem.Acquire(ctx, 1); err != nil {
			// Run context cancelled (fail-fast or caller). Mark the
			// tasks that never started and stop dispatching.
			for j := i; j < len(tasks); j++ {
				results[j] = Result[T]{ID: tasks[j].ID, Err: err}
			}
			break
		}

		wg.Add(1)
		go func(i int, task Task[T]) {
			defer wg.Done()
			defer r.sem.Release(1)

			results[i] = r.execute(ctx, task)
			if results[i].Err != nil && r.config.FailFast {
				cancel()
			}
		}(i, tasks[i])
	}

	wg.Wait()
	return results
}

// execute runs a single task with instrumentation.
func (r *Runner[T]) execute(ctx context.Context, task Task[T]) Result[T] {
	result := Result[T]{ID: task.ID}

	if task.Fn == nil {
		result.Err = ErrNilTask
		return result
	}

	r.config.Events.Record(ctx, "task.start",
		observe.Field{Key: "task.id", Value: task.ID},
	)

	exec := func(ctx context.Context) error {
		value, err := r.invoke(ctx, task)
		result.Value = value
		return err
	}
	if r.config.Middleware != nil {
		meta := observe.TaskMeta{ID: task.ID, Kind: "task"}
		exec = r.config.Middleware.Wrap(meta, exec)
	}

	start := time.Now()
	result.Err = exec(ctx)
	result.Elapsed = time.Since(start)

	if result.Err != nil {
		r.config.Events.Record(ctx, "task.failed",
			observe.Field{Key: "task.id", Value: task.ID},
			observe.Field{Key: "error", Value: result.Err},
		)
	} else {
		r.config.Events.Record(ctx, "task.completed",
			observe.Field{Key: "task.id", Value: task.ID},
		)
	}

	return result
}

type outcome[T any] struct {
	value T
	err   error
}

// invoke runs the task function, enforcing the per-task timeout. On
// deadline the function's goroutine is abandoned; its side effects
// complete in the background against the cancelled context.
func (r *Runner[T]) invoke(ctx context.Context, task Task[T]) (T, error) {
	if task.Timeout <= 0 {
		return task.Fn(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, task.Timeout)
	defer cancel()

	done := make(chan outcome[T], 1)
	go func() {
		value, err := task.Fn(ctx)
		done <- outcome[T]{value: value, err: err}
	}()

	select {
	case out := <-done:
		return out.value, out.err
	case <-ctx.Done():
		var zero T
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, ErrTimeout
		}
		return zero, ctx.Err()
	}
}
