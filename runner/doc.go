// Package runner provides bounded concurrent task execution with
// ordered results.
//
// A Runner executes a batch of tasks with at most MaxWorkers running at
// once, returning one Result per task in submission order:
//
//	r := runner.New[string](runner.Config{MaxWorkers: 4})
//	results := r.Run(ctx, []runner.Task[string]{
//	    {ID: "a", Fn: fetchA},
//	    {ID: "b", Fn: fetchB, Timeout: 2 * time.Second},
//	})
//
// Each task may carry its own timeout; a timed-out task surfaces
// ErrTimeout without blocking the rest of the batch. With FailFast
// enabled the first failure cancels the remaining tasks.
//
// Background starts a single detached task outside any worker pool and
// returns a Handle for awaiting it. CommandTask adapts a subprocess
// invocation into a Task.
package runner
