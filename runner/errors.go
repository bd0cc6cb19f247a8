package runner

import "errors"

var (
	// ErrTimeout indicates a task exceeded its per-task timeout.
	ErrTimeout = errors.New("runner: task timed out")

	// ErrNilTask indicates a task was submitted without a function.
	ErrNilTask = errors.New("runner: task has no function")
)
