package retry

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for retry decisions.
var (
	// ErrRetriesExhausted is returned when the underlying error persisted
	// past MaxRetries.
	ErrRetriesExhausted = errors.New("retry: retries exhausted")

	// ErrNonRetryable marks an error as not worth retrying. Wrap errors with
	// it (or classify via Config.RetryIf) to stop the retry loop immediately.
	ErrNonRetryable = errors.New("retry: non-retryable error")
)

// ExhaustedError reports that every attempt failed. It preserves the last
// underlying error together with the attempt count and total elapsed time.
type ExhaustedError struct {
	Attempts int
	Elapsed  time.Duration
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retry: exhausted after %d attempts in %s: %v", e.Attempts, e.Elapsed.Round(time.Millisecond), e.Err)
}

// Unwrap returns the last underlying error.
func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Is reports true for ErrRetriesExhausted so callers can match the class
// without losing the wrapped cause.
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrRetriesExhausted
}
