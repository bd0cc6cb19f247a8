package retry

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// Config configures the retry policy.
type Config struct {
	// MaxRetries is the number of retries after the initial attempt.
	// Default: 3
	MaxRetries int

	// BackoffBase is the delay before the first retry.
	// Default: 100ms
	BackoffBase time.Duration

	// BackoffFactor is the exponential backoff multiplier.
	// Default: 2.0
	BackoffFactor float64

	// MaxDelay caps the delay between retries.
	// Default: 30 seconds
	MaxDelay time.Duration

	// Jitter adds randomness to delays to prevent thundering herd.
	// Default: false
	Jitter bool

	// RetryIf determines if an error should trigger a retry.
	// Default: all non-nil errors except ErrNonRetryable trigger retry.
	RetryIf func(err error) bool

	// OnRetry is called before each retry attempt.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Policy decides whether and when a failed attempt should be retried.
//
// Contract:
// - Concurrency: a Policy is immutable after construction and safe for
//   unsynchronized concurrent use.
// - Purity: NextDelay performs no I/O and touches no shared state.
type Policy struct {
	config Config
}

// NewPolicy creates a retry policy with defaults applied.
func NewPolicy(config Config) *Policy {
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	if config.BackoffBase <= 0 {
		config.BackoffBase = 100 * time.Millisecond
	}
	if config.BackoffFactor <= 0 {
		config.BackoffFactor = 2.0
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 30 * time.Second
	}
	if config.RetryIf == nil {
		config.RetryIf = func(err error) bool {
			return err != nil && !errors.Is(err, ErrNonRetryable)
		}
	}

	return &Policy{config: config}
}

// NextDelay reports whether a failed attempt should be retried and how long
// to wait before the retry. attempt is 1-based: pass 1 after the first
// failure. It returns false once attempt exceeds MaxRetries or when the
// error is classified non-retryable.
func (p *Policy) NextDelay(attempt int, err error) (time.Duration, bool) {
	if attempt > p.config.MaxRetries {
		return 0, false
	}
	if !p.config.RetryIf(err) {
		return 0, false
	}

	multiplier := math.Pow(p.config.BackoffFactor, float64(attempt-1))
	delay := time.Duration(float64(p.config.BackoffBase) * multiplier)

	if delay > p.config.MaxDelay {
		delay = p.config.MaxDelay
	}

	if p.config.Jitter && delay > 0 {
		// Add up to 25% jitter
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		delay += time.Duration(rand.Int64N(int64(delay / 4)))
	}

	return delay, true
}

// Execute runs the operation, retrying failures according to the policy.
// Backoff waits honor ctx cancellation. Non-retryable errors are returned
// unchanged; once retries run out the last error is wrapped in an
// ExhaustedError carrying the attempt count and elapsed time.
func (p *Policy) Execute(ctx context.Context, op func(context.Context) error) error {
	start := time.Now()
	var lastErr error

	for attempt := 1; ; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		delay, ok := p.NextDelay(attempt, err)
		if !ok {
			if !p.config.RetryIf(err) {
				return err
			}
			return &ExhaustedError{
				Attempts: attempt,
				Elapsed:  time.Since(start),
				Err:      lastErr,
			}
		}

		if p.config.OnRetry != nil {
			p.config.OnRetry(attempt, err, delay)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// Config returns the policy configuration.
func (p *Policy) Config() Config {
	return p.config
}
