package pool

import "errors"

// Sentinel errors for pool operations.
var (
	// ErrPoolExhausted is returned when no resource frees up within the
	// acquire timeout.
	ErrPoolExhausted = errors.New("pool: exhausted")

	// ErrPoolClosed is returned by Acquire once the pool is shutting down.
	ErrPoolClosed = errors.New("pool: closed")

	// ErrNilFactory indicates Config.Factory was not provided.
	ErrNilFactory = errors.New("pool: factory is required")
)
