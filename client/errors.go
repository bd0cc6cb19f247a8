package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

var (
	// ErrClientClosed indicates the client has been closed.
	ErrClientClosed = errors.New("client: closed")

	// ErrInvalidURL indicates a request URL could not be parsed.
	ErrInvalidURL = errors.New("client: invalid URL")
)

// StatusError indicates an HTTP response with status >= 400.
type StatusError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("client: unexpected status %s", e.Status)
}

// Retryable HTTP statuses: request timeout, rate limiting, and
// transient server errors.
var retryableStatus = map[int]bool{
	408: true,
	429: true,
	500: true,
	502: true,
	503: true,
	504: true,
}

// isRetryable classifies an attempt error. Transport-level failures and
// a fixed set of HTTP statuses are retryable; everything else,
// including context cancellation, is not.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var se *StatusError
	if errors.As(err, &se) {
		return retryableStatus[se.StatusCode]
	}

	return isTransportError(err)
}

// isTransportError reports whether the error happened below the HTTP
// layer (dial, TLS, connection reset, per-attempt timeout).
func isTransportError(err error) bool {
	var ue *url.Error
	return errors.As(err, &ue)
}
