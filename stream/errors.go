package stream

import "errors"

// ErrConsumed indicates a stream was consumed more than once. Streams
// are one-shot: each may feed exactly one stage or terminal.
var ErrConsumed = errors.New("stream: already consumed")
