package stream

import (
	"context"
	"sync"
)

// Config configures a stream pipeline.
type Config struct {
	// BufferCapacity is the size of the bounded buffer at each stage
	// boundary. A slow consumer stalls producers once buffers fill.
	// Default: 16
	BufferCapacity int
}

// Stream is a one-shot pipeline of values flowing through bounded
// channel buffers. Each stage runs in its own goroutine and preserves
// element order. A stream may be consumed exactly once, either by a
// stage function, a terminal method, or Out.
type Stream[T any] struct {
	ctx    context.Context
	out    chan T
	buffer int

	mu       sync.Mutex
	consumed bool
	err      error
}

func bufferCapacity(config []Config) int {
	// Apply defaults
	if len(config) == 0 || config[0].BufferCapacity <= 0 {
		return 16
	}
	return config[0].BufferCapacity
}

// newStream creates an unconsumed stream shell for a stage output.
func newStream[T any](ctx context.Context, buffer int) *Stream[T] {
	return &Stream[T]{
		ctx:    ctx,
		out:    make(chan T, buffer),
		buffer: buffer,
	}
}

// failed creates a stream that surfaces err at its terminal.
func failed[T any](ctx context.Context, buffer int, err error) *Stream[T] {
	s := newStream[T](ctx, 0)
	s.buffer = buffer
	s.err = err
	close(s.out)
	return s
}

// take claims the stream's output channel, enforcing the one-shot
// contract.
func (s *Stream[T]) take() (<-chan T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	if s.consumed {
		return nil, ErrConsumed
	}
	s.consumed = true
	return s.out, nil
}

// From creates a stream emitting the given values in order.
func From[T any](ctx context.Context, values []T, config ...Config) *Stream[T] {
	s := newStream[T](ctx, bufferCapacity(config))

	go func() {
		defer close(s.out)
		for _, v := range values {
			select {
			case s.out <- v:
			case <-ctx.Done():
				return
			}
		}
	}()

	return s
}

// FromChannel creates a stream draining the given channel. The stream
// ends when ch is closed or ctx is cancelled.
func FromChannel[T any](ctx context.Context, ch <-chan T, config ...Config) *Stream[T] {
	s := newStream[T](ctx, bufferCapacity(config))

	go func() {
		defer close(s.out)
		for {
			select {
			case v, ok := <-ch:
				if !ok {
					return
				}
				select {
				case s.out <- v:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return s
}

// Generate creates a stream from a generator function. fn is called
// repeatedly until it returns ok == false or ctx is cancelled.
func Generate[T any](ctx context.Context, fn func(ctx context.Context) (T, bool), config ...Config) *Stream[T] {
	s := newStream[T](ctx, bufferCapacity(config))

	go func() {
		defer close(s.out)
		for {
			v, ok := fn(ctx)
			if !ok {
				return
			}
			select {
			case s.out <- v:
			case <-ctx.Done():
				return
			}
		}
	}()

	return s
}

// Out claims the stream's output channel for direct iteration. The
// channel is closed when the stream ends or its context is cancelled.
func (s *Stream[T]) Out() (<-chan T, error) {
	return s.take()
}

// Collect consumes the stream into a slice. On cancellation it returns
// the values received so far together with the context error.
func (s *Stream[T]) Collect() ([]T, error) {
	ch, err := s.take()
	if err != nil {
		return nil, err
	}

	var out []T
	for v := range ch {
		out = append(out, v)
	}
	return out, s.ctx.Err()
}

// Reduce consumes the stream, folding values into an accumulator.
func (s *Stream[T]) Reduce(initial T, fn func(acc, v T) T) (T, error) {
	ch, err := s.take()
	if err != nil {
		return initial, err
	}

	acc := initial
	for v := range ch {
		acc = fn(acc, v)
	}
	return acc, s.ctx.Err()
}

// Count consumes the stream and returns the number of values seen.
func (s *Stream[T]) Count() (int, error) {
	ch, err := s.take()
	if err != nil {
		return 0, err
	}

	n := 0
	for range ch {
		n++
	}
	return n, s.ctx.Err()
}

// Each consumes the stream, invoking fn per value. A non-nil error from
// fn stops consumption and is returned.
func (s *Stream[T]) Each(fn func(v T) error) error {
	ch, err := s.take()
	if err != nil {
		return err
	}

	for v := range ch {
		if err := fn(v); err != nil {
			return err
		}
	}
	return s.ctx.Err()
}
