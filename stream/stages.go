package stream

// Map transforms each value through fn. Stages are free functions
// because Go methods cannot introduce new type parameters.
func Map[In, Out any](s *Stream[In], fn func(In) Out) *Stream[Out] {
	ch, err := s.take()
	if err != nil {
		return failed[Out](s.ctx, s.buffer, err)
	}

	next := newStream[Out](s.ctx, s.buffer)
	go func() {
		defer close(next.out)
		for v := range ch {
			select {
			case next.out <- fn(v):
			case <-s.ctx.Done():
				return
			}
		}
	}()

	return next
}

// Filter keeps only the values for which keep returns true.
func Filter[T any](s *Stream[T], keep func(T) bool) *Stream[T] {
	ch, err := s.take()
	if err != nil {
		return failed[T](s.ctx, s.buffer, err)
	}

	next := newStream[T](s.ctx, s.buffer)
	go func() {
		defer close(next.out)
		for v := range ch {
			if !keep(v) {
				continue
			}
			select {
			case next.out <- v:
			case <-s.ctx.Done():
				return
			}
		}
	}()

	return next
}

// Batch groups values into slices of at most size elements. The final
// batch may be shorter. size < 1 is treated as 1.
func Batch[T any](s *Stream[T], size int) *Stream[[]T] {
	if size < 1 {
		size = 1
	}

	ch, err := s.take()
	if err != nil {
		return failed[[]T](s.ctx, s.buffer, err)
	}

	next := newStream[[]T](s.ctx, s.buffer)
	go func() {
		defer close(next.out)

		batch := make([]T, 0, size)
		for v := range ch {
			batch = append(batch, v)
			if len(batch) < size {
				continue
			}
			select {
			case next.out <- batch:
				batch = make([]T, 0, size)
			case <-s.ctx.Done():
				return
			}
		}
		if len(batch) > 0 {
			select {
			case next.out <- batch:
			case <-s.ctx.Done():
			}
		}
	}()

	return next
}

// Window emits sliding windows of exactly size elements, each window
// starting step elements after the previous one. Trailing elements
// that do not fill a window are dropped. size < 1 is treated as 1 and
// step < 1 as 1.
func Window[T any](s *Stream[T], size, step int) *Stream[[]T] {
	if size < 1 {
		size = 1
	}
	if step < 1 {
		step = 1
	}

	ch, err := s.take()
	if err != nil {
		return failed[[]T](s.ctx, s.buffer, err)
	}

	next := newStream[[]T](s.ctx, s.buffer)
	go func() {
		defer close(next.out)

		buf := make([]T, 0, size)
		skip := 0
		for v := range ch {
			if skip > 0 {
				skip--
				continue
			}
			buf = append(buf, v)
			if len(buf) < size {
				continue
			}

			window := make([]T, size)
			copy(window, buf)
			select {
			case next.out <- window:
			case <-s.ctx.Done():
				return
			}

			if step >= size {
				buf = buf[:0]
				skip = step - size
			} else {
				buf = append(buf[:0], buf[step:]...)
			}
		}
	}()

	return next
}

// Fold consumes the stream, folding values into an accumulator of a
// different type than the elements.
func Fold[T, A any](s *Stream[T], initial A, fn func(acc A, v T) A) (A, error) {
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
