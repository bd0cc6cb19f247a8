// Package stream provides one-shot channel pipelines with bounded
// buffers and preserved element order.
//
// A stream is built from a source, passed through zero or more stages,
// and drained by a terminal:
//
//	s := stream.From(ctx, []int{1, 2, 3, 4})
//	doubled := stream.Map(s, func(v int) int { return v * 2 })
//	evens := stream.Filter(doubled, func(v int) bool { return v%4 == 0 })
//	out, err := evens.Collect()
//
// Every stage boundary is a bounded channel, so a slow consumer applies
// backpressure to producers naturally. Each stage runs in its own
// goroutine; cancelling the construction context stops the whole
// pipeline.
//
// Streams are one-shot: consuming a stream twice (by stage, terminal,
// or Out) fails with ErrConsumed.
package stream
