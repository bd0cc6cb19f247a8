package stream_test

import (
	"context"
	"fmt"

	"github.com/jonwraymond/asyncops/stream"
)

func ExampleMap() {
	s := stream.From(context.Background(), []int{1, 2, 3})
	doubled := stream.Map(s, func(v int) int { return v * 2 })

	out, _ := doubled.Collect()
	fmt.Println(out)
	// Output:
	// [2 4 6]
}

func ExampleFilter() {
	s := stream.From(context.Background(), []int{1, 2, 3, 4, 5, 6})
	evens := stream.Filter(s, func(v int) bool { return v%2 == 0 })

	out, _ := evens.Collect()
	fmt.Println(out)
	// Output:
	// [2 4 6]
}

func ExampleBatch() {
	s := stream.From(context.Background(), []string{"a", "b", "c", "d", "e"})
	batches := stream.Batch(s, 2)

	out, _ := batches.Collect()
	fmt.Println(out)
	// Output:
	// [[a b] [c d] [e]]
}

func ExampleStream_Reduce() {
	s := stream.From(context.Background(), []int{1, 2, 3, 4})
	sum, _ := s.Reduce(0, func(acc, v int) int { return acc + v })

	fmt.Println(sum)
	// Output:
	// 10
}
