// Package retry provides an immutable retry policy with exponential backoff.
//
// A Policy is a pure decision function: given an attempt number and the error
// it produced, NextDelay reports whether to retry and how long to wait.
// Execute wraps the decision in a context-aware retry loop.
//
//	policy := retry.NewPolicy(retry.Config{
//	    MaxRetries:    5,
//	    BackoffBase:   100 * time.Millisecond,
//	    BackoffFactor: 2.0,
//	    Jitter:        true,
//	})
//
//	err := policy.Execute(ctx, func(ctx context.Context) error {
//	    return callExternalService(ctx)
//	})
package retry
