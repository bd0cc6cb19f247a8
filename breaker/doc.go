// Package breaker implements the circuit breaker failure-isolation pattern.
//
// A CircuitBreaker is a per-target state machine: Closed passes calls
// through and counts consecutive failures; Open rejects every call with
// ErrCircuitOpen until a recovery timeout elapses; HalfOpen admits a limited
// number of trial calls that decide between recovery and another open cycle.
//
// Use Execute for the wrapped form, or Allow/RecordSuccess/RecordFailure
// (plus CancelTrial for calls abandoned before reaching the target)
// when composing the breaker with other concerns (pooling, retries):
//
//	cb := breaker.New(breaker.Config{
//	    FailureThreshold: 5,
//	    RecoveryTimeout:  30 * time.Second,
//	})
//
//	err := cb.Execute(ctx, func(ctx context.Context) error {
//	    return callExternalService(ctx)
//	})
//
// A Registry provides one shared breaker per logical endpoint, owned by the
// composing client rather than by the process.
package breaker
