package breaker

import "errors"

// ErrCircuitOpen is returned when the circuit breaker rejects a call.
var ErrCircuitOpen = errors.New("breaker: circuit is open")

// errFailure stands in for the caller's error in RecordFailure; it is never
// surfaced.
var errFailure = errors.New("breaker: recorded failure")
