package breaker

import (
	"context"
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means calls pass through normally.
	StateClosed State = iota
	// StateOpen means all calls are rejected immediately.
	StateOpen
	// StateHalfOpen means a limited number of trial calls are allowed.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config configures a circuit breaker.
type Config struct {
	// FailureThreshold is the number of consecutive failures before
	// opening the circuit.
	// Default: 5
	FailureThreshold int

	// RecoveryTimeout is how long an open circuit waits before allowing
	// trial calls.
	// Default: 30 seconds
	RecoveryTimeout time.Duration

	// HalfOpenMaxCalls is the max concurrent trial calls in half-open state.
	// Default: 1
	HalfOpenMaxCalls int

	// SuccessThreshold is the number of trial successes needed to close
	// the circuit again.
	// Default: 1
	SuccessThreshold int

	// IsFailure determines if an error should count as a failure.
	// Default: all non-nil errors are failures.
	IsFailure func(err error) bool

	// OnStateChange is called when the circuit state changes.
	OnStateChange func(from, to State)
}

// CircuitBreaker tracks failures against one logical target and vetoes
// calls while that target is considered unhealthy.
//
// Contract:
// - Concurrency: safe for concurrent use; state transitions are serialized
//   under a single mutex and never hold the lock across a call.
// - Lifetime: the machine is cyclic and runs for the process lifetime.
type CircuitBreaker struct {
	config Config

	mu            sync.Mutex
	state         State
	failures      int
	successes     int
	openedAt      time.Time
	halfOpenCalls int
}

// New creates a circuit breaker with defaults applied.
func New(config Config) *CircuitBreaker {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.RecoveryTimeout <= 0 {
		config.RecoveryTimeout = 30 * time.Second
	}
	if config.HalfOpenMaxCalls <= 0 {
		config.HalfOpenMaxCalls = 1
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = 1
	}
	if config.IsFailure == nil {
		config.IsFailure = func(err error) bool { return err != nil }
	}

	return &CircuitBreaker{
		config: config,
		state:  StateClosed,
	}
}

// Execute runs the operation through the circuit breaker.
func (cb *CircuitBreaker) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := cb.Allow(); err != nil {
		return err
	}

	err := op(ctx)
	cb.record(err)
	return err
}

// Allow reports whether a call may proceed. In half-open state it reserves
// one of the trial slots; callers that receive nil must follow up with
// RecordSuccess, RecordFailure, or CancelTrial.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.currentStateLocked() {
	case StateOpen:
		return ErrCircuitOpen
	case StateHalfOpen:
		if cb.halfOpenCalls >= cb.config.HalfOpenMaxCalls {
			return ErrCircuitOpen
		}
		cb.halfOpenCalls++
	}

	return nil
}

// CancelTrial releases a slot reserved by Allow without recording an
// outcome. Use it when the call was abandoned before reaching the target,
// so a local error neither counts against the endpoint nor strands the
// half-open trial slot.
func (cb *CircuitBreaker) CancelTrial() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateHalfOpen && cb.halfOpenCalls > 0 {
		cb.halfOpenCalls--
	}
}

// RecordSuccess reports a successful call to the breaker.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.record(nil)
}

// RecordFailure reports a failed call to the breaker.
func (cb *CircuitBreaker) RecordFailure() {
	cb.record(errFailure)
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	isFailure := err != nil && cb.config.IsFailure(err)
	oldState := cb.state

	switch cb.state {
	case StateClosed:
		if isFailure {
			cb.failures++
			if cb.failures >= cb.config.FailureThreshold {
				cb.state = StateOpen
				cb.openedAt = time.Now()
			}
		} else {
			cb.failures = 0
		}

	case StateHalfOpen:
		if isFailure {
			// Trial failed, back to open with a fresh recovery window.
			cb.state = StateOpen
			cb.openedAt = time.Now()
			cb.successes = 0
			cb.halfOpenCalls = 0
		} else {
			cb.successes++
			if cb.successes >= cb.config.SuccessThreshold {
				cb.state = StateClosed
				cb.failures = 0
				cb.successes = 0
				cb.halfOpenCalls = 0
			} else if cb.halfOpenCalls > 0 {
				// Trial finished but the circuit is not closed yet; free
				// the slot so the next trial can be admitted.
				cb.halfOpenCalls--
			}
		}
	}

	if oldState != cb.state && cb.config.OnStateChange != nil {
		cb.config.OnStateChange(oldState, cb.state)
	}
}

// State returns the current circuit state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentStateLocked()
}

// Reset returns the breaker to closed state with counters cleared.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	oldState := cb.state
	cb.state = StateClosed
	cb.failures = 0
	cb.successes = 0
	cb.halfOpenCalls = 0

	if oldState != StateClosed && cb.config.OnStateChange != nil {
		cb.config.OnStateChange(oldState, StateClosed)
	}
}

// currentStateLocked applies the lazy open -> half-open transition once the
// recovery timeout has elapsed. Callers must hold cb.mu.
func (cb *CircuitBreaker) currentStateLocked() State {
	if cb.state == StateOpen && time.Since(cb.openedAt) >= cb.config.RecoveryTimeout {
		cb.state = StateHalfOpen
		cb.halfOpenCalls = 0
		cb.successes = 0
		if cb.config.OnStateChange != nil {
			cb.config.OnStateChange(StateOpen, StateHalfOpen)
		}
	}
	return cb.state
}

// Metrics returns current circuit breaker statistics.
func (cb *CircuitBreaker) Metrics() Metrics {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return Metrics{
		State:     cb.currentStateLocked(),
		Failures:  cb.failures,
		Successes: cb.successes,
		OpenedAt:  cb.openedAt,
	}
}

// Metrics contains circuit breaker statistics.
type Metrics struct {
	State     State
	Failures  int
	Successes int
	OpenedAt  time.Time
}
