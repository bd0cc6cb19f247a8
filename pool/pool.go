package pool

import (
	"context"
	"sync"
	"time"
)

// Config configures a resource pool.
type Config[T any] struct {
	// MaxResources bounds the total live resources (idle + checked out).
	// Default: 10
	MaxResources int

	// AcquireTimeout is how long Acquire waits for a free resource before
	// failing with ErrPoolExhausted.
	// Default: 10 seconds
	AcquireTimeout time.Duration

	// Factory creates a new resource. Required.
	Factory func(ctx context.Context) (T, error)

	// Close releases a resource discarded by the pool. Optional.
	Close func(resource T) error
}

// Pool is a bounded pool of reusable resources created lazily by a
// caller-supplied factory.
//
// Contract:
// - Concurrency: safe for concurrent use; the bound is enforced by a slot
//   semaphore, so no more than MaxResources are ever live.
// - Ownership: an acquired Resource is exclusively held until Release.
// - Locks are never held across the factory or close calls.
type Pool[T any] struct {
	config Config[T]
	slots  chan struct{}
	done   chan struct{}

	mu        sync.Mutex
	idle      []T
	created   int
	discarded int64
	closed    bool
}

// New creates a pool with defaults applied. Resources are not created until
// first demanded by Acquire.
func New[T any](config Config[T]) (*Pool[T], error) {
	if config.Factory == nil {
		return nil, ErrNilFactory
	}
	if config.MaxResources <= 0 {
		config.MaxResources = 10
	}
	if config.AcquireTimeout <= 0 {
		config.AcquireTimeout = 10 * time.Second
	}

	return &Pool[T]{
		config: config,
		slots:  make(chan struct{}, config.MaxResources),
		done:   make(chan struct{}),
	}, nil
}

// Acquire returns a scoped handle to a resource, reusing an idle one when
// available and otherwise creating one lazily. When all resources are
// checked out it suspends until a release, the acquire timeout
// (ErrPoolExhausted), or ctx cancellation.
//
// Callers must release the handle on every exit path:
//
//	res, err := p.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	defer res.Release()
func (p *Pool[T]) Acquire(ctx context.Context) (*Resource[T], error) {
	if p.isClosed() {
		return nil, ErrPoolClosed
	}

	if err := p.acquireSlot(ctx); err != nil {
		return nil, err
	}

	// The pool may have closed while we waited for a slot.
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.releaseSlot()
		return nil, ErrPoolClosed
	}

	if n := len(p.idle); n > 0 {
		value := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.mu.Unlock()
		return &Resource[T]{Value: value, pool: p}, nil
	}

	p.created++
	p.mu.Unlock()

	value, err := p.config.Factory(ctx)
	if err != nil {
		p.mu.Lock()
		p.created--
		p.mu.Unlock()
		p.releaseSlot()
		return nil, err
	}

	return &Resource[T]{Value: value, pool: p}, nil
}

func (p *Pool[T]) acquireSlot(ctx context.Context) error {
	// Fast path: slot immediately available.
	select {
	case p.slots <- struct{}{}:
		return nil
	default:
	}

	timer := time.NewTimer(p.config.AcquireTimeout)
	defer timer.Stop()

	select {
	case p.slots <- struct{}{}:
		return nil
	case <-timer.C:
		return ErrPoolExhausted
	case <-p.done:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool[T]) releaseSlot() {
	select {
	case <-p.slots:
	default:
		// Slot accounting error; nothing sane to do.
	}
}

// release returns a checked-out resource. Invalid resources and releases
// into a draining pool discard the resource instead of idling it.
func (p *Pool[T]) release(value T, invalid bool) {
	p.mu.Lock()
	discard := invalid || p.closed
	if discard {
		p.created--
		p.discarded++
	} else {
		p.idle = append(p.idle, value)
	}
	p.mu.Unlock()

	if discard {
		p.closeResource(value)
	}
	p.releaseSlot()
}

// Close marks the pool as draining and closes all idle resources. Checked-out
// resources are closed as they are released; subsequent Acquire calls fail
// with ErrPoolClosed.
func (p *Pool[T]) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	idle := p.idle
	p.idle = nil
	p.created -= len(idle)
	p.discarded += int64(len(idle))
	p.mu.Unlock()

	close(p.done)

	var firstErr error
	for _, value := range idle {
		if err := p.closeResource(value); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (p *Pool[T]) closeResource(value T) error {
	if p.config.Close == nil {
		return nil
	}
	return p.config.Close(value)
}

func (p *Pool[T]) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Stats returns a snapshot of pool occupancy.
func (p *Pool[T]) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return Stats{
		Idle:         len(p.idle),
		Active:       p.created - len(p.idle),
		MaxResources: p.config.MaxResources,
		Discarded:    p.discarded,
		Closed:       p.closed,
	}
}

// Stats contains pool occupancy statistics.
type Stats struct {
	Idle         int
	Active       int
	MaxResources int
	Discarded    int64
	Closed       bool
}

// Resource is a scoped handle to a pooled resource. Release must be called
// exactly once on every exit path; extra calls are no-ops.
type Resource[T any] struct {
	// Value is the pooled resource itself.
	Value T

	pool     *Pool[T]
	mu       sync.Mutex
	invalid  bool
	released bool
}

// MarkInvalid flags the resource as broken. On Release it is discarded and
// closed instead of returning to the idle set; the pool re-creates a
// replacement lazily on the next Acquire.
func (r *Resource[T]) MarkInvalid() {
	r.mu.Lock()
	r.invalid = true
	r.mu.Unlock()
}

// Release returns the resource to the pool. Idempotent.
func (r *Resource[T]) Release() {
	r.mu.Lock()
	if r.released {
		r.mu.Unlock()
		return
	}
	r.released = true
	invalid := r.invalid
	r.mu.Unlock()

	r.pool.release(r.Value, invalid)
}
