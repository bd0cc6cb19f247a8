package pool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeConn struct {
	id     int
	closed bool
}

func newTestPool(t *testing.T, max int, timeout time.Duration) (*Pool[*fakeConn], *atomic.Int64) {
	t.Helper()

	var created atomic.Int64
	p, err := New(Config[*fakeConn]{
		MaxResources:   max,
		AcquireTimeout: timeout,
		Factory: func(ctx context.Context) (*fakeConn, error) {
			return &fakeConn{id: int(created.Add(1))}, nil
		},
		Close: func(c *fakeConn) error {
			c.closed = true
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p, &created
}

func TestNew_RequiresFactory(t *testing.T) {
	_, err := New(Config[int]{})
	if !errors.Is(err, ErrNilFactory) {
		t.Errorf("New() error = %v, want ErrNilFactory", err)
	}
}

func TestPool_LazyCreation(t *testing.T) {
	p, created := newTestPool(t, 5, time.Second)
	defer p.Close()

	if created.Load() != 0 {
		t.Errorf("created = %d before first Acquire, want 0", created.Load())
	}

	res, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	res.Release()

	if created.Load() != 1 {
		t.Errorf("created = %d, want 1", created.Load())
	}
}

func TestPool_ReusesIdleResource(t *testing.T) {
	p, created := newTestPool(t, 5, time.Second)
	defer p.Close()

	res, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	first := res.Value
	res.Release()

	res, err = p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer res.Release()

	if res.Value != first {
		t.Error("Acquire() created a new resource instead of reusing the idle one")
	}
	if created.Load() != 1 {
		t.Errorf("created = %d, want 1", created.Load())
	}
}

func TestPool_BoundInvariant(t *testing.T) {
	const max = 3
	p, _ := newTestPool(t, max, time.Second)
	defer p.Close()

	var active, peak atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := p.Acquire(context.Background())
			if err != nil {
				t.Errorf("Acquire() error = %v", err)
				return
			}
			defer res.Release()

			n := active.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			active.Add(-1)
		}()
	}
	wg.Wait()

	if peak.Load() > max {
		t.Errorf("peak concurrent checkouts = %d, want <= %d", peak.Load(), max)
	}
}

func TestPool_ExhaustedAfterTimeout(t *testing.T) {
	p, _ := newTestPool(t, 2, 50*time.Millisecond)
	defer p.Close()

	a, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer a.Release()
	b, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer b.Release()

	start := time.Now()
	_, err = p.Acquire(context.Background())
	if !errors.Is(err, ErrPoolExhausted) {
		t.Errorf("Acquire() error = %v, want ErrPoolExhausted", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("Acquire() failed after %v, want ~50ms wait", elapsed)
	}
}

func TestPool_WaiterGetsReleasedResource(t *testing.T) {
	p, _ := newTestPool(t, 1, time.Second)
	defer p.Close()

	res, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		res.Release()
	}()

	waited, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() while waiting error = %v", err)
	}
	waited.Release()
}

func TestPool_ContendedCallers(t *testing.T) {
	// 5 callers against max=2 with a short timeout: each either succeeds
	// once an earlier holder releases, or observes ErrPoolExhausted.
	p, _ := newTestPool(t, 2, 100*time.Millisecond)
	defer p.Close()

	var exhausted, succeeded atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := p.Acquire(context.Background())
			if errors.Is(err, ErrPoolExhausted) {
				exhausted.Add(1)
				return
			}
			if err != nil {
				t.Errorf("Acquire() error = %v", err)
				return
			}
			succeeded.Add(1)
			time.Sleep(30 * time.Millisecond)
			res.Release()
		}()
	}
	wg.Wait()

	if got := exhausted.Load() + succeeded.Load(); got != 5 {
		t.Errorf("accounted callers = %d, want 5", got)
	}
	if succeeded.Load() < 2 {
		t.Errorf("succeeded = %d, want >= 2", succeeded.Load())
	}
}

func TestPool_InvalidResourceDiscarded(t *testing.T) {
	p, created := newTestPool(t, 2, time.Second)
	defer p.Close()

	res, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	broken := res.Value
	res.MarkInvalid()
	res.Release()

	if !broken.closed {
		t.Error("invalid resource was not closed on release")
	}

	// Replacement is created lazily on the next acquire.
	res, err = p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer res.Release()

	if res.Value == broken {
		t.Error("Acquire() returned a discarded resource")
	}
	if created.Load() != 2 {
		t.Errorf("created = %d, want 2", created.Load())
	}
}

func TestPool_ReleaseIdempotent(t *testing.T) {
	p, _ := newTestPool(t, 1, 50*time.Millisecond)
	defer p.Close()

	res, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	res.Release()
	res.Release()
	res.Release()

	stats := p.Stats()
	if stats.Idle != 1 {
		t.Errorf("Idle = %d after double release, want 1", stats.Idle)
	}
	if stats.Active != 0 {
		t.Errorf("Active = %d, want 0", stats.Active)
	}
}

func TestPool_CloseDrainsIdle(t *testing.T) {
	p, _ := newTestPool(t, 2, time.Second)

	res, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	idleConn := res.Value
	res.Release()

	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !idleConn.closed {
		t.Error("idle resource was not closed on pool shutdown")
	}

	_, err = p.Acquire(context.Background())
	if !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Acquire() after Close = %v, want ErrPoolClosed", err)
	}
}

func TestPool_InFlightClosedOnRelease(t *testing.T) {
	p, _ := newTestPool(t, 1, time.Second)

	res, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if res.Value.closed {
		t.Error("checked-out resource closed before release")
	}

	res.Release()
	if !res.Value.closed {
		t.Error("checked-out resource not closed after release into draining pool")
	}
}

func TestPool_CloseWakesWaiters(t *testing.T) {
	p, _ := newTestPool(t, 1, time.Minute)

	res, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer res.Release()

	errc := make(chan error, 1)
	go func() {
		_, err := p.Acquire(context.Background())
		errc <- err
	}()

	time.Sleep(10 * time.Millisecond)
	p.Close()

	select {
	case err := <-errc:
		if !errors.Is(err, ErrPoolClosed) {
			t.Errorf("waiting Acquire() = %v, want ErrPoolClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("waiting Acquire() did not return after Close")
	}
}

func TestPool_FactoryError(t *testing.T) {
	factoryErr := errors.New("dial failed")
	p, err := New(Config[*fakeConn]{
		MaxResources: 1,
		Factory: func(ctx context.Context) (*fakeConn, error) {
			return nil, factoryErr
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer p.Close()

	_, err = p.Acquire(context.Background())
	if !errors.Is(err, factoryErr) {
		t.Errorf("Acquire() error = %v, want factory error", err)
	}

	// The failed creation must not leak the slot.
	stats := p.Stats()
	if stats.Active != 0 {
		t.Errorf("Active = %d after factory failure, want 0", stats.Active)
	}
}

func TestPool_AcquireContextCancelled(t *testing.T) {
	p, _ := newTestPool(t, 1, time.Minute)
	defer p.Close()

	res, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer res.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = p.Acquire(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Acquire() error = %v, want context.DeadlineExceeded", err)
	}
}
