package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonwraymond/asyncops/breaker"
	"github.com/jonwraymond/asyncops/pool"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusHealthy, "healthy"},
		{StatusDegraded, "degraded"},
		{StatusUnhealthy, "unhealthy"},
		{Status(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestAggregator_CheckAll(t *testing.T) {
	agg := NewAggregator()
	agg.Register("ok", NewCheckerFunc("ok", func(ctx context.Context) Result {
		return Healthy("fine")
	}))
	agg.Register("bad", NewCheckerFunc("bad", func(ctx context.Context) Result {
		return Unhealthy("broken", errors.New("down"))
	}))

	results := agg.CheckAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results["ok"].Status != StatusHealthy {
		t.Errorf("ok status = %v, want healthy", results["ok"].Status)
	}
	if results["bad"].Status != StatusUnhealthy {
		t.Errorf("bad status = %v, want unhealthy", results["bad"].Status)
	}

	if got := agg.OverallStatus(results); got != StatusUnhealthy {
		t.Errorf("OverallStatus() = %v, want unhealthy", got)
	}
}

func TestAggregator_OverallStatus(t *testing.T) {
	agg := NewAggregator()

	if got := agg.OverallStatus(nil); got != StatusHealthy {
		t.Errorf("OverallStatus(empty) = %v, want healthy", got)
	}

	results := map[string]Result{
		"a": {Status: StatusHealthy},
		"b": {Status: StatusDegraded},
	}
	if got := agg.OverallStatus(results); got != StatusDegraded {
		t.Errorf("OverallStatus() = %v, want degraded", got)
	}
}

func TestAggregator_CheckByName(t *testing.T) {
	agg := NewAggregator()
	agg.Register("ok", NewCheckerFunc("ok", func(ctx context.Context) Result {
		return Healthy("fine")
	}))

	result, err := agg.Check(context.Background(), "ok")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if result.Status != StatusHealthy {
		t.Errorf("status = %v, want healthy", result.Status)
	}

	if _, err := agg.Check(context.Background(), "missing"); !errors.Is(err, ErrCheckerNotFound) {
		t.Errorf("Check(missing) error = %v, want ErrCheckerNotFound", err)
	}
}

func TestAggregator_Timeout(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Timeout: 20 * time.Millisecond})
	agg.Register("slow", NewCheckerFunc("slow", func(ctx context.Context) Result {
		<-ctx.Done()
		time.Sleep(time.Second)
		return Healthy("too late")
	}))

	results := agg.CheckAll(context.Background())
	if results["slow"].Status != StatusUnhealthy {
		t.Errorf("slow status = %v, want unhealthy", results["slow"].Status)
	}
	if !errors.Is(results["slow"].Error, ErrCheckTimeout) {
		t.Errorf("slow error = %v, want ErrCheckTimeout", results["slow"].Error)
	}
}

func TestAggregator_Unregister(t *testing.T) {
	agg := NewAggregator()
	agg.Register("a", NewCheckerFunc("a", func(ctx context.Context) Result { return Healthy("") }))
	agg.Register("b", NewCheckerFunc("b", func(ctx context.Context) Result { return Healthy("") }))

	agg.Unregister("a")

	names := agg.CheckerNames()
	if len(names) != 1 || names[0] != "b" {
		t.Errorf("CheckerNames() = %v, want [b]", names)
	}
}

func newTestPool(t *testing.T, max int) *pool.Pool[int] {
	t.Helper()
	p, err := pool.New(pool.Config[int]{
		MaxResources: max,
		Factory:      func(ctx context.Context) (int, error) { return 1, nil },
	})
	if err != nil {
		t.Fatalf("pool.New() error = %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func TestPoolChecker(t *testing.T) {
	p := newTestPool(t, 2)
	checker := NewPoolChecker("test-pool", p, 0.8)

	if got := checker.Check(context.Background()); got.Status != StatusHealthy {
		t.Errorf("idle pool status = %v, want healthy", got.Status)
	}

	ctx := context.Background()
	r1, err := p.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer r1.Release()
	r2, err := p.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer r2.Release()

	if got := checker.Check(ctx); got.Status != StatusUnhealthy {
		t.Errorf("exhausted pool status = %v, want unhealthy", got.Status)
	}
}

func TestPoolChecker_Watermark(t *testing.T) {
	p := newTestPool(t, 4)
	checker := NewPoolChecker("test-pool", p, 0.7)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		r, err := p.Acquire(ctx)
		if err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}
		defer r.Release()
	}

	// 3 of 4 active is 75%, above the 70% watermark.
	if got := checker.Check(ctx); got.Status != StatusDegraded {
		t.Errorf("saturated pool status = %v, want degraded", got.Status)
	}
}

func TestPoolChecker_ClosedPool(t *testing.T) {
	p := newTestPool(t, 2)
	p.Close()

	checker := NewPoolChecker("test-pool", p, 0.8)
	got := checker.Check(context.Background())
	if got.Status != StatusUnhealthy {
		t.Errorf("closed pool status = %v, want unhealthy", got.Status)
	}
	if !errors.Is(got.Error, pool.ErrPoolClosed) {
		t.Errorf("closed pool error = %v, want ErrPoolClosed", got.Error)
	}
}

func TestBreakerChecker(t *testing.T) {
	cb := breaker.New(breaker.Config{FailureThreshold: 1, RecoveryTimeout: time.Minute})
	checker := NewBreakerChecker("test-breaker", cb)

	if got := checker.Check(context.Background()); got.Status != StatusHealthy {
		t.Errorf("closed breaker status = %v, want healthy", got.Status)
	}

	cb.RecordFailure()

	got := checker.Check(context.Background())
	if got.Status != StatusUnhealthy {
		t.Errorf("open breaker status = %v, want unhealthy", got.Status)
	}
	if !errors.Is(got.Error, breaker.ErrCircuitOpen) {
		t.Errorf("open breaker error = %v, want ErrCircuitOpen", got.Error)
	}
}

func TestBreakerChecker_HalfOpen(t *testing.T) {
	cb := breaker.New(breaker.Config{FailureThreshold: 1, RecoveryTimeout: 10 * time.Millisecond})
	cb.RecordFailure()
	time.Sleep(20 * time.Millisecond)

	checker := NewBreakerChecker("test-breaker", cb)
	if got := checker.Check(context.Background()); got.Status != StatusDegraded {
		t.Errorf("half-open breaker status = %v, want degraded", got.Status)
	}
}

func TestHandler(t *testing.T) {
	agg := NewAggregator()
	agg.Register("ok", NewCheckerFunc("ok", func(ctx context.Context) Result {
		return Healthy("fine")
	}))

	rec := httptest.NewRecorder()
	Handler(agg).ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", body["status"])
	}
}

func TestHandler_Unhealthy(t *testing.T) {
	agg := NewAggregator()
	agg.Register("bad", NewCheckerFunc("bad", func(ctx context.Context) Result {
		return Unhealthy("broken", errors.New("down"))
	}))

	rec := httptest.NewRecorder()
	Handler(agg).ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != 503 {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
