package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/asyncops/breaker"
	"github.com/jonwraymond/asyncops/pool"
)

// PoolStats is the pool statistics surface consumed by PoolChecker.
// *pool.Pool[T] satisfies it for any T.
type PoolStats interface {
	Stats() pool.Stats
}

// PoolChecker reports pool saturation. It is degraded once active
// resources reach the watermark fraction of capacity and unhealthy when
// the pool is closed or fully exhausted.
type PoolChecker struct {
	name      string
	pool      PoolStats
	watermark float64
}

// NewPoolChecker creates a pool saturation checker.
// watermark is the active/capacity fraction above which the pool is
// reported degraded; values outside (0, 1] fall back to 0.8.
func NewPoolChecker(name string, p PoolStats, watermark float64) *PoolChecker {
	if watermark <= 0 || watermark > 1 {
		watermark = 0.8
	}
	return &PoolChecker{name: name, pool: p, watermark: watermark}
}

// Name returns the checker name.
func (c *PoolChecker) Name() string {
	return c.name
}

// Check reports the pool's saturation status.
func (c *PoolChecker) Check(_ context.Context) Result {
	stats := c.pool.Stats()

	details := map[string]any{
		"active":    stats.Active,
		"idle":      stats.Idle,
		"capacity":  stats.MaxResources,
		"discarded": stats.Discarded,
	}

	if stats.Closed {
		return Unhealthy("pool is closed", pool.ErrPoolClosed).WithDetails(details)
	}

	saturation := float64(stats.Active) / float64(stats.MaxResources)
	switch {
	case stats.Active >= stats.MaxResources:
		return Unhealthy("pool exhausted", nil).WithDetails(details)
	case saturation >= c.watermark:
		return Degraded(fmt.Sprintf("pool at %.0f%% capacity", saturation*100)).WithDetails(details)
	default:
		return Healthy("pool has capacity").WithDetails(details)
	}
}

// BreakerChecker reports circuit breaker state: open is unhealthy,
// half-open is degraded, closed is healthy.
type BreakerChecker struct {
	name string
	cb   *breaker.CircuitBreaker
}

// NewBreakerChecker creates a circuit breaker state checker.
func NewBreakerChecker(name string, cb *breaker.CircuitBreaker) *BreakerChecker {
	return &BreakerChecker{name: name, cb: cb}
}

// Name returns the checker name.
func (c *BreakerChecker) Name() string {
	return c.name
}

// Check reports the breaker's state.
func (c *BreakerChecker) Check(_ context.Context) Result {
	m := c.cb.Metrics()

	details := map[string]any{
		"state":     m.State.String(),
		"failures":  m.Failures,
		"successes": m.Successes,
	}

	switch m.State {
	case breaker.StateOpen:
		return Unhealthy("circuit is open", breaker.ErrCircuitOpen).WithDetails(details)
	case breaker.StateHalfOpen:
		return Degraded("circuit is half-open").WithDetails(details)
	default:
		return Healthy("circuit is closed").WithDetails(details)
	}
}
