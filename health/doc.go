// Package health provides health checking for runtime components.
//
// A Checker reports the health of one component as Healthy, Degraded,
// or Unhealthy. Built-in checkers cover resource pools (saturation
// watermark) and circuit breakers (open circuit is unhealthy).
//
//	agg := health.NewAggregator()
//	agg.Register("api-pool", health.NewPoolChecker("api-pool", p, 0.8))
//	agg.Register("api-breaker", health.NewBreakerChecker("api-breaker", cb))
//
//	results := agg.CheckAll(ctx)
//	overall := agg.OverallStatus(results)
//
// Handler exposes an aggregator over HTTP for readiness probing.
package health
