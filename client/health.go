package client

import (
	"context"

	"github.com/jonwraymond/asyncops/health"
)

// Health checks every host the client has talked to: pool saturation
// and breaker state per host. Returns the overall status and the
// per-check results.
func (c *Client) Health(ctx context.Context) (health.Status, map[string]health.Result) {
	agg := health.NewAggregator()

	c.mu.RLock()
	for host, p := range c.pools {
		agg.Register("pool:"+host, health.NewPoolChecker("pool:"+host, p, 0.8))
	}
	c.mu.RUnlock()

	for _, host := range c.breakers.Names() {
		agg.Register("breaker:"+host, health.NewBreakerChecker("breaker:"+host, c.breakers.Get(host)))
	}

	results := agg.CheckAll(ctx)
	return agg.OverallStatus(results), results
}
