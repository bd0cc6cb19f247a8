// Package client provides a resilient HTTP client composing connection
// pooling, circuit breaking, and retry with exponential backoff.
//
// Each host gets its own connection pool and circuit breaker, both
// created lazily on first use and owned by the Client instance. A
// request flows through the breaker gate, acquires a pooled connection,
// and retries transient failures (transport errors and the statuses
// 408, 429, 500, 502, 503, 504) per the configured retry policy:
//
//	c := client.New(client.Config{
//	    MaxConnsPerHost: 5,
//	    Breaker:         breaker.Config{FailureThreshold: 3},
//	    Retry:           retry.Config{MaxRetries: 2},
//	})
//	defer c.Close()
//
//	resp, err := c.Get(ctx, "https://api.example.com/items")
//
// Breaker and pool errors fail calls immediately without consuming
// retry attempts. Optional concerns are wired through Config: response
// caching for GET/HEAD, client-side rate limiting, and bearer token
// injection (static or minted JWT).
package client
