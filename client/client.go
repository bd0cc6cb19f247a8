package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/asyncops/breaker"
	"github.com/jonwraymond/asyncops/cache"
	"github.com/jonwraymond/asyncops/observe"
	"github.com/jonwraymond/asyncops/pool"
	"github.com/jonwraymond/asyncops/retry"
)

// Config configures a Client.
type Config struct {
	// MaxConnsPerHost bounds the connection pool per host.
	// Default: 10
	MaxConnsPerHost int

	// AcquireTimeout bounds waiting for a pooled connection.
	// Default: 10 seconds
	AcquireTimeout time.Duration

	// RequestTimeout bounds each individual attempt.
	// Default: 30 seconds
	RequestTimeout time.Duration

	// Retry is the retry policy for transient failures. RetryIf
	// defaults to the client's own transport/status classification.
	Retry retry.Config

	// Breaker is the per-host circuit breaker configuration.
	Breaker breaker.Config

	// RateLimit, when set, applies a client-side token bucket to all
	// outgoing attempts.
	RateLimit *RateLimitConfig

	// Cache, when set, serves idempotent GET/HEAD responses with 2xx
	// statuses from cache.
	Cache cache.Cache

	// CachePolicy controls response TTLs when Cache is set.
	CachePolicy cache.Policy

	// TokenSource, when set, attaches a bearer token to every request.
	TokenSource TokenSource

	// Events receives request and breaker lifecycle events.
	// Default: no-op
	Events observe.Events

	// Logger receives per-request debug logs.
	// Default: no-op
	Logger observe.Logger
}

// Client is an HTTP client composing per-host connection pooling,
// per-host circuit breaking, and retry with exponential backoff.
type Client struct {
	config   Config
	policy   *retry.Policy
	breakers *breaker.Registry
	limiter  *RateLimiter
	keyer    cache.Keyer

	group  singleflight.Group
	mu     sync.RWMutex
	pools  map[string]*pool.Pool[*Conn]
	closed bool
}

// New creates a new Client.
func New(config Config) *Client {
	// Apply defaults
	if config.MaxConnsPerHost <= 0 {
		config.MaxConnsPerHost = 10
	}
	if config.AcquireTimeout <= 0 {
		config.AcquireTimeout = 10 * time.Second
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = 30 * time.Second
	}
	if config.Retry.RetryIf == nil {
		config.Retry.RetryIf = isRetryable
	}
	if config.Events == nil {
		config.Events = observe.NewNoopEvents()
	}
	if config.Logger == nil {
		config.Logger = observe.NewNoopLogger()
	}

	c := &Client{
		config: config,
		policy: retry.NewPolicy(config.Retry),
		keyer:  cache.NewRequestKeyer(),
		pools:  make(map[string]*pool.Pool[*Conn]),
	}

	c.breakers = breaker.NewRegistry(config.Breaker)
	c.breakers.Notify = func(name string, from, to breaker.State) {
		config.Events.Record(context.Background(), "breaker.state_change",
			observe.Field{Key: "endpoint", Value: name},
			observe.Field{Key: "from", Value: from},
			observe.Field{Key: "to", Value: to},
		)
	}

	if config.RateLimit != nil {
		c.limiter = NewRateLimiter(*config.RateLimit)
	}

	return c
}

// Do executes the request with pooling, circuit breaking, and retries.
//
// Breaker and pool errors (ErrCircuitOpen, ErrPoolExhausted,
// ErrPoolClosed) fail the call immediately and are never retried.
// Transport errors and retryable HTTP statuses are retried per the
// retry policy; when attempts run out the last error is wrapped in a
// *retry.ExhaustedError. Non-retryable statuses surface as a
// *StatusError on the first occurrence.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	host, err := hostOf(req.URL)
	if err != nil {
		return nil, err
	}

	cacheKey := ""
	if c.config.Cache != nil && req.cacheable() {
		cacheKey = c.keyer.Key(req.method(), req.URL, req.Body)
		if resp, ok := c.cachedResponse(ctx, cacheKey); ok {
			c.config.Logger.Debug(ctx, "cache hit", observe.Field{Key: "url", Value: req.URL})
			return resp, nil
		}
	}

	cb := c.breakers.Get(host)
	if cb.State() == breaker.StateOpen {
		return nil, breaker.ErrCircuitOpen
	}

	p, err := c.hostPool(host)
	if err != nil {
		return nil, err
	}

	res, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { res.Release() }()

	c.config.Events.Record(ctx, "request.start",
		observe.Field{Key: "method", Value: req.method()},
		observe.Field{Key: "host", Value: host},
	)

	start := time.Now()
	attempt := 0
	for {
		if err := cb.Allow(); err != nil {
			return nil, err
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				// The call never reached the endpoint; give back the
				// half-open slot reserved by Allow.
				cb.CancelTrial()
				return nil, err
			}
		}

		attempt++
		resp, attemptErr := c.attempt(ctx, res.Value, req)
		if attemptErr == nil {
			cb.RecordSuccess()
			c.config.Events.Record(ctx, "request.completed",
				observe.Field{Key: "host", Value: host},
				observe.Field{Key: "attempts", Value: fmt.Sprint(attempt)},
			)
			if cacheKey != "" && resp.StatusCode < 300 {
				c.storeResponse(ctx, cacheKey, resp, req.CacheTTL)
			}
			return resp, nil
		}

		c.classify(cb, attemptErr)
		c.config.Logger.Debug(ctx, "request attempt failed",
			observe.Field{Key: "host", Value: host},
			observe.Field{Key: "attempt", Value: attempt},
			observe.Field{Key: "error", Value: attemptErr.Error()},
		)

		if isTransportError(attemptErr) {
			// The connection may be poisoned; swap it for a fresh one.
			res.MarkInvalid()
			res.Release()
			res, err = p.Acquire(ctx)
			if err != nil {
				return nil, err
			}
		}

		delay, retryable := c.policy.NextDelay(attempt, attemptErr)
		if !retryable {
			if !c.config.Retry.RetryIf(attemptErr) {
				return nil, attemptErr
			}
			c.config.Events.Record(ctx, "request.failed",
				observe.Field{Key: "host", Value: host},
				observe.Field{Key: "attempts", Value: fmt.Sprint(attempt)},
			)
			return nil, &retry.ExhaustedError{
				Attempts: attempt,
				Elapsed:  time.Since(start),
				Err:      attemptErr,
			}
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// attempt performs one HTTP round trip on the given connection.
func (c *Client) attempt(ctx context.Context, conn *Conn, req Request) (*Response, error) {
	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method(), req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	for key, values := range req.Header {
		httpReq.Header[key] = values
	}

	httpResp, err := conn.hc.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &url.Error{Op: "read", URL: req.URL, Err: err}
	}

	if httpResp.StatusCode >= 400 {
		return nil, &StatusError{
			StatusCode: httpResp.StatusCode,
			Status:     httpResp.Status,
			Body:       respBody,
		}
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       respBody,
	}, nil
}

// classify feeds an attempt outcome into the breaker. Transport errors
// and retryable statuses count as endpoint failures; a non-retryable
// status still proves the endpoint is answering.
func (c *Client) classify(cb *breaker.CircuitBreaker, err error) {
	var se *StatusError
	if errors.As(err, &se) && !retryableStatus[se.StatusCode] {
		cb.RecordSuccess()
		return
	}
	cb.RecordFailure()
}

// hostPool returns the connection pool for a host, creating it on
// first use. Concurrent first requests for the same host are collapsed
// through singleflight.
func (c *Client) hostPool(host string) (*pool.Pool[*Conn], error) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return nil, ErrClientClosed
	}
	if p, ok := c.pools[host]; ok {
		c.mu.RUnlock()
		return p, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do(host, func() (any, error) {
		c.mu.RLock()
		p, ok := c.pools[host]
		c.mu.RUnlock()
		if ok {
			return p, nil
		}

		p, err := pool.New(pool.Config[*Conn]{
			MaxResources:   c.config.MaxConnsPerHost,
			AcquireTimeout: c.config.AcquireTimeout,
			Factory: func(_ context.Context) (*Conn, error) {
				return newConn(c.config.RequestTimeout, c.config.TokenSource), nil
			},
			Close: func(conn *Conn) error {
				return conn.Close()
			},
		})
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			p.Close()
			return nil, ErrClientClosed
		}
		c.pools[host] = p
		c.mu.Unlock()
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*pool.Pool[*Conn]), nil
}

// cachedResponse decodes a cached response payload.
func (c *Client) cachedResponse(ctx context.Context, key string) (*Response, bool) {
	data, ok := c.config.Cache.Get(ctx, key)
	if !ok {
		return nil, false
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		c.config.Cache.Delete(ctx, key)
		return nil, false
	}
	return &resp, true
}

// storeResponse encodes and stores a response. Failures are best-effort.
func (c *Client) storeResponse(ctx context.Context, key string, resp *Response, ttl time.Duration) {
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	c.config.Cache.Set(ctx, key, data, c.config.CachePolicy.EffectiveTTL(ttl))
}

// Breaker returns the circuit breaker for a host, creating it on first
// use.
func (c *Client) Breaker(host string) *breaker.CircuitBreaker {
	return c.breakers.Get(host)
}

// Stats returns per-host pool statistics.
func (c *Client) Stats() map[string]pool.Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := make(map[string]pool.Stats, len(c.pools))
	for host, p := range c.pools {
		stats[host] = p.Stats()
	}
	return stats
}

// Close closes all per-host pools. In-flight requests finish against
// connections that are closed as they are released.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	pools := make([]*pool.Pool[*Conn], 0, len(c.pools))
	for _, p := range c.pools {
		pools = append(pools, p)
	}
	c.mu.Unlock()

	var errs []error
	for _, p := range pools {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// hostOf extracts the host key used for pools and breakers.
func hostOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host in %q", ErrInvalidURL, rawURL)
	}
	return u.Host, nil
}
