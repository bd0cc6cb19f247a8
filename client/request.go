package client

import (
	"net/http"
	"time"
)

// Request describes one HTTP call.
type Request struct {
	// Method is the HTTP method. Default: GET
	Method string

	// URL is the absolute request URL.
	URL string

	// Header holds additional request headers.
	Header http.Header

	// Body is the request payload, replayed on each retry attempt.
	Body []byte

	// CacheTTL overrides the cache policy TTL for this request. Only
	// GET and HEAD responses are cached, and only when the client has a
	// cache configured.
	CacheTTL time.Duration
}

// Response is a fully buffered HTTP response.
type Response struct {
	StatusCode int         `json:"status_code"`
	Header     http.Header `json:"header"`
	Body       []byte      `json:"body"`
}

func (r Request) method() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return r.Method
}

// cacheable reports whether this request's response may be served from
// and stored to the cache.
func (r Request) cacheable() bool {
	m := r.method()
	return m == http.MethodGet || m == http.MethodHead
}
