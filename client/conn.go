package client

import (
	"net"
	"net/http"
	"time"
)

// Conn is one pooled HTTP connection slot: a dedicated http.Client
// whose transport keeps at most one idle connection alive, so the pool
// bound translates directly into a connection bound per host.
type Conn struct {
	hc        *http.Client
	transport *http.Transport
}

// newConn builds a connection slot with an isolated keep-alive
// transport.
func newConn(timeout time.Duration, source TokenSource) *Conn {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        1,
		MaxIdleConnsPerHost: 1,
		MaxConnsPerHost:     1,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	var rt http.RoundTripper = transport
	if source != nil {
		rt = &authTransport{base: transport, source: source}
	}

	return &Conn{
		hc: &http.Client{
			Transport: rt,
			Timeout:   timeout,
		},
		transport: transport,
	}
}

// Close drops the slot's idle connection.
func (c *Conn) Close() error {
	c.transport.CloseIdleConnections()
	return nil
}
