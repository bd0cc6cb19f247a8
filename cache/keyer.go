package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Keyer generates deterministic cache keys from request identity.
//
// Contract:
// - Determinism: the same method, URL, and body must produce the same key.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	// Key generates a cache key for a request.
	Key(method, url string, body []byte) string
}

// RequestKeyer generates SHA-256 based cache keys from the request
// method, URL, and body.
type RequestKeyer struct{}

// NewRequestKeyer creates a new request keyer.
func NewRequestKeyer() *RequestKeyer {
	return &RequestKeyer{}
}

// Key generates a deterministic cache key.
// Format: resp:<METHOD>:<hash>
// where hash is the first 16 characters of SHA-256(method|url|body).
func (k *RequestKeyer) Key(method, url string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(strings.ToUpper(method)))
	h.Write([]byte{'|'})
	h.Write([]byte(url))
	h.Write([]byte{'|'})
	h.Write(body)

	sum := h.Sum(nil)
	return fmt.Sprintf("resp:%s:%s", strings.ToUpper(method), hex.EncodeToString(sum[:8]))
}

// Ensure RequestKeyer implements Keyer
var _ Keyer = (*RequestKeyer)(nil)
