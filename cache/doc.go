// Package cache provides deterministic caching for idempotent responses.
//
// It provides a Cache interface with a memory implementation, SHA-256
// based key derivation from request identity, and TTL policies.
package cache
