package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSigningKey indicates a JWT token source was built without a key.
var ErrNoSigningKey = errors.New("client: signing key is required")

// TokenSource supplies bearer tokens for outgoing requests.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: a Token error fails the request before it is sent.
type TokenSource interface {
	// Token returns a bearer token to attach to the request.
	Token(ctx context.Context) (string, error)
}

// StaticTokenSource returns the same token for every request.
type StaticTokenSource struct {
	token string
}

// NewStaticTokenSource creates a token source around a fixed token.
func NewStaticTokenSource(token string) *StaticTokenSource {
	return &StaticTokenSource{token: token}
}

// Token returns the static token.
func (s *StaticTokenSource) Token(_ context.Context) (string, error) {
	return s.token, nil
}

// JWTConfig configures app-token minting.
type JWTConfig struct {
	// Key is the signing key. Required. []byte for HMAC methods, a
	// crypto private key for RSA/ECDSA methods.
	Key any

	// Method is the signing method.
	// Default: jwt.SigningMethodHS256
	Method jwt.SigningMethod

	// Issuer is the iss claim.
	Issuer string

	// Subject is the sub claim.
	Subject string

	// Audience is the aud claim.
	Audience string

	// TTL is the token lifetime.
	// Default: 5 minutes
	TTL time.Duration
}

// JWTTokenSource mints short-lived signed app tokens, caching each
// token until shortly before expiry.
type JWTTokenSource struct {
	config JWTConfig

	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewJWTTokenSource creates a minting token source.
func NewJWTTokenSource(config JWTConfig) (*JWTTokenSource, error) {
	if config.Key == nil {
		return nil, ErrNoSigningKey
	}

	// Apply defaults
	if config.Method == nil {
		config.Method = jwt.SigningMethodHS256
	}
	if config.TTL <= 0 {
		config.TTL = 5 * time.Minute
	}

	return &JWTTokenSource{config: config}, nil
}

// Token returns a signed token, minting a fresh one when the cached
// token is within 30 seconds of expiry.
func (s *JWTTokenSource) Token(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && time.Until(s.expires) > 30*time.Second {
		return s.token, nil
	}

	now := time.Now()
	expires := now.Add(s.config.TTL)

	claims := jwt.MapClaims{
		"iat": jwt.NewNumericDate(now),
		"exp": jwt.NewNumericDate(expires),
	}
	if s.config.Issuer != "" {
		claims["iss"] = s.config.Issuer
	}
	if s.config.Subject != "" {
		claims["sub"] = s.config.Subject
	}
	if s.config.Audience != "" {
		claims["aud"] = s.config.Audience
	}

	signed, err := jwt.NewWithClaims(s.config.Method, claims).SignedString(s.config.Key)
	if err != nil {
		return "", fmt.Errorf("client: sign token: %w", err)
	}

	s.token = signed
	s.expires = expires
	return signed, nil
}

// authTransport injects a bearer token into every outgoing request.
type authTransport struct {
	base   http.RoundTripper
	source TokenSource
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.source.Token(req.Context())
	if err != nil {
		return nil, fmt.Errorf("client: token source: %w", err)
	}

	// Per RoundTripper contract the request must not be mutated.
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+token)

	return t.base.RoundTrip(clone)
}
