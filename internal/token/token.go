// Package token caches OAuth 2.0 client-credentials access tokens for the
// FatSecret Platform API.
//
// A Cache hands the same token to every caller until it is about to expire.
// When it is missing or stale, exactly one acquisition runs no matter how
// many callers are waiting, and a failed or abandoned acquisition never
// leaves a partial token behind.
package token

import (
	"context"
	"time"
)

// DefaultExpiryBuffer is how long before its stated expiry a token is
// treated as already expired.
const DefaultExpiryBuffer = 60 * time.Second

// Token is a bearer access token.
type Token struct {
	Value string
	Type  string

	// Expiry is the instant the token stops being accepted. A zero Expiry
	// means the token never expires.
	Expiry time.Time
}

// Valid reports whether the token is usable at now, given that it must stay
// valid for at least buffer longer.
func (t Token) Valid(now time.Time, buffer time.Duration) bool {
	if t.Value == "" {
		return false
	}
	if t.Expiry.IsZero() {
		return true
	}
	return now.Add(buffer).Before(t.Expiry)
}

// Source acquires a fresh token from the authorization server.
type Source interface {
	Token(ctx context.Context) (Token, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) (Token, error)

// Token calls f(ctx).
func (f SourceFunc) Token(ctx context.Context) (Token, error) {
	return f(ctx)
}
