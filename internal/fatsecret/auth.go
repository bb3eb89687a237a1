package fatsecret

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/alnah/go-fatsecret/internal/apierr"
	"github.com/alnah/go-fatsecret/internal/oauth1"
	"github.com/alnah/go-fatsecret/internal/token"
)

// Request is an outbound API call before it is turned into an
// *http.Request. Authenticators add credentials to it.
type Request struct {
	// Method is the HTTP method, GET or POST.
	Method string
	// URL is the endpoint without a query string.
	URL    string
	Params url.Values
	Header http.Header
}

// Authenticator attaches credentials to a request. A client uses exactly
// one authenticator for every call.
type Authenticator interface {
	Authenticate(ctx context.Context, req *Request) error
}

// Renewer is implemented by authenticators whose credentials can go stale.
// After the API rejects a request, Renew discards the credential that req
// carried and reports whether a retry could succeed.
type Renewer interface {
	Renew(req *Request) bool
}

// Compile-time interface compliance checks.
var (
	_ Authenticator = (*oauth1Authenticator)(nil)
	_ Authenticator = (*tokenAuthenticator)(nil)
	_ Renewer       = (*tokenAuthenticator)(nil)
	_ io.Closer     = (*tokenAuthenticator)(nil)
)

type oauth1Authenticator struct {
	signer *oauth1.Signer
}

// NewOAuth1Authenticator signs every request with two-legged OAuth 1.0.
// It holds no mutable state.
func NewOAuth1Authenticator(signer *oauth1.Signer) Authenticator {
	return &oauth1Authenticator{signer: signer}
}

// Authenticate replaces req.Params with the signed parameter set.
func (a *oauth1Authenticator) Authenticate(_ context.Context, req *Request) error {
	signed, err := a.signer.Sign(req.Method, req.URL, req.Params)
	if err != nil {
		return err
	}
	req.Params = signed
	return nil
}

type tokenAuthenticator struct {
	cache *token.Cache
}

// NewTokenAuthenticator sends a cached OAuth 2.0 bearer token with every
// request.
func NewTokenAuthenticator(cache *token.Cache) Authenticator {
	return &tokenAuthenticator{cache: cache}
}

const bearerPrefix = "Bearer "

// Authenticate sets the Authorization header, acquiring a token if needed.
func (a *tokenAuthenticator) Authenticate(ctx context.Context, req *Request) error {
	if a.cache == nil {
		return apierr.Validationf("token cache is not configured")
	}
	tok, err := a.cache.Token(ctx)
	if err != nil {
		return err
	}
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	req.Header.Set("Authorization", bearerPrefix+tok.Value)
	return nil
}

// Close releases the token source.
func (a *tokenAuthenticator) Close() error {
	if a.cache == nil {
		return nil
	}
	return a.cache.Close()
}

// Renew invalidates the token req was sent with.
func (a *tokenAuthenticator) Renew(req *Request) bool {
	if a.cache == nil || req == nil {
		return false
	}
	stale, ok := strings.CutPrefix(req.Header.Get("Authorization"), bearerPrefix)
	if !ok || stale == "" {
		return false
	}
	a.cache.Invalidate(stale)
	return true
}
