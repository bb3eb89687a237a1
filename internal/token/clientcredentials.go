package token

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/alnah/go-fatsecret/internal/apierr"
)

// DefaultTokenURL is the FatSecret OAuth 2.0 token endpoint.
const DefaultTokenURL = "https://oauth.fatsecret.com/connect/token"

// DefaultScopes are requested when none are configured.
var DefaultScopes = []string{"basic"}

// ClientCredentialsConfig configures a ClientCredentials source.
type ClientCredentialsConfig struct {
	ClientID     string
	ClientSecret string

	// TokenURL defaults to DefaultTokenURL.
	TokenURL string

	// Scopes defaults to DefaultScopes.
	Scopes []string
}

// Validate checks the configuration is usable.
func (c ClientCredentialsConfig) Validate() error {
	if strings.TrimSpace(c.ClientID) == "" {
		return apierr.Validationf("client id is required")
	}
	if strings.TrimSpace(c.ClientSecret) == "" {
		return apierr.Validationf("client secret is required")
	}
	if c.TokenURL != "" && !strings.HasPrefix(c.TokenURL, "https://") && !strings.HasPrefix(c.TokenURL, "http://") {
		return apierr.Validationf("token URL must start with http:// or https://, got %q", c.TokenURL)
	}
	return nil
}

// ClientCredentials acquires tokens with the OAuth 2.0 client-credentials
// grant.
type ClientCredentials struct {
	cfg        clientcredentials.Config
	httpClient *http.Client
}

// NewClientCredentials creates a Source. httpClient may be nil to use
// http.DefaultClient.
func NewClientCredentials(cfg ClientCredentialsConfig, httpClient *http.Client) (*ClientCredentials, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	return &ClientCredentials{
		cfg: clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     tokenURL,
			Scopes:       scopes,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		httpClient: httpClient,
	}, nil
}

// Close releases idle connections of the token endpoint's HTTP client.
func (s *ClientCredentials) Close() error {
	if s.httpClient != nil {
		s.httpClient.CloseIdleConnections()
	}
	return nil
}

// Token fetches a new access token.
func (s *ClientCredentials) Token(ctx context.Context) (Token, error) {
	if s.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	}

	t, err := s.cfg.Token(ctx)
	if err != nil {
		return Token{}, classifyRetrieveError(err)
	}
	return Token{
		Value:  t.AccessToken,
		Type:   t.Type(),
		Expiry: t.Expiry,
	}, nil
}

// classifyRetrieveError maps token endpoint failures onto the error
// taxonomy: rejected client credentials are authentication failures,
// everything else is a transport failure.
func classifyRetrieveError(err error) error {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return apierr.Transport("request access token", 0, err)
	}

	status := 0
	if re.Response != nil {
		status = re.Response.StatusCode
	}
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnauthorized, status == http.StatusForbidden:
		msg := "token endpoint rejected client credentials"
		if re.ErrorCode != "" {
			msg = fmt.Sprintf("%s (%s)", msg, re.ErrorCode)
		}
		return &apierr.Error{Kind: apierr.KindAuthentication, Status: status, Message: msg, Cause: err}
	default:
		return apierr.Transport("request access token", status, err)
	}
}
