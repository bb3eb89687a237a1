package token_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alnah/go-fatsecret/internal/apierr"
	"github.com/alnah/go-fatsecret/internal/token"
)

func TestClientCredentialsConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     token.ClientCredentialsConfig
		wantErr bool
	}{
		{"valid", token.ClientCredentialsConfig{ClientID: "id", ClientSecret: "secret"}, false},
		{"valid with url", token.ClientCredentialsConfig{ClientID: "id", ClientSecret: "s", TokenURL: "https://x/token"}, false},
		{"missing id", token.ClientCredentialsConfig{ClientSecret: "secret"}, true},
		{"missing secret", token.ClientCredentialsConfig{ClientID: "id"}, true},
		{"bad url", token.ClientCredentialsConfig{ClientID: "id", ClientSecret: "s", TokenURL: "ftp://x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, apierr.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClientCredentials_Token(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, secret, ok := r.BasicAuth()
		if !ok || id != "id" || secret != "secret" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
			return
		}
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.Form.Get("grant_type") != "client_credentials" || r.Form.Get("scope") != "basic" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"abc123","token_type":"Bearer","expires_in":86400}`))
	}))
	t.Cleanup(srv.Close)

	src, err := token.NewClientCredentials(token.ClientCredentialsConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		TokenURL:     srv.URL,
	}, srv.Client())
	require.NoError(t, err)

	before := time.Now()
	tok, err := src.Token(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "abc123", tok.Value)
	assert.Equal(t, "Bearer", tok.Type)
	assert.True(t, tok.Expiry.After(before.Add(23*time.Hour)))
}

func TestClientCredentials_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"invalid client", http.StatusUnauthorized, `{"error":"invalid_client"}`, apierr.ErrAuthFailed},
		{"bad request", http.StatusBadRequest, `{"error":"invalid_scope"}`, apierr.ErrAuthFailed},
		{"server error", http.StatusInternalServerError, `oops`, apierr.ErrTransport},
		{"unavailable", http.StatusServiceUnavailable, ``, apierr.ErrTransport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			t.Cleanup(srv.Close)

			src, err := token.NewClientCredentials(token.ClientCredentialsConfig{
				ClientID: "id", ClientSecret: "secret", TokenURL: srv.URL,
			}, srv.Client())
			require.NoError(t, err)

			_, err = src.Token(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var apiErr *apierr.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
		})
	}
}

func TestClientCredentials_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	src, err := token.NewClientCredentials(token.ClientCredentialsConfig{
		ClientID: "id", ClientSecret: "secret", TokenURL: url,
	}, nil)
	require.NoError(t, err)

	_, err = src.Token(context.Background())
	assert.ErrorIs(t, err, apierr.ErrTransport)
}

func TestClientCredentials_WithCache(t *testing.T) {
	t.Parallel()

	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"cached","token_type":"Bearer","expires_in":3600}`))
	}))
	t.Cleanup(srv.Close)

	src, err := token.NewClientCredentials(token.ClientCredentialsConfig{
		ClientID: "id", ClientSecret: "secret", TokenURL: srv.URL,
	}, srv.Client())
	require.NoError(t, err)
	cache := token.NewCache(src)

	for range 3 {
		tok, err := cache.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "cached", tok.Value)
	}
	assert.Equal(t, 1, hits)
}

// idleTracker is a RoundTripper that counts CloseIdleConnections calls.
type idleTracker struct {
	closed int
}

func (t *idleTracker) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, http.ErrNotSupported
}

func (t *idleTracker) CloseIdleConnections() { t.closed++ }

func TestClientCredentials_CloseReleasesConnections(t *testing.T) {
	t.Parallel()

	tracker := &idleTracker{}
	src, err := token.NewClientCredentials(token.ClientCredentialsConfig{
		ClientID: "id", ClientSecret: "secret",
	}, &http.Client{Transport: tracker})
	require.NoError(t, err)

	// Closing the cache reaches the source.
	require.NoError(t, token.NewCache(src).Close())
	assert.Equal(t, 1, tracker.closed)

	bare, err := token.NewClientCredentials(token.ClientCredentialsConfig{
		ClientID: "id", ClientSecret: "secret",
	}, nil)
	require.NoError(t, err)
	assert.NoError(t, bare.Close())
}
