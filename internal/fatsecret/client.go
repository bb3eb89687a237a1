// Package fatsecret is a client for the FatSecret Platform API covering food
// search, food details, barcode lookup and recipes.
//
// A Client is built once with New, shared freely between goroutines and
// released with Close. Every operation returns either a typed result or an
// *apierr.Error whose kind callers test with errors.Is.
package fatsecret

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/alnah/go-fatsecret/internal/apierr"
	"github.com/alnah/go-fatsecret/internal/httpclient"
	"github.com/alnah/go-fatsecret/internal/log"
	"github.com/alnah/go-fatsecret/internal/metrics"
)

const (
	// DefaultBaseURL is the FatSecret REST endpoint.
	DefaultBaseURL = "https://platform.fatsecret.com/rest/server.api"

	// DefaultTimeout bounds each API call.
	DefaultTimeout = 30 * time.Second

	// maxResponseSize is the maximum response body size (10MB).
	// Protects against memory exhaustion from malicious or buggy servers.
	maxResponseSize = 10 << 20
)

// httpDoer abstracts HTTP client for testing.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client calls the FatSecret Platform API.
type Client struct {
	auth       Authenticator
	http       httpDoer
	owned      *http.Client
	baseURL    string
	httpMethod string
	timeout    time.Duration
	userAgent  string
	logger     *slog.Logger
	metrics    *metrics.Collector
	limiter    *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint (for testing or proxies).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithHTTPMethod selects GET (query string) or POST (form body). Default POST.
func WithHTTPMethod(method string) Option {
	return func(c *Client) {
		if method != "" {
			c.httpMethod = strings.ToUpper(method)
		}
	}
}

// WithTimeout bounds each API call, including token acquisition.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent of the default HTTP client.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger sets the logger for the client and its HTTP transport.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records every call in m.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithRateLimit throttles outgoing calls to rps per second with the given
// burst. Calls wait for a slot; they are never rejected.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
		}
	}
}

// WithHTTPClient uses hc instead of the default client. The caller keeps
// ownership; Close does not touch it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// withHTTPDoer injects a bare Do implementation (for testing).
func withHTTPDoer(d httpDoer) Option {
	return func(c *Client) {
		c.http = d
	}
}

// New creates a Client that authenticates with auth.
func New(auth Authenticator, opts ...Option) (*Client, error) {
	if auth == nil {
		return nil, apierr.Validationf("authenticator is required")
	}
	c := &Client{
		auth:       auth,
		baseURL:    DefaultBaseURL,
		httpMethod: http.MethodPost,
		timeout:    DefaultTimeout,
		userAgent:  httpclient.DefaultUserAgent,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpMethod != http.MethodGet && c.httpMethod != http.MethodPost {
		return nil, apierr.Validationf("HTTP method must be GET or POST, got %q", c.httpMethod)
	}
	u, err := url.Parse(c.baseURL)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return nil, apierr.Validationf("invalid base URL %q", c.baseURL)
	}
	if u.RawQuery != "" {
		return nil, apierr.Validationf("base URL %q must not carry a query string", c.baseURL)
	}

	if c.http == nil {
		hc, err := httpclient.New(httpclient.Config{
			Timeout:   c.timeout,
			UserAgent: c.userAgent,
			Logger:    c.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create HTTP client: %w", err)
		}
		c.http = hc
		c.owned = hc
	}
	return c, nil
}

// Close releases idle connections of the HTTP client the Client created
// and closes the authenticator if it implements io.Closer. It is safe to
// call more than once.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	if c.owned != nil {
		httpclient.CloseIdleConnections(c.owned)
	}
	if closer, ok := c.auth.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// call runs one API method and decodes the success payload with parse.
func call[T any](ctx context.Context, c *Client, apiMethod string, params url.Values, parse func([]byte) (T, error)) (T, error) {
	start := time.Now()
	var zero T

	result, err := func() (T, error) {
		body, err := c.invoke(ctx, apiMethod, params)
		if err != nil {
			return zero, err
		}
		return parse(body)
	}()

	duration := time.Since(start)
	c.metrics.ObserveRequest(apiMethod, duration, err)
	if err != nil {
		c.logger.Debug("api call failed",
			log.MethodKey, apiMethod,
			log.DurationKey, duration.Milliseconds(),
			"outcome", metrics.Outcome(err),
			log.ErrorKey, err,
		)
		return zero, err
	}
	c.logger.Debug("api call", log.MethodKey, apiMethod, log.DurationKey, duration.Milliseconds())
	return result, nil
}

// invoke authenticates and executes one API method, returning the raw
// success body. Token-mode clients retry once after the API rejects a
// stale token.
func (c *Client) invoke(ctx context.Context, apiMethod string, params url.Values) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, sent, err := c.attempt(ctx, apiMethod, params)
	if err == nil || sent == nil || !errors.Is(err, apierr.ErrAuthFailed) {
		return body, err
	}

	renewer, ok := c.auth.(Renewer)
	if !ok || !renewer.Renew(sent) {
		return nil, err
	}
	c.logger.Info("credentials rejected, retrying with a fresh token", log.MethodKey, apiMethod)
	body, _, err = c.attempt(ctx, apiMethod, params)
	return body, err
}

// attempt performs a single round trip. The returned *Request is non-nil
// once the request was authenticated and handed to the transport.
func (c *Client) attempt(ctx context.Context, apiMethod string, params url.Values) ([]byte, *Request, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, nil, apierr.Transport("wait for rate limiter", 0, err)
		}
	}

	req := &Request{
		Method: c.httpMethod,
		URL:    c.baseURL,
		Params: make(url.Values, len(params)+2),
		Header: make(http.Header),
	}
	for k, v := range params {
		req.Params[k] = append([]string(nil), v...)
	}
	req.Params.Set("method", apiMethod)
	req.Params.Set("format", "json")

	if err := c.auth.Authenticate(ctx, req); err != nil {
		return nil, nil, err
	}

	httpReq, err := buildHTTPRequest(ctx, req)
	if err != nil {
		return nil, nil, apierr.Transport("build request", 0, err)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, req, classifyTransportError("send request", 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, req, classifyTransportError("read response", resp.StatusCode, err)
	}

	body, err = classifyResponse(resp.StatusCode, body)
	return body, req, err
}

func buildHTTPRequest(ctx context.Context, req *Request) (*http.Request, error) {
	encoded := req.Params.Encode()

	var httpReq *http.Request
	var err error
	if req.Method == http.MethodGet {
		httpReq, err = http.NewRequestWithContext(ctx, http.MethodGet, req.URL+"?"+encoded, nil)
	} else {
		httpReq, err = http.NewRequestWithContext(ctx, req.Method, req.URL, strings.NewReader(encoded))
		if err == nil {
			httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return nil, err
	}
	for k, v := range req.Header {
		httpReq.Header[k] = v
	}
	httpReq.Header.Set("Accept", "application/json")
	return httpReq, nil
}
