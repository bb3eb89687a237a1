package httpclient

import (
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxLoggedBody caps how much of a form body is read for logging.
const maxLoggedBody = 64 << 10

type loggingTransport struct {
	base      http.RoundTripper
	userAgent string
	logger    *slog.Logger
}

// NewLoggingTransport wraps base so that every round trip sets the
// User-Agent and is logged with credentials redacted.
func NewLoggingTransport(base http.RoundTripper, userAgent string, logger *slog.Logger) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if logger == nil {
		logger = discard
	}
	return &loggingTransport{base: base, userAgent: userAgent, logger: logger}
}

// CloseIdleConnections forwards to the wrapped transport.
func (t *loggingTransport) CloseIdleConnections() {
	type idleCloser interface{ CloseIdleConnections() }
	if ic, ok := t.base.(idleCloser); ok {
		ic.CloseIdleConnections()
	}
}

// RoundTrip implements http.RoundTripper.
func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	if t.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}

	resp, err := t.base.RoundTrip(req)
	duration := time.Since(start).Milliseconds()

	attrs := []any{
		"method", req.Method,
		"url", sanitizeURL(req.URL),
		"duration_ms", duration,
	}
	if form := peekForm(req); form != "" {
		attrs = append(attrs, "form", form)
	}

	if err != nil {
		t.logger.Warn("http request failed", append(attrs, "error", err.Error())...)
		return resp, err
	}

	level := slog.LevelDebug
	if resp.StatusCode >= 400 {
		level = slog.LevelWarn
	}
	t.logger.Log(req.Context(), level, "http request", append(attrs, "status", resp.StatusCode)...)
	return resp, nil
}

// peekForm returns the sanitized form body of req without consuming it, or
// "" when the body is not a replayable form.
func peekForm(req *http.Request) string {
	if req.GetBody == nil {
		return ""
	}
	if !strings.HasPrefix(req.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		return ""
	}
	body, err := req.GetBody()
	if err != nil {
		return ""
	}
	defer body.Close()

	raw, err := io.ReadAll(io.LimitReader(body, maxLoggedBody))
	if err != nil {
		return ""
	}
	values, err := url.ParseQuery(string(raw))
	if err != nil {
		return ""
	}
	return sanitizeValues(values).Encode()
}
