package httpclient

import (
	"crypto/tls"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// New creates an *http.Client from cfg.
func New(cfg Config) (*http.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Transport: NewLoggingTransport(base, cfg.UserAgent, cfg.Logger),
		Timeout:   cfg.Timeout,
	}, nil
}

// CloseIdleConnections releases idle connections held by c's transport,
// looking through the logging layer.
func CloseIdleConnections(c *http.Client) {
	if c == nil {
		return
	}
	rt := c.Transport
	if lt, ok := rt.(*loggingTransport); ok {
		rt = lt.base
	}
	type idleCloser interface{ CloseIdleConnections() }
	if ic, ok := rt.(idleCloser); ok {
		ic.CloseIdleConnections()
	}
}

// discard is the fallback when no logger is configured.
var discard = slog.New(slog.DiscardHandler)
