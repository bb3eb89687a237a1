// Package httpclient builds the *http.Client used to reach the FatSecret
// Platform API: pooled TLS transport, a User-Agent, and a logging layer that
// never writes credentials.
package httpclient

import (
	"fmt"
	"log/slog"
	"time"
)

// DefaultUserAgent identifies the library to the API.
const DefaultUserAgent = "go-fatsecret/1.0"

// Config configures an HTTP client.
type Config struct {
	// Timeout bounds a whole request including reading the body.
	// Default: 30s. Must be > 0.
	Timeout time.Duration

	// UserAgent is sent unless the request already carries one.
	UserAgent string

	// Logger receives one record per round trip. Nil discards.
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:   30 * time.Second,
		UserAgent: DefaultUserAgent,
	}
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0, got %v", c.Timeout)
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user_agent is required and must be non-empty")
	}
	return nil
}
