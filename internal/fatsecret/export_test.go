package fatsecret

import "net/http"

// Exports for testing. These allow black-box tests to inject dependencies
// without modifying the public API.

// HTTPDoer exports httpDoer for testing.
type HTTPDoer = httpDoer

// WithHTTPDoer exports withHTTPDoer for testing.
func WithHTTPDoer(d HTTPDoer) Option {
	return withHTTPDoer(d)
}

// DoerFunc adapts a function to HTTPDoer.
type DoerFunc func(req *http.Request) (*http.Response, error)

// Do implements HTTPDoer.
func (f DoerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

// Function exports for unit testing internal logic.
var (
	ClassifyResponse       = classifyResponse
	ClassifyTransportError = classifyTransportError
)
