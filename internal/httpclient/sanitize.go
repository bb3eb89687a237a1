package httpclient

import (
	"net/url"
	"strings"
)

const redacted = "[REDACTED]"

// sensitiveParams are substrings of parameter names whose values must not
// be logged. OAuth signature, nonce and consumer key are all covered.
var sensitiveParams = []string{
	"key",
	"token",
	"secret",
	"signature",
	"nonce",
	"password",
	"credential",
}

// sanitizeURL renders u with sensitive query values redacted.
func sanitizeURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	safe := *u
	safe.User = nil
	if u.RawQuery != "" {
		safe.RawQuery = sanitizeValues(u.Query()).Encode()
	}
	return safe.String()
}

// sanitizeValues returns a copy of v with sensitive values redacted.
func sanitizeValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for name, values := range v {
		if isSensitiveParam(name) {
			out[name] = []string{redacted}
			continue
		}
		out[name] = append([]string(nil), values...)
	}
	return out
}

func isSensitiveParam(param string) bool {
	lower := strings.ToLower(param)
	for _, sensitive := range sensitiveParams {
		if strings.Contains(lower, sensitive) {
			return true
		}
	}
	return false
}
