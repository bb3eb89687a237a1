// Package oauth1 signs FatSecret requests with two-legged OAuth 1.0
// HMAC-SHA1 signatures.
//
// A Signer holds only the immutable consumer credentials and is safe for
// concurrent use. Nonce and clock sources are injectable so that tests can
// pin the output byte for byte.
package oauth1

import (
	"crypto/hmac"
	"crypto/sha1" // #nosec G505 -- HMAC-SHA1 is mandated by the OAuth 1.0 signature method
	"encoding/base64"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alnah/go-fatsecret/internal/apierr"
)

// OAuth protocol parameter names and fixed values.
const (
	ParamConsumerKey     = "oauth_consumer_key"
	ParamNonce           = "oauth_nonce"
	ParamSignature       = "oauth_signature"
	ParamSignatureMethod = "oauth_signature_method"
	ParamTimestamp       = "oauth_timestamp"
	ParamVersion         = "oauth_version"

	SignatureMethod = "HMAC-SHA1"
	Version         = "1.0"
)

// Credentials is the consumer key pair issued by FatSecret.
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
}

func (c Credentials) validate() error {
	if strings.TrimSpace(c.ConsumerKey) == "" {
		return apierr.Validationf("consumer key is required")
	}
	if strings.TrimSpace(c.ConsumerSecret) == "" {
		return apierr.Validationf("consumer secret is required")
	}
	return nil
}

// Signer computes OAuth 1.0 signatures for outbound requests.
type Signer struct {
	creds Credentials
	now   func() time.Time
	nonce func() string
}

// Option configures a Signer.
type Option func(*Signer)

// WithClock sets the time source used for oauth_timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *Signer) {
		if now != nil {
			s.now = now
		}
	}
}

// WithNonce sets the nonce source used for oauth_nonce.
func WithNonce(nonce func() string) Option {
	return func(s *Signer) {
		if nonce != nil {
			s.nonce = nonce
		}
	}
}

// NewSigner creates a Signer. It returns a validation error when either half
// of the credentials is empty.
func NewSigner(creds Credentials, opts ...Option) (*Signer, error) {
	if err := creds.validate(); err != nil {
		return nil, err
	}
	s := &Signer{
		creds: creds,
		now:   time.Now,
		nonce: randomNonce,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// randomNonce returns 32 hex characters from a random (v4) UUID.
func randomNonce() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Sign returns params plus the OAuth protocol parameters and the computed
// oauth_signature. params is not modified. baseURL must not carry a query
// string; every request parameter belongs in params.
func (s *Signer) Sign(method, baseURL string, params url.Values) (url.Values, error) {
	if s == nil {
		return nil, apierr.Validationf("signer is not configured")
	}
	if err := s.creds.validate(); err != nil {
		return nil, err
	}
	if method == "" {
		return nil, apierr.Validationf("HTTP method is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, apierr.Validationf("invalid request URL %q", baseURL)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return nil, apierr.Validationf("request URL %q must not carry a query string", baseURL)
	}

	signed := make(url.Values, len(params)+6)
	for k, v := range params {
		if k == ParamSignature {
			continue
		}
		signed[k] = slices.Clone(v)
	}
	signed.Set(ParamConsumerKey, s.creds.ConsumerKey)
	signed.Set(ParamSignatureMethod, SignatureMethod)
	signed.Set(ParamTimestamp, strconv.FormatInt(s.now().UTC().Unix(), 10))
	signed.Set(ParamNonce, s.nonce())
	signed.Set(ParamVersion, Version)

	base := BaseString(method, baseURL, signed)
	signed.Set(ParamSignature, s.signature(base))
	return signed, nil
}

// signature returns base64(HMAC-SHA1(key, base)). Two-legged requests have
// no token secret, so the key ends with a bare "&".
func (s *Signer) signature(base string) string {
	key := PercentEncode(s.creds.ConsumerSecret) + "&" + PercentEncode("")
	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(base))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// BaseString builds the signature base string:
// UPPER(method) & enc(baseURL) & enc(NormalizeParams(params)).
func BaseString(method, baseURL string, params url.Values) string {
	return strings.ToUpper(method) + "&" +
		PercentEncode(baseURL) + "&" +
		PercentEncode(NormalizeParams(params))
}

// NormalizeParams encodes every name and value, sorts pairs by encoded name
// then encoded value, and joins them as name=value with "&".
func NormalizeParams(params url.Values) string {
	type pair struct{ k, v string }

	pairs := make([]pair, 0, len(params))
	for k, values := range params {
		ek := PercentEncode(k)
		for _, v := range values {
			pairs = append(pairs, pair{ek, PercentEncode(v)})
		}
	}
	slices.SortFunc(pairs, func(a, b pair) int {
		if c := strings.Compare(a.k, b.k); c != 0 {
			return c
		}
		return strings.Compare(a.v, b.v)
	})

	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.k)
		b.WriteByte('=')
		b.WriteString(p.v)
	}
	return b.String()
}

const upperHex = "0123456789ABCDEF"

// PercentEncode applies RFC 3986 encoding: unreserved characters
// (A-Z a-z 0-9 - . _ ~) pass through, every other byte becomes %XX.
func PercentEncode(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if !unreserved(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&0x0f])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '.', c == '_', c == '~':
		return true
	}
	return false
}
