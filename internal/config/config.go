package config

import (
	"bufio"
	"errors"
	"fmt"
	"maps"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Config keys.
const (
	KeyConsumerKey    = "consumer-key"
	KeyConsumerSecret = "consumer-secret"
	KeyAPIURL         = "api-url"
	KeyAuthMode       = "auth-mode"
	KeyTokenURL       = "token-url"
	KeyScopes         = "scopes"
	KeyTimeout        = "timeout"
	KeyUserAgent      = "user-agent"
	KeyRegion         = "region"
	KeyLanguage       = "language"
	KeyRateLimit      = "rate-limit"
)

// Environment variable fallbacks.
const (
	EnvConsumerKey    = "FATSECRET_CONSUMER_KEY"
	EnvConsumerSecret = "FATSECRET_CONSUMER_SECRET"
	EnvAPIURL         = "FATSECRET_API_URL"
	EnvAuthMode       = "FATSECRET_AUTH_MODE"
	EnvTokenURL       = "FATSECRET_TOKEN_URL"
	EnvScopes         = "FATSECRET_SCOPES"
	EnvTimeout        = "FATSECRET_TIMEOUT"
	EnvUserAgent      = "FATSECRET_USER_AGENT"
	EnvRegion         = "FATSECRET_REGION"
	EnvLanguage       = "FATSECRET_LANGUAGE"
	EnvRateLimit      = "FATSECRET_RATE_LIMIT"
)

// AuthMode selects how requests are authenticated.
type AuthMode string

// Supported authentication modes.
const (
	// AuthOAuth1 signs every request with the consumer key pair.
	AuthOAuth1 AuthMode = "oauth1"
	// AuthOAuth2 exchanges the key pair for a bearer token (client credentials).
	AuthOAuth2 AuthMode = "oauth2"
)

// Sentinel errors.
var (
	ErrCredentialsMissing = errors.New("FatSecret credentials not configured")
	ErrInvalidSyntax      = errors.New("invalid config syntax")
	ErrInvalidValue       = errors.New("invalid config value")
	ErrUnknownKey         = errors.New("unknown config key")
)

// keyEnv maps every known key to its environment fallback.
var keyEnv = map[string]string{
	KeyConsumerKey:    EnvConsumerKey,
	KeyConsumerSecret: EnvConsumerSecret,
	KeyAPIURL:         EnvAPIURL,
	KeyAuthMode:       EnvAuthMode,
	KeyTokenURL:       EnvTokenURL,
	KeyScopes:         EnvScopes,
	KeyTimeout:        EnvTimeout,
	KeyUserAgent:      EnvUserAgent,
	KeyRegion:         EnvRegion,
	KeyLanguage:       EnvLanguage,
	KeyRateLimit:      EnvRateLimit,
}

// Config holds user configuration loaded from ~/.config/go-fatsecret/config.
// Zero values mean "use the client default".
type Config struct {
	ConsumerKey    string
	ConsumerSecret string
	APIURL         string
	AuthMode       AuthMode
	TokenURL       string
	Scopes         []string
	Timeout        time.Duration
	UserAgent      string

	// RateLimit caps outgoing calls per second; zero means unlimited.
	RateLimit float64

	// Region and Language are defaults for search commands.
	Region   string
	Language string
}

// Validate reports missing credentials and malformed values.
func (c Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.ConsumerKey) == "" {
		missing = append(missing, EnvConsumerKey)
	}
	if strings.TrimSpace(c.ConsumerSecret) == "" {
		missing = append(missing, EnvConsumerSecret)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: set %s or run 'fatsecret config set'", ErrCredentialsMissing, strings.Join(missing, " and "))
	}
	switch c.AuthMode {
	case "", AuthOAuth1, AuthOAuth2:
	default:
		return fmt.Errorf("%w: auth-mode %q (use %s or %s)", ErrInvalidValue, c.AuthMode, AuthOAuth1, AuthOAuth2)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidValue, c.Timeout)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("%w: rate-limit must not be negative, got %g", ErrInvalidValue, c.RateLimit)
	}
	return nil
}

// Mode returns the configured auth mode, defaulting to OAuth1.
func (c Config) Mode() AuthMode {
	if c.AuthMode == "" {
		return AuthOAuth1
	}
	return c.AuthMode
}

// dir returns the configuration directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/go-fatsecret.
func dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "go-fatsecret"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "go-fatsecret"), nil
}

// Path returns the full path to the config file.
func Path() (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "config"), nil
}

// Load reads the configuration file and environment variables.
// Precedence: config file values, then environment variable fallbacks.
// Returns an empty Config if the file doesn't exist (not an error).
func Load() (Config, error) {
	var cfg Config

	p, err := Path()
	if err != nil {
		return cfg, err
	}

	data, err := parseFile(p)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		data = make(map[string]string)
	}

	// Environment variable fallback (only if not set in config).
	for key, env := range keyEnv {
		if data[key] == "" {
			if v := strings.TrimSpace(os.Getenv(env)); v != "" {
				data[key] = v
			}
		}
	}

	cfg.ConsumerKey = data[KeyConsumerKey]
	cfg.ConsumerSecret = data[KeyConsumerSecret]
	cfg.APIURL = data[KeyAPIURL]
	cfg.AuthMode = AuthMode(strings.ToLower(data[KeyAuthMode]))
	cfg.TokenURL = data[KeyTokenURL]
	cfg.Scopes = ParseScopes(data[KeyScopes])
	cfg.UserAgent = data[KeyUserAgent]
	cfg.Region = data[KeyRegion]
	cfg.Language = data[KeyLanguage]

	if v := data[KeyTimeout]; v != "" {
		d, err := ParseTimeout(v)
		if err != nil {
			return cfg, err
		}
		cfg.Timeout = d
	}
	if v := data[KeyRateLimit]; v != "" {
		rps, err := ParseRateLimit(v)
		if err != nil {
			return cfg, err
		}
		cfg.RateLimit = rps
	}

	return cfg, nil
}

// ParseScopes splits a space or comma separated scope list.
func ParseScopes(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// ParseTimeout accepts a Go duration ("15s", "1m") or whole seconds ("15").
func ParseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	d, err := time.ParseDuration(s)
	if err != nil {
		d, err = time.ParseDuration(s + "s")
	}
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: timeout %q (use a duration such as 30s)", ErrInvalidValue, s)
	}
	return d, nil
}

// ParseRateLimit accepts requests per second ("5", "0.5"); "0" disables
// throttling.
func ParseRateLimit(s string) (float64, error) {
	s = strings.TrimSpace(s)
	rps, err := strconv.ParseFloat(s, 64)
	if err != nil || rps < 0 || math.IsInf(rps, 0) || math.IsNaN(rps) {
		return 0, fmt.Errorf("%w: rate-limit %q (use requests per second such as 5)", ErrInvalidValue, s)
	}
	return rps, nil
}

// parseFile reads a key=value config file.
// Format: one key=value per line, # comments, empty lines ignored.
func parseFile(p string) (map[string]string, error) {
	f, err := os.Open(p) // #nosec G304 -- config path is constructed from home dir
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data := make(map[string]string)
	scanner := bufio.NewScanner(f)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("%w at line %d: %q", ErrInvalidSyntax, lineNum, line)
		}
		data[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return data, nil
}

// Save writes a single key=value to the config file.
// Creates the config directory and file if they don't exist.
// Preserves existing key=value pairs but discards comments.
func Save(key, value string) error {
	if !IsKnownKey(key) {
		return fmt.Errorf("%w: %q (valid keys: %s)", ErrUnknownKey, key, strings.Join(Keys(), ", "))
	}
	if err := validateValue(key, value); err != nil {
		return err
	}

	p, err := Path()
	if err != nil {
		return err
	}

	// Ensure config directory exists.
	if err := os.MkdirAll(filepath.Dir(p), 0750); err != nil { // #nosec G301 -- user config dir
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	existing, err := parseFile(p)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if existing == nil {
		existing = make(map[string]string)
	}

	existing[key] = value
	return writeFile(p, existing)
}

func validateValue(key, value string) error {
	switch key {
	case KeyAuthMode:
		switch AuthMode(strings.ToLower(value)) {
		case AuthOAuth1, AuthOAuth2:
		default:
			return fmt.Errorf("%w: auth-mode %q (use %s or %s)", ErrInvalidValue, value, AuthOAuth1, AuthOAuth2)
		}
	case KeyTimeout:
		if _, err := ParseTimeout(value); err != nil {
			return err
		}
	case KeyRateLimit:
		if _, err := ParseRateLimit(value); err != nil {
			return err
		}
	}
	return nil
}

// writeFile writes the config map to a file, keys sorted.
// The file holds the consumer secret, so it is private to the user.
func writeFile(p string, data map[string]string) error {
	f, err := os.OpenFile(p, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600) // #nosec G304 -- path from home dir
	if err != nil {
		return fmt.Errorf("cannot write config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	for _, key := range slices.Sorted(maps.Keys(data)) {
		if _, err := fmt.Fprintf(f, "%s=%s\n", key, data[key]); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	return nil
}

// Get reads a single value from the config file.
// Returns empty string if the key doesn't exist.
func Get(key string) (string, error) {
	p, err := Path()
	if err != nil {
		return "", err
	}

	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	return data[key], nil
}

// List returns all config values as a map.
func List() (map[string]string, error) {
	p, err := Path()
	if err != nil {
		return nil, err
	}

	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}

	return data, nil
}

// Keys returns every known config key, sorted.
func Keys() []string {
	return slices.Sorted(maps.Keys(keyEnv))
}

// IsKnownKey reports whether key is a recognized config key.
func IsKnownKey(key string) bool {
	_, ok := keyEnv[key]
	return ok
}

// EnvFor returns the environment fallback of key, or "".
func EnvFor(key string) string {
	return keyEnv[key]
}

// IsSecret reports whether key holds a credential.
func IsSecret(key string) bool {
	return key == KeyConsumerKey || key == KeyConsumerSecret
}

// Mask hides all but the last four characters of a secret.
func Mask(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 4 {
		return "****"
	}
	return strings.Repeat("*", 4) + value[len(value)-4:]
}
