package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/alnah/go-fatsecret/internal/config"
	"github.com/alnah/go-fatsecret/internal/fatsecret"
	"github.com/alnah/go-fatsecret/internal/httpclient"
	"github.com/alnah/go-fatsecret/internal/log"
	"github.com/alnah/go-fatsecret/internal/metrics"
	"github.com/alnah/go-fatsecret/internal/model"
	"github.com/alnah/go-fatsecret/internal/oauth1"
	"github.com/alnah/go-fatsecret/internal/token"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// All fields have sensible defaults via DefaultEnv(). Tests can override
// specific fields using the With* options or by creating a custom Env.
//
// Env must not be nil when passed to command functions. Use DefaultEnv()
// or NewEnv() to create a valid instance.
type Env struct {
	// I/O and environment
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string
	Now    func() time.Time
	Logger *slog.Logger

	// Factories for domain objects
	ConfigLoader  ConfigLoader
	ClientFactory ClientFactory

	// Metrics is written to MetricsFile when a session closes.
	Metrics prometheus.Gatherer

	// Global flags, bound by RegisterGlobalFlags.
	JSON        bool
	Retries     int
	Timeout     time.Duration
	MetricsFile string
}

// API is the subset of *fatsecret.Client used by commands.
type API interface {
	SearchFoods(ctx context.Context, query string, page, maxResults int, opts ...fatsecret.SearchOption) (*model.FoodSearchResult, error)
	GetFood(ctx context.Context, foodID string) (*model.Food, error)
	LookupBarcode(ctx context.Context, barcode string) (*model.Food, error)
	SearchRecipes(ctx context.Context, query string, page, maxResults int, opts ...fatsecret.SearchOption) (*model.RecipeSearchResult, error)
	GetRecipe(ctx context.Context, recipeID string) (*model.Recipe, error)
	Close() error
}

// ConfigLoader loads and provides access to configuration.
type ConfigLoader interface {
	Load() (config.Config, error)
}

// ClientFactory creates API clients from configuration.
type ClientFactory interface {
	NewClient(cfg config.Config, logger *slog.Logger) (API, error)
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stdout = w
	}
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) {
		e.Getenv = fn
	}
}

// WithNow sets the time provider.
func WithNow(fn func() time.Time) EnvOption {
	return func(e *Env) {
		e.Now = fn
	}
}

// WithLogger sets the logger handed to API clients.
func WithLogger(l *slog.Logger) EnvOption {
	return func(e *Env) {
		e.Logger = l
	}
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) {
		e.ConfigLoader = l
	}
}

// WithClientFactory sets the API client factory.
func WithClientFactory(f ClientFactory) EnvOption {
	return func(e *Env) {
		e.ClientFactory = f
	}
}

// WithMetrics sets the gatherer written by --metrics-file.
func WithMetrics(g prometheus.Gatherer) EnvOption {
	return func(e *Env) {
		e.Metrics = g
	}
}

// DefaultEnv returns an Env with production defaults. Clients record into
// a private registry so that --metrics-file only holds client metrics.
func DefaultEnv() *Env {
	reg := prometheus.NewRegistry()
	return &Env{
		Stdout:        os.Stdout,
		Stderr:        os.Stderr,
		Getenv:        os.Getenv,
		Now:           time.Now,
		Logger:        log.Discard(),
		ConfigLoader:  &defaultConfigLoader{},
		ClientFactory: &defaultClientFactory{metrics: metrics.NewCollector(reg)},
		Metrics:       reg,
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// defaultConfigLoader implements ConfigLoader using the config package.
type defaultConfigLoader struct{}

func (defaultConfigLoader) Load() (config.Config, error) {
	return config.Load()
}

// defaultClientFactory builds a *fatsecret.Client with the authenticator
// selected by cfg.AuthMode. A nil metrics collector records nothing.
type defaultClientFactory struct {
	metrics *metrics.Collector
}

func (f defaultClientFactory) NewClient(cfg config.Config, logger *slog.Logger) (API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Discard()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = fatsecret.DefaultTimeout
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = httpclient.DefaultUserAgent
	}

	auth, err := newAuthenticator(cfg, timeout, userAgent, logger, f.metrics)
	if err != nil {
		return nil, err
	}

	client, err := fatsecret.New(auth,
		fatsecret.WithBaseURL(cfg.APIURL),
		fatsecret.WithTimeout(timeout),
		fatsecret.WithUserAgent(userAgent),
		fatsecret.WithLogger(log.WithComponent(logger, "client")),
		fatsecret.WithMetrics(f.metrics),
		fatsecret.WithRateLimit(cfg.RateLimit, 1),
	)
	if err != nil {
		if closer, ok := auth.(io.Closer); ok {
			_ = closer.Close()
		}
		return nil, err
	}
	return client, nil
}

func newAuthenticator(cfg config.Config, timeout time.Duration, userAgent string, logger *slog.Logger, collector *metrics.Collector) (fatsecret.Authenticator, error) {
	if cfg.Mode() != config.AuthOAuth2 {
		signer, err := oauth1.NewSigner(oauth1.Credentials{
			ConsumerKey:    cfg.ConsumerKey,
			ConsumerSecret: cfg.ConsumerSecret,
		})
		if err != nil {
			return nil, err
		}
		return fatsecret.NewOAuth1Authenticator(signer), nil
	}

	tokenLogger := log.WithComponent(logger, "token")
	hc, err := httpclient.New(httpclient.Config{
		Timeout:   timeout,
		UserAgent: userAgent,
		Logger:    tokenLogger,
	})
	if err != nil {
		return nil, err
	}
	src, err := token.NewClientCredentials(token.ClientCredentialsConfig{
		ClientID:     cfg.ConsumerKey,
		ClientSecret: cfg.ConsumerSecret,
		TokenURL:     cfg.TokenURL,
		Scopes:       cfg.Scopes,
	}, hc)
	if err != nil {
		return nil, err
	}
	cache := token.NewCache(src,
		token.WithAcquireTimeout(timeout),
		token.WithLogger(tokenLogger),
		token.WithOnAcquire(collector.ObserveTokenAcquisition),
	)
	return fatsecret.NewTokenAuthenticator(cache), nil
}

// Compile-time interface verification.
var (
	_ ConfigLoader  = (*defaultConfigLoader)(nil)
	_ ClientFactory = (*defaultClientFactory)(nil)
	_ API           = (*fatsecret.Client)(nil)
)
