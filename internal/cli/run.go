package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-fatsecret/internal/apierr"
	"github.com/alnah/go-fatsecret/internal/config"
	"github.com/alnah/go-fatsecret/internal/fatsecret"
)

const (
	// MaxRetries caps --retries.
	MaxRetries = 5

	// MaxParallel caps --parallel for batch lookups.
	MaxParallel = 8

	// retryBaseDelay and retryMaxDelay bound the backoff between retries.
	retryBaseDelay = 500 * time.Millisecond
	retryMaxDelay  = 8 * time.Second
)

// RegisterGlobalFlags binds the persistent flags shared by every command.
func RegisterGlobalFlags(root *cobra.Command, env *Env) {
	flags := root.PersistentFlags()
	flags.BoolVar(&env.JSON, "json", false, "Print results as JSON")
	flags.IntVar(&env.Retries, "retries", 0, "Retry rate-limited or failed requests up to N times (0-5)")
	flags.DurationVar(&env.Timeout, "timeout", 0, "Per-request timeout (default from config, else 30s)")
	flags.StringVar(&env.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this file on exit")
}

// clampParallel constrains parallel request count to valid range [1, MaxParallel].
func clampParallel(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxParallel {
		return MaxParallel
	}
	return n
}

// session is a loaded config plus an open client for one command run.
type session struct {
	env    *Env
	cfg    config.Config
	client API
}

// openSession loads configuration, applies flag overrides and creates a
// client. The caller must Close the returned session.
func openSession(env *Env) (*session, error) {
	if env.Retries < 0 || env.Retries > MaxRetries {
		return nil, fmt.Errorf("%w: --retries must be between 0 and %d, got %d", ErrInvalidFlag, MaxRetries, env.Retries)
	}
	if env.Timeout < 0 {
		return nil, fmt.Errorf("%w: --timeout must be positive, got %s", ErrInvalidFlag, env.Timeout)
	}

	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		return nil, err
	}
	if env.Timeout > 0 {
		cfg.Timeout = env.Timeout
	}

	client, err := env.ClientFactory.NewClient(cfg, env.Logger)
	if err != nil {
		return nil, err
	}
	return &session{env: env, cfg: cfg, client: client}, nil
}

// Close releases the client and writes --metrics-file. A metrics write
// failure is reported on stderr and never fails the command.
func (s *session) Close() error {
	err := s.client.Close()
	if s.env != nil && s.env.MetricsFile != "" && s.env.Metrics != nil {
		if werr := prometheus.WriteToTextfile(s.env.MetricsFile, s.env.Metrics); werr != nil {
			fmt.Fprintf(s.env.Stderr, "Warning: cannot write metrics: %v\n", werr)
		}
	}
	return err
}

// searchOptions merges flag values with configured defaults.
func (s *session) searchOptions(region, language string) []fatsecret.SearchOption {
	if region == "" {
		region = s.cfg.Region
	}
	if language == "" {
		language = s.cfg.Language
	}
	var opts []fatsecret.SearchOption
	if region != "" {
		opts = append(opts, fatsecret.Region(region))
	}
	if language != "" {
		opts = append(opts, fatsecret.Language(language))
	}
	return opts
}

// withRetry runs fn, retrying rate limits and transport failures when
// --retries is set.
func withRetry[T any](ctx context.Context, env *Env, fn func() (T, error)) (T, error) {
	return apierr.RetryWithBackoff(ctx, apierr.RetryConfig{
		MaxRetries: env.Retries,
		BaseDelay:  retryBaseDelay,
		MaxDelay:   retryMaxDelay,
		OnRetry: func(attempt int, err error) {
			fmt.Fprintf(env.Stderr, "Retrying (%d/%d) after error: %v\n", attempt, env.Retries, err)
		},
	}, fn, nil)
}

// fetchAll fetches every id with at most parallel requests in flight and
// returns results in input order. The first failure cancels the rest.
func fetchAll[T any](ctx context.Context, env *Env, ids []string, parallel int, fetch func(ctx context.Context, id string) (T, error)) ([]T, error) {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, id)
		}
		seen[id] = true
	}

	results := make([]T, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(clampParallel(parallel))

	for i, id := range ids {
		g.Go(func() error {
			r, err := withRetry(gctx, env, func() (T, error) {
				return fetch(gctx, id)
			})
			if err != nil {
				return fmt.Errorf("%s: %w", id, err)
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
