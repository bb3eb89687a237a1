package token

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/alnah/go-fatsecret/internal/apierr"
)

// DefaultAcquireTimeout bounds a single acquisition.
const DefaultAcquireTimeout = 30 * time.Second

const flightKey = "access_token"

// Cache shares one access token between concurrent callers.
//
// All reads and writes of the current token happen under mu. Acquisition is
// deduplicated through a singleflight.Group and runs on a context detached
// from the caller that started it, so a caller giving up affects only
// itself.
type Cache struct {
	src       Source
	now       func() time.Time
	buffer    time.Duration
	timeout   time.Duration
	logger    *slog.Logger
	onAcquire func(err error)

	mu      sync.Mutex
	current Token

	group singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock sets the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithExpiryBuffer sets how early a token is considered expired.
func WithExpiryBuffer(d time.Duration) Option {
	return func(c *Cache) {
		if d >= 0 {
			c.buffer = d
		}
	}
}

// WithAcquireTimeout bounds each acquisition.
func WithAcquireTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger for acquisition events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithOnAcquire registers a hook called after every acquisition attempt
// with its outcome.
func WithOnAcquire(fn func(err error)) Option {
	return func(c *Cache) {
		c.onAcquire = fn
	}
}

// NewCache creates a Cache backed by src.
func NewCache(src Source, opts ...Option) *Cache {
	c := &Cache{
		src:     src,
		now:     time.Now,
		buffer:  DefaultExpiryBuffer,
		timeout: DefaultAcquireTimeout,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns a valid token, acquiring one if needed. Callers that arrive
// while an acquisition is in flight wait for it instead of starting another.
// If ctx ends first, Token returns a transport error and the acquisition
// carries on for the remaining waiters.
func (c *Cache) Token(ctx context.Context) (Token, error) {
	if tok, ok := c.cached(); ok {
		return tok, nil
	}
	if err := ctx.Err(); err != nil {
		return Token{}, apierr.Transport("await access token", 0, err)
	}

	ch := c.group.DoChan(flightKey, func() (any, error) {
		return c.acquire(ctx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return Token{}, res.Err
		}
		return res.Val.(Token), nil
	case <-ctx.Done():
		return Token{}, apierr.Transport("await access token", 0, ctx.Err())
	}
}

// Invalidate drops the cached token if it is still stale. A token that was
// already replaced by a newer acquisition is left alone.
func (c *Cache) Invalidate(stale string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current.Value != "" && c.current.Value == stale {
		c.current = Token{}
		c.logger.Debug("access token invalidated")
	}
}

// Close closes the source if it holds resources.
func (c *Cache) Close() error {
	if closer, ok := c.src.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Peek returns the cached token without acquiring, and whether it is valid.
func (c *Cache) Peek() (Token, bool) {
	return c.cached()
}

func (c *Cache) cached() (Token, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current.Valid(c.now(), c.buffer) {
		return c.current, true
	}
	return Token{}, false
}

// acquire runs inside the single flight. It re-checks the cache because a
// caller may have missed the previous flight's publication by a hair.
func (c *Cache) acquire(parent context.Context) (Token, error) {
	if tok, ok := c.cached(); ok {
		return tok, nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), c.timeout)
	defer cancel()

	start := c.now()
	tok, err := c.src.Token(ctx)
	if err == nil && tok.Value == "" {
		err = apierr.New(apierr.KindAuthentication, "token endpoint returned an empty access token")
	}
	if err != nil {
		if _, ok := apierr.KindOf(err); !ok {
			err = apierr.Transport("acquire access token", 0, err)
		}
	}
	if c.onAcquire != nil {
		c.onAcquire(err)
	}
	if err != nil {
		c.logger.Warn("access token acquisition failed", "error", err)
		return Token{}, err
	}

	c.mu.Lock()
	c.current = tok
	c.mu.Unlock()

	c.logger.Debug("access token acquired",
		"expires_at", tok.Expiry,
		"duration_ms", c.now().Sub(start).Milliseconds(),
	)
	return tok, nil
}
