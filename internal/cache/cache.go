// Package cache memoizes idempotent remote reads in a key-value store.
//
// Entries are never evicted proactively: an entry older than its TTL is
// treated as a miss on the next read and overwritten by the fresh value.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Rob-Bauman/movie-tracker/internal/domain"
)

// DefaultTTL is used when a non-positive TTL is requested
const DefaultTTL = 24 * time.Hour

// entry is the persisted envelope; Timestamp is epoch milliseconds.
type entry struct {
	Value     json.RawMessage `json:"value"`
	Timestamp int64           `json:"timestamp"`
}

// Cache is a read-through TTL cache over a domain.KVStore.
type Cache struct {
	store  domain.KVStore
	prefix string
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Cache
type Option func(*Cache)

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithTTL overrides DefaultTTL
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a cache whose keys all start with prefix (used by Purge).
func New(store domain.KVStore, prefix string, opts ...Option) *Cache {
	c := &Cache{
		store:  store,
		prefix: prefix,
		ttl:    DefaultTTL,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the default time-to-live
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Key joins the cache prefix with an operation namespace and its normalized parameters.
func (c *Cache) Key(namespace string, params ...any) string {
	key := c.prefix + namespace + ":"
	for i, p := range params {
		if i > 0 {
			key += "_"
		}
		key += fmt.Sprint(p)
	}
	return key
}

// Purge removes every entry under the cache prefix
func (c *Cache) Purge(ctx context.Context) error {
	if err := c.store.DeletePrefix(ctx, c.prefix); err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}
	c.logger.Info("purged api cache", "prefix", c.prefix)
	return nil
}

// lookup returns the cached value when it is younger than ttl.
// A decode or storage failure is returned as an error so the caller can bypass the cache.
func (c *Cache) lookup(ctx context.Context, key string, ttl time.Duration, dest any) (bool, error) {
	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return false, err
	}
	if c.now().UnixMilli()-e.Timestamp >= ttl.Milliseconds() {
		return false, nil
	}
	if err := json.Unmarshal(e.Value, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) put(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	data, err := json.Marshal(entry{Value: raw, Timestamp: c.now().UnixMilli()})
	if err != nil {
		return err
	}
	return c.store.Set(ctx, key, data)
}

// GetOrFetch returns the cached value for key if it is fresh; otherwise it calls
// fetch, stores the result with the current timestamp and returns it.
// A ttl <= 0 uses the cache's default. Errors from fetch are returned unchanged
// and nothing is stored. A failing lookup falls back to fetch directly.
func GetOrFetch[T any](
	ctx context.Context,
	c *Cache,
	key string,
	ttl time.Duration,
	fetch func(ctx context.Context) (T, error),
) (T, error) {
	if ttl <= 0 {
		ttl = c.ttl
	}

	var cached T
	hit, err := c.lookup(ctx, key, ttl, &cached)
	if err != nil {
		c.logger.Warn("cache lookup failed, fetching directly", "key", key, "error", err)
		return fetch(ctx)
	}
	if hit {
		c.logger.Debug("cache hit", "key", key)
		return cached, nil
	}

	value, err := fetch(ctx)
	if err != nil {
		return value, err
	}

	if err := c.put(ctx, key, value); err != nil {
		c.logger.Warn("failed to store cache entry", "key", key, "error", err)
	}
	return value, nil
}
