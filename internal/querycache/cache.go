package querycache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Resource keys shared by the views that read and the mutations that invalidate.
const (
	KeyFlocks          = "flocks"
	KeyInventoryItems  = "inventory-items"
	KeyChartOfAccounts = "chart-of-accounts"
	KeyDashboardStats  = "dashboard-stats"
)

// DefaultStaleTime is how long a fetched result is served before refetching.
const DefaultStaleTime = 5 * time.Minute

// Backend stores encoded query results with a time-to-live.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Purge(ctx context.Context) error
}

// Cache de-duplicates identical in-flight queries by resource key and serves
// results for up to the stale time.
type Cache struct {
	backend   Backend
	staleTime time.Duration
	group     singleflight.Group
	logger    *zap.Logger

	mu          sync.Mutex
	generations map[string]uint64
}

// New wires a cache over a backend. A non-positive stale time uses DefaultStaleTime.
func New(backend Backend, staleTime time.Duration, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if staleTime <= 0 {
		staleTime = DefaultStaleTime
	}
	return &Cache{
		backend:     backend,
		staleTime:   staleTime,
		logger:      logger,
		generations: make(map[string]uint64),
	}
}

// Fetch returns the cached value for key, or runs fn once for all concurrent
// callers and caches its result. Errors are never cached.
func Fetch[T any](ctx context.Context, c *Cache, key string, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	if data, ok, err := c.backend.Get(ctx, key); err != nil {
		c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		var cached T
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
		c.logger.Warn("discarding undecodable cache entry", zap.String("key", key))
	}

	generation := c.generation(key)

	result, err, shared := c.group.Do(key, func() (any, error) {
		value, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		c.store(ctx, key, generation, value)
		return value, nil
	})
	if err != nil {
		return zero, err
	}

	value, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("cache key %s holds %T", key, result)
	}
	if shared {
		c.logger.Debug("query de-duplicated", zap.String("key", key))
	}
	return value, nil
}

// Invalidate drops the given keys so the next Fetch goes to the source.
// Results of fetches already in flight for those keys are not stored.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	for _, key := range keys {
		c.generations[key]++
		c.group.Forget(key)
	}
	c.mu.Unlock()

	if err := c.backend.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("invalidate %v: %w", keys, err)
	}
	return nil
}

// Purge drops every cached result.
func (c *Cache) Purge(ctx context.Context) error {
	c.mu.Lock()
	for key := range c.generations {
		c.generations[key]++
		c.group.Forget(key)
	}
	c.mu.Unlock()

	if err := c.backend.Purge(ctx); err != nil {
		return fmt.Errorf("purge cache: %w", err)
	}
	return nil
}

func (c *Cache) generation(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[key]
}

func (c *Cache) store(ctx context.Context, key string, generation uint64, value any) {
	if c.generation(key) != generation {
		c.logger.Debug("skip caching invalidated result", zap.String("key", key))
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.backend.Set(ctx, key, data, c.staleTime); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
