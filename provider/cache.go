package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/rustyeddy/marketlab/market"
)

var ErrCacheMiss = errors.New("cache: key not found")

// Cache stores JSON-encodable values with a TTL.
type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// ============================================================================
// MEMORY
// ============================================================================

type memoryItem struct {
	data     []byte
	expireAt time.Time
}

// MemoryCache is a mutex-guarded map with per-entry expiry. Expired
// entries are dropped on read.
type MemoryCache struct {
	mu   sync.Mutex
	data map[string]memoryItem
	now  func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string]memoryItem), now: time.Now}
}

func (m *MemoryCache) Get(_ context.Context, key string, dest any) error {
	m.mu.Lock()
	item, ok := m.data[key]
	if ok && m.now().After(item.expireAt) {
		delete(m.data, key)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(item.data, dest)
}

func (m *MemoryCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = memoryItem{data: b, expireAt: m.now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired or not.
func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

// ============================================================================
// REDIS
// ============================================================================

// RedisCache stores JSON values in Redis.
type RedisCache struct {
	rdb redis.Cmdable
}

func NewRedisCache(rdb redis.Cmdable) *RedisCache {
	return &RedisCache{rdb: rdb}
}

// DialRedis connects and pings a Redis server.
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func (c *RedisCache) Get(ctx context.Context, key string, dest any) error {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return err
	}
	if err := json.Unmarshal(b, dest); err != nil {
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
		return ErrCacheMiss
	}
	return nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, ttl).Err()
}

// ============================================================================
// DECORATOR
// ============================================================================

// Cached decorates a MarketData with cache-aside reads. Cache failures are
// logged and never fail the read.
type Cached struct {
	inner     MarketData
	cache     Cache
	ttl       time.Duration
	namespace string
	log       zerolog.Logger
}

// NewCached wraps inner. A ttl of 0 falls back to 5 minutes and an empty
// namespace to "marketlab".
func NewCached(inner MarketData, cache Cache, ttl time.Duration, namespace string, log zerolog.Logger) *Cached {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "marketlab"
	}
	return &Cached{inner: inner, cache: cache, ttl: ttl, namespace: namespace, log: log}
}

func (c *Cached) key(parts ...string) string {
	for i, p := range parts {
		parts[i] = safe(p)
	}
	return c.namespace + ":" + strings.Join(parts, ":")
}

func (c *Cached) Series(ctx context.Context, symbol string, tf market.Timeframe) ([]market.Candle, error) {
	key := c.key("series", symbol, string(tf))
	var out []market.Candle
	if err := c.cache.Get(ctx, key, &out); err == nil {
		return out, nil
	} else if !errors.Is(err, ErrCacheMiss) {
		c.log.Warn().Err(err).Str("key", key).Msg("cache get failed")
	}

	out, err := c.inner.Series(ctx, symbol, tf)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, out)
	return out, nil
}

func (c *Cached) Snapshot(ctx context.Context, symbol string) (market.Snapshot, error) {
	key := c.key("snapshot", symbol)
	var out market.Snapshot
	if err := c.cache.Get(ctx, key, &out); err == nil {
		return out, nil
	} else if !errors.Is(err, ErrCacheMiss) {
		c.log.Warn().Err(err).Str("key", key).Msg("cache get failed")
	}

	out, err := c.inner.Snapshot(ctx, symbol)
	if err != nil {
		return market.Snapshot{}, err
	}
	c.store(ctx, key, out)
	return out, nil
}

func (c *Cached) ActiveSymbols(ctx context.Context) ([]string, error) {
	key := c.key("active")
	var out []string
	if err := c.cache.Get(ctx, key, &out); err == nil {
		return out, nil
	} else if !errors.Is(err, ErrCacheMiss) {
		c.log.Warn().Err(err).Str("key", key).Msg("cache get failed")
	}

	out, err := c.inner.ActiveSymbols(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, out)
	return out, nil
}

func (c *Cached) store(ctx context.Context, key string, v any) {
	if err := c.cache.Set(ctx, key, v, c.ttl); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
