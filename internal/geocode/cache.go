package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache stores geocoding results by key.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string) error
}

// RedisCache keeps results in Redis with an expiry.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to the Redis server at addr. A zero ttl keeps
// entries forever.
func NewRedisCache(addr string, ttl time.Duration) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisCache{client: rdb, ttl: ttl}
}

// Ping checks the connection.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

// Get returns the cached value for key.
func (r *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// Set stores value under key.
func (r *RedisCache) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, key, value, r.ttl).Err()
}

// MemoryCache is a process-local Cache.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string]string)}
}

// Get returns the cached value for key.
func (m *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.data[key]
	return val, ok
}

// Set stores value under key.
func (m *MemoryCache) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Len returns the number of entries.
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Cached wraps a Geocoder with a Cache. Only successful lookups are
// cached.
type Cached struct {
	next  Geocoder
	cache Cache
	log   *zap.Logger
}

// NewCached returns a caching Geocoder.
func NewCached(next Geocoder, cache Cache, log *zap.Logger) *Cached {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cached{next: next, cache: cache, log: log}
}

// CacheKey normalises a city and country into a cache key.
func CacheKey(city, country string) string {
	norm := func(s string) string { return strings.ToLower(strings.Join(strings.Fields(s), " ")) }
	return "geocode:" + norm(country) + "|" + norm(city)
}

// Geocode serves from the cache when possible.
func (c *Cached) Geocode(ctx context.Context, city, country string) (Location, error) {
	key := CacheKey(city, country)
	if raw, ok := c.cache.Get(ctx, key); ok {
		var loc Location
		if err := json.Unmarshal([]byte(raw), &loc); err == nil {
			c.log.Debug("geocode cache hit", zap.String("key", key))
			return loc, nil
		}
	}

	loc, err := c.next.Geocode(ctx, city, country)
	if err != nil {
		return Location{}, err
	}

	raw, err := json.Marshal(loc)
	if err != nil {
		return loc, nil
	}
	if err := c.cache.Set(ctx, key, string(raw)); err != nil && !errors.Is(err, context.Canceled) {
		c.log.Warn("geocode cache write failed", zap.String("key", key), zap.Error(err))
	}
	return loc, nil
}
