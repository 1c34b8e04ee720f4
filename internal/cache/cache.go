// Package cache stores finished analyses so identical uploads for the same
// role skip the model calls.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"hirelens/internal/types"

	"github.com/redis/go-redis/v9"
)

// Cache is the byte-level cache interface. Implementations must be safe
// for concurrent use.
type Cache interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// RedisCache implements Cache using go-redis/v9.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new RedisCache from a Redis URL.
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	return &RedisCache{client: redis.NewClient(opts)}, nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// MemoryCache is an in-process Cache with per-entry expiry
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// NewMemoryCache creates an empty in-process cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.entries[key] = e
	return nil
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *MemoryCache) Ping(context.Context) error { return nil }

func (c *MemoryCache) Close() error { return nil }

// AnalysisKey derives the cache key for a document and target role. Role
// comparison ignores case and surrounding space.
func AnalysisKey(prefix string, content []byte, role string) string {
	doc := sha256.Sum256(content)
	r := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(role))))
	return fmt.Sprintf("%sanalysis:%s:%s", prefix, hex.EncodeToString(doc[:]), hex.EncodeToString(r[:8]))
}

// AnalysisCache stores ResumeAnalysis records as JSON
type AnalysisCache struct {
	cache  Cache
	ttl    time.Duration
	prefix string
}

// NewAnalysisCache wraps c. A zero ttl keeps entries until evicted.
func NewAnalysisCache(c Cache, ttl time.Duration, prefix string) *AnalysisCache {
	return &AnalysisCache{cache: c, ttl: ttl, prefix: prefix}
}

// Get returns the cached analysis for content and role, if any
func (a *AnalysisCache) Get(ctx context.Context, content []byte, role string) (*types.ResumeAnalysis, bool, error) {
	raw, ok, err := a.cache.Get(ctx, AnalysisKey(a.prefix, content, role))
	if err != nil || !ok {
		return nil, false, err
	}
	var analysis types.ResumeAnalysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		return nil, false, fmt.Errorf("decode cached analysis: %w", err)
	}
	return &analysis, true, nil
}

// Put stores analysis under content and role
func (a *AnalysisCache) Put(ctx context.Context, content []byte, role string, analysis *types.ResumeAnalysis) error {
	raw, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	return a.cache.Set(ctx, AnalysisKey(a.prefix, content, role), raw, a.ttl)
}

// Close closes the underlying cache
func (a *AnalysisCache) Close() error {
	return a.cache.Close()
}
