package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrCacheMiss is returned by CacheHandlerI.Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// CacheHandlerI is implemented by the Redis handler and by MemoryCache.
type CacheHandlerI interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, result interface{}) error
	Delete(ctx context.Context, key string) error
}

type cacheEntry struct {
	data       []byte
	cachedAt   time.Time
	expiration time.Time
}

// MemoryCache is an in-process CacheHandlerI. Values are stored JSON encoded
// so callers observe the same copy semantics as with Redis.
type MemoryCache struct {
	entries map[string]cacheEntry
	mutex   sync.RWMutex
	now     func() time.Time
}

// NewMemoryCache initializes an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Set stores value under key until expiration elapses. A zero expiration
// never expires.
func (c *MemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize value: %w", err)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	entry := cacheEntry{data: data, cachedAt: now}
	if expiration > 0 {
		entry.expiration = now.Add(expiration)
	}
	c.entries[key] = entry
	return nil
}

// Get decodes the value stored under key into result.
func (c *MemoryCache) Get(_ context.Context, key string, result interface{}) error {
	c.mutex.RLock()
	entry, ok := c.entries[key]
	c.mutex.RUnlock()

	if !ok {
		return ErrCacheMiss
	}
	if !entry.expiration.IsZero() && c.now().After(entry.expiration) {
		c.mutex.Lock()
		delete(c.entries, key)
		c.mutex.Unlock()
		return ErrCacheMiss
	}
	if err := json.Unmarshal(entry.data, result); err != nil {
		return fmt.Errorf("failed to deserialize value: %w", err)
	}
	return nil
}

// Delete removes key from the cache.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.entries, key)
	return nil
}

// Clear removes every cached value.
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]cacheEntry)
}

// GenerateCacheKey builds a deterministic key (UUID v5) under prefix from parts.
func GenerateCacheKey(prefix string, parts ...string) string {
	namespace := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8") // DNS namespace
	return prefix + ":" + uuid.NewSHA1(namespace, []byte(strings.Join(parts, "|"))).String()
}
