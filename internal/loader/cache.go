package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DocumentTTL is how long a cached copy stays usable as a fallback
const DocumentTTL = 24 * time.Hour

// DocumentCache stores the last good copy of each document
type DocumentCache interface {
	Get(ctx context.Context, name string) (map[string]interface{}, bool, error)
	Put(ctx context.Context, name string, doc map[string]interface{}) error
}

// MemoryCache is a process-local DocumentCache. Entries do not expire.
type MemoryCache struct {
	docs map[string][]byte
	mu   sync.RWMutex
}

// NewMemoryCache creates an empty cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{docs: make(map[string][]byte)}
}

// Get decodes a fresh copy so callers cannot alias the cached document
func (c *MemoryCache) Get(ctx context.Context, name string) (map[string]interface{}, bool, error) {
	c.mu.RLock()
	data, ok := c.docs[name]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, false, fmt.Errorf("decoding cached %s: %w", name, err)
	}
	return doc, true, nil
}

// Put stores doc
func (c *MemoryCache) Put(ctx context.Context, name string, doc map[string]interface{}) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", name, err)
	}

	c.mu.Lock()
	c.docs[name] = data
	c.mu.Unlock()
	return nil
}

// RedisCache keeps documents under dashboard:data:<name> with a TTL
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisCache creates a Redis-backed cache; ttl <= 0 selects DocumentTTL
func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DocumentTTL
	}
	return &RedisCache{
		client: client,
		ttl:    ttl,
	}
}

// CacheKey returns the Redis key for a document
func CacheKey(name string) string {
	return fmt.Sprintf("dashboard:data:%s", name)
}

// Get reads the cached copy
func (c *RedisCache) Get(ctx context.Context, name string) (map[string]interface{}, bool, error) {
	data, err := c.client.Get(ctx, CacheKey(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", name, err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, false, fmt.Errorf("decoding cached %s: %w", name, err)
	}
	return doc, true, nil
}

// Put writes doc with the cache TTL
func (c *RedisCache) Put(ctx context.Context, name string, doc map[string]interface{}) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", name, err)
	}
	return c.client.Set(ctx, CacheKey(name), data, c.ttl).Err()
}
