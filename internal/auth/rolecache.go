package auth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RoleCache holds the short-lived role value keyed by tenant/user. It is the
// fast path between role staleness checks and a database read.
type RoleCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, role string, ttl time.Duration)
	Invalidate(ctx context.Context, key string)
}

type memoryEntry struct {
	role    string
	expires time.Time
}

// MemoryRoleCache is the in-process fallback used when Redis is not
// configured.
type MemoryRoleCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryRoleCache() *MemoryRoleCache {
	return &MemoryRoleCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryRoleCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.now().After(e.expires) {
		delete(c.entries, key)
		return "", false
	}
	return e.role, true
}

func (c *MemoryRoleCache) Set(_ context.Context, key, role string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{role: role, expires: c.now().Add(ttl)}
}

func (c *MemoryRoleCache) Invalidate(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// RedisRoleCache shares role freshness across processes. Cache failures are
// treated as misses; the caller falls back to the database.
type RedisRoleCache struct {
	client *redis.Client
}

func NewRedisRoleCache(client *redis.Client) *RedisRoleCache {
	return &RedisRoleCache{client: client}
}

func (c *RedisRoleCache) Get(ctx context.Context, key string) (string, bool) {
	role, err := c.client.Get(ctx, "role:"+key).Result()
	if err != nil {
		return "", false
	}
	return role, true
}

func (c *RedisRoleCache) Set(ctx context.Context, key, role string, ttl time.Duration) {
	c.client.Set(ctx, "role:"+key, role, ttl)
}

func (c *RedisRoleCache) Invalidate(ctx context.Context, key string) {
	c.client.Del(ctx, "role:"+key)
}
