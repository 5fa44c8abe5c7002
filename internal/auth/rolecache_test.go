package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryRoleCacheExpiry(t *testing.T) {
	now := time.Now()
	cache := NewMemoryRoleCache()
	cache.now = func() time.Time { return now }

	ctx := context.Background()
	cache.Set(ctx, "clinic1/u1", "doctor", time.Minute)

	role, ok := cache.Get(ctx, "clinic1/u1")
	assert.True(t, ok)
	assert.Equal(t, "doctor", role)

	now = now.Add(61 * time.Second)
	_, ok = cache.Get(ctx, "clinic1/u1")
	assert.False(t, ok, "entries expire after their TTL")
}

func TestMemoryRoleCacheInvalidate(t *testing.T) {
	cache := NewMemoryRoleCache()
	ctx := context.Background()

	cache.Set(ctx, "clinic1/u1", "owner", time.Minute)
	cache.Invalidate(ctx, "clinic1/u1")

	_, ok := cache.Get(ctx, "clinic1/u1")
	assert.False(t, ok)
}

func TestMemoryRoleCacheMiss(t *testing.T) {
	cache := NewMemoryRoleCache()
	_, ok := cache.Get(context.Background(), "clinic1/unknown")
	assert.False(t, ok)
}
