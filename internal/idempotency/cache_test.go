package idempotency

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnEntrypoint/sandboxbox/internal/protocol"
)

func TestCacheGetSet(t *testing.T) {
	cache := NewCache(time.Hour, 10)

	_, ok := cache.Get("missing")
	assert.False(t, ok)

	cache.Set("key", protocol.BatchResponse{Success: true, CorrelationID: "abc"})

	got, ok := cache.Get("key")
	require.True(t, ok)
	assert.True(t, got.Success)
	assert.Equal(t, "abc", got.CorrelationID)
}

func TestCacheExpiry(t *testing.T) {
	cache := NewCache(time.Minute, 10)
	current := time.Unix(1000, 0)
	cache.now = func() time.Time { return current }

	cache.Set("key", protocol.BatchResponse{Success: true})

	current = current.Add(30 * time.Second)
	_, ok := cache.Get("key")
	assert.True(t, ok)

	current = current.Add(31 * time.Second)
	_, ok = cache.Get("key")
	assert.False(t, ok)
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewCache(time.Hour, 3)

	for i := 0; i < 3; i++ {
		cache.Set(fmt.Sprintf("key-%d", i), protocol.BatchResponse{})
	}

	// Touch key-0 so key-1 becomes the eviction candidate.
	_, ok := cache.Get("key-0")
	require.True(t, ok)

	cache.Set("key-3", protocol.BatchResponse{})

	_, ok = cache.Get("key-1")
	assert.False(t, ok)
	_, ok = cache.Get("key-0")
	assert.True(t, ok)
	_, ok = cache.Get("key-3")
	assert.True(t, ok)
}

func TestCacheIgnoresEmptyKey(t *testing.T) {
	cache := NewCache(time.Hour, 10)

	cache.Set("", protocol.BatchResponse{Success: true})
	_, ok := cache.Get("")
	assert.False(t, ok)
}

func TestCacheUpdateRefreshesEntry(t *testing.T) {
	cache := NewCache(time.Minute, 10)
	current := time.Unix(1000, 0)
	cache.now = func() time.Time { return current }

	cache.Set("key", protocol.BatchResponse{CorrelationID: "first"})
	current = current.Add(45 * time.Second)
	cache.Set("key", protocol.BatchResponse{CorrelationID: "second"})

	current = current.Add(30 * time.Second)
	got, ok := cache.Get("key")
	require.True(t, ok)
	assert.Equal(t, "second", got.CorrelationID)
}
