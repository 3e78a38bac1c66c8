package weathercache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/bitesapp/bites/internal/domain/weather"
)

type entry struct {
	payload   json.RawMessage
	expiresAt time.Time
}

// MemoryCache is an in-memory weather cache for tests/dev.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryCache constructs a cache backed by process memory.
func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithClock(time.Now)
}

// NewMemoryCacheWithClock injects the clock used for expiry checks.
func NewMemoryCacheWithClock(now func() time.Time) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]entry),
		now:     now,
	}
}

func (c *MemoryCache) Get(_ context.Context, restaurantID string) (json.RawMessage, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[restaurantID]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && e.expiresAt.Before(c.now()) {
		c.mu.Lock()
		delete(c.entries, restaurantID)
		c.mu.Unlock()
		return nil, false, nil
	}
	return e.payload, true, nil
}

func (c *MemoryCache) Set(_ context.Context, restaurantID string, payload json.RawMessage, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	exp := time.Time{}
	if ttl > 0 {
		exp = c.now().Add(ttl)
	}
	stored := make(json.RawMessage, len(payload))
	copy(stored, payload)
	c.entries[restaurantID] = entry{payload: stored, expiresAt: exp}
	return nil
}

var _ weather.Cache = (*MemoryCache)(nil)
