// internal/adapter/cache/memory.go

package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"creatorpulse/internal/domain/insight"
)

type memoryEntry struct {
	rec       insight.Recommendation
	expiresAt time.Time
}

// MemoryCache is an in-process recommendation cache with per-entry expiry
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// WithClock replaces the cache's time source
func (c *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	c.now = now
	return c
}

// Get returns the cached recommendation for key
func (c *MemoryCache) Get(ctx context.Context, key string) (*insight.Recommendation, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("key %q: %w", key, insight.ErrCacheMiss)
	}

	if !c.now().Before(entry.expiresAt) {
		c.mu.Lock()
		// Only drop it if nobody refreshed it in the meantime
		if current, ok := c.entries[key]; ok && current.expiresAt.Equal(entry.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, fmt.Errorf("key %q expired: %w", key, insight.ErrCacheMiss)
	}

	rec := entry.rec
	return &rec, nil
}

// Set stores a recommendation under key for ttl
func (c *MemoryCache) Set(ctx context.Context, key string, rec insight.Recommendation, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("invalid ttl %s", ttl)
	}

	c.mu.Lock()
	c.entries[key] = memoryEntry{rec: rec, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()

	return nil
}

// Clear removes whatever is stored under key
func (c *MemoryCache) Clear(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()

	return nil
}

// Len returns the number of stored entries, including expired ones not yet evicted
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
