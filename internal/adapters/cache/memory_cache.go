package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sjwitcher/obd2-explorer/backend/internal/domain/entities"
)

type memoryEntry struct {
	result    *entities.LookupResult
	expiresAt time.Time
}

// MemoryCache is the volatile tier of the two-tier cache: assembled lookup
// responses keyed by code. Expiry is enforced lazily on read and eagerly by
// a periodic sweep. Between a sweep deletion and a concurrent read of the
// same key the only guarantee is present-and-fresh or absent.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

// NewMemoryCache creates a memory cache whose entries expire after ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
	}
}

// Get returns the cached result for code, deleting and missing on expired
// entries.
func (c *MemoryCache) Get(code string) (*entities.LookupResult, bool) {
	c.mu.RLock()
	entry, ok := c.entries[code]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; a writer may have refreshed it.
		if current, ok := c.entries[code]; ok && time.Now().After(current.expiresAt) {
			delete(c.entries, code)
		}
		c.mu.Unlock()
		return nil, false
	}
	return entry.result, true
}

// Set stores a result for code, overwriting any previous entry.
func (c *MemoryCache) Set(code string, result *entities.LookupResult) {
	c.mu.Lock()
	c.entries[code] = memoryEntry{
		result:    result,
		expiresAt: time.Now().Add(c.ttl),
	}
	c.mu.Unlock()
}

// Len returns the number of entries currently held, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Sweep deletes every expired entry and returns the live-entry count.
func (c *MemoryCache) Sweep() int {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for code, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, code)
		}
	}
	return len(c.entries)
}

// StartSweeper runs periodic sweeps until ctx is cancelled. It only iterates
// the map; it never blocks on I/O.
func (c *MemoryCache) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Dur("interval", interval).Msg("memory cache sweeper started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("memory cache sweeper stopped")
			return
		case <-ticker.C:
			live := c.Sweep()
			log.Debug().Int("live_entries", live).Msg("memory cache sweep completed")
		}
	}
}
