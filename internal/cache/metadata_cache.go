package cache

import (
	"sync"
	"time"

	"fleet-leak-consumer/internal/models"
)

type metadataEntry struct {
	metadata  models.PointMetadata
	writeTime time.Time
}

// MetadataCache holds the last-seen point metadata per point path.
// Entries expire a fixed TTL after the last write; there is no explicit
// delete. Last-write semantics: every Put resets the eviction clock.
type MetadataCache struct {
	mu      sync.RWMutex
	entries map[string]metadataEntry
	ttl     time.Duration
	clock   Clock
}

// NewMetadataCache creates a metadata cache with the given TTL.
func NewMetadataCache(ttl time.Duration, clock Clock) *MetadataCache {
	if clock == nil {
		clock = SystemClock
	}
	return &MetadataCache{
		entries: make(map[string]metadataEntry),
		ttl:     ttl,
		clock:   clock,
	}
}

// Put stores metadata for a point path, overwriting any existing entry.
func (c *MetadataCache) Put(path string, metadata models.PointMetadata) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[path] = metadataEntry{
		metadata:  metadata,
		writeTime: c.clock.Now(),
	}
}

// Get returns the metadata for a point path. Expired entries behave as absent.
func (c *MetadataCache) Get(path string) (models.PointMetadata, bool) {
	c.mu.RLock()
	entry, ok := c.entries[path]
	c.mu.RUnlock()

	if !ok || c.expired(entry.writeTime) {
		return models.PointMetadata{}, false
	}

	return entry.metadata, true
}

// Len returns the number of entries, including not-yet-swept expired ones.
func (c *MetadataCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// EvictExpired removes expired entries and returns how many were evicted.
func (c *MetadataCache) EvictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	for path, entry := range c.entries {
		if c.expired(entry.writeTime) {
			delete(c.entries, path)
			evicted++
		}
	}

	return evicted
}

func (c *MetadataCache) expired(writeTime time.Time) bool {
	return c.clock.Now().Sub(writeTime) >= c.ttl
}
