package cache

import (
	"sync"
	"time"

	"fleet-leak-consumer/internal/models"
)

// UpdateFunc decides, under exclusive access to one key, whether to perform
// a side effect and what to store afterwards. current is nil when the key
// holds no live value (absent or expired). Returning a non-nil value commits
// it as the new entry; returning nil leaves the entry untouched. Returning
// an error commits nothing.
type UpdateFunc func(current *models.FaultValue) (*models.FaultValue, error)

type stateEntry struct {
	mu        sync.Mutex
	hasValue  bool
	value     models.FaultValue
	writeTime time.Time
	evicted   bool
}

// StateCache holds the last fault value successfully reconciled with the
// inventory API per point path. Its single compound operation, Update,
// serializes calls per key: at most one update function runs for a given
// key at any instant, while different keys proceed independently. A stored
// value expires a fixed TTL after its last successful write.
type StateCache struct {
	mu      sync.Mutex
	entries map[string]*stateEntry
	ttl     time.Duration
	clock   Clock
}

// NewStateCache creates a state cache with the given TTL.
func NewStateCache(ttl time.Duration, clock Clock) *StateCache {
	if clock == nil {
		clock = SystemClock
	}
	return &StateCache{
		entries: make(map[string]*stateEntry),
		ttl:     ttl,
		clock:   clock,
	}
}

// Update runs fn under the key's critical section and commits its result.
// The update function may perform an external call; the section is held for
// its full duration so concurrent updates for the same key see each other's
// committed values.
func (c *StateCache) Update(key string, fn UpdateFunc) error {
	entry := c.acquire(key)
	defer entry.mu.Unlock()

	var current *models.FaultValue
	if entry.hasValue && !c.expired(entry.writeTime) {
		value := entry.value
		current = &value
	}

	newValue, err := fn(current)
	if err != nil {
		return err
	}

	if newValue != nil {
		entry.hasValue = true
		entry.value = *newValue
		entry.writeTime = c.clock.Now()
	}

	return nil
}

// Get returns the live value for a key. Expired entries behave as absent.
func (c *StateCache) Get(key string) (models.FaultValue, bool) {
	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()

	if !ok {
		return 0, false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if !entry.hasValue || c.expired(entry.writeTime) {
		return 0, false
	}

	return entry.value, true
}

// Len returns the number of entries, including not-yet-swept expired ones.
func (c *StateCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// EvictExpired removes expired entries and returns how many were evicted.
// Entries whose critical section is currently held are skipped; they are
// picked up by a later sweep.
func (c *StateCache) EvictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	for key, entry := range c.entries {
		if !entry.mu.TryLock() {
			continue
		}
		if !entry.hasValue || c.expired(entry.writeTime) {
			entry.evicted = true
			delete(c.entries, key)
			evicted++
		}
		entry.mu.Unlock()
	}

	return evicted
}

// acquire returns the key's entry with its mutex held, creating it if needed.
// An entry removed by EvictExpired between map lookup and lock acquisition is
// detected via the evicted flag and retried, so serialization per key holds.
func (c *StateCache) acquire(key string) *stateEntry {
	for {
		c.mu.Lock()
		entry, ok := c.entries[key]
		if !ok {
			entry = &stateEntry{}
			c.entries[key] = entry
		}
		c.mu.Unlock()

		entry.mu.Lock()
		if entry.evicted {
			entry.mu.Unlock()
			continue
		}
		return entry
	}
}

func (c *StateCache) expired(writeTime time.Time) bool {
	return c.clock.Now().Sub(writeTime) >= c.ttl
}
