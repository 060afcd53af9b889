package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-leak-consumer/internal/models"
)

// fakeClock is a manually advanced clock shared by the cache tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 26, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testMetadata(rackID string) models.PointMetadata {
	return models.PointMetadata{
		PointType:  models.PointTypeLeakDetectRack,
		ObjectType: "Rack",
		RackName:   "Rack-" + rackID,
		RackID:     rackID,
	}
}

func TestMetadataCache_PutGet(t *testing.T) {
	clock := newFakeClock()
	c := NewMetadataCache(time.Hour, clock)

	c.Put("site/rack/point", testMetadata("rack-001"))

	metadata, ok := c.Get("site/rack/point")
	require.True(t, ok)
	assert.Equal(t, "rack-001", metadata.RackID)
}

func TestMetadataCache_GetAbsent(t *testing.T) {
	c := NewMetadataCache(time.Hour, newFakeClock())

	_, ok := c.Get("site/rack/point")
	assert.False(t, ok)
}

func TestMetadataCache_PutOverwrites(t *testing.T) {
	clock := newFakeClock()
	c := NewMetadataCache(time.Hour, clock)

	c.Put("site/rack/point", testMetadata("rack-001"))
	c.Put("site/rack/point", testMetadata("rack-002"))

	metadata, ok := c.Get("site/rack/point")
	require.True(t, ok)
	assert.Equal(t, "rack-002", metadata.RackID)
	assert.Equal(t, 1, c.Len())
}

func TestMetadataCache_ExpiredEntryBehavesAsAbsent(t *testing.T) {
	clock := newFakeClock()
	c := NewMetadataCache(time.Hour, clock)

	c.Put("site/rack/point", testMetadata("rack-001"))
	clock.Advance(time.Hour)

	_, ok := c.Get("site/rack/point")
	assert.False(t, ok)
}

func TestMetadataCache_PutResetsEvictionClock(t *testing.T) {
	clock := newFakeClock()
	c := NewMetadataCache(time.Hour, clock)

	c.Put("site/rack/point", testMetadata("rack-001"))
	clock.Advance(45 * time.Minute)

	// A rewrite must restart the TTL (last-write semantics)
	c.Put("site/rack/point", testMetadata("rack-001"))
	clock.Advance(45 * time.Minute)

	_, ok := c.Get("site/rack/point")
	assert.True(t, ok)
}

func TestMetadataCache_GetDoesNotResetEvictionClock(t *testing.T) {
	clock := newFakeClock()
	c := NewMetadataCache(time.Hour, clock)

	c.Put("site/rack/point", testMetadata("rack-001"))
	clock.Advance(59 * time.Minute)

	_, ok := c.Get("site/rack/point")
	require.True(t, ok)

	clock.Advance(time.Minute)
	_, ok = c.Get("site/rack/point")
	assert.False(t, ok)
}

func TestMetadataCache_EvictExpired(t *testing.T) {
	clock := newFakeClock()
	c := NewMetadataCache(time.Hour, clock)

	c.Put("site/rack1/point", testMetadata("rack-001"))
	clock.Advance(30 * time.Minute)
	c.Put("site/rack2/point", testMetadata("rack-002"))
	clock.Advance(30 * time.Minute)

	// rack1 is an hour old, rack2 only half an hour
	assert.Equal(t, 1, c.EvictExpired())
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get("site/rack2/point")
	assert.True(t, ok)
}
