package cache

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-leak-consumer/internal/models"
)

func faultPtr(v models.FaultValue) *models.FaultValue {
	return &v
}

func TestStateCache_CommitOnSuccess(t *testing.T) {
	c := NewStateCache(time.Hour, newFakeClock())

	err := c.Update("site/rack/point", func(current *models.FaultValue) (*models.FaultValue, error) {
		assert.Nil(t, current)
		return faultPtr(models.FaultFaulting), nil
	})
	require.NoError(t, err)

	value, ok := c.Get("site/rack/point")
	require.True(t, ok)
	assert.Equal(t, models.FaultFaulting, value)
}

func TestStateCache_NoCommitOnError(t *testing.T) {
	c := NewStateCache(time.Hour, newFakeClock())

	err := c.Update("site/rack/point", func(current *models.FaultValue) (*models.FaultValue, error) {
		return nil, errors.New("downstream call failed")
	})
	require.Error(t, err)

	_, ok := c.Get("site/rack/point")
	assert.False(t, ok)
}

func TestStateCache_NilResultLeavesEntryUntouched(t *testing.T) {
	clock := newFakeClock()
	c := NewStateCache(time.Hour, clock)

	require.NoError(t, c.Update("site/rack/point", func(*models.FaultValue) (*models.FaultValue, error) {
		return faultPtr(models.FaultFaulting), nil
	}))

	clock.Advance(30 * time.Minute)

	// A no-op update must not refresh the write time
	require.NoError(t, c.Update("site/rack/point", func(current *models.FaultValue) (*models.FaultValue, error) {
		require.NotNil(t, current)
		assert.Equal(t, models.FaultFaulting, *current)
		return nil, nil
	}))

	clock.Advance(30 * time.Minute)
	_, ok := c.Get("site/rack/point")
	assert.False(t, ok)
}

func TestStateCache_ErrorLeavesExistingValueIntact(t *testing.T) {
	c := NewStateCache(time.Hour, newFakeClock())

	require.NoError(t, c.Update("site/rack/point", func(*models.FaultValue) (*models.FaultValue, error) {
		return faultPtr(models.FaultClear), nil
	}))

	err := c.Update("site/rack/point", func(current *models.FaultValue) (*models.FaultValue, error) {
		require.NotNil(t, current)
		return faultPtr(models.FaultFaulting), errors.New("downstream call failed")
	})
	require.Error(t, err)

	value, ok := c.Get("site/rack/point")
	require.True(t, ok)
	assert.Equal(t, models.FaultClear, value)
}

func TestStateCache_ExpiredValuePresentsAsAbsent(t *testing.T) {
	clock := newFakeClock()
	c := NewStateCache(time.Hour, clock)

	require.NoError(t, c.Update("site/rack/point", func(*models.FaultValue) (*models.FaultValue, error) {
		return faultPtr(models.FaultFaulting), nil
	}))

	clock.Advance(time.Hour)

	require.NoError(t, c.Update("site/rack/point", func(current *models.FaultValue) (*models.FaultValue, error) {
		assert.Nil(t, current)
		return nil, nil
	}))
}

func TestStateCache_SameKeyUpdatesAreSerialized(t *testing.T) {
	c := NewStateCache(time.Hour, newFakeClock())

	const workers = 8
	const perWorker = 50

	inFlight := 0
	maxInFlight := 0
	var mu sync.Mutex

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				_ = c.Update("site/rack/point", func(*models.FaultValue) (*models.FaultValue, error) {
					mu.Lock()
					inFlight++
					if inFlight > maxInFlight {
						maxInFlight = inFlight
					}
					mu.Unlock()

					mu.Lock()
					inFlight--
					mu.Unlock()
					return faultPtr(models.FaultFaulting), nil
				})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInFlight, "at most one update function may run per key")
}

func TestStateCache_DistinctKeysProceedIndependently(t *testing.T) {
	c := NewStateCache(time.Hour, newFakeClock())

	firstEntered := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_ = c.Update("site/rack1/point", func(*models.FaultValue) (*models.FaultValue, error) {
			close(firstEntered)
			<-release
			return faultPtr(models.FaultFaulting), nil
		})
	}()

	<-firstEntered

	// With rack1's section held, rack2 must still complete
	done := make(chan struct{})
	go func() {
		_ = c.Update("site/rack2/point", func(*models.FaultValue) (*models.FaultValue, error) {
			return faultPtr(models.FaultFaulting), nil
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("update on a distinct key blocked behind another key's critical section")
	}

	close(release)
}

func TestStateCache_EvictExpired(t *testing.T) {
	clock := newFakeClock()
	c := NewStateCache(time.Hour, clock)

	require.NoError(t, c.Update("site/rack1/point", func(*models.FaultValue) (*models.FaultValue, error) {
		return faultPtr(models.FaultFaulting), nil
	}))
	clock.Advance(30 * time.Minute)
	require.NoError(t, c.Update("site/rack2/point", func(*models.FaultValue) (*models.FaultValue, error) {
		return faultPtr(models.FaultClear), nil
	}))
	clock.Advance(30 * time.Minute)

	assert.Equal(t, 1, c.EvictExpired())
	assert.Equal(t, 1, c.Len())

	value, ok := c.Get("site/rack2/point")
	require.True(t, ok)
	assert.Equal(t, models.FaultClear, value)
}

func TestStateCache_UpdateAfterEvictionRecreatesEntry(t *testing.T) {
	clock := newFakeClock()
	c := NewStateCache(time.Hour, clock)

	require.NoError(t, c.Update("site/rack/point", func(*models.FaultValue) (*models.FaultValue, error) {
		return faultPtr(models.FaultFaulting), nil
	}))

	clock.Advance(time.Hour)
	require.Equal(t, 1, c.EvictExpired())
	require.Equal(t, 0, c.Len())

	require.NoError(t, c.Update("site/rack/point", func(current *models.FaultValue) (*models.FaultValue, error) {
		assert.Nil(t, current)
		return faultPtr(models.FaultFaulting), nil
	}))

	value, ok := c.Get("site/rack/point")
	require.True(t, ok)
	assert.Equal(t, models.FaultFaulting, value)
}
