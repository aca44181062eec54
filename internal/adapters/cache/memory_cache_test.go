package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjwitcher/obd2-explorer/backend/internal/adapters/cache"
	"github.com/sjwitcher/obd2-explorer/backend/internal/domain/entities"
)

func result(code string) *entities.LookupResult {
	return &entities.LookupResult{Code: code, Summary: "summary for " + code}
}

func TestMemoryCache_HitBeforeTTL(t *testing.T) {
	c := cache.NewMemoryCache(200 * time.Millisecond)
	c.Set("P0301", result("P0301"))

	got, ok := c.Get("P0301")
	require.True(t, ok)
	assert.Equal(t, "P0301", got.Code)
}

func TestMemoryCache_MissAfterTTLAndPurged(t *testing.T) {
	c := cache.NewMemoryCache(30 * time.Millisecond)
	c.Set("P0301", result("P0301"))

	time.Sleep(60 * time.Millisecond)

	_, ok := c.Get("P0301")
	assert.False(t, ok)
	// Lazy expiry removes the entry, not just hides it.
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_MissForUnknownKey(t *testing.T) {
	c := cache.NewMemoryCache(time.Minute)

	_, ok := c.Get("P9999")
	assert.False(t, ok)
}

func TestMemoryCache_SetOverwritesAndRefreshes(t *testing.T) {
	c := cache.NewMemoryCache(80 * time.Millisecond)
	c.Set("P0301", result("old"))

	time.Sleep(50 * time.Millisecond)
	c.Set("P0301", result("new"))
	time.Sleep(50 * time.Millisecond)

	got, ok := c.Get("P0301")
	require.True(t, ok)
	assert.Equal(t, "new", got.Code)
}

func TestMemoryCache_SweepRemovesOnlyExpired(t *testing.T) {
	c := cache.NewMemoryCache(30 * time.Millisecond)
	c.Set("P0100", result("P0100"))
	c.Set("P0200", result("P0200"))

	time.Sleep(60 * time.Millisecond)
	c.Set("P0300", result("P0300"))

	live := c.Sweep()

	assert.Equal(t, 1, live)
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("P0300")
	assert.True(t, ok)
}

func TestMemoryCache_SweeperEvictsInBackground(t *testing.T) {
	c := cache.NewMemoryCache(20 * time.Millisecond)
	c.Set("P0100", result("P0100"))
	c.Set("P0200", result("P0200"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.StartSweeper(ctx, 30*time.Millisecond)

	assert.Eventually(t, func() bool {
		return c.Len() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryCache_SweeperStopsOnCancel(t *testing.T) {
	c := cache.NewMemoryCache(time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.StartSweeper(ctx, 10*time.Millisecond)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after context cancellation")
	}
}
