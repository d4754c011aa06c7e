package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type evalPayload struct {
	Score float64
	Depth int
}

func TestSetGetRoundTrip(t *testing.T) {
	c := New(time.Minute)

	require.NoError(t, c.Set("pos:abc", evalPayload{Score: 1.25, Depth: 3}, 0))

	var got evalPayload
	hit, err := c.Get("pos:abc", &got)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, evalPayload{Score: 1.25, Depth: 3}, got)
}

func TestGetMiss(t *testing.T) {
	c := New(time.Minute)

	var got evalPayload
	hit, err := c.Get("absent", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	stats := c.Stats()
	assert.Equal(t, uint64(0), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
}

func TestExpiry(t *testing.T) {
	c := New(time.Minute)
	clock := time.Now()
	c.now = func() time.Time { return clock }

	require.NoError(t, c.Set("k", "v", 10*time.Second))

	var got string
	hit, err := c.Get("k", &got)
	require.NoError(t, err)
	assert.True(t, hit)

	clock = clock.Add(11 * time.Second)
	hit, err = c.Get("k", &got)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Zero(t, c.Len())
}

func TestCleanup(t *testing.T) {
	c := New(time.Minute)
	clock := time.Now()
	c.now = func() time.Time { return clock }

	require.NoError(t, c.Set("short", 1, time.Second))
	require.NoError(t, c.Set("long", 2, time.Hour))

	clock = clock.Add(2 * time.Second)
	removed := c.Cleanup()

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, c.Len())

	var got int
	hit, err := c.Get("long", &got)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, 2, got)
}

func TestDeleteAndClear(t *testing.T) {
	c := New(time.Minute)
	require.NoError(t, c.Set("a", 1, 0))
	require.NoError(t, c.Set("b", 2, 0))

	c.Delete("a")
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Zero(t, c.Len())
	stats := c.Stats()
	assert.Equal(t, uint64(0), stats.Hits)
	assert.Equal(t, uint64(0), stats.Misses)
}

func TestStatsHitRate(t *testing.T) {
	c := New(time.Minute)
	require.NoError(t, c.Set("k", "v", 0))

	var got string
	for i := 0; i < 3; i++ {
		_, err := c.Get("k", &got)
		require.NoError(t, err)
	}
	_, err := c.Get("missing", &got)
	require.NoError(t, err)

	stats := c.Stats()
	assert.Equal(t, uint64(3), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, 0.75, stats.HitRate)
}
