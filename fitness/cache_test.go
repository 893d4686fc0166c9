package fitness

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCache_GetPutHitMiss(t *testing.T) {
	c := newCache(10)

	_, ok := c.get("a")
	assert.False(t, ok)

	c.put("a", Result{Fitness: 0.5})
	v, ok := c.get("a")
	require := assert.New(t)
	require.True(ok)
	require.Equal(0.5, v.Fitness)

	hits, misses := c.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}

// TestCache_FIFOEvictionAtOverCapacity mirrors the original
// simulation_cache's insertion-ordered eviction: once the cache holds more
// than capacity entries, the oldest ~10% (at least one) are evicted.
func TestCache_FIFOEvictionAtOverCapacity(t *testing.T) {
	c := newCache(10)
	for i := 0; i < 11; i++ {
		c.put(string(rune('a'+i)), Result{Fitness: float64(i)})
	}

	// capacity 10, 11th insert crosses the threshold: evictCount = max(1, 10/10) = 1
	_, ok := c.get("a")
	assert.False(t, ok, "oldest entry should have been evicted")
	_, ok = c.get(string(rune('a' + 10)))
	assert.True(t, ok, "newest entry should still be present")
}

func TestCache_PutOverwritesWithoutDuplicatingOrder(t *testing.T) {
	c := newCache(5)
	c.put("x", Result{Fitness: 1})
	c.put("x", Result{Fitness: 2})

	assert.Len(t, c.order, 1)
	v, _ := c.get("x")
	assert.Equal(t, 2.0, v.Fitness)
}

func TestCanExtrapolate(t *testing.T) {
	// Near the end of a large sample, even a worst/best-case remainder
	// cannot move the observed rate past the threshold: safe to stop early.
	assert.True(t, canExtrapolate(99, 99, 100, 0.05))
	assert.False(t, canExtrapolate(10, 10, 20, 0.05), "halfway through, remainder can still swing the rate")
	assert.False(t, canExtrapolate(0, 0, 20, 0.05), "no games played yet")
	assert.False(t, canExtrapolate(20, 20, 20, 0.05), "fully played: nothing left to extrapolate")
}
