package intel

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassificationCache_PutGet(t *testing.T) {
	c := NewClassificationCache(4)

	c.Put("acme|youtube channel", Classification{Category: "indirect", X: 3, Y: 9, Reasoning: "famous"})

	hit, ok := c.Get("acme|youtube channel")
	require.True(t, ok)
	assert.Equal(t, "indirect", hit.Category)
	assert.Equal(t, 9, hit.Y)

	_, ok = c.Get("missing|key")
	assert.False(t, ok)
}

func TestClassificationCache_UpdateExisting(t *testing.T) {
	c := NewClassificationCache(4)

	c.Put("k", Classification{X: 1, Y: 1})
	c.Put("k", Classification{X: 7, Y: 8})

	hit, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 7, hit.X)
	assert.Equal(t, 1, c.Len())
}

func TestClassificationCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewClassificationCache(3)

	c.Put("a", Classification{X: 1})
	c.Put("b", Classification{X: 2})
	c.Put("c", Classification{X: 3})

	// Touch "a" so "b" becomes the eviction candidate.
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Put("d", Classification{X: 4})

	_, ok = c.Get("b")
	assert.False(t, ok, "least recently used entry should be evicted")
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
	_, ok = c.Get("d")
	assert.True(t, ok)
	assert.Equal(t, 3, c.Len())
}

func TestClassificationCache_MinimumCapacity(t *testing.T) {
	c := NewClassificationCache(0)

	c.Put("a", Classification{X: 1})
	c.Put("b", Classification{X: 2})

	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)
}

func TestClassificationCache_BoundedUnderChurn(t *testing.T) {
	c := NewClassificationCache(8)
	for i := 0; i < 100; i++ {
		c.Put(fmt.Sprintf("key-%d", i), Classification{X: i})
	}
	assert.Equal(t, 8, c.Len())
}
