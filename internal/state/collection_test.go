package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadlist-tui/internal/window"
)

type item struct {
	id    string
	value int
}

func newItems() *Collection[string, item] {
	return NewCollection(func(it item) string { return it.id })
}

func TestCollectionAppendKeepsOrder(t *testing.T) {
	c := newItems()
	assert.Equal(t, 0, c.Len())

	added := c.Append(item{"b", 1}, item{"a", 2}, item{"c", 3})
	assert.Equal(t, 3, added)
	assert.Equal(t, 3, c.Len())

	first, ok := c.At(0)
	require.True(t, ok)
	assert.Equal(t, "b", first.id)

	last, ok := c.At(2)
	require.True(t, ok)
	assert.Equal(t, "c", last.id)

	_, ok = c.At(3)
	assert.False(t, ok)
	_, ok = c.At(-1)
	assert.False(t, ok)
}

func TestCollectionUpsertKeepsPosition(t *testing.T) {
	c := newItems()
	c.Append(item{"a", 1}, item{"b", 2})
	v1 := c.Version()

	added := c.Append(item{"a", 10}, item{"d", 4})
	assert.Equal(t, 1, added)
	assert.Equal(t, 3, c.Len())
	assert.Greater(t, c.Version(), v1)

	a, ok := c.At(0)
	require.True(t, ok)
	assert.Equal(t, 10, a.value)

	got, ok := c.Get("d")
	require.True(t, ok)
	assert.Equal(t, 4, got.value)
}

func TestCollectionTotal(t *testing.T) {
	c := newItems()
	assert.False(t, c.KnownTotal().Known())
	assert.False(t, c.AtEnd())

	c.Append(item{"a", 1}, item{"b", 2})
	v := c.Version()
	c.SetTotal(window.KnownTotal(2))
	assert.True(t, c.AtEnd())
	assert.Greater(t, c.Version(), v)

	// unchanged total keeps the version
	v = c.Version()
	c.SetTotal(window.KnownTotal(2))
	assert.Equal(t, v, c.Version())
}

func TestCollectionReset(t *testing.T) {
	c := newItems()
	c.Append(item{"a", 1})
	c.SetTotal(window.KnownTotal(1))
	v := c.Version()

	c.Reset()
	assert.Equal(t, 0, c.Len())
	assert.False(t, c.KnownTotal().Known())
	assert.Greater(t, c.Version(), v)

	c.Append(item{"a", 5})
	got, ok := c.At(0)
	require.True(t, ok)
	assert.Equal(t, 5, got.value)
}

func TestCollectionOrderFollowsInsertion(t *testing.T) {
	c := newItems()
	c.Append(item{"x", 0}, item{"y", 1})
	c.Append(item{"x", 5}, item{"z", 2}, item{"z", 3})

	require.Equal(t, 3, c.Len())
	var ids []string
	for i := range c.Len() {
		it, ok := c.At(i)
		require.True(t, ok)
		ids = append(ids, it.id)
	}
	assert.Equal(t, []string{"x", "y", "z"}, ids)

	x, _ := c.At(0)
	assert.Equal(t, 5, x.value, "upsert is visible through the position index")
	z, _ := c.Get("z")
	assert.Equal(t, 3, z.value, "a repeated key within one call keeps the last value")
}

func TestCollectionAppendNothing(t *testing.T) {
	c := newItems()
	v := c.Version()
	assert.Equal(t, 0, c.Append())
	assert.Equal(t, v, c.Version())
}
