package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCircularBufferOverwritesOldest(t *testing.T) {
	cb := NewCircularBuffer[int](3)
	_, ok := cb.GetNewest()
	assert.False(t, ok)
	assert.Empty(t, cb.GetAll())

	for i := 1; i <= 5; i++ {
		cb.Add(i)
	}
	assert.Equal(t, 3, cb.Size())
	assert.Equal(t, []int{3, 4, 5}, cb.GetAll())
	assert.Equal(t, []int{4, 5}, cb.Get(2))
	assert.Equal(t, []int{3, 4, 5}, cb.Get(10))

	newest, ok := cb.GetNewest()
	assert.True(t, ok)
	assert.Equal(t, 5, newest)

	cb.Clear()
	assert.Zero(t, cb.Size())
	assert.Equal(t, 3, cb.Capacity())
}

func TestCircularBufferMinimumCapacity(t *testing.T) {
	cb := NewCircularBuffer[string](0)
	cb.Add("a")
	cb.Add("b")
	assert.Equal(t, []string{"b"}, cb.GetAll())
}
