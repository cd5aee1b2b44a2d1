package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAtEnd(t *testing.T) {
	assert.False(t, AtEnd(10, UnknownTotal))
	assert.False(t, AtEnd(0, UnknownTotal))
	assert.False(t, AtEnd(9, KnownTotal(10)))
	assert.True(t, AtEnd(10, KnownTotal(10)))
	assert.True(t, AtEnd(0, KnownTotal(0)))

	// stays true for every evaluation with the same size and total
	total := KnownTotal(250)
	for i := 0; i < 5; i++ {
		assert.True(t, AtEnd(250, total))
	}
}

func TestTotalFromPtr(t *testing.T) {
	assert.Equal(t, UnknownTotal, TotalFromPtr(nil))

	n := 42
	total := TotalFromPtr(&n)
	assert.True(t, total.Known())
	assert.Equal(t, 42, total.N())
	assert.Equal(t, "42", total.String())
	assert.Equal(t, "?", UnknownTotal.String())
}

func TestShouldFetchMoreWorkedExample(t *testing.T) {
	m := RowMetrics{RowHeight: 44, RowMargin: 0, TrailerHeight: 120}
	content := ContentHeight(1000, m)
	assert.Equal(t, 44120.0, content)

	// 44120 - 1000 - 500 = 42620 remaining
	assert.False(t, ShouldFetchMore(content, 1000, 500, 600, false))
	// 44120 - 1000 - 43600 = -480 remaining
	assert.True(t, ShouldFetchMore(content, 1000, 43600, 600, false))
}

func TestShouldFetchMoreNeverAtEnd(t *testing.T) {
	for _, scroll := range []float64{0, 100, 43600, 1e9} {
		assert.False(t, ShouldFetchMore(44120, 1000, scroll, 600, true))
	}
}

func TestShouldFetchMoreBoundary(t *testing.T) {
	// remaining exactly equal to the buffer does not fetch
	assert.False(t, ShouldFetchMore(2000, 400, 1000, 600, false))
	assert.True(t, ShouldFetchMore(2000, 400, 1000.5, 600, false))
	// zero buffer only fetches once scrolled past the end
	assert.False(t, ShouldFetchMore(2000, 400, 1600, 0, false))
	assert.True(t, ShouldFetchMore(2000, 400, 1601, 0, false))
}
