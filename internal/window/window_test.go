package window

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(w Window) []Row {
	var rows []Row
	for row := range w.Rows() {
		rows = append(rows, row)
	}
	return rows
}

func TestComputeMatchesPredicate(t *testing.T) {
	metricsSet := []RowMetrics{
		{RowHeight: 44, RowMargin: 0, TrailerHeight: 120},
		{RowHeight: 1, RowMargin: 0, TrailerHeight: 1},
		{RowHeight: 3, RowMargin: 1, TrailerHeight: 2},
		{RowHeight: 0.1, RowMargin: 0.2, TrailerHeight: 5},
		{RowHeight: 17.5, RowMargin: 2.25, TrailerHeight: 40},
	}
	sizes := []int{0, 1, 2, 7, 100, 1000}
	scrolls := []float64{0, 0.3, 13, 100, 999.9, 2000, 43600, 50000}
	containers := []float64{0, 1, 24, 1000}
	buffers := []float64{0, 5, 300, 3000}

	for _, m := range metricsSet {
		for _, size := range sizes {
			for _, scroll := range scrolls {
				for _, container := range containers {
					for _, buffer := range buffers {
						state := ViewportState{ScrollOffset: scroll, ContainerSize: container}
						cfg := Config{ViewBuffer: buffer, EndBuffer: 600}
						w := Compute(size, m, state, cfg, false)

						var want []int
						for i := 0; i < size; i++ {
							if IsVisible(m.Top(i), state, cfg) {
								want = append(want, i)
							}
						}

						var got []int
						for _, row := range collect(w) {
							got = append(got, row.Index)
							if row.Offset != m.Top(row.Index) {
								t.Fatalf("row %d offset %v, want %v", row.Index, row.Offset, m.Top(row.Index))
							}
						}
						require.Equal(t, want, got, "metrics=%+v size=%d state=%+v cfg=%+v", m, size, state, cfg)
					}
				}
			}
		}
	}
}

func TestContentHeight(t *testing.T) {
	m := RowMetrics{RowHeight: 44, RowMargin: 0, TrailerHeight: 120}
	assert.Equal(t, 44120.0, ContentHeight(1000, m))
	assert.Equal(t, 120.0, ContentHeight(0, m))

	m = RowMetrics{RowHeight: 3, RowMargin: 1, TrailerHeight: 2}
	w := Compute(10, m, ViewportState{}, Config{}, false)
	assert.Equal(t, 42.0, w.ContentHeight)
	assert.Equal(t, 40.0, w.TrailerOffset)
}

func TestComputeBufferedAboveViewport(t *testing.T) {
	m := DefaultRowMetrics()
	state := ViewportState{ScrollOffset: 2000, ContainerSize: 1000}
	cfg := Config{ViewBuffer: 3000, EndBuffer: 600}

	w := Compute(1000, m, state, cfg, false)
	assert.True(t, w.Range.Contains(0))
	assert.Equal(t, 0, w.Range.Start)
	// 6000 / 44 = 136.36, so row 136 (top 5984) is the last one below the buffer
	assert.Equal(t, 137, w.Range.End)
}

func TestComputeWithoutViewBuffer(t *testing.T) {
	m := RowMetrics{RowHeight: 10, TrailerHeight: 10}
	state := ViewportState{ScrollOffset: 25, ContainerSize: 30}

	w := Compute(100, m, state, Config{}, false)
	// tops 30, 40, 50 fall in [25, 55)
	assert.Equal(t, Range{Start: 3, End: 6}, w.Range)
}

func TestComputeEmptyCollection(t *testing.T) {
	m := DefaultRowMetrics()
	state := ViewportState{ScrollOffset: 0, ContainerSize: 1000}

	w := Compute(0, m, state, DefaultConfig(), false)
	assert.True(t, w.Range.Empty())
	assert.Empty(t, collect(w))
	assert.True(t, w.ShowTrailer)
	assert.Equal(t, 0.0, w.TrailerOffset)

	w = Compute(0, m, state, DefaultConfig(), true)
	assert.False(t, w.ShowTrailer)
}

func TestComputeTrailerHiddenAtEnd(t *testing.T) {
	m := DefaultRowMetrics()
	w := Compute(5, m, ViewportState{ContainerSize: 1000}, DefaultConfig(), true)
	assert.False(t, w.ShowTrailer)
	assert.Equal(t, 220.0, w.TrailerOffset)
	assert.Equal(t, 5, w.Range.Len())
}

func TestRowsIsRestartable(t *testing.T) {
	w := Compute(50, DefaultRowMetrics(), ViewportState{ScrollOffset: 400, ContainerSize: 300}, Config{ViewBuffer: 100}, false)

	first := collect(w)
	second := collect(w)
	require.NotEmpty(t, first)
	assert.Equal(t, first, second)

	// early break leaves the sequence usable
	for range w.Rows() {
		break
	}
	assert.Equal(t, first, collect(w))
}

func TestComputeIsPure(t *testing.T) {
	m := RowMetrics{RowHeight: 7, RowMargin: 3, TrailerHeight: 20}
	state := ViewportState{ScrollOffset: 1234, ContainerSize: 321}
	cfg := Config{ViewBuffer: 50, EndBuffer: 10}

	a := Compute(500, m, state, cfg, false)
	b := Compute(500, m, state, cfg, false)
	assert.Equal(t, a, b)
	assert.Equal(t, collect(a), collect(b))
}

func TestComputeNeverExceedsCollection(t *testing.T) {
	m := RowMetrics{RowHeight: 1, TrailerHeight: 1}
	w := Compute(10, m, ViewportState{ScrollOffset: 5, ContainerSize: 1000}, Config{ViewBuffer: 1000}, false)
	assert.Equal(t, Range{Start: 0, End: 10}, w.Range)

	w = Compute(-3, m, ViewportState{ContainerSize: 10}, Config{}, false)
	assert.True(t, w.Range.Empty())
	assert.Equal(t, 1.0, w.ContentHeight)
}

func TestRowMetricsValidate(t *testing.T) {
	tests := []struct {
		name    string
		metrics RowMetrics
		wantErr bool
	}{
		{"defaults", DefaultRowMetrics(), false},
		{"terminal", RowMetrics{RowHeight: 1, TrailerHeight: 1}, false},
		{"zero height", RowMetrics{RowHeight: 0, TrailerHeight: 1}, true},
		{"negative height", RowMetrics{RowHeight: -4, TrailerHeight: 1}, true},
		{"negative margin", RowMetrics{RowHeight: 4, RowMargin: -1, TrailerHeight: 1}, true},
		{"zero trailer", RowMetrics{RowHeight: 4}, true},
		{"nan height", RowMetrics{RowHeight: math.NaN(), TrailerHeight: 1}, true},
		{"inf margin", RowMetrics{RowHeight: 1, RowMargin: math.Inf(1), TrailerHeight: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.metrics.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidMetrics))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.NoError(t, Config{}.Validate())
	assert.ErrorIs(t, Config{ViewBuffer: -1}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, Config{EndBuffer: -0.5}.Validate(), ErrInvalidConfig)
}
