package window

import (
	"iter"
	"math"
)

// Range is a half-open interval of row indices
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of indices in the range
func (r Range) Len() int {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// Empty reports whether the range holds no index
func (r Range) Empty() bool {
	return r.Len() == 0
}

// Contains reports whether i lies inside the range
func (r Range) Contains(i int) bool {
	return i >= r.Start && i < r.End
}

// Row is a visible row and its top offset
type Row struct {
	Index  int     `json:"index"`
	Offset float64 `json:"offset"`
}

// Window is the result of a window computation
type Window struct {
	Range         Range   `json:"range"`
	ContentHeight float64 `json:"content_height"`
	TrailerOffset float64 `json:"trailer_offset"`
	ShowTrailer   bool    `json:"show_trailer"`

	stride float64
}

// Rows yields the visible rows in ascending index order. The sequence
// is recomputed on every iteration, so it can be ranged over repeatedly.
func (w Window) Rows() iter.Seq[Row] {
	return func(yield func(Row) bool) {
		for i := w.Range.Start; i < w.Range.End; i++ {
			if !yield(Row{Index: i, Offset: float64(i) * w.stride}) {
				return
			}
		}
	}
}

// Offset returns the top offset of row i
func (w Window) Offset(i int) float64 {
	return float64(i) * w.stride
}

// ContentHeight returns the total height of size rows plus the trailer
func ContentHeight(size int, m RowMetrics) float64 {
	return float64(max(size, 0))*m.Stride() + m.TrailerHeight
}

// IsVisible reports whether a row whose top sits at top falls inside the
// buffered viewport
func IsVisible(top float64, state ViewportState, cfg Config) bool {
	return top >= state.ScrollOffset-cfg.ViewBuffer &&
		top < state.ScrollOffset+state.ContainerSize+cfg.ViewBuffer
}

// Compute selects the rows of a collection of the given size that must be
// rendered for the viewport state. It holds no state: identical inputs
// always give identical windows.
func Compute(size int, m RowMetrics, state ViewportState, cfg Config, atEnd bool) Window {
	size = max(size, 0)
	stride := m.Stride()

	w := Window{
		ContentHeight: ContentHeight(size, m),
		TrailerOffset: float64(size) * stride,
		ShowTrailer:   !atEnd,
		stride:        stride,
	}
	if size == 0 || stride <= 0 {
		return w
	}

	lower := state.ScrollOffset - cfg.ViewBuffer
	upper := state.ScrollOffset + state.ContainerSize + cfg.ViewBuffer
	w.Range = visibleRange(size, stride, lower, upper)
	return w
}

// visibleRange finds the indices whose top lies in [lower, upper). Offsets
// are monotonic so the set is contiguous; the arithmetic estimate is
// corrected against the exact predicate to absorb float rounding.
func visibleRange(size int, stride, lower, upper float64) Range {
	top := func(i int) float64 { return float64(i) * stride }

	start := ceilIndex(lower/stride, size)
	for start > 0 && top(start-1) >= lower {
		start--
	}
	for start < size && top(start) < lower {
		start++
	}

	end := max(ceilIndex(upper/stride, size), start)
	for end > start && top(end-1) >= upper {
		end--
	}
	for end < size && top(end) < upper {
		end++
	}

	return Range{Start: start, End: end}
}

func ceilIndex(v float64, size int) int {
	c := math.Ceil(v)
	switch {
	case math.IsNaN(c) || c <= 0:
		return 0
	case c >= float64(size):
		return size
	default:
		return int(c)
	}
}
