package window

import "strconv"

// Total is an optional count of items the data source can deliver
type Total struct {
	n     int
	known bool
}

// UnknownTotal is the total of an open-ended data source
var UnknownTotal = Total{}

// KnownTotal returns a total of n items
func KnownTotal(n int) Total {
	return Total{n: n, known: true}
}

// TotalFromPtr converts a nullable wire count
func TotalFromPtr(n *int) Total {
	if n == nil {
		return UnknownTotal
	}
	return KnownTotal(*n)
}

// Known reports whether the total has been supplied
func (t Total) Known() bool {
	return t.known
}

// N returns the count, zero when unknown
func (t Total) N() int {
	return t.n
}

func (t Total) String() string {
	if !t.known {
		return "?"
	}
	return strconv.Itoa(t.n)
}

// AtEnd reports whether every item of a known total has been loaded
func AtEnd(size int, total Total) bool {
	return total.known && size == total.n
}

// ShouldFetchMore reports whether the remaining distance below the viewport
// is shorter than endBuffer. It never fires once the data is complete.
func ShouldFetchMore(contentHeight, containerSize, scrollOffset, endBuffer float64, atEnd bool) bool {
	if atEnd {
		return false
	}
	return contentHeight-containerSize-scrollOffset < endBuffer
}
