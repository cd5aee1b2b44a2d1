package window

// Input is the complete argument tuple of Compute plus the identity of the
// collection it was computed for
type Input struct {
	Version uint64
	Size    int
	Metrics RowMetrics
	State   ViewportState
	Config  Config
	AtEnd   bool
}

// Memo caches the last window and recomputes only when the input changes.
// It is meant for a single UI thread and is not safe for concurrent use.
type Memo struct {
	last   Input
	window Window
	valid  bool

	hits   int64
	misses int64
}

// MemoStats reports cache effectiveness
type MemoStats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// Compute returns the window for in, reusing the previous result when the
// tuple is unchanged
func (m *Memo) Compute(in Input) Window {
	if m.valid && in == m.last {
		m.hits++
		return m.window
	}
	m.misses++
	m.window = Compute(in.Size, in.Metrics, in.State, in.Config, in.AtEnd)
	m.last = in
	m.valid = true
	return m.window
}

// Reset drops the cached window
func (m *Memo) Reset() {
	m.valid = false
	m.window = Window{}
}

// Stats returns hit and miss counters
func (m *Memo) Stats() MemoStats {
	stats := MemoStats{Hits: m.hits, Misses: m.misses}
	if total := m.hits + m.misses; total > 0 {
		stats.HitRate = float64(m.hits) / float64(total)
	}
	return stats
}
