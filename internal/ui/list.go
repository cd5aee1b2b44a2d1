package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	lru "github.com/hashicorp/golang-lru/v2"

	"leadlist-tui/internal/host"
	"leadlist-tui/internal/viewport"
	"leadlist-tui/internal/window"
)

// ItemRenderer turns one item into the lines of its row
type ItemRenderer[V any] interface {
	RenderItem(index int, item V, width, height int, active bool) string
}

// Items is the loaded collection a List reads from
type Items[V any] interface {
	At(i int) (V, bool)
	Len() int
	Version() uint64
	KnownTotal() window.Total
}

// ListConfig configures a List
type ListConfig struct {
	Viewport  viewport.Options
	CacheSize int
	// TrailerText is shown next to the spinner while more data may exist
	TrailerText string
}

// rowKey identifies a rendered row in the cache
type rowKey struct {
	index  int
	width  int
	active bool
	cursor bool
}

// List renders the window of a large collection inside a scrolling pane. The
// viewport tracker decides which rows exist; the pane offset decides where
// they land on screen.
type List[V any] struct {
	scroll  *Pane
	surface *Pane
	items   Items[V]
	config  ListConfig

	tracker  *viewport.Tracker
	memo     window.Memo
	renderer ItemRenderer[V]
	cache    *lru.Cache[rowKey, string]
	spinner  spinner.Model

	// state is the last viewport state published by the tracker
	state   window.ViewportState
	active  int
	cursor  int
	version uint64

	cacheHits   int64
	cacheMisses int64

	cursorStyle  lipgloss.Style
	trailerStyle lipgloss.Style
}

// NewList mounts a scrolling list under parent. The tracker is created but
// not attached.
func NewList[V any](term *Terminal, parent *Pane, items Items[V], source viewport.DataSource, renderer ItemRenderer[V], config ListConfig) (*List[V], error) {
	if config.Viewport.Scheduler == nil {
		config.Viewport.Scheduler = term
	}
	if config.CacheSize <= 0 {
		config.CacheSize = 512
	}

	tracker, err := viewport.New(term, source, config.Viewport)
	if err != nil {
		return nil, err
	}
	cache, err := lru.New[rowKey, string](config.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("row cache: %w", err)
	}

	l := &List[V]{
		items:        items,
		config:       config,
		tracker:      tracker,
		renderer:     renderer,
		cache:        cache,
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot)),
		active:       -1,
		cursorStyle:  lipgloss.NewStyle().Reverse(true),
		trailerStyle: lipgloss.NewStyle().Faint(true),
	}

	tracker.OnChange(l.observe)

	l.scroll = parent.Append(NewPane("list-scroll", host.Style{OverflowY: host.OverflowAuto}))
	l.surface = l.scroll.Append(NewPane("list", host.Style{}))
	l.scroll.SetContent(l.contentHeight)
	return l, nil
}

// Attach starts tracking the scroll host of the list
func (l *List[V]) Attach() error {
	return l.tracker.Attach(l.surface)
}

// Detach stops tracking
func (l *List[V]) Detach() {
	l.tracker.Detach()
}

// Init starts the trailer spinner
func (l *List[V]) Init() tea.Cmd {
	return l.spinner.Tick
}

// Update advances the trailer spinner
func (l *List[V]) Update(msg tea.Msg) tea.Cmd {
	if _, ok := msg.(spinner.TickMsg); !ok {
		return nil
	}
	var cmd tea.Cmd
	l.spinner, cmd = l.spinner.Update(msg)
	return cmd
}

// SetSize sizes the scroll pane and the list surface
func (l *List[V]) SetSize(width, height int) {
	if width != l.surface.width {
		l.cache.Purge()
	}
	l.scroll.SetSize(width, height)
	l.surface.SetSize(width, int(math.Ceil(l.contentHeight())))
}

// Tracker exposes the viewport tracker
func (l *List[V]) Tracker() *viewport.Tracker { return l.tracker }

// ScrollPane returns the pane that scrolls the list
func (l *List[V]) ScrollPane() *Pane { return l.scroll }

func (l *List[V]) metrics() window.RowMetrics {
	return l.config.Viewport.Metrics
}

func (l *List[V]) contentHeight() float64 {
	return window.ContentHeight(l.items.Len(), l.metrics())
}

func (l *List[V]) atEnd() bool {
	return window.AtEnd(l.items.Len(), l.items.KnownTotal())
}

func (l *List[V]) observe(state window.ViewportState) {
	l.state = state
}

// Window returns the rows to render for the current viewport state
func (l *List[V]) Window() window.Window {
	return l.memo.Compute(window.Input{
		Version: l.items.Version(),
		Size:    l.items.Len(),
		Metrics: l.metrics(),
		State:   l.state,
		Config:  l.config.Viewport.Config,
		AtEnd:   l.atEnd(),
	})
}

// Cursor returns the highlighted row
func (l *List[V]) Cursor() int { return l.cursor }

// Active returns the selected row, -1 when none
func (l *List[V]) Active() int { return l.active }

// ToggleActive selects the cursor row, or clears the selection when the row
// is already selected
func (l *List[V]) ToggleActive() {
	if l.items.Len() == 0 {
		return
	}
	if l.active == l.cursor {
		l.active = -1
	} else {
		l.active = l.cursor
	}
}

// MoveCursor moves the cursor by delta rows and scrolls it into view
func (l *List[V]) MoveCursor(delta int) {
	l.SetCursor(l.cursor + delta)
}

// SetCursor places the cursor on row i and scrolls it into view
func (l *List[V]) SetCursor(i int) {
	n := l.items.Len()
	if n == 0 {
		l.cursor = 0
		return
	}
	l.cursor = min(max(i, 0), n-1)
	l.ensureCursorInViewport()
}

// ensureCursorInViewport scrolls the pane so the cursor row stays inside
// the visible lines with a margin
func (l *List[V]) ensureCursorInViewport() {
	m := l.metrics()
	_, height := l.scroll.Size()
	top := m.Top(l.cursor)
	bottom := top + m.RowHeight
	offset := l.scroll.ScrollOffset()

	margin := 3 * m.Stride()
	if height < 8 {
		margin = m.Stride()
	}

	switch {
	case top < offset+margin:
		l.scroll.ScrollTo(top - margin)
	case bottom > offset+float64(height)-margin:
		l.scroll.ScrollTo(bottom - float64(height) + margin)
	}
}

// ScrollBy scrolls the pane and keeps the cursor on screen
func (l *List[V]) ScrollBy(delta float64) {
	l.scroll.ScrollBy(delta)
	l.clampCursor()
}

// ScrollToTop scrolls the list back to its first row
func (l *List[V]) ScrollToTop() {
	l.cursor = 0
	if !l.tracker.ScrollToTop() {
		l.scroll.ScrollTo(0)
	}
}

// clampCursor pulls the cursor into the visible lines after a free scroll
func (l *List[V]) clampCursor() {
	n := l.items.Len()
	if n == 0 {
		return
	}
	m := l.metrics()
	_, height := l.scroll.Size()
	offset := l.scroll.ScrollOffset()

	first := int(math.Ceil(offset / m.Stride()))
	last := int(math.Floor((offset + float64(height) - m.RowHeight) / m.Stride()))
	last = max(min(last, n-1), first)
	l.cursor = min(max(l.cursor, first), last, n-1)
}

// Reset forgets cursor, selection and rendered rows, for a reload
func (l *List[V]) Reset() {
	l.cursor = 0
	l.active = -1
	l.cache.Purge()
	l.memo.Reset()
}

// Invalidate drops rendered rows, for a change of presentation
func (l *List[V]) Invalidate() {
	l.cache.Purge()
}

// View renders the visible lines of the scroll pane
func (l *List[V]) View() string {
	// rows are cached by position, so any change of contents invalidates them
	if v := l.items.Version(); v != l.version {
		l.cache.Purge()
		l.version = v
	}
	l.surface.SetSize(l.scroll.width, int(math.Ceil(l.contentHeight())))

	width, height := l.scroll.Size()
	if height <= 0 {
		return ""
	}
	m := l.metrics()
	rowHeight := int(math.Ceil(m.RowHeight))
	offset := l.scroll.ScrollOffset()
	lines := make([]string, height)

	w := l.Window()
	for row := range w.Rows() {
		line := int(math.Floor(row.Offset - offset))
		if line+rowHeight <= 0 || line >= height {
			continue
		}
		item, ok := l.items.At(row.Index)
		if !ok {
			continue
		}
		for j, text := range strings.Split(l.renderRow(row.Index, item, width, rowHeight), "\n") {
			if k := line + j; k >= 0 && k < height && j < rowHeight {
				lines[k] = text
			}
		}
	}

	if w.ShowTrailer {
		if line := int(math.Floor(w.TrailerOffset - offset)); line >= 0 && line < height {
			lines[line] = l.trailerStyle.Render(l.spinner.View() + " " + l.config.TrailerText)
		}
	}

	return lipgloss.NewStyle().Width(width).Height(height).MaxHeight(height).
		Render(strings.Join(lines, "\n"))
}

func (l *List[V]) renderRow(index int, item V, width, height int) string {
	key := rowKey{index: index, width: width, active: index == l.active, cursor: index == l.cursor}
	if cached, ok := l.cache.Get(key); ok {
		l.cacheHits++
		return cached
	}
	l.cacheMisses++

	rendered := l.renderer.RenderItem(index, item, width, height, key.active)
	if key.cursor {
		rendered = l.cursorStyle.Render(rendered)
	}
	l.cache.Add(key, rendered)
	return rendered
}

// ListStats reports window memo and row cache effectiveness
type ListStats struct {
	Memo         window.MemoStats      `json:"memo"`
	CacheHitRate float64               `json:"cache_hit_rate"`
	Tracker      viewport.TrackerStats `json:"tracker"`
}

// Stats returns list statistics
func (l *List[V]) Stats() ListStats {
	stats := ListStats{Memo: l.memo.Stats(), Tracker: l.tracker.Stats()}
	if total := l.cacheHits + l.cacheMisses; total > 0 {
		stats.CacheHitRate = float64(l.cacheHits) / float64(total)
	}
	return stats
}

// ScrollInfo summarises the position as "[first-last of loaded/total] pct%"
func (l *List[V]) ScrollInfo() string {
	n := l.items.Len()
	if n == 0 {
		return "[0 of 0]"
	}
	m := l.metrics()
	_, height := l.scroll.Size()
	offset := l.scroll.ScrollOffset()

	first := min(int(offset/m.Stride()), n-1)
	last := min(int((offset+float64(height)-1)/m.Stride()), n-1)

	percent := 100.0
	if maxOffset := l.scroll.MaxOffset(); maxOffset > 0 {
		percent = offset / maxOffset * 100
	}
	return fmt.Sprintf("[%d-%d of %d/%s] %.0f%%", first+1, last+1, n, l.items.KnownTotal(), percent)
}
