package ui

import (
	"maps"
	"slices"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"leadlist-tui/internal/host"
)

// deferredMsg carries a scheduled callback back to the Update loop
type deferredMsg struct {
	id uint64
}

// frameMsg marks the next paint opportunity
type frameMsg struct{}

// Terminal is the host environment of the list: the document pane is the
// top-level viewport, resize comes from tea.WindowSizeMsg, and deferred work
// runs as messages inside Update so every callback shares the UI thread.
type Terminal struct {
	document *Pane
	resize   host.Listeners

	// Deferred callbacks
	nextID   uint64
	timers   map[uint64]func()
	frames   map[uint64]func()
	frameCmd bool
	pending  []tea.Cmd
	now      func() time.Time

	mutex sync.Mutex
}

// NewTerminal creates a terminal with an empty document
func NewTerminal() *Terminal {
	document := NewPane("document", host.Style{Overflow: host.OverflowAuto})
	document.document = true
	return &Terminal{
		document: document,
		timers:   make(map[uint64]func()),
		frames:   make(map[uint64]func()),
		now:      time.Now,
	}
}

// Document returns the root pane
func (t *Terminal) Document() *Pane { return t.document }

// Viewport implements host.Environment
func (t *Terminal) Viewport() host.ScrollHost { return t.document }

// SubscribeResize implements host.Environment
func (t *Terminal) SubscribeResize(fn func()) func() {
	return t.resize.Add(fn)
}

// Resize resizes the document and notifies resize subscribers
func (t *Terminal) Resize(width, height int) {
	t.document.SetSize(width, height)
	t.resize.Notify()
}

// RequestFrame implements host.Environment
func (t *Terminal) RequestFrame(fn func()) func() {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.nextID++
	id := t.nextID
	t.frames[id] = fn
	if !t.frameCmd {
		t.frameCmd = true
		t.pending = append(t.pending, func() tea.Msg { return frameMsg{} })
	}
	return func() {
		t.mutex.Lock()
		defer t.mutex.Unlock()
		delete(t.frames, id)
	}
}

// Measure implements host.Environment. The container of a surface is its
// parent pane.
func (t *Terminal) Measure(surface host.Node) (float64, bool) {
	pane, ok := surface.(*Pane)
	if !ok || pane == nil || pane.parent == nil || !pane.Mounted() {
		return 0, false
	}
	_, height := pane.parent.Size()
	return float64(height), true
}

// Now implements events.Scheduler
func (t *Terminal) Now() time.Time {
	return t.now()
}

// AfterFunc implements events.Scheduler. fn runs inside Update once the
// tick message arrives.
func (t *Terminal) AfterFunc(d time.Duration, fn func()) func() bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.nextID++
	id := t.nextID
	t.timers[id] = fn
	t.pending = append(t.pending, tea.Tick(d, func(time.Time) tea.Msg {
		return deferredMsg{id: id}
	}))

	return func() bool {
		t.mutex.Lock()
		defer t.mutex.Unlock()
		if _, ok := t.timers[id]; !ok {
			return false
		}
		delete(t.timers, id)
		return true
	}
}

// Update runs the callbacks a message stands for. It reports whether msg
// belonged to the terminal.
func (t *Terminal) Update(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case deferredMsg:
		t.mutex.Lock()
		fn, ok := t.timers[msg.id]
		delete(t.timers, msg.id)
		t.mutex.Unlock()
		if ok {
			fn()
		}
		return true

	case frameMsg:
		t.mutex.Lock()
		frames := t.frames
		t.frames = make(map[uint64]func())
		t.frameCmd = false
		t.mutex.Unlock()

		for _, id := range slices.Sorted(maps.Keys(frames)) {
			frames[id]()
		}
		return true
	}
	return false
}

// Cmd drains the commands queued by scheduled callbacks
func (t *Terminal) Cmd() tea.Cmd {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if len(t.pending) == 0 {
		return nil
	}
	cmds := t.pending
	t.pending = nil
	return tea.Batch(cmds...)
}

// Pending returns the number of callbacks waiting to run
func (t *Terminal) Pending() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return len(t.timers) + len(t.frames)
}
