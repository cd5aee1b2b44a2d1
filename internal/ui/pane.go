package ui

import (
	"math"

	"leadlist-tui/internal/host"
)

// Pane is a rectangular region of the screen arranged in a tree. A pane whose
// overflow scrolls keeps a scroll offset clamped to its content.
type Pane struct {
	name     string
	parent   *Pane
	children []*Pane
	document bool
	style    host.Style

	width  int
	height int
	// content reports the scrollable height, nil means the pane's own height
	content func() float64

	offset    float64
	listeners host.Listeners
}

// NewPane creates a detached pane
func NewPane(name string, style host.Style) *Pane {
	return &Pane{name: name, style: style}
}

// Append mounts child under p
func (p *Pane) Append(child *Pane) *Pane {
	child.Detach()
	child.parent = p
	p.children = append(p.children, child)
	return child
}

// Detach unmounts p from its parent
func (p *Pane) Detach() {
	if p.parent == nil {
		return
	}
	siblings := p.parent.children
	for i, c := range siblings {
		if c == p {
			p.parent.children = append(siblings[:i:i], siblings[i+1:]...)
			break
		}
	}
	p.parent = nil
}

// Mounted reports whether p is attached to a document
func (p *Pane) Mounted() bool {
	for node := p; node != nil; node = node.parent {
		if node.document {
			return true
		}
	}
	return false
}

// Parent implements host.Node
func (p *Pane) Parent() host.Node {
	if p.parent == nil {
		return nil
	}
	return p.parent
}

// IsDocument implements host.Node
func (p *Pane) IsDocument() bool { return p.document }

// ComputedStyle implements host.Node
func (p *Pane) ComputedStyle() host.Style { return p.style }

// Name returns the pane name
func (p *Pane) Name() string { return p.name }

// SetSize sets the pane dimensions and re-clamps the scroll offset
func (p *Pane) SetSize(width, height int) {
	p.width = max(width, 0)
	p.height = max(height, 0)
	p.ScrollTo(p.offset)
}

// Size returns the pane dimensions
func (p *Pane) Size() (int, int) { return p.width, p.height }

// SetContent installs the function reporting the scrollable height
func (p *Pane) SetContent(content func() float64) {
	p.content = content
}

// ContentHeight returns the scrollable height of the pane
func (p *Pane) ContentHeight() float64 {
	if p.content == nil {
		return float64(p.height)
	}
	return p.content()
}

// MaxOffset is the largest offset that still fills the pane
func (p *Pane) MaxOffset() float64 {
	return math.Max(p.ContentHeight()-float64(p.height), 0)
}

// ScrollOffset implements host.ScrollHost
func (p *Pane) ScrollOffset() float64 { return p.offset }

// SubscribeScroll implements host.ScrollHost
func (p *Pane) SubscribeScroll(fn func()) func() {
	return p.listeners.Add(fn)
}

// ScrollTo moves the pane to offset, clamped to the content. Listeners are
// notified only when the offset changes.
func (p *Pane) ScrollTo(offset float64) {
	offset = math.Max(math.Min(offset, p.MaxOffset()), 0)
	if offset == p.offset {
		return
	}
	p.offset = offset
	p.listeners.Notify()
}

// ScrollBy moves the pane by delta
func (p *Pane) ScrollBy(delta float64) {
	p.ScrollTo(p.offset + delta)
}
