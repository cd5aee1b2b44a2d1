// Package host describes the environment a list surface lives in: the node
// tree it is mounted into, the scroll hosts of that tree and the viewport.
package host

import "sync"

// Overflow is a computed overflow style value
type Overflow string

const (
	OverflowUnset   Overflow = ""
	OverflowVisible Overflow = "visible"
	OverflowHidden  Overflow = "hidden"
	OverflowAuto    Overflow = "auto"
	OverflowScroll  Overflow = "scroll"
)

// Scrolls reports whether the value makes a node a scroll container
func (o Overflow) Scrolls() bool {
	return o == OverflowAuto || o == OverflowScroll
}

// Style holds the computed overflow of a node
type Style struct {
	Overflow  Overflow `json:"overflow"`
	OverflowY Overflow `json:"overflow_y"`
}

// EffectiveOverflowY returns OverflowY, falling back to Overflow when unset
func (s Style) EffectiveOverflowY() Overflow {
	if s.OverflowY != OverflowUnset {
		return s.OverflowY
	}
	return s.Overflow
}

// Node is an element of the host's node tree
type Node interface {
	// Parent returns nil at the root
	Parent() Node
	IsDocument() bool
	ComputedStyle() Style
}

// ScrollHost is a node, or the viewport, whose scroll offset can be read
// and observed
type ScrollHost interface {
	ScrollOffset() float64
	SubscribeScroll(fn func()) (unsubscribe func())
}

// Scroller is implemented by hosts that can be scrolled programmatically
type Scroller interface {
	ScrollTo(offset float64)
}

// Environment is everything the viewport tracker needs from its host
type Environment interface {
	// Viewport is the top-level scroll host used when no ancestor scrolls
	Viewport() ScrollHost
	SubscribeResize(fn func()) (unsubscribe func())
	// RequestFrame runs fn at the next paint opportunity
	RequestFrame(fn func()) (cancel func())
	// Measure returns the container size of surface, false when it is not
	// mounted
	Measure(surface Node) (float64, bool)
}

// Locate returns the nearest ancestor of surface that scrolls, or viewport
// when the chain is exhausted
func Locate(surface Node, viewport ScrollHost) ScrollHost {
	if surface == nil {
		return viewport
	}
	for node := surface.Parent(); node != nil; node = node.Parent() {
		if node.IsDocument() {
			continue
		}
		if !node.ComputedStyle().EffectiveOverflowY().Scrolls() {
			continue
		}
		if sh, ok := node.(ScrollHost); ok {
			return sh
		}
	}
	return viewport
}

// Listeners is an ordered set of callbacks. The zero value is ready to use.
type Listeners struct {
	nextID    uint64
	callbacks []listener
	mutex     sync.Mutex
}

type listener struct {
	id uint64
	fn func()
}

// Add registers fn and returns a function that removes it. Calling the
// returned function more than once is harmless.
func (l *Listeners) Add(fn func()) func() {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.nextID++
	id := l.nextID
	l.callbacks = append(l.callbacks, listener{id: id, fn: fn})

	return func() {
		l.mutex.Lock()
		defer l.mutex.Unlock()
		for i, cb := range l.callbacks {
			if cb.id == id {
				l.callbacks = append(l.callbacks[:i:i], l.callbacks[i+1:]...)
				return
			}
		}
	}
}

// Notify calls every registered callback in registration order
func (l *Listeners) Notify() {
	l.mutex.Lock()
	snapshot := make([]func(), len(l.callbacks))
	for i, cb := range l.callbacks {
		snapshot[i] = cb.fn
	}
	l.mutex.Unlock()

	for _, fn := range snapshot {
		fn()
	}
}

// Len returns the number of registered callbacks
func (l *Listeners) Len() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return len(l.callbacks)
}
