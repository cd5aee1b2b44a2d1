package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeNode struct {
	parent   Node
	document bool
	style    Style
}

func (n *fakeNode) Parent() Node         { return n.parent }
func (n *fakeNode) IsDocument() bool     { return n.document }
func (n *fakeNode) ComputedStyle() Style { return n.style }

type scrollNode struct {
	fakeNode
	offset    float64
	listeners Listeners
}

func (n *scrollNode) ScrollOffset() float64            { return n.offset }
func (n *scrollNode) SubscribeScroll(fn func()) func() { return n.listeners.Add(fn) }

type fakeViewport struct{ Listeners }

func (v *fakeViewport) ScrollOffset() float64            { return 0 }
func (v *fakeViewport) SubscribeScroll(fn func()) func() { return v.Add(fn) }

func TestEffectiveOverflowY(t *testing.T) {
	assert.Equal(t, OverflowAuto, Style{Overflow: OverflowAuto}.EffectiveOverflowY())
	assert.Equal(t, OverflowHidden, Style{Overflow: OverflowAuto, OverflowY: OverflowHidden}.EffectiveOverflowY())
	assert.Equal(t, OverflowScroll, Style{OverflowY: OverflowScroll}.EffectiveOverflowY())
	assert.Equal(t, OverflowUnset, Style{}.EffectiveOverflowY())

	assert.True(t, OverflowAuto.Scrolls())
	assert.True(t, OverflowScroll.Scrolls())
	assert.False(t, OverflowHidden.Scrolls())
	assert.False(t, OverflowVisible.Scrolls())
}

func TestLocateNearestScrollingAncestor(t *testing.T) {
	doc := &fakeNode{document: true, style: Style{Overflow: OverflowAuto}}
	outer := &scrollNode{fakeNode: fakeNode{parent: doc, style: Style{OverflowY: OverflowScroll}}}
	middle := &scrollNode{fakeNode: fakeNode{parent: outer, style: Style{Overflow: OverflowAuto}}}
	plain := &fakeNode{parent: middle, style: Style{Overflow: OverflowVisible}}
	surface := &fakeNode{parent: plain}

	assert.Same(t, middle, Locate(surface, &fakeViewport{}))
}

func TestLocateHonoursOverflowYOverride(t *testing.T) {
	scroll := &scrollNode{fakeNode: fakeNode{style: Style{Overflow: OverflowHidden, OverflowY: OverflowAuto}}}
	hidden := &scrollNode{fakeNode: fakeNode{parent: scroll, style: Style{Overflow: OverflowAuto, OverflowY: OverflowHidden}}}
	surface := &fakeNode{parent: hidden}

	assert.Same(t, scroll, Locate(surface, &fakeViewport{}))
}

func TestLocateSkipsDocument(t *testing.T) {
	doc := &scrollNode{fakeNode: fakeNode{document: true, style: Style{Overflow: OverflowScroll}}}
	surface := &fakeNode{parent: doc}

	viewport := &fakeViewport{}
	assert.Same(t, viewport, Locate(surface, viewport))
}

func TestLocateFallsBackToViewport(t *testing.T) {
	viewport := &fakeViewport{}

	assert.Same(t, viewport, Locate(nil, viewport))
	assert.Same(t, viewport, Locate(&fakeNode{}, viewport))

	// scrolling style without scroll capability is not a host
	plain := &fakeNode{style: Style{Overflow: OverflowAuto}}
	assert.Same(t, viewport, Locate(&fakeNode{parent: plain}, viewport))
}

func TestListeners(t *testing.T) {
	var l Listeners
	var order []int

	unsubA := l.Add(func() { order = append(order, 1) })
	l.Add(func() { order = append(order, 2) })
	unsubC := l.Add(func() { order = append(order, 3) })
	assert.Equal(t, 3, l.Len())

	l.Notify()
	assert.Equal(t, []int{1, 2, 3}, order)

	unsubA()
	unsubA()
	unsubC()
	order = nil
	l.Notify()
	assert.Equal(t, []int{2}, order)
	assert.Equal(t, 1, l.Len())
}

func TestListenersUnsubscribeDuringNotify(t *testing.T) {
	var l Listeners
	calls := 0
	var unsub func()
	unsub = l.Add(func() {
		calls++
		unsub()
	})

	l.Notify()
	l.Notify()
	assert.Equal(t, 1, calls)
}
