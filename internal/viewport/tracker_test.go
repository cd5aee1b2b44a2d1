package viewport

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadlist-tui/internal/events"
	"leadlist-tui/internal/host"
	"leadlist-tui/internal/window"
)

type fakeHost struct {
	offset    float64
	listeners host.Listeners
}

func (h *fakeHost) ScrollOffset() float64            { return h.offset }
func (h *fakeHost) SubscribeScroll(fn func()) func() { return h.listeners.Add(fn) }

func (h *fakeHost) ScrollTo(offset float64) {
	h.offset = offset
	h.listeners.Notify()
}

// scroll moves the host and fires a scroll notification
func (h *fakeHost) scroll(offset float64) {
	h.offset = offset
	h.listeners.Notify()
}

type fakeSurface struct{ parent host.Node }

func (s *fakeSurface) Parent() host.Node         { return s.parent }
func (s *fakeSurface) IsDocument() bool          { return false }
func (s *fakeSurface) ComputedStyle() host.Style { return host.Style{} }

type fakeEnv struct {
	viewport  *fakeHost
	resize    host.Listeners
	frames    []*frame
	cancelled int
	size      float64
	mounted   bool
}

func newFakeEnv() *fakeEnv {
	return &fakeEnv{viewport: &fakeHost{}, size: 1000, mounted: true}
}

func (e *fakeEnv) Viewport() host.ScrollHost         { return e.viewport }
func (e *fakeEnv) SubscribeResize(fn func()) func()  { return e.resize.Add(fn) }
func (e *fakeEnv) Measure(host.Node) (float64, bool) { return e.size, e.mounted }

type frame struct {
	fn   func()
	done bool
}

func (e *fakeEnv) RequestFrame(fn func()) func() {
	f := &frame{fn: fn}
	e.frames = append(e.frames, f)
	return func() {
		if !f.done {
			f.done = true
			e.cancelled++
		}
	}
}

// paint runs every pending frame callback
func (e *fakeEnv) paint() {
	frames := e.frames
	e.frames = nil
	for _, f := range frames {
		if !f.done {
			f.done = true
			f.fn()
		}
	}
}

type fakeSource struct {
	size    int
	total   window.Total
	signals int
}

func (s *fakeSource) Len() int                 { return s.size }
func (s *fakeSource) KnownTotal() window.Total { return s.total }
func (s *fakeSource) NeedMoreData()            { s.signals++ }

type fixture struct {
	env     *fakeEnv
	source  *fakeSource
	clock   *events.ManualClock
	tracker *Tracker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		env:    newFakeEnv(),
		source: &fakeSource{size: 1000, total: window.UnknownTotal},
		clock:  events.NewManualClock(time.Unix(0, 0)),
	}
	options := DefaultOptions()
	options.Scheduler = f.clock

	tracker, err := New(f.env, f.source, options)
	require.NoError(t, err)
	f.tracker = tracker
	return f
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	env := newFakeEnv()
	source := &fakeSource{}

	options := DefaultOptions()
	options.Metrics.RowHeight = 0
	_, err := New(env, source, options)
	assert.True(t, errors.Is(err, window.ErrInvalidMetrics))

	options = DefaultOptions()
	options.Config.EndBuffer = -1
	_, err = New(env, source, options)
	assert.True(t, errors.Is(err, window.ErrInvalidConfig))

	options = DefaultOptions()
	options.ThrottleInterval = -time.Second
	_, err = New(env, source, options)
	assert.True(t, errors.Is(err, window.ErrInvalidConfig))

	_, err = New(nil, source, DefaultOptions())
	assert.Equal(t, ErrNoEnvironment, err)
	_, err = New(env, nil, DefaultOptions())
	assert.Equal(t, ErrNoDataSource, err)
}

func TestAttachThenMeasure(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, PhaseUnattached, f.tracker.Phase())

	var seen []window.ViewportState
	f.tracker.OnChange(func(s window.ViewportState) { seen = append(seen, s) })

	require.NoError(t, f.tracker.Attach(&fakeSurface{}))
	assert.Equal(t, PhaseAttached, f.tracker.Phase())
	assert.Equal(t, 0.0, f.tracker.State().ContainerSize)
	assert.Same(t, f.env.viewport, f.tracker.Host())

	f.env.paint()
	assert.Equal(t, PhaseMeasured, f.tracker.Phase())
	assert.Equal(t, 1000.0, f.tracker.State().ContainerSize)
	require.Len(t, seen, 1)
	assert.Equal(t, 1000.0, seen[0].ContainerSize)

	assert.Equal(t, ErrAlreadyAttached, f.tracker.Attach(&fakeSurface{}))
}

func TestAttachUsesScrollingAncestor(t *testing.T) {
	f := newFixture(t)
	pane := &scrollPane{}
	require.NoError(t, f.tracker.Attach(&fakeSurface{parent: pane}))
	assert.Same(t, pane, f.tracker.Host())
}

func TestScrollUpdatesOffset(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.tracker.Attach(&fakeSurface{}))
	f.env.paint()

	f.env.viewport.scroll(500)
	assert.Equal(t, 500.0, f.tracker.State().ScrollOffset)
	assert.Equal(t, 0, f.source.signals)

	// throttled: the read happens on the trailing edge with the value current then
	f.clock.Advance(10 * time.Millisecond)
	f.env.viewport.scroll(700)
	f.env.viewport.offset = 900
	assert.Equal(t, 500.0, f.tracker.State().ScrollOffset)

	f.clock.Advance(100 * time.Millisecond)
	assert.Equal(t, 900.0, f.tracker.State().ScrollOffset)
}

func TestNeedMoreDataIsEdgeUnaware(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.tracker.Attach(&fakeSurface{}))
	f.env.paint()

	// 44120 - 1000 - 500 = 42620 left
	f.env.viewport.scroll(500)
	assert.Equal(t, 0, f.source.signals)

	// -480 left, signals on every qualifying event
	for i := 0; i < 3; i++ {
		f.clock.Advance(200 * time.Millisecond)
		f.env.viewport.scroll(43600 + float64(i))
	}
	assert.Equal(t, 3, f.source.signals)
	assert.Equal(t, int64(3), f.tracker.Stats().FetchSignals)
}

func TestNeedMoreDataSuppressedAtEnd(t *testing.T) {
	f := newFixture(t)
	f.source.total = window.KnownTotal(1000)
	require.NoError(t, f.tracker.Attach(&fakeSurface{}))
	f.env.paint()

	f.env.viewport.scroll(43600)
	f.clock.Advance(time.Second)
	f.env.viewport.scroll(1e6)
	assert.Equal(t, 0, f.source.signals)
	assert.Equal(t, 1e6, f.tracker.State().ScrollOffset)
}

func TestDetachCancelsTrailingScroll(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.tracker.Attach(&fakeSurface{}))
	f.env.paint()

	f.env.viewport.scroll(100)
	f.clock.Advance(10 * time.Millisecond)
	f.env.viewport.scroll(43600)
	require.Equal(t, 1, f.clock.Pending())

	f.tracker.Detach()
	assert.Equal(t, PhaseUnattached, f.tracker.Phase())
	assert.Equal(t, 0, f.env.viewport.listeners.Len())
	assert.Equal(t, 0, f.env.resize.Len())

	f.clock.Advance(time.Second)
	assert.Equal(t, 100.0, f.tracker.State().ScrollOffset)
	assert.Equal(t, 0, f.source.signals)

	// detaching twice is harmless
	f.tracker.Detach()
}

func TestDetachCancelsPendingFrame(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.tracker.Attach(&fakeSurface{}))
	f.tracker.Detach()

	assert.Equal(t, 1, f.env.cancelled)
	f.env.paint()
	assert.Equal(t, 0.0, f.tracker.State().ContainerSize)
	assert.Equal(t, PhaseUnattached, f.tracker.Phase())
}

func TestDeferredCallbackAfterDetachIsNoop(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.tracker.Attach(&fakeSurface{}))
	ctx := f.tracker.ctx
	f.tracker.Detach()

	// a callback that escaped cancellation still checks the token
	f.tracker.measure(ctx)
	f.tracker.handleScroll(ctx, struct{}{})
	assert.Equal(t, window.ViewportState{}, f.tracker.State())
	assert.Equal(t, 0, f.source.signals)
	assert.Error(t, ctx.Err())
}

func TestMeasureSkippedWhenNotMounted(t *testing.T) {
	f := newFixture(t)
	f.env.mounted = false
	require.NoError(t, f.tracker.Attach(&fakeSurface{}))
	f.env.paint()

	assert.Equal(t, PhaseAttached, f.tracker.Phase())
	assert.Equal(t, int64(0), f.tracker.Stats().Measurements)
}

func TestResizeRemeasures(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.tracker.Attach(&fakeSurface{}))
	f.env.paint()

	f.env.size = 600
	f.env.resize.Notify()
	assert.Equal(t, 600.0, f.tracker.State().ContainerSize)

	f.env.size = 300
	f.env.resize.Notify()
	f.env.size = 200
	f.env.resize.Notify()
	assert.Equal(t, 600.0, f.tracker.State().ContainerSize)

	f.clock.Advance(100 * time.Millisecond)
	assert.Equal(t, 200.0, f.tracker.State().ContainerSize)
	stats := f.tracker.Stats()
	assert.Equal(t, int64(2), stats.ResizeEvents)
	assert.Equal(t, int64(3), stats.Resize.Received)
	assert.Equal(t, int64(1), stats.Resize.Coalesced)
}

func TestContainerNotRemeasuredOnGrowth(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.tracker.Attach(&fakeSurface{}))
	f.env.paint()

	f.env.size = 2000
	f.source.size = 5000
	f.env.viewport.scroll(10)
	assert.Equal(t, 1000.0, f.tracker.State().ContainerSize)
}

func TestScrollToTop(t *testing.T) {
	f := newFixture(t)
	assert.False(t, f.tracker.ScrollToTop())

	require.NoError(t, f.tracker.Attach(&fakeSurface{}))
	f.env.paint()
	f.env.viewport.scroll(400)

	f.clock.Advance(time.Second)
	assert.True(t, f.tracker.ScrollToTop())
	assert.Equal(t, 0.0, f.tracker.State().ScrollOffset)
}

func TestReattachAfterDetach(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.tracker.Attach(&fakeSurface{}))
	f.tracker.Detach()
	require.NoError(t, f.tracker.Attach(&fakeSurface{}))
	f.env.paint()

	assert.Equal(t, PhaseMeasured, f.tracker.Phase())
	assert.Equal(t, 1, f.env.viewport.listeners.Len())
}

func TestObserverMayDetach(t *testing.T) {
	f := newFixture(t)
	f.tracker.OnChange(func(s window.ViewportState) {
		if s.ScrollOffset > 0 {
			f.tracker.Detach()
		}
	})
	require.NoError(t, f.tracker.Attach(&fakeSurface{}))
	f.env.paint()

	f.env.viewport.scroll(43600)
	assert.Equal(t, PhaseUnattached, f.tracker.Phase())
	assert.Equal(t, 0, f.source.signals)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "unattached", PhaseUnattached.String())
	assert.Equal(t, "measured", PhaseMeasured.String())
	assert.Equal(t, "phase(9)", Phase(9).String())
}

type scrollPane struct {
	fakeHost
}

func (p *scrollPane) Parent() host.Node { return nil }
func (p *scrollPane) IsDocument() bool  { return false }
func (p *scrollPane) ComputedStyle() host.Style {
	return host.Style{OverflowY: host.OverflowAuto}
}
