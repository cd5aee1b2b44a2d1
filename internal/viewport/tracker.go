// Package viewport tracks the scroll offset and container size of a list
// surface and tells the data source when the user nears the end of the data.
package viewport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"leadlist-tui/internal/events"
	"leadlist-tui/internal/host"
	"leadlist-tui/internal/window"
)

// DefaultThrottleInterval bounds how often scroll and resize are handled
const DefaultThrottleInterval = 100 * time.Millisecond

var (
	ErrAlreadyAttached = errors.New("viewport: tracker already attached")
	ErrNoEnvironment   = errors.New("viewport: nil environment")
	ErrNoDataSource    = errors.New("viewport: nil data source")
)

// Phase is the attachment state of a Tracker
type Phase int

const (
	PhaseUnattached Phase = iota
	PhaseAttached
	PhaseMeasured
)

func (p Phase) String() string {
	switch p {
	case PhaseUnattached:
		return "unattached"
	case PhaseAttached:
		return "attached"
	case PhaseMeasured:
		return "measured"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// DataSource supplies the loaded collection size and is told when more data
// is wanted. NeedMoreData may be called repeatedly; the source de-duplicates.
type DataSource interface {
	Len() int
	KnownTotal() window.Total
	NeedMoreData()
}

// Options configures a Tracker
type Options struct {
	Metrics          window.RowMetrics `json:"metrics"`
	Config           window.Config     `json:"config"`
	ThrottleInterval time.Duration     `json:"throttle_interval"`
	// Scheduler drives the throttles, nil means the runtime timer
	Scheduler events.Scheduler `json:"-"`
}

// DefaultOptions returns the stock row metrics, buffers and interval
func DefaultOptions() Options {
	return Options{
		Metrics:          window.DefaultRowMetrics(),
		Config:           window.DefaultConfig(),
		ThrottleInterval: DefaultThrottleInterval,
	}
}

// Validate checks metrics, buffers and interval
func (o Options) Validate() error {
	if err := o.Metrics.Validate(); err != nil {
		return err
	}
	if err := o.Config.Validate(); err != nil {
		return err
	}
	if o.ThrottleInterval < 0 {
		return fmt.Errorf("%w: throttle interval %s is negative", window.ErrInvalidConfig, o.ThrottleInterval)
	}
	return nil
}

// TrackerStats counts tracker activity
type TrackerStats struct {
	ScrollEvents int64                `json:"scroll_events"`
	ResizeEvents int64                `json:"resize_events"`
	Measurements int64                `json:"measurements"`
	FetchSignals int64                `json:"fetch_signals"`
	Scroll       events.DispatchStats `json:"scroll"`
	Resize       events.DispatchStats `json:"resize"`
}

// Tracker owns the ViewportState of one list surface. It is the only writer
// of that state. All callbacks are expected to arrive on a single UI thread.
type Tracker struct {
	env     host.Environment
	source  DataSource
	options Options

	phase   Phase
	state   window.ViewportState
	surface host.Node
	host    host.ScrollHost

	// Attachment resources, released by Detach
	ctx               context.Context
	cancel            context.CancelFunc
	scrollThrottle    *events.ThrottledDispatcher[struct{}]
	resizeThrottle    *events.ThrottledDispatcher[struct{}]
	unsubscribeScroll func()
	unsubscribeResize func()
	cancelFrame       func()

	observers []func(window.ViewportState)
	stats     TrackerStats
	mutex     sync.Mutex
}

// New creates an unattached tracker. Invalid metrics or buffers are rejected.
func New(env host.Environment, source DataSource, options Options) (*Tracker, error) {
	if env == nil {
		return nil, ErrNoEnvironment
	}
	if source == nil {
		return nil, ErrNoDataSource
	}
	if err := options.Validate(); err != nil {
		return nil, fmt.Errorf("viewport: %w", err)
	}
	return &Tracker{
		env:     env,
		source:  source,
		options: options,
	}, nil
}

// Attach binds the tracker to surface: it locates the scroll host, subscribes
// to scroll and resize through throttles and requests a first measurement
func (t *Tracker) Attach(surface host.Node) error {
	t.mutex.Lock()
	if t.phase != PhaseUnattached {
		t.mutex.Unlock()
		return ErrAlreadyAttached
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.ctx = ctx
	t.cancel = cancel
	t.surface = surface
	t.host = host.Locate(surface, t.env.Viewport())
	t.phase = PhaseAttached

	t.scrollThrottle = events.NewThrottledDispatcher(ctx, t.options.Scheduler, t.options.ThrottleInterval, t.handleScroll)
	t.resizeThrottle = events.NewThrottledDispatcher(ctx, t.options.Scheduler, t.options.ThrottleInterval, t.handleResize)
	scrollThrottle := t.scrollThrottle
	resizeThrottle := t.resizeThrottle
	scrollHost := t.host
	t.mutex.Unlock()

	unsubscribeScroll := scrollHost.SubscribeScroll(func() { scrollThrottle.Dispatch(struct{}{}) })
	unsubscribeResize := t.env.SubscribeResize(func() { resizeThrottle.Dispatch(struct{}{}) })
	cancelFrame := t.env.RequestFrame(func() { t.measure(ctx) })

	t.mutex.Lock()
	t.unsubscribeScroll = unsubscribeScroll
	t.unsubscribeResize = unsubscribeResize
	t.cancelFrame = cancelFrame
	t.mutex.Unlock()

	log.Debug("viewport attached", "host", fmt.Sprintf("%T", scrollHost))
	return nil
}

// Detach releases every subscription and cancels pending callbacks. No state
// changes happen afterwards. Detaching an unattached tracker does nothing.
func (t *Tracker) Detach() {
	t.mutex.Lock()
	if t.phase == PhaseUnattached {
		t.mutex.Unlock()
		return
	}

	t.cancel()
	scrollThrottle, resizeThrottle := t.scrollThrottle, t.resizeThrottle
	unsubscribeScroll, unsubscribeResize := t.unsubscribeScroll, t.unsubscribeResize
	cancelFrame := t.cancelFrame

	t.stats.Scroll = scrollThrottle.Stats()
	t.stats.Resize = resizeThrottle.Stats()
	t.phase = PhaseUnattached
	t.surface = nil
	t.host = nil
	t.scrollThrottle = nil
	t.resizeThrottle = nil
	t.unsubscribeScroll = nil
	t.unsubscribeResize = nil
	t.cancelFrame = nil
	t.mutex.Unlock()

	scrollThrottle.Cancel()
	resizeThrottle.Cancel()
	if unsubscribeScroll != nil {
		unsubscribeScroll()
	}
	if unsubscribeResize != nil {
		unsubscribeResize()
	}
	if cancelFrame != nil {
		cancelFrame()
	}
	log.Debug("viewport detached")
}

// handleScroll runs on the trailing or leading edge of the scroll throttle
func (t *Tracker) handleScroll(ctx context.Context, _ struct{}) {
	t.mutex.Lock()
	if ctx.Err() != nil {
		t.mutex.Unlock()
		return
	}

	offset := t.host.ScrollOffset()
	if offset < 0 {
		offset = 0
	}
	t.state.ScrollOffset = offset
	t.stats.ScrollEvents++
	state := t.state
	observers := t.observers
	t.mutex.Unlock()

	notify(observers, state)

	// an observer may have detached the tracker
	if ctx.Err() != nil {
		return
	}

	size := t.source.Len()
	atEnd := window.AtEnd(size, t.source.KnownTotal())
	content := window.ContentHeight(size, t.options.Metrics)
	if !window.ShouldFetchMore(content, state.ContainerSize, state.ScrollOffset, t.options.Config.EndBuffer, atEnd) {
		return
	}

	t.mutex.Lock()
	t.stats.FetchSignals++
	t.mutex.Unlock()

	log.Debug("near end of data", "size", size, "offset", state.ScrollOffset, "content", content)
	t.source.NeedMoreData()
}

func (t *Tracker) handleResize(ctx context.Context, _ struct{}) {
	t.mutex.Lock()
	t.stats.ResizeEvents++
	t.mutex.Unlock()
	t.measure(ctx)
}

// measure reads the container size of the attached surface
func (t *Tracker) measure(ctx context.Context) {
	t.mutex.Lock()
	if ctx.Err() != nil {
		t.mutex.Unlock()
		return
	}
	surface := t.surface
	t.mutex.Unlock()

	size, ok := t.env.Measure(surface)
	if !ok {
		return
	}
	if size < 0 {
		size = 0
	}

	t.mutex.Lock()
	if ctx.Err() != nil {
		t.mutex.Unlock()
		return
	}
	t.state.ContainerSize = size
	t.phase = PhaseMeasured
	t.stats.Measurements++
	state := t.state
	observers := t.observers
	t.mutex.Unlock()

	notify(observers, state)
}

// ScrollToTop scrolls the host back to offset zero when it supports it. The
// resulting scroll notification updates the state through the usual path.
func (t *Tracker) ScrollToTop() bool {
	t.mutex.Lock()
	scrollHost := t.host
	t.mutex.Unlock()

	scroller, ok := scrollHost.(host.Scroller)
	if !ok {
		return false
	}
	scroller.ScrollTo(0)
	return true
}

// OnChange registers fn to run after every state change
func (t *Tracker) OnChange(fn func(window.ViewportState)) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	observers := make([]func(window.ViewportState), len(t.observers), len(t.observers)+1)
	copy(observers, t.observers)
	t.observers = append(observers, fn)
}

// State returns the current viewport state
func (t *Tracker) State() window.ViewportState {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.state
}

// Phase returns the attachment phase
func (t *Tracker) Phase() Phase {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.phase
}

// Host returns the located scroll host, nil when unattached
func (t *Tracker) Host() host.ScrollHost {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.host
}

// Options returns the tracker configuration
func (t *Tracker) Options() Options {
	return t.options
}

// Stats returns activity counters, including the live throttle counters
func (t *Tracker) Stats() TrackerStats {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	stats := t.stats
	if t.scrollThrottle != nil {
		stats.Scroll = t.scrollThrottle.Stats()
	}
	if t.resizeThrottle != nil {
		stats.Resize = t.resizeThrottle.Stats()
	}
	return stats
}

func notify(observers []func(window.ViewportState), state window.ViewportState) {
	for _, fn := range observers {
		fn(state)
	}
}
