package events

import (
	"context"
	"sync"
	"time"
)

// DispatchStats counts how incoming events were handled
type DispatchStats struct {
	Received  int64 `json:"received"`
	Immediate int64 `json:"immediate"`
	Trailing  int64 `json:"trailing"`
	Coalesced int64 `json:"coalesced"`
	Dropped   int64 `json:"dropped"`
}

// ThrottledDispatcher forwards bursts of events to a handler at most once per
// interval. The first event of an idle period runs immediately and the latest
// event of a burst runs on the trailing edge. After Cancel, or once the parent
// context is done, nothing reaches the handler again.
type ThrottledDispatcher[T any] struct {
	handler   func(ctx context.Context, value T)
	interval  time.Duration
	scheduler Scheduler

	ctx    context.Context
	cancel context.CancelFunc

	// Throttle state
	lastFire     time.Time
	fired        bool
	pending      bool
	pendingValue T
	stopTimer    func() bool
	generation   uint64

	stats DispatchStats
	mutex sync.Mutex
}

// NewThrottledDispatcher creates a dispatcher bound to ctx. A nil scheduler
// uses the runtime timer.
func NewThrottledDispatcher[T any](ctx context.Context, scheduler Scheduler, interval time.Duration, handler func(ctx context.Context, value T)) *ThrottledDispatcher[T] {
	if scheduler == nil {
		scheduler = TimerScheduler{}
	}
	if interval < 0 {
		interval = 0
	}
	dctx, cancel := context.WithCancel(ctx)

	return &ThrottledDispatcher[T]{
		handler:   handler,
		interval:  interval,
		scheduler: scheduler,
		ctx:       dctx,
		cancel:    cancel,
	}
}

// Dispatch offers value to the handler, invoking it now or deferring it to
// the end of the current interval
func (td *ThrottledDispatcher[T]) Dispatch(value T) {
	td.mutex.Lock()
	td.stats.Received++

	if td.ctx.Err() != nil {
		td.stats.Dropped++
		td.mutex.Unlock()
		return
	}

	now := td.scheduler.Now()
	if !td.pending && (!td.fired || now.Sub(td.lastFire) >= td.interval) {
		td.lastFire = now
		td.fired = true
		td.stats.Immediate++
		ctx := td.ctx
		td.mutex.Unlock()

		td.handler(ctx, value)
		return
	}

	td.pendingValue = value
	if td.pending {
		td.stats.Coalesced++
		td.mutex.Unlock()
		return
	}

	td.pending = true
	gen := td.generation
	delay := td.lastFire.Add(td.interval).Sub(now)
	td.stopTimer = td.scheduler.AfterFunc(delay, func() { td.flush(gen) })
	td.mutex.Unlock()
}

// flush delivers the pending value if it still belongs to generation gen
func (td *ThrottledDispatcher[T]) flush(gen uint64) {
	td.mutex.Lock()
	if gen != td.generation || !td.pending {
		td.mutex.Unlock()
		return
	}

	value := td.pendingValue
	var zero T
	td.pendingValue = zero
	td.pending = false
	td.stopTimer = nil

	if td.ctx.Err() != nil {
		td.stats.Dropped++
		td.mutex.Unlock()
		return
	}

	td.lastFire = td.scheduler.Now()
	td.fired = true
	td.stats.Trailing++
	ctx := td.ctx
	td.mutex.Unlock()

	td.handler(ctx, value)
}

// Cancel stops the dispatcher and discards any pending trailing call
func (td *ThrottledDispatcher[T]) Cancel() {
	td.mutex.Lock()
	defer td.mutex.Unlock()

	td.cancel()
	td.generation++
	if td.pending {
		td.stats.Dropped++
	}
	td.pending = false
	var zero T
	td.pendingValue = zero
	if td.stopTimer != nil {
		td.stopTimer()
		td.stopTimer = nil
	}
}

// Pending reports whether a trailing call is scheduled
func (td *ThrottledDispatcher[T]) Pending() bool {
	td.mutex.Lock()
	defer td.mutex.Unlock()
	return td.pending
}

// Context returns the liveness token handed to the handler
func (td *ThrottledDispatcher[T]) Context() context.Context {
	return td.ctx
}

// Stats returns a snapshot of the dispatch counters
func (td *ThrottledDispatcher[T]) Stats() DispatchStats {
	td.mutex.Lock()
	defer td.mutex.Unlock()
	return td.stats
}
