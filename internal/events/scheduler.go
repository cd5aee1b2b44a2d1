package events

import (
	"sort"
	"sync"
	"time"
)

// Scheduler abstracts the clock used by dispatchers so callers can swap in a
// deterministic implementation
type Scheduler interface {
	Now() time.Time
	// AfterFunc runs fn once d has elapsed. The returned stop function
	// reports whether the call was prevented.
	AfterFunc(d time.Duration, fn func()) (stop func() bool)
}

// TimerScheduler schedules callbacks on the runtime timer
type TimerScheduler struct{}

// Now returns the wall clock time
func (TimerScheduler) Now() time.Time {
	return time.Now()
}

// AfterFunc wraps time.AfterFunc
func (TimerScheduler) AfterFunc(d time.Duration, fn func()) func() bool {
	timer := time.AfterFunc(d, fn)
	return timer.Stop
}

// manualTimer is a callback registered with a ManualClock
type manualTimer struct {
	deadline time.Time
	seq      uint64
	fn       func()
}

// ManualClock is a Scheduler whose time only moves when Advance is called.
// Due callbacks run synchronously on the goroutine calling Advance.
type ManualClock struct {
	now    time.Time
	seq    uint64
	timers []*manualTimer
	mutex  sync.Mutex
}

// NewManualClock creates a clock starting at start
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current manual time
func (mc *ManualClock) Now() time.Time {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()
	return mc.now
}

// AfterFunc registers fn to run once the clock has advanced by d
func (mc *ManualClock) AfterFunc(d time.Duration, fn func()) func() bool {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	if d < 0 {
		d = 0
	}
	mc.seq++
	timer := &manualTimer{deadline: mc.now.Add(d), seq: mc.seq, fn: fn}
	mc.timers = append(mc.timers, timer)

	return func() bool {
		mc.mutex.Lock()
		defer mc.mutex.Unlock()
		for i, t := range mc.timers {
			if t == timer {
				mc.timers = append(mc.timers[:i], mc.timers[i+1:]...)
				return true
			}
		}
		return false
	}
}

// Advance moves the clock forward by d, firing due callbacks in deadline
// order. Now reports each callback's deadline while it runs, and callbacks
// scheduled from inside a callback fire too if they fall due within d.
func (mc *ManualClock) Advance(d time.Duration) {
	mc.mutex.Lock()
	target := mc.now.Add(d)
	mc.mutex.Unlock()

	for {
		timer := mc.popDue(target)
		if timer == nil {
			break
		}
		timer.fn()
	}

	mc.mutex.Lock()
	if target.After(mc.now) {
		mc.now = target
	}
	mc.mutex.Unlock()
}

// AdvanceTo moves the clock to t if t is in the future
func (mc *ManualClock) AdvanceTo(t time.Time) {
	d := t.Sub(mc.Now())
	if d > 0 {
		mc.Advance(d)
	}
}

// Pending returns the number of callbacks that have not fired yet
func (mc *ManualClock) Pending() int {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()
	return len(mc.timers)
}

func (mc *ManualClock) popDue(target time.Time) *manualTimer {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	if len(mc.timers) == 0 {
		return nil
	}
	sort.SliceStable(mc.timers, func(i, j int) bool {
		if mc.timers[i].deadline.Equal(mc.timers[j].deadline) {
			return mc.timers[i].seq < mc.timers[j].seq
		}
		return mc.timers[i].deadline.Before(mc.timers[j].deadline)
	})

	next := mc.timers[0]
	if next.deadline.After(target) {
		return nil
	}
	mc.timers = mc.timers[1:]
	if next.deadline.After(mc.now) {
		mc.now = next.deadline
	}
	return next
}
