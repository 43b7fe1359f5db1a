package timing

import (
	"sync"
	"time"
)

// Interval invokes a callback repeatedly at a configurable period.
//
// Two properties distinguish it from a bare [time.Ticker]:
//
//   - The callback can be rebound with [Interval.SetFunc] without restarting
//     the timer; the next firing uses the most recently supplied function.
//   - The period can be changed with [Interval.SetEvery]; a zero period
//     suspends firing entirely until a positive period is supplied again.
//
// An Interval is safe for concurrent use. The callback is invoked from a
// timer goroutine; invocations never overlap.
type Interval struct {
	mu      sync.Mutex
	fn      func()
	every   time.Duration
	timer   *time.Timer
	stopped bool
}

// NewInterval creates an [Interval] firing fn every period.
//
// A zero or negative period creates the interval in the suspended state;
// it will not fire until [Interval.SetEvery] supplies a positive period.
func NewInterval(fn func(), every time.Duration) *Interval {
	iv := &Interval{fn: fn}
	iv.SetEvery(every)
	return iv
}

// SetFunc rebinds the callback without disturbing the timer.
//
// The currently pending firing, if any, will invoke the new function.
func (iv *Interval) SetFunc(fn func()) {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	iv.fn = fn
}

// SetEvery changes the firing period.
//
// A positive period (re)schedules the next firing that far in the future,
// replacing any pending one. A zero or negative period suspends the
// interval: nothing fires until SetEvery is called again with a positive
// value. Calling SetEvery after [Interval.Stop] is a no-op.
func (iv *Interval) SetEvery(every time.Duration) {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	if iv.stopped {
		return
	}

	iv.every = every
	if iv.timer != nil {
		iv.timer.Stop()
		iv.timer = nil
	}
	if every > 0 {
		iv.timer = time.AfterFunc(every, iv.tick)
	}
}

// tick runs one firing and schedules the next.
func (iv *Interval) tick() {
	iv.mu.Lock()
	if iv.stopped || iv.every <= 0 {
		iv.mu.Unlock()
		return
	}
	fn := iv.fn
	iv.timer = time.AfterFunc(iv.every, iv.tick)
	iv.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Stop halts the interval permanently and cancels any pending firing.
// Stop is idempotent.
func (iv *Interval) Stop() {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	iv.stopped = true
	if iv.timer != nil {
		iv.timer.Stop()
		iv.timer = nil
	}
}
