package timing

import (
	"sync"
	"time"
)

// Debouncer delivers the most recent value passed to [Debouncer.Set] to a
// sink function, but only after the configured delay has elapsed without a
// newer value arriving. Every call to Set cancels and restarts the pending
// timer, so a rapid burst of inputs produces exactly one downstream emit
// carrying the last value of the burst.
//
// A Debouncer is safe for concurrent use. The sink is invoked from a timer
// goroutine, never from the caller of Set.
type Debouncer[T any] struct {
	delay time.Duration
	sink  func(T)

	mu      sync.Mutex
	timer   *time.Timer
	pending T
	stopped bool
}

// NewDebouncer creates a [Debouncer] that emits to sink after delay.
//
// The zero delay is valid and means values are emitted on the next timer
// tick with no meaningful suppression window; callers normally pass a few
// hundred milliseconds.
func NewDebouncer[T any](delay time.Duration, sink func(T)) *Debouncer[T] {
	return &Debouncer[T]{
		delay: delay,
		sink:  sink,
	}
}

// Set records v as the latest input and restarts the pending timer.
//
// If no newer value arrives within the delay, the sink fires once with v.
// Calling Set after [Debouncer.Stop] is a no-op.
func (d *Debouncer[T]) Set(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.pending = v
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

// fire emits the pending value. It re-checks stopped under the lock so that
// a Stop racing with an already-expired timer never delivers.
func (d *Debouncer[T]) fire() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	v := d.pending
	d.timer = nil
	d.mu.Unlock()

	d.sink(v)
}

// Stop cancels any pending emit without firing it.
//
// After Stop the debouncer is inert: further Set calls are ignored.
// Stop is idempotent.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
