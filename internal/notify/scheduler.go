package notify

import (
	"sync"
	"time"
)

// Scheduler owns the expiry timers for live notifications.
//
// Each scheduled identifier has at most one pending timer. Scheduling the
// same identifier again replaces the previous timer; cancelling an unknown
// identifier is a no-op. There is no cap on the number of concurrently
// scheduled identifiers.
//
// A Scheduler is safe for concurrent use.
type Scheduler struct {
	mu     sync.Mutex
	timers map[int64]*time.Timer
	lastID int64
}

// NewScheduler creates an empty [Scheduler], immediately ready for use.
func NewScheduler() *Scheduler {
	return &Scheduler{
		timers: make(map[int64]*time.Timer),
	}
}

// NextID returns a fresh notification identifier derived from now.
//
// Identifiers are millisecond timestamps, bumped by one whenever two calls
// land in the same millisecond, so they are strictly increasing for the
// lifetime of the scheduler.
func (s *Scheduler) NextID(now time.Time) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// Observe records an externally supplied identifier so that NextID never
// collides with it.
func (s *Scheduler) Observe(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id > s.lastID {
		s.lastID = id
	}
}

// Schedule arms a single-shot timer that invokes expire after d.
//
// The timer entry is removed before expire runs, so an expire callback that
// itself calls [Scheduler.Cancel] for the same identifier sees a clean no-op.
// Scheduling an identifier that already has a pending timer replaces it.
func (s *Scheduler) Schedule(id int64, d time.Duration, expire func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.timers[id]; ok {
		prev.Stop()
	}
	s.timers[id] = time.AfterFunc(d, func() {
		s.mu.Lock()
		_, live := s.timers[id]
		delete(s.timers, id)
		s.mu.Unlock()

		// cancelled between firing and acquiring the lock: stay silent
		if live {
			expire()
		}
	})
}

// Cancel stops the pending timer for id, if any. Idempotent: cancelling an
// already-expired or never-scheduled identifier is a no-op.
func (s *Scheduler) Cancel(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}

// CancelAll stops every pending timer. Used on reset and teardown.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

// Pending reports the number of armed timers. Intended for tests and
// diagnostics.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
