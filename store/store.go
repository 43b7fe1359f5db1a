package store

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/pulsesync/internal/notify"
)

const (
	// DefaultNotificationTTL is how long a notification stays live before
	// its automatic removal.
	DefaultNotificationTTL = 5 * time.Second

	// subscriberBuffer is the per-subscriber channel depth. Snapshots are
	// sent non-blocking; a slow subscriber misses intermediate trees
	// rather than stalling dispatch.
	subscriberBuffer = 100
)

// Store is the single-writer application store.
//
// All mutation goes through [Store.Dispatch]; reads go through
// [Store.CurrentState] or the pub/sub channels from [Store.Subscribe].
// Dispatches are serialized and run to completion, including the cascading
// notification-timer bookkeeping, before the next dispatch is observed.
//
// A Store is safe for concurrent use.
type Store struct {
	logger *slog.Logger
	ttl    time.Duration
	sched  *notify.Scheduler

	mu    sync.Mutex
	state State

	subMu       sync.RWMutex
	subscribers map[chan State]struct{}

	hookMu sync.RWMutex
	hooks  []func(Action)
}

// Option configures a [Store] during construction.
type Option func(*Store)

// WithLogger sets the logger used for recovered hook panics and other
// internal events. Defaults to [slog.Default].
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNotificationTTL overrides how long notifications stay live before
// automatic removal. Non-positive values are ignored. Defaults to
// [DefaultNotificationTTL].
func WithNotificationTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// New creates a [Store] holding the documented default tree.
func New(opts ...Option) *Store {
	s := &Store{
		logger:      slog.Default(),
		ttl:         DefaultNotificationTTL,
		sched:       notify.NewScheduler(),
		state:       initialState(),
		subscribers: make(map[chan State]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CurrentState returns an immutable snapshot of the state tree.
func (s *Store) CurrentState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Dispatch applies one action synchronously.
//
// By the time Dispatch returns the new tree is committed, notification
// expiry timers are scheduled or cancelled, action hooks have run, and the
// snapshot has been offered to every subscriber. Dispatching an action with
// an unknown kind panics.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()

	if a.kind == KindAddNotification {
		a.notification = s.stampNotification(a.notification)
	}

	s.state = reduce(s.state, a)
	snapshot := s.state.clone()
	s.mu.Unlock()

	// cascading timer bookkeeping completes before Dispatch returns
	switch a.kind {
	case KindAddNotification:
		id := a.notification.ID
		s.sched.Schedule(id, s.ttl, func() {
			s.Dispatch(RemoveNotification(id))
		})
	case KindRemoveNotification:
		s.sched.Cancel(a.notificationID)
	case KindResetToInitial:
		s.sched.CancelAll()
	}

	s.invokeHooks(a)
	s.notifySubscribers(snapshot)
}

// stampNotification fills in a missing identifier and creation time.
// Caller holds s.mu.
func (s *Store) stampNotification(n Notification) Notification {
	now := time.Now()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	if n.ID == 0 {
		n.ID = s.sched.NextID(n.CreatedAt)
	} else {
		s.sched.Observe(n.ID)
	}
	return n
}

// Subscribe creates a new subscription and returns a channel emitting a
// [State] snapshot after every dispatch.
//
// The channel is buffered; if the buffer fills, intermediate snapshots are
// dropped for that subscriber rather than blocking dispatch. The latest
// tree is always available via [Store.CurrentState].
//
// Caller must call [Store.Unsubscribe] when done to prevent resource leaks.
func (s *Store) Subscribe() <-chan State {
	ch := make(chan State, subscriberBuffer)

	s.subMu.Lock()
	s.subscribers[ch] = struct{}{}
	s.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
//
// Safe to call multiple times or with an unknown channel.
func (s *Store) Unsubscribe(ch <-chan State) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for subCh := range s.subscribers {
		if subCh == ch {
			delete(s.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// OnAction registers a hook invoked synchronously after every dispatch with
// the applied action. Hooks are the cache-invalidation trigger points for
// external query-cache collaborators: they see which action landed and can
// re-fetch accordingly.
//
// Hooks run in registration order. A panicking hook is recovered and logged
// with a correlation id; it does not disturb the dispatch.
func (s *Store) OnAction(hook func(Action)) {
	if hook == nil {
		return
	}
	s.hookMu.Lock()
	s.hooks = append(s.hooks, hook)
	s.hookMu.Unlock()
}

// Close cancels all pending notification timers and closes every
// subscriber channel. The store remains readable afterwards but no further
// dispatches should be made.
func (s *Store) Close() {
	s.sched.CancelAll()

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

// invokeHooks runs every registered hook with panic recovery.
func (s *Store) invokeHooks(a Action) {
	s.hookMu.RLock()
	hooks := append(([]func(Action))(nil), s.hooks...)
	s.hookMu.RUnlock()

	for _, hook := range hooks {
		s.invokeHookSafe(hook, a)
	}
}

// invokeHookSafe calls one hook, recovering panics. The full panic value is
// logged with a correlation id so a misbehaving consumer cannot take the
// store down with it.
func (s *Store) invokeHookSafe(hook func(Action), a Action) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			s.logger.Error("action hook panicked",
				"correlation_id", correlationID,
				"action", string(a.kind),
				"panic", fmt.Sprintf("%v", r),
			)
		}
	}()
	hook(a)
}

// notifySubscribers offers the snapshot to all active subscribers without
// blocking.
func (s *Store) notifySubscribers(snapshot State) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()

	for ch := range s.subscribers {
		select {
		case ch <- snapshot:
		default:
			// subscriber is slow, drop the snapshot
		}
	}
}
