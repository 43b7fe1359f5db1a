package pulsesync

import (
	"errors"
	"log/slog"
	"time"
)

// clientConfig holds mutable state during Client construction.
type clientConfig struct {
	topics           []string
	logger           *slog.Logger
	reconnectDelay   time.Duration
	inboxCapacity    int
	notificationTTL  time.Duration
	pingInterval     time.Duration
	searchDebounce   time.Duration
	prefsPath        string
	messageCallbacks []func(Message)
	statusCallbacks  []func(topic string, status Status)
	invalidate       func(scope string)
}

// Option is a function that configures a [Client] instance during
// construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
type Option func(*clientConfig) error

// WithTopics sets the push-channel topics the client subscribes to on
// [Client.Start].
//
// Can be called multiple times; topics accumulate. If no topics are
// configured the client subscribes to the catch-all "all" topic.
//
// Example:
//
//	client, err := pulsesync.New(url,
//	    pulsesync.WithTopics("events", "alerts"),
//	)
//
// Returns an error if any topic name is empty.
func WithTopics(topics ...string) Option {
	return func(cfg *clientConfig) error {
		for _, topic := range topics {
			if topic == "" {
				return errors.New("topic name cannot be empty")
			}
		}
		cfg.topics = append(cfg.topics, topics...)
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the Client instance.
//
// This allows SDK consumers to control where logs are written and in what
// format. If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *clientConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithReconnectDelay overrides the fixed delay between a channel dropping
// and its reconnection attempt. Defaults to 3 seconds.
//
// The delay is fixed: there is no backoff growth and no retry ceiling.
//
// Returns an error if the duration is zero or negative.
func WithReconnectDelay(d time.Duration) Option {
	return func(cfg *clientConfig) error {
		if d <= 0 {
			return errors.New("reconnect delay must be positive")
		}
		cfg.reconnectDelay = d
		return nil
	}
}

// WithInboxCapacity overrides how many recent messages each topic retains
// (oldest evicted first). Defaults to 100.
//
// Returns an error if the capacity is zero or negative.
func WithInboxCapacity(n int) Option {
	return func(cfg *clientConfig) error {
		if n <= 0 {
			return errors.New("inbox capacity must be positive")
		}
		cfg.inboxCapacity = n
		return nil
	}
}

// WithNotificationTTL overrides how long a transient notification stays
// live before its automatic removal. Defaults to 5 seconds.
//
// Returns an error if the duration is zero or negative.
func WithNotificationTTL(ttl time.Duration) Option {
	return func(cfg *clientConfig) error {
		if ttl <= 0 {
			return errors.New("notification TTL must be positive")
		}
		cfg.notificationTTL = ttl
		return nil
	}
}

// WithPingInterval overrides how often the keepalive ping is sent on each
// connected topic. Defaults to 30 seconds; the backend expects traffic at
// least every 30 seconds before it starts emitting heartbeats.
//
// Returns an error if the duration is zero or negative.
func WithPingInterval(d time.Duration) Option {
	return func(cfg *clientConfig) error {
		if d <= 0 {
			return errors.New("ping interval must be positive")
		}
		cfg.pingInterval = d
		return nil
	}
}

// WithSearchDebounce overrides the quiescence window for the debounced
// search helpers [Client.SearchEvents] and [Client.SearchAlerts].
// Defaults to 300 milliseconds.
//
// Returns an error if the duration is negative.
func WithSearchDebounce(d time.Duration) Option {
	return func(cfg *clientConfig) error {
		if d < 0 {
			return errors.New("search debounce cannot be negative")
		}
		cfg.searchDebounce = d
		return nil
	}
}

// WithPreferences enables the file-backed preference mirror at path.
//
// When set, the theme and sidebar flags are restored from the file on
// [Client.Start] and written through on every change. Read failures fall
// back to defaults; write failures are logged and absorbed.
func WithPreferences(path string) Option {
	return func(cfg *clientConfig) error {
		if path == "" {
			return errors.New("preferences path cannot be empty")
		}
		cfg.prefsPath = path
		return nil
	}
}

// WithMessageCallback registers a function invoked for every decoded
// inbound message, after the client's own routing.
//
// Multiple callbacks may be registered; they execute in registration
// order. Callbacks must be non-blocking: they run on the delivery path
// and a slow callback delays subsequent messages on the same topic.
// Panics within callbacks are recovered and logged.
//
// Nil callbacks are silently ignored.
func WithMessageCallback(cb func(Message)) Option {
	return func(cfg *clientConfig) error {
		if cb == nil {
			return nil // no-op for nil callback (safe to call)
		}
		cfg.messageCallbacks = append(cfg.messageCallbacks, cb)
		return nil
	}
}

// WithStatusCallback registers a function invoked on every channel
// connection state transition.
//
// Multiple callbacks may be registered; they execute in registration
// order and must be non-blocking.
//
// Nil callbacks are silently ignored.
func WithStatusCallback(cb func(topic string, status Status)) Option {
	return func(cfg *clientConfig) error {
		if cb == nil {
			return nil
		}
		cfg.statusCallbacks = append(cfg.statusCallbacks, cb)
		return nil
	}
}

// WithInvalidateCallback registers the cache-invalidation trigger point
// for an external query-cache collaborator.
//
// The callback fires with a scope name ("events", "alerts") whenever push
// traffic makes that scope's pull queries stale: on inbound event and
// alert frames, and from [Client.AlertAcknowledged]. pulsesync never
// re-fetches anything itself.
//
// Only one invalidation callback may be registered; a second registration
// returns an error.
func WithInvalidateCallback(cb func(scope string)) Option {
	return func(cfg *clientConfig) error {
		if cb == nil {
			return nil
		}
		if cfg.invalidate != nil {
			return errors.New("invalidate callback already registered")
		}
		cfg.invalidate = cb
		return nil
	}
}
