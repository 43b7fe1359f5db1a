package pulsesync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/pulsesync/internal/connector"
	"github.com/jpalmerr/pulsesync/internal/prefs"
	"github.com/jpalmerr/pulsesync/internal/timing"
	"github.com/jpalmerr/pulsesync/store"
)

const (
	defaultTopic          = "all"
	defaultPingInterval   = 30 * time.Second
	defaultSearchDebounce = 300 * time.Millisecond

	prefKeyTheme   = "theme"
	prefKeySidebar = "sidebar_open"
)

// Invalidation scopes passed to the [WithInvalidateCallback] callback.
const (
	// ScopeEvents means pull queries over the event list are stale.
	ScopeEvents = "events"

	// ScopeAlerts means pull queries over the alert list are stale.
	ScopeAlerts = "alerts"
)

// Client is the main orchestrator of the sync layer.
//
// Client wires the push-channel connector into the application store: it
// subscribes to the configured topics, routes inbound frames (alerts
// become notifications, stats refresh the system-status snapshot), sends
// keepalive pings, restores and persists UI preferences, and exposes the
// store to every view. It is created with [New] and run with
// [Client.Start].
//
// The typical lifecycle is:
//
//	client, err := pulsesync.New("ws://localhost:8000/ws",
//	    pulsesync.WithTopics("events", "alerts"),
//	)
//	if err != nil {
//	    slog.Error("failed to create client", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	client.Start(ctx) // blocks until context cancelled
//
// The caller controls the lifecycle via the context. Cancel the context
// to trigger graceful shutdown.
type Client struct {
	serverURL    string
	topics       []string
	logger       *slog.Logger
	pingInterval time.Duration

	st     *store.Store
	conn   *connector.Connector
	mirror *prefs.Mirror

	keepalive   *timing.Interval
	eventSearch *timing.Debouncer[string]
	alertSearch *timing.Debouncer[string]

	messageCallbacks []func(Message)
	invalidate       func(scope string)

	mu      sync.Mutex
	started bool
}

// New creates a new [Client] for the given websocket base URL.
//
// serverURL is the push-channel root, e.g. "ws://localhost:8000/ws"; topic
// names are appended as path segments. Options have sensible defaults:
//   - Topics: "all"
//   - Reconnect delay: 3 seconds
//   - Inbox capacity: 100 messages per topic
//   - Notification TTL: 5 seconds
//   - Ping interval: 30 seconds
//
// Returns an error if the URL is missing or not a ws/wss URL, or if any
// option is invalid.
func New(serverURL string, opts ...Option) (*Client, error) {
	if serverURL == "" {
		return nil, errors.New("server URL is required")
	}
	parsed, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if parsed.Scheme != "ws" && parsed.Scheme != "wss" {
		return nil, fmt.Errorf("server URL scheme must be ws or wss, got %q", parsed.Scheme)
	}

	cfg := &clientConfig{
		pingInterval:   defaultPingInterval,
		searchDebounce: defaultSearchDebounce,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}
	topics := cfg.topics
	if len(topics) == 0 {
		topics = []string{defaultTopic}
	}

	storeOpts := []store.Option{store.WithLogger(logger)}
	if cfg.notificationTTL > 0 {
		storeOpts = append(storeOpts, store.WithNotificationTTL(cfg.notificationTTL))
	}

	c := &Client{
		serverURL:        serverURL,
		topics:           topics,
		logger:           logger,
		pingInterval:     cfg.pingInterval,
		st:               store.New(storeOpts...),
		messageCallbacks: cfg.messageCallbacks,
		invalidate:       cfg.invalidate,
	}

	connOpts := []connector.Option{connector.WithLogger(logger)}
	if cfg.reconnectDelay > 0 {
		connOpts = append(connOpts, connector.WithReconnectDelay(cfg.reconnectDelay))
	}
	if cfg.inboxCapacity > 0 {
		connOpts = append(connOpts, connector.WithInboxCapacity(cfg.inboxCapacity))
	}
	if len(cfg.statusCallbacks) > 0 {
		statusCallbacks := cfg.statusCallbacks
		connOpts = append(connOpts, connector.WithStatusCallback(
			func(topic string, status connector.Status) {
				for _, cb := range statusCallbacks {
					cb(topic, Status(status))
				}
			}))
	}
	c.conn = connector.New(serverURL, connOpts...)

	if cfg.prefsPath != "" {
		c.mirror = prefs.Open(cfg.prefsPath, logger)
	}

	c.eventSearch = timing.NewDebouncer(cfg.searchDebounce, func(text string) {
		c.st.Dispatch(store.MergeEventFilters(store.FilterPatch{Search: &text}))
	})
	c.alertSearch = timing.NewDebouncer(cfg.searchDebounce, func(text string) {
		c.st.Dispatch(store.MergeAlertFilters(store.FilterPatch{Search: &text}))
	})

	// created suspended; Start supplies the real period
	c.keepalive = timing.NewInterval(c.ping, 0)

	return c, nil
}

// Start connects the push channels and runs until the context is
// cancelled.
//
// During execution:
//
//   - Saved preferences (theme, sidebar) are restored into the store
//   - Every configured topic is subscribed, reconnecting on failure
//   - Inbound frames are routed into the store and to message callbacks
//   - A keepalive ping is sent periodically on each connected topic
//
// On cancellation, all channel subscriptions, reconnection timers, and
// notification timers are torn down deterministically. Start returns an
// error only if called twice.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return errors.New("client already started")
	}
	c.started = true
	c.mu.Unlock()

	c.logger.Info("pulsesync starting", "server", c.serverURL, "topic_count", len(c.topics))

	if ctx.Err() != nil {
		return nil
	}

	c.restorePreferences()
	c.st.OnAction(c.persistPreferences)

	for _, topic := range c.topics {
		c.conn.Subscribe(topic, c.route)
	}
	c.keepalive.SetEvery(c.pingInterval)

	<-ctx.Done()

	c.keepalive.Stop()
	c.eventSearch.Stop()
	c.alertSearch.Stop()
	c.conn.Close()
	c.st.Close()
	c.logger.Info("pulsesync stopped")
	return nil
}

// Store returns the application store shared by every view.
func (c *Client) Store() *store.Store {
	return c.st
}

// State returns an immutable snapshot of the application state tree.
// Shorthand for Store().CurrentState().
func (c *Client) State() store.State {
	return c.st.CurrentState()
}

// ConnectionStatus reports the connection state of topic's channel.
// Topics never subscribed report [StatusDisconnected].
func (c *Client) ConnectionStatus(topic string) Status {
	return Status(c.conn.Status(topic))
}

// Inbox returns a snapshot of topic's bounded inbox in receipt order,
// oldest first.
func (c *Client) Inbox(topic string) []Message {
	raw := c.conn.Inbox(topic)
	if raw == nil {
		return nil
	}
	messages := make([]Message, len(raw))
	for i, m := range raw {
		messages[i] = toPublicMessage(m)
	}
	return messages
}

// LastMessage returns the most recently received message on topic.
func (c *Client) LastMessage(topic string) (Message, bool) {
	m, ok := c.conn.Last(topic)
	if !ok {
		return Message{}, false
	}
	return toPublicMessage(m), true
}

// Send marshals payload as JSON and transmits it on topic.
//
// Sends are best-effort: while the channel is anything but connected the
// call is a silent no-op; nothing is queued and nothing is raised.
// Retrying is the caller's responsibility.
func (c *Client) Send(topic string, payload any) {
	c.conn.Send(topic, payload)
}

// SearchEvents updates the event filter's free-text search after the
// debounce window elapses with no newer input. A burst of keystrokes
// produces a single merge-event-filters dispatch carrying the last text.
func (c *Client) SearchEvents(text string) {
	c.eventSearch.Set(text)
}

// SearchAlerts is [Client.SearchEvents] for the alert filter record.
func (c *Client) SearchAlerts(text string) {
	c.alertSearch.Set(text)
}

// AlertAcknowledged tells the sync layer that the consumer's acknowledge
// request for an alert succeeded. The matching detail selection (if any)
// is cleared and the alerts invalidation scope fires so the external
// query cache re-fetches the list.
func (c *Client) AlertAcknowledged(alertID string) {
	if c.st.CurrentState().SelectedAlertID == alertID {
		c.st.Dispatch(store.SelectAlert(""))
	}
	c.fireInvalidate(ScopeAlerts)
}

// route handles one decoded inbound frame.
func (c *Client) route(m connector.Message) {
	msg := toPublicMessage(m)

	switch msg.Type {
	case MessageTypeEvent:
		c.fireInvalidate(ScopeEvents)

	case MessageTypeAlert:
		c.fireInvalidate(ScopeAlerts)
		c.st.Dispatch(store.AddNotification(alertNotification(msg)))

	case MessageTypeStats:
		c.st.Dispatch(store.SetSystemStatus(statusSnapshot(msg)))

	case MessageTypeConnected, MessageTypeHeartbeat, MessageTypePong:
		c.logger.Debug("channel housekeeping frame", "topic", msg.Topic, "type", msg.Type)

	default:
		// unknown types still reach the inbox and message callbacks;
		// this layer enforces no schema
		c.logger.Debug("unrecognized frame type", "topic", msg.Topic, "type", msg.Type)
	}

	for _, cb := range c.messageCallbacks {
		c.invokeCallbackSafe(cb, msg)
	}
}

// ping sends the keepalive on every currently connected topic.
func (c *Client) ping() {
	for _, topic := range c.conn.Topics() {
		if c.conn.Status(topic) == connector.StatusConnected {
			c.conn.SendText(topic, "ping")
		}
	}
}

// restorePreferences seeds the store from the preference mirror.
func (c *Client) restorePreferences() {
	if c.mirror == nil {
		return
	}
	theme := c.mirror.GetString(prefKeyTheme, string(store.ThemeDark))
	c.st.Dispatch(store.SetTheme(store.Theme(theme)))
	c.st.Dispatch(store.SetSidebar(c.mirror.GetBool(prefKeySidebar, true)))
}

// persistPreferences writes theme and sidebar changes through to the
// mirror. Registered as a store action hook.
func (c *Client) persistPreferences(a store.Action) {
	if c.mirror == nil {
		return
	}
	switch a.Kind() {
	case store.KindSetTheme:
		c.mirror.Set(prefKeyTheme, string(c.st.CurrentState().Theme))
	case store.KindSetSidebar:
		c.mirror.Set(prefKeySidebar, c.st.CurrentState().SidebarOpen)
	case store.KindResetToInitial:
		initial := c.st.CurrentState()
		c.mirror.Set(prefKeyTheme, string(initial.Theme))
		c.mirror.Set(prefKeySidebar, initial.SidebarOpen)
	}
}

// fireInvalidate invokes the cache-invalidation callback, if registered.
func (c *Client) fireInvalidate(scope string) {
	if c.invalidate == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("invalidate callback panicked",
				"correlation_id", uuid.NewString(),
				"scope", scope,
				"panic", fmt.Sprintf("%v", r),
			)
		}
	}()
	c.invalidate(scope)
}

// invokeCallbackSafe calls a message callback with panic recovery.
// Panics are logged but do not propagate.
func (c *Client) invokeCallbackSafe(cb func(Message), msg Message) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("message callback panicked",
				"correlation_id", uuid.NewString(),
				"topic", msg.Topic,
				"panic", fmt.Sprintf("%v", r),
			)
		}
	}()
	cb(msg)
}

// toPublicMessage converts the connector's internal message to the public
// API type. Creates a defensive copy of the payload map to prevent data
// races.
func toPublicMessage(m connector.Message) Message {
	return Message{
		Topic:     m.Topic,
		Type:      m.Type,
		Timestamp: m.Timestamp,
		Data:      copyMap(m.Data),
	}
}

// alertNotification builds the transient notification for an inbound
// alert frame. Severity and text come from the alert payload when
// present.
func alertNotification(msg Message) store.Notification {
	severity := store.SeverityInfo
	if s, ok := msg.Data["severity"].(string); ok && s != "" {
		severity = store.Severity(s)
	}

	text := "alert received"
	if s, ok := msg.Data["rule_name"].(string); ok && s != "" {
		text = s
	} else if s, ok := msg.Data["message"].(string); ok && s != "" {
		text = s
	}

	return store.Notification{
		Severity:  severity,
		Message:   text,
		CreatedAt: msg.Timestamp,
	}
}

// statusSnapshot builds the system-status cache entry for an inbound
// stats frame.
func statusSnapshot(msg Message) store.SystemStatus {
	st := store.SystemStatus{ReceivedAt: time.Now()}
	if s, ok := msg.Data["status"].(string); ok {
		st.Status = s
	}
	if s, ok := msg.Data["version"].(string); ok {
		st.Version = s
	}
	if m, ok := msg.Data["components"].(map[string]any); ok {
		st.Components = copyMap(m)
	} else {
		// older backends push the component map as the whole payload
		st.Components = copyMap(msg.Data)
	}
	return st
}

// copyMap returns a copy of the map, or nil if input is nil.
func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cp := make(map[string]any, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
