package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultReconnectDelay is the fixed pause before every reconnection
	// attempt. Reconnection is unconditional and unbounded: no backoff
	// growth, no retry ceiling.
	DefaultReconnectDelay = 3 * time.Second

	// DefaultInboxCapacity is how many recent messages each topic
	// retains, oldest evicted first.
	DefaultInboxCapacity = 100
)

// Status is the connection state of one channel.
type Status string

const (
	// StatusDisconnected means no live connection; a reconnection
	// attempt is pending unless the channel was torn down.
	StatusDisconnected Status = "disconnected"

	// StatusConnecting means a dial is in flight.
	StatusConnecting Status = "connecting"

	// StatusConnected means messages flow and sends are transmitted.
	StatusConnected Status = "connected"
)

// String returns the string representation of the status.
// This implements the fmt.Stringer interface.
func (s Status) String() string {
	return string(s)
}

// Callback receives one decoded inbound message.
type Callback func(Message)

// StatusCallback observes a channel's connection state transitions.
type StatusCallback func(topic string, status Status)

// channel is the connector-owned state for one topic.
type channel struct {
	topic       string
	status      Status
	conn        Conn
	gen         uint64 // dial generation; stale loops check it and bail
	inbox       []Message
	last        *Message
	subscribers map[string]Callback
	reconnect   *time.Timer
}

// Connector maintains one logical push-channel subscription per topic.
//
// Channels are created on first subscription (or an explicit
// [Connector.Connect]) and live until [Connector.Disconnect] or
// [Connector.Close], reconnecting transparently in between. The connector
// exclusively owns its connection handles and inboxes; callers only ever
// see message copies and snapshots.
//
// All methods are safe for concurrent use.
type Connector struct {
	baseURL        string
	dialer         Dialer
	logger         *slog.Logger
	reconnectDelay time.Duration
	inboxCap       int
	onStatus       StatusCallback

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	channels map[string]*channel
	closed   bool
}

// Option configures a [Connector] during construction.
type Option func(*Connector)

// WithDialer substitutes the transport. Defaults to [NewWebsocketDialer].
func WithDialer(d Dialer) Option {
	return func(c *Connector) {
		if d != nil {
			c.dialer = d
		}
	}
}

// WithLogger sets the logger. Defaults to [slog.Default].
func WithLogger(logger *slog.Logger) Option {
	return func(c *Connector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithReconnectDelay overrides the fixed delay before reconnection
// attempts. Non-positive values are ignored.
func WithReconnectDelay(d time.Duration) Option {
	return func(c *Connector) {
		if d > 0 {
			c.reconnectDelay = d
		}
	}
}

// WithInboxCapacity overrides the per-topic inbox size. Non-positive
// values are ignored.
func WithInboxCapacity(n int) Option {
	return func(c *Connector) {
		if n > 0 {
			c.inboxCap = n
		}
	}
}

// WithStatusCallback registers an observer for connection state
// transitions. The callback must be non-blocking.
func WithStatusCallback(cb StatusCallback) Option {
	return func(c *Connector) {
		c.onStatus = cb
	}
}

// New creates a [Connector] for the given base URL.
//
// baseURL is the websocket root, e.g. "ws://localhost:8000/ws"; the topic
// name is appended as a path segment when dialling.
func New(baseURL string, opts ...Option) *Connector {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Connector{
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		dialer:         NewWebsocketDialer(),
		logger:         slog.Default(),
		reconnectDelay: DefaultReconnectDelay,
		inboxCap:       DefaultInboxCapacity,
		ctx:            ctx,
		cancel:         cancel,
		channels:       make(map[string]*channel),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect establishes (or reuses) the logical subscription for topic.
//
// The first call for a topic creates its channel and starts dialling in
// the background; subsequent calls are no-ops. Connect never blocks on
// network I/O and never returns a transport error; failures surface only
// through [Connector.Status].
func (c *Connector) Connect(topic string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureChannelLocked(topic)
}

// ensureChannelLocked creates the channel for topic if absent and kicks
// off the first dial. Caller holds c.mu.
func (c *Connector) ensureChannelLocked(topic string) *channel {
	if c.closed {
		return nil
	}
	if ch, ok := c.channels[topic]; ok {
		return ch
	}

	ch := &channel{
		topic:       topic,
		status:      StatusConnecting,
		subscribers: make(map[string]Callback),
	}
	c.channels[topic] = ch
	c.emitStatus(topic, StatusConnecting)
	go c.dial(topic, ch.gen)
	return ch
}

// Subscribe registers cb for topic and returns a subscription id for
// [Connector.Unsubscribe]. The channel is created on first subscription.
//
// Registration is safe while a delivery is in progress: deliveries iterate
// over a copy of the subscriber list, so a subscriber added mid-delivery
// first hears the next message.
func (c *Connector) Subscribe(topic string, cb Callback) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := c.ensureChannelLocked(topic)
	if ch == nil {
		return ""
	}
	id := uuid.NewString()
	ch.subscribers[id] = cb
	return id
}

// Unsubscribe deregisters a subscription. The callback receives no further
// deliveries, including any delivery in progress at the time of the call.
// Unknown ids and topics are no-ops.
func (c *Connector) Unsubscribe(topic, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ch, ok := c.channels[topic]; ok {
		delete(ch.subscribers, id)
	}
}

// Send marshals payload as JSON and transmits it on topic.
//
// Sends are best-effort: while the channel is anything but connected the
// call is a silent no-op; nothing is queued and nothing is raised. A write
// failure surfaces only as the channel's transition to disconnected.
func (c *Connector) Send(topic string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		c.logger.Warn("outbound payload not serializable", "topic", topic, "error", err)
		return
	}
	c.sendRaw(topic, data)
}

// SendText transmits a raw text message on topic, with [Connector.Send]'s
// best-effort semantics. Used for the plain-text keepalive ping.
func (c *Connector) SendText(topic, text string) {
	c.sendRaw(topic, []byte(text))
}

func (c *Connector) sendRaw(topic string, data []byte) {
	c.mu.Lock()
	ch, ok := c.channels[topic]
	if !ok || ch.status != StatusConnected || ch.conn == nil {
		c.mu.Unlock()
		return
	}
	conn := ch.conn
	gen := ch.gen
	c.mu.Unlock()

	if err := conn.WriteMessage(data); err != nil {
		c.handleDrop(topic, gen, err)
	}
}

// Status reports the connection state for topic. Unknown topics are
// disconnected.
func (c *Connector) Status(topic string) Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ch, ok := c.channels[topic]; ok {
		return ch.status
	}
	return StatusDisconnected
}

// Inbox returns a snapshot of topic's bounded inbox in receipt order,
// oldest first.
func (c *Connector) Inbox(topic string) []Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch, ok := c.channels[topic]
	if !ok || len(ch.inbox) == 0 {
		return nil
	}
	return append([]Message(nil), ch.inbox...)
}

// Last returns the most recently received message on topic.
func (c *Connector) Last(topic string) (Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ch, ok := c.channels[topic]; ok && ch.last != nil {
		return *ch.last, true
	}
	return Message{}, false
}

// Topics returns the topics with live channels.
func (c *Connector) Topics() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	topics := make([]string, 0, len(c.channels))
	for topic := range c.channels {
		topics = append(topics, topic)
	}
	return topics
}

// Disconnect releases topic's channel: the connection is closed, the
// pending reconnection cancelled, and the inbox discarded. No-op for
// unknown topics.
func (c *Connector) Disconnect(topic string) {
	c.mu.Lock()
	ch, ok := c.channels[topic]
	if !ok {
		c.mu.Unlock()
		return
	}
	delete(c.channels, topic)
	conn := ch.conn
	if ch.reconnect != nil {
		ch.reconnect.Stop()
	}
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	c.emitStatus(topic, StatusDisconnected)
}

// Close tears down every channel. The connector cannot be reused.
func (c *Connector) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	channels := c.channels
	c.channels = make(map[string]*channel)
	c.mu.Unlock()

	c.cancel()
	for _, ch := range channels {
		if ch.reconnect != nil {
			ch.reconnect.Stop()
		}
		if ch.conn != nil {
			_ = ch.conn.Close()
		}
	}
}

// dial opens the connection for topic and, on success, runs the read loop
// until the transport fails.
func (c *Connector) dial(topic string, gen uint64) {
	url := c.baseURL + "/" + topic

	conn, err := c.dialer.DialContext(c.ctx, url)
	if err != nil {
		c.logger.Warn("channel dial failed", "topic", topic, "error", err)
		c.handleDrop(topic, gen, err)
		return
	}

	c.mu.Lock()
	ch, ok := c.channels[topic]
	if !ok || ch.gen != gen || c.closed {
		// channel torn down while the dial was in flight
		c.mu.Unlock()
		_ = conn.Close()
		return
	}
	ch.conn = conn
	ch.status = StatusConnected
	c.mu.Unlock()

	c.logger.Debug("channel connected", "topic", topic)
	c.emitStatus(topic, StatusConnected)

	for {
		payload, err := conn.ReadMessage()
		if err != nil {
			c.handleDrop(topic, gen, err)
			return
		}
		c.deliver(topic, payload)
	}
}

// handleDrop records a transport failure for topic and schedules exactly
// one reconnection attempt after the fixed delay. Stale generations (a
// newer dial already owns the channel) are ignored, as are channels torn
// down in the meantime.
func (c *Connector) handleDrop(topic string, gen uint64, cause error) {
	c.mu.Lock()
	ch, ok := c.channels[topic]
	if !ok || ch.gen != gen || c.closed {
		c.mu.Unlock()
		return
	}

	wasConnected := ch.status == StatusConnected
	if ch.conn != nil {
		_ = ch.conn.Close()
		ch.conn = nil
	}
	ch.status = StatusDisconnected
	ch.gen++
	nextGen := ch.gen
	if ch.reconnect != nil {
		ch.reconnect.Stop()
	}
	ch.reconnect = time.AfterFunc(c.reconnectDelay, func() {
		c.redial(topic, nextGen)
	})
	c.mu.Unlock()

	if wasConnected {
		c.logger.Warn("channel dropped", "topic", topic, "error", cause,
			"retry_in", c.reconnectDelay.String())
	} else {
		c.logger.Debug("channel still unreachable", "topic", topic, "error", cause,
			"retry_in", c.reconnectDelay.String())
	}
	c.emitStatus(topic, StatusDisconnected)
}

// redial runs one scheduled reconnection attempt.
func (c *Connector) redial(topic string, gen uint64) {
	c.mu.Lock()
	ch, ok := c.channels[topic]
	if !ok || ch.gen != gen || c.closed {
		c.mu.Unlock()
		return
	}
	ch.status = StatusConnecting
	c.mu.Unlock()

	c.emitStatus(topic, StatusConnecting)
	c.dial(topic, gen)
}

// deliver decodes one inbound payload, records it in the inbox, and fans
// it out to the topic's subscribers.
func (c *Connector) deliver(topic string, payload []byte) {
	msg, err := decodeMessage(topic, payload)
	if err != nil {
		// dropped, never propagated
		c.logger.Warn("inbound message dropped", "topic", topic, "error", err)
		return
	}

	c.mu.Lock()
	ch, ok := c.channels[topic]
	if !ok {
		c.mu.Unlock()
		return
	}

	ch.inbox = append(ch.inbox, msg)
	if len(ch.inbox) > c.inboxCap {
		// FIFO eviction; shift in place so the backing array stays bounded
		n := copy(ch.inbox, ch.inbox[1:])
		ch.inbox = ch.inbox[:n]
	}
	ch.last = &msg

	// copy-before-iterate: the fan-out runs over the ids registered when
	// the delivery began, so mid-delivery registration changes cannot
	// corrupt it
	ids := make([]string, 0, len(ch.subscribers))
	for id := range ch.subscribers {
		ids = append(ids, id)
	}
	c.mu.Unlock()

	for _, id := range ids {
		// re-check membership per invocation: a subscriber removed while
		// this delivery is in progress must not hear it
		c.mu.Lock()
		var cb Callback
		if ch, ok := c.channels[topic]; ok {
			cb = ch.subscribers[id]
		}
		c.mu.Unlock()

		if cb != nil {
			c.invokeCallbackSafe(cb, msg)
		}
	}
}

// invokeCallbackSafe calls a subscriber callback with panic recovery.
// Panics are logged with a correlation id and do not disturb delivery to
// the remaining subscribers.
func (c *Connector) invokeCallbackSafe(cb Callback, msg Message) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			c.logger.Error("subscriber callback panicked",
				"correlation_id", correlationID,
				"topic", msg.Topic,
				"panic", fmt.Sprintf("%v", r),
			)
		}
	}()
	cb(msg)
}

// emitStatus forwards a state transition to the status observer, if any.
func (c *Connector) emitStatus(topic string, status Status) {
	if c.onStatus != nil {
		c.onStatus(topic, status)
	}
}
