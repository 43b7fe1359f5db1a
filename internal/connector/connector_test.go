package connector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeConn is a scriptable [Conn] for tests. Payloads pushed with push are
// returned from ReadMessage in order; fail unblocks ReadMessage with an
// error; Close does the same with a closed-connection error.
type fakeConn struct {
	url    string
	in     chan []byte
	errs   chan error
	closed chan struct{}
	once   sync.Once

	mu     sync.Mutex
	writes [][]byte
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:     make(chan []byte, 64),
		errs:   make(chan error, 1),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) push(payload string) { c.in <- []byte(payload) }

func (c *fakeConn) fail(err error) { c.errs <- err }

func (c *fakeConn) ReadMessage() ([]byte, error) {
	select {
	case data := <-c.in:
		return data, nil
	case err := <-c.errs:
		return nil, err
	case <-c.closed:
		return nil, errors.New("connection closed")
	}
}

func (c *fakeConn) WriteMessage(data []byte) error {
	select {
	case <-c.closed:
		return errors.New("connection closed")
	default:
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, append([]byte(nil), data...))
	return nil
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) written() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.writes))
	for i, w := range c.writes {
		out[i] = string(w)
	}
	return out
}

// fakeDialer hands out fakeConns, optionally refusing every dial.
type fakeDialer struct {
	mu      sync.Mutex
	conns   []*fakeConn
	refuse  atomic.Bool
	dials   atomic.Int32
	connect chan *fakeConn
}

func newFakeDialer() *fakeDialer {
	return &fakeDialer{connect: make(chan *fakeConn, 16)}
}

func (d *fakeDialer) DialContext(ctx context.Context, url string) (Conn, error) {
	d.dials.Add(1)
	if d.refuse.Load() {
		return nil, errors.New("connection refused")
	}
	conn := newFakeConn()
	conn.url = url
	d.mu.Lock()
	d.conns = append(d.conns, conn)
	d.mu.Unlock()
	d.connect <- conn
	return conn, nil
}

// waitConn blocks until the next successful dial hands out a connection.
func (d *fakeDialer) waitConn(t *testing.T) *fakeConn {
	t.Helper()
	select {
	case conn := <-d.connect:
		return conn
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a dial")
		return nil
	}
}

func newTestConnector(d Dialer, opts ...Option) *Connector {
	base := []Option{
		WithDialer(d),
		WithReconnectDelay(20 * time.Millisecond),
	}
	return New("ws://test.local/ws", append(base, opts...)...)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestConnector_SubscribeCreatesChannelAndDelivers(t *testing.T) {
	dialer := newFakeDialer()
	c := newTestConnector(dialer)
	defer c.Close()

	var mu sync.Mutex
	var got []Message
	c.Subscribe("events", func(m Message) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, m)
	})

	conn := dialer.waitConn(t)
	waitFor(t, "connected status", func() bool { return c.Status("events") == StatusConnected })

	conn.push(`{"type":"event","timestamp":"2026-08-30T10:00:00Z","data":{"message":"sshd login"}}`)

	waitFor(t, "delivery", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	})

	mu.Lock()
	defer mu.Unlock()
	if got[0].Type != "event" || got[0].Topic != "events" {
		t.Errorf("delivered %+v, want type event on topic events", got[0])
	}
	if got[0].Data["message"] != "sshd login" {
		t.Errorf("Data = %v", got[0].Data)
	}
	if got[0].Timestamp.IsZero() {
		t.Error("Timestamp not parsed")
	}
}

func TestConnector_InboxBoundedFIFO(t *testing.T) {
	dialer := newFakeDialer()
	c := newTestConnector(dialer, WithInboxCapacity(5))
	defer c.Close()

	c.Connect("events")
	conn := dialer.waitConn(t)
	waitFor(t, "connected status", func() bool { return c.Status("events") == StatusConnected })

	for i := 1; i <= 8; i++ {
		conn.push(fmt.Sprintf(`{"type":"event","data":{"seq":%d}}`, i))
	}

	waitFor(t, "inbox to fill", func() bool {
		inbox := c.Inbox("events")
		return len(inbox) == 5 && inbox[4].Data["seq"] == float64(8)
	})

	inbox := c.Inbox("events")
	for i, msg := range inbox {
		if want := float64(i + 4); msg.Data["seq"] != want {
			t.Errorf("inbox[%d].seq = %v, want %v", i, msg.Data["seq"], want)
		}
	}

	last, ok := c.Last("events")
	if !ok || last.Data["seq"] != float64(8) {
		t.Errorf("Last() = %+v, %v; want seq 8", last, ok)
	}
}

func TestConnector_MalformedPayloadDropped(t *testing.T) {
	dialer := newFakeDialer()
	c := newTestConnector(dialer)
	defer c.Close()

	var count atomic.Int32
	c.Subscribe("events", func(Message) { count.Add(1) })

	conn := dialer.waitConn(t)
	waitFor(t, "connected status", func() bool { return c.Status("events") == StatusConnected })

	conn.push(`{truncated garbage`)
	conn.push(`{"data":{"no":"type"}}`)
	conn.push(`{"type":"event","data":{}}`)

	waitFor(t, "valid delivery", func() bool { return count.Load() == 1 })

	if n := len(c.Inbox("events")); n != 1 {
		t.Errorf("inbox has %d entries, want 1 (malformed frames dropped)", n)
	}
}

func TestConnector_PongFoldedIntoMessages(t *testing.T) {
	dialer := newFakeDialer()
	c := newTestConnector(dialer)
	defer c.Close()

	var count atomic.Int32
	c.Subscribe("all", func(m Message) {
		if m.Type == "pong" {
			count.Add(1)
		}
	})

	conn := dialer.waitConn(t)
	waitFor(t, "connected status", func() bool { return c.Status("all") == StatusConnected })

	conn.push("pong")
	waitFor(t, "pong delivery", func() bool { return count.Load() == 1 })
}

func TestConnector_SendOnlyWhileConnected(t *testing.T) {
	dialer := newFakeDialer()
	dialer.refuse.Store(true)
	c := newTestConnector(dialer)
	defer c.Close()

	c.Connect("events")

	// never connected: silent no-op, nothing queued
	c.Send("events", map[string]string{"op": "noop"})
	c.SendText("events", "ping")

	dialer.refuse.Store(false)
	conn := dialer.waitConn(t)
	waitFor(t, "connected status", func() bool { return c.Status("events") == StatusConnected })

	c.SendText("events", "ping")
	waitFor(t, "write", func() bool { return len(conn.written()) == 1 })

	if got := conn.written(); got[0] != "ping" {
		t.Errorf("wrote %q, want %q", got[0], "ping")
	}
}

func TestConnector_UnsubscribeStopsDeliveries(t *testing.T) {
	dialer := newFakeDialer()
	c := newTestConnector(dialer)
	defer c.Close()

	var count atomic.Int32
	id := c.Subscribe("events", func(Message) { count.Add(1) })

	conn := dialer.waitConn(t)
	waitFor(t, "connected status", func() bool { return c.Status("events") == StatusConnected })

	conn.push(`{"type":"event","data":{}}`)
	waitFor(t, "first delivery", func() bool { return count.Load() == 1 })

	c.Unsubscribe("events", id)
	conn.push(`{"type":"event","data":{}}`)

	// inbox still advances, proving the second message arrived
	waitFor(t, "second message in inbox", func() bool { return len(c.Inbox("events")) == 2 })

	if n := count.Load(); n != 1 {
		t.Errorf("callback invoked %d times after unsubscribe, want 1", n)
	}
}

func TestConnector_UnsubscribeDuringDelivery(t *testing.T) {
	dialer := newFakeDialer()
	c := newTestConnector(dialer)
	defer c.Close()

	// the callback removes itself on first delivery; the removal must
	// hold even though it happens while that delivery is in progress
	var count atomic.Int32
	var id string
	id = c.Subscribe("events", func(Message) {
		if count.Add(1) == 1 {
			c.Unsubscribe("events", id)
		}
	})

	conn := dialer.waitConn(t)
	waitFor(t, "connected status", func() bool { return c.Status("events") == StatusConnected })

	conn.push(`{"type":"event","data":{}}`)
	conn.push(`{"type":"event","data":{}}`)

	waitFor(t, "both messages received", func() bool { return len(c.Inbox("events")) == 2 })

	if n := count.Load(); n != 1 {
		t.Errorf("callback invoked %d times, want 1", n)
	}
}

func TestConnector_PanickingSubscriberDoesNotStopFanout(t *testing.T) {
	dialer := newFakeDialer()
	c := newTestConnector(dialer)
	defer c.Close()

	var delivered atomic.Int32
	c.Subscribe("events", func(Message) { panic("bad subscriber") })
	c.Subscribe("events", func(Message) { delivered.Add(1) })

	conn := dialer.waitConn(t)
	waitFor(t, "connected status", func() bool { return c.Status("events") == StatusConnected })

	conn.push(`{"type":"event","data":{}}`)
	waitFor(t, "healthy subscriber delivery", func() bool { return delivered.Load() == 1 })
}

func TestConnector_ReconnectsAfterDrop(t *testing.T) {
	dialer := newFakeDialer()
	c := newTestConnector(dialer)
	defer c.Close()

	c.Connect("events")
	conn := dialer.waitConn(t)
	waitFor(t, "connected status", func() bool { return c.Status("events") == StatusConnected })

	conn.fail(errors.New("peer went away"))
	waitFor(t, "disconnected status", func() bool { return c.Status("events") == StatusDisconnected })

	// a single scheduled attempt restores the channel
	conn2 := dialer.waitConn(t)
	waitFor(t, "reconnected status", func() bool { return c.Status("events") == StatusConnected })

	// messages flow on the new connection
	var count atomic.Int32
	c.Subscribe("events", func(Message) { count.Add(1) })
	conn2.push(`{"type":"event","data":{}}`)
	waitFor(t, "post-reconnect delivery", func() bool { return count.Load() == 1 })
}

func TestConnector_RetriesForeverUnderSustainedFailure(t *testing.T) {
	dialer := newFakeDialer()
	dialer.refuse.Store(true)
	c := newTestConnector(dialer)
	defer c.Close()

	c.Connect("events")

	// fixed-interval retry, no ceiling: attempts keep accumulating
	waitFor(t, "at least 4 dial attempts", func() bool { return dialer.dials.Load() >= 4 })

	if got := c.Status("events"); got != StatusDisconnected && got != StatusConnecting {
		t.Errorf("Status() = %q during sustained failure", got)
	}
}

func TestConnector_DisconnectStopsReconnects(t *testing.T) {
	dialer := newFakeDialer()
	dialer.refuse.Store(true)
	c := newTestConnector(dialer)
	defer c.Close()

	c.Connect("events")
	waitFor(t, "a first dial attempt", func() bool { return dialer.dials.Load() >= 1 })

	c.Disconnect("events")
	settled := dialer.dials.Load()

	time.Sleep(100 * time.Millisecond)
	// one attempt may have been in flight at Disconnect; after the
	// cancelled timer there must be no further growth
	if n := dialer.dials.Load(); n > settled+1 {
		t.Errorf("dials kept growing after Disconnect: %d -> %d", settled, n)
	}

	if got := c.Status("events"); got != StatusDisconnected {
		t.Errorf("Status() = %q after Disconnect, want disconnected", got)
	}
}

func TestConnector_CloseIsTerminal(t *testing.T) {
	dialer := newFakeDialer()
	c := newTestConnector(dialer)

	c.Connect("events")
	dialer.waitConn(t)

	c.Close()
	c.Close() // idempotent

	settled := dialer.dials.Load()
	c.Connect("alerts") // no-op after Close
	time.Sleep(50 * time.Millisecond)

	if n := dialer.dials.Load(); n != settled {
		t.Errorf("Close()d connector dialled again: %d -> %d", settled, n)
	}
	if id := c.Subscribe("alerts", func(Message) {}); id != "" {
		t.Errorf("Subscribe() after Close = %q, want empty id", id)
	}
}

func TestConnector_IndependentTopics(t *testing.T) {
	dialer := newFakeDialer()
	c := newTestConnector(dialer)
	defer c.Close()

	c.Connect("events")
	c.Connect("alerts")

	// dials race; match connections to topics by URL
	first := dialer.waitConn(t)
	second := dialer.waitConn(t)
	connA, connB := first, second
	if first.url != "ws://test.local/ws/events" {
		connA, connB = second, first
	}

	waitFor(t, "both connected", func() bool {
		return c.Status("events") == StatusConnected && c.Status("alerts") == StatusConnected
	})

	connA.push(`{"type":"event","data":{"src":"a"}}`)
	connB.push(`{"type":"alert","data":{"src":"b"}}`)

	waitFor(t, "both inboxes", func() bool {
		return len(c.Inbox("events")) == 1 && len(c.Inbox("alerts")) == 1
	})

	// one topic dropping leaves the other connected
	connA.fail(errors.New("boom"))
	waitFor(t, "events disconnected", func() bool { return c.Status("events") != StatusConnected })

	if got := c.Status("alerts"); got != StatusConnected {
		t.Errorf("alerts Status() = %q after events drop, want connected", got)
	}
}
