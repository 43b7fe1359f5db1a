package connector

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
)

const defaultHandshakeTimeout = 10 * time.Second

// Conn is the minimal connection surface the connector needs from a
// transport. The production implementation wraps gorilla/websocket; tests
// substitute fakes.
type Conn interface {
	// ReadMessage blocks until one complete message arrives and returns
	// its payload. Any error means the connection is dead.
	ReadMessage() ([]byte, error)

	// WriteMessage transmits one complete text message.
	WriteMessage(data []byte) error

	// Close tears the connection down. ReadMessage unblocks with an
	// error afterwards.
	Close() error
}

// Dialer establishes a [Conn] for a channel URL.
type Dialer interface {
	DialContext(ctx context.Context, url string) (Conn, error)
}

// WebsocketDialer is the production [Dialer] built on gorilla/websocket.
type WebsocketDialer struct {
	dialer *websocket.Dialer
}

// NewWebsocketDialer creates a [WebsocketDialer] with a bounded handshake
// timeout.
func NewWebsocketDialer() *WebsocketDialer {
	return &WebsocketDialer{
		dialer: &websocket.Dialer{
			Proxy:            websocket.DefaultDialer.Proxy,
			HandshakeTimeout: defaultHandshakeTimeout,
		},
	}
}

// DialContext opens a websocket connection to url.
func (d *WebsocketDialer) DialContext(ctx context.Context, url string) (Conn, error) {
	conn, resp, err := d.dialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return &wsConn{conn: conn}, nil
}

// wsConn adapts *websocket.Conn to the [Conn] surface.
type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

func (c *wsConn) WriteMessage(data []byte) error {
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) Close() error {
	// best-effort close handshake before dropping the TCP connection
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}
