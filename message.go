package pulsesync

import "time"

// Status represents the connection state of one push channel.
//
// Status is a string type that can hold one of three predefined values:
// [StatusDisconnected], [StatusConnecting], or [StatusConnected]. Using a
// string type allows for easy JSON serialization and human-readable
// logging while maintaining type safety through the defined constants.
type Status string

const (
	// StatusDisconnected indicates no live connection; a reconnection
	// attempt is pending unless the channel was torn down.
	StatusDisconnected Status = "disconnected"

	// StatusConnecting indicates a connection attempt is in flight.
	StatusConnecting Status = "connecting"

	// StatusConnected indicates messages flow and sends are transmitted.
	StatusConnected Status = "connected"
)

// String returns the string representation of the status.
// This implements the fmt.Stringer interface.
func (s Status) String() string {
	return string(s)
}

// Well-known frame types emitted by the backend's push channel.
const (
	// MessageTypeEvent carries one normalized log event.
	MessageTypeEvent = "event"

	// MessageTypeAlert carries one detection alert.
	MessageTypeAlert = "alert"

	// MessageTypeStats carries a system statistics snapshot.
	MessageTypeStats = "stats"

	// MessageTypeConnected is the server's subscription acknowledgement.
	MessageTypeConnected = "connected"

	// MessageTypeHeartbeat is the server's periodic liveness frame.
	MessageTypeHeartbeat = "heartbeat"

	// MessageTypePong is the reply to the client's keepalive ping.
	MessageTypePong = "pong"
)

// Message is one decoded frame received on a push channel.
//
// Message is immutable after creation: the Data map is a defensive copy
// and may be read freely. No schema is enforced beyond successful
// decoding; Data stays opaque to this layer.
type Message struct {
	// Topic is the channel the message arrived on (e.g. "events").
	Topic string

	// Type is the frame type; see the MessageType constants.
	Type string

	// Timestamp is the server-side emission time. Zero when the frame
	// carried none.
	Timestamp time.Time

	// Data is the frame payload.
	Data map[string]any
}
