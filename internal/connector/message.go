package connector

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message is one decoded inbound frame from a push channel.
//
// The wire format is a JSON object {type, timestamp, data}; the data member
// stays an opaque map because this layer enforces no schema beyond
// successful decoding. The server's plain-text "pong" keepalive reply is
// folded into the same type for uniform delivery.
type Message struct {
	// Topic is the channel the message arrived on.
	Topic string `json:"topic"`

	// Type is the frame type: "event", "alert", "stats", "connected",
	// "heartbeat", or "pong".
	Type string `json:"type"`

	// Timestamp is the server-side emission time. Zero when the frame
	// carried none or it was unparsable.
	Timestamp time.Time `json:"timestamp"`

	// Data is the frame payload, opaque to this layer.
	Data map[string]any `json:"data"`
}

// frame mirrors the wire shape for decoding.
type frame struct {
	Type      string         `json:"type"`
	Timestamp string         `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

// decodeMessage parses one raw websocket payload into a [Message].
//
// The text "pong" is the reply to our keepalive ping and decodes to a
// message of type "pong" with no payload. Anything else must be a JSON
// frame with a type member.
func decodeMessage(topic string, payload []byte) (Message, error) {
	if string(payload) == "pong" {
		return Message{Topic: topic, Type: "pong"}, nil
	}

	var f frame
	if err := json.Unmarshal(payload, &f); err != nil {
		return Message{}, fmt.Errorf("malformed frame: %w", err)
	}
	if f.Type == "" {
		return Message{}, fmt.Errorf("frame missing type")
	}

	msg := Message{
		Topic: topic,
		Type:  f.Type,
		Data:  f.Data,
	}
	if f.Timestamp != "" {
		msg.Timestamp = parseTimestamp(f.Timestamp)
	}
	return msg, nil
}

// timestampLayouts covers the backend's ISO 8601 variants: with and without
// a zone designator (naive UTC timestamps are common from Python backends).
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

// parseTimestamp parses a frame timestamp, returning the zero time when no
// layout matches. An unparsable timestamp is not worth dropping the whole
// frame over.
func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}
