// Package connector owns the push-channel connections to the backend.
//
// This package is internal to pulsesync. It maintains one logical websocket
// subscription per topic, each with a small state machine (disconnected,
// connecting, connected) that schedules an unconditional reconnection
// attempt a fixed delay after every drop. There is no backoff growth and no
// retry ceiling: a monitoring session is expected to outlive backend
// restarts.
//
// Each topic keeps a bounded inbox of the most recently received decoded
// messages (oldest evicted first) and a subscriber list invoked on every
// delivery. Subscriber registration and removal are safe while a delivery
// is in progress.
//
// Transport failures never reach callers as errors; they surface only as
// the disconnected status. Malformed inbound payloads are logged and
// dropped. The transport itself is injected via [Dialer], with a
// gorilla/websocket implementation as the production default.
package connector
