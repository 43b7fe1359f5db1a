// Package pulsesync keeps monitoring-dashboard views consistent with a
// backend's real-time push channel.
//
// pulsesync is the client-side delivery and state-synchronization layer of
// a monitoring dashboard: it owns the websocket subscriptions (one per
// topic, with automatic fixed-delay reconnection and a bounded per-topic
// inbox) and a reducer-driven application store that coordinates the state
// every view reads: filters, selections, transient notifications with
// auto-expiry, and the cached system-status snapshot.
//
// # Quick Start
//
// Create a client and run it with graceful shutdown:
//
//	client, err := pulsesync.New("ws://localhost:8000/ws",
//	    pulsesync.WithTopics("events", "alerts"),
//	)
//	if err != nil {
//	    slog.Error("failed to create client", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	client.Start(ctx) // blocks until context cancelled
//
// # Reading and mutating state
//
// Views read the state tree through [Client.State] or subscribe to
// snapshots, and mutate it by dispatching actions from the store package:
//
//	st := client.Store()
//	st.Dispatch(store.SetTheme(store.ThemeLight))
//	st.Dispatch(store.MergeEventFilters(store.FilterPatch{Search: &text}))
//
// Every dispatch synchronously produces a new immutable tree; consumers
// must treat prior snapshots as frozen.
//
// # Push messages
//
// Inbound frames are routed automatically: alert frames become transient
// notifications, stats frames refresh the system-status snapshot, and
// every frame is offered to callbacks registered with
// [WithMessageCallback]. Event and alert frames also fire the
// cache-invalidation callback ([WithInvalidateCallback]) so an external
// query-cache collaborator knows to re-fetch.
//
// # Architecture
//
// pulsesync consists of a public store package plus several internal ones:
//
//   - store: reducer-driven application state with pub/sub
//   - internal/connector: per-topic websocket channels with reconnection
//   - internal/notify: notification expiry timers
//   - internal/timing: debounce and interval primitives
//   - internal/prefs: file-backed preference mirror
//
// The internal packages are not part of the public API and may change
// without notice.
package pulsesync
