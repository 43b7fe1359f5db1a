// Package store provides the reducer-driven application store that keeps
// every dashboard view consistent.
//
// The store owns a single immutable [State] tree. State transitions happen
// only through [Store.Dispatch] with an [Action] built by one of the typed
// constructors (for example [SetTheme] or [MergeEventFilters]); the reducer
// is a total function over the closed action set and panics on anything
// else, because an unknown action is a wiring bug, not a runtime condition.
//
// Every dispatch is synchronous and run-to-completion: it produces a new
// tree, schedules or cancels notification expiry timers, invokes action
// hooks, and fans the new snapshot out to subscribers before the next
// dispatch can be observed. Consumers must treat returned State values as
// immutable snapshots; the store never mutates a tree it has handed out.
//
// Notifications added via [AddNotification] are transient: each one is
// removed automatically after the configured time-to-live unless an explicit
// [RemoveNotification] lands first. Both removal paths are idempotent.
package store
