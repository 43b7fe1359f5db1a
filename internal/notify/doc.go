// Package notify provides expiry scheduling for transient notifications.
//
// This package is internal to pulsesync. Each live notification gets its own
// single-shot removal timer; the [Scheduler] tracks them by identifier so an
// explicit removal can cancel the pending timer, and a timer firing after an
// explicit removal degrades to a harmless no-op.
//
// The scheduler also assigns identifiers: callers that do not supply one get
// a monotonic identifier derived from the creation time.
//
// Users of the pulsesync library should not need to interact with this
// package directly; the store package manages scheduling on every
// add-notification and remove-notification dispatch.
package notify
