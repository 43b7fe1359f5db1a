// Package timing provides the scheduling primitives used by pulsesync.
//
// This package is internal to pulsesync and contains two small utilities:
//
//   - [Debouncer]: suppresses intermediate values until input quiesces
//   - [Interval]: fires a rebindable callback at a changeable period
//
// Both primitives own at most one pending timer at a time and guarantee
// that stopping them cancels any pending firing deterministically.
//
// Users of the pulsesync library should not need to interact with this
// package directly.
package timing
