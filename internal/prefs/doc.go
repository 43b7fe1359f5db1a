// Package prefs provides a small file-backed key/value mirror for UI
// preferences.
//
// This package is internal to pulsesync. It wraps a single JSON file and
// offers synchronous, failure-tolerant access: a missing file, an unreadable
// file, or an absent key all fall back to the caller-supplied default, and
// write failures are logged rather than propagated. Preferences are the only
// state that survives a restart; everything else pulsesync holds is
// memory-resident.
package prefs
