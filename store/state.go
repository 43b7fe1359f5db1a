package store

import "time"

// Theme selects the dashboard colour scheme.
type Theme string

const (
	// ThemeDark is the default theme.
	ThemeDark Theme = "dark"

	// ThemeLight is the alternative light theme.
	ThemeLight Theme = "light"
)

// Severity classifies a notification or alert.
//
// The values mirror the severities emitted by the backend's detection
// pipeline. Severity is a plain string type for easy JSON round-tripping.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// String returns the string representation of the severity.
// This implements the fmt.Stringer interface.
func (s Severity) String() string {
	return string(s)
}

// DefaultTimeRange is the time window both filter records start with.
const DefaultTimeRange = "24h"

// Filters is one view's filter record: a time window plus optional severity
// and free-text constraints. The event list and the alert list each own an
// independent Filters value.
type Filters struct {
	// TimeRange is the relative window, e.g. "1h", "24h", "7d".
	TimeRange string `json:"time_range"`

	// Severity restricts results to one severity. Empty means all.
	Severity string `json:"severity"`

	// Search is a free-text constraint. Empty means unfiltered.
	Search string `json:"search"`
}

// FilterPatch is a partial [Filters] for merge actions. Only non-nil fields
// are applied; nil fields leave the existing value untouched.
type FilterPatch struct {
	TimeRange *string
	Severity  *string
	Search    *string
}

// Notification is one transient UI notice.
//
// Notifications are display-ordered oldest first and removed automatically
// after the store's time-to-live elapses, unless removed explicitly before
// then.
type Notification struct {
	// ID identifies the notification for removal. If the producer leaves
	// it zero, the store assigns a monotonic identifier derived from the
	// creation time.
	ID int64 `json:"id"`

	// Severity classifies the notice for display.
	Severity Severity `json:"severity"`

	// Message is the free-form payload shown to the user.
	Message string `json:"message"`

	// CreatedAt is when the notification was produced. Zero means the
	// store stamps it at dispatch time.
	CreatedAt time.Time `json:"created_at"`
}

// SystemStatus is the cached health snapshot of the backend.
//
// The shape follows the backend's system status endpoint: an overall status
// string, the backend version, and a per-component detail map that this
// layer treats as opaque.
type SystemStatus struct {
	Status     string         `json:"status"`
	Version    string         `json:"version"`
	Components map[string]any `json:"components"`

	// ReceivedAt is when this snapshot reached the client.
	ReceivedAt time.Time `json:"received_at"`
}

// State is the single application state tree shared by every view.
//
// State values are immutable snapshots: the store replaces the whole tree on
// every dispatch and never mutates a tree it has already handed out.
// Consumers must not modify the slices or maps they receive.
type State struct {
	// SidebarOpen is the navigation sidebar flag.
	SidebarOpen bool

	// Theme is the active colour scheme.
	Theme Theme

	// EventFilters constrains the live event stream view.
	EventFilters Filters

	// AlertFilters constrains the alert list view.
	AlertFilters Filters

	// SelectedEventID is the event open in the detail view. Empty means
	// no selection.
	SelectedEventID string

	// SelectedAlertID is the alert open in the detail view. Empty means
	// no selection.
	SelectedAlertID string

	// Notifications is the live notice collection, oldest first.
	Notifications []Notification

	// SystemStatus is the cached backend health snapshot. Nil until the
	// first snapshot arrives.
	SystemStatus *SystemStatus
}

// initialState returns the documented default tree. reset-to-initial must
// reproduce exactly this value.
func initialState() State {
	return State{
		SidebarOpen:  true,
		Theme:        ThemeDark,
		EventFilters: Filters{TimeRange: DefaultTimeRange},
		AlertFilters: Filters{TimeRange: DefaultTimeRange},
	}
}

// clone returns a deep copy of the state tree, so a handed-out snapshot can
// never alias the store's current tree.
func (s State) clone() State {
	cp := s
	if s.Notifications != nil {
		cp.Notifications = append([]Notification(nil), s.Notifications...)
	}
	if s.SystemStatus != nil {
		st := *s.SystemStatus
		if st.Components != nil {
			components := make(map[string]any, len(st.Components))
			for k, v := range st.Components {
				components[k] = v
			}
			st.Components = components
		}
		cp.SystemStatus = &st
	}
	return cp
}
