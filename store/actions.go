package store

// ActionKind names one member of the closed set of permitted store
// mutations. The reducer is total over these kinds and panics on anything
// else.
type ActionKind string

const (
	KindSetSidebar         ActionKind = "set-sidebar"
	KindSetTheme           ActionKind = "set-theme"
	KindMergeEventFilters  ActionKind = "merge-event-filters"
	KindMergeAlertFilters  ActionKind = "merge-alert-filters"
	KindSelectEvent        ActionKind = "select-event"
	KindSelectAlert        ActionKind = "select-alert"
	KindAddNotification    ActionKind = "add-notification"
	KindRemoveNotification ActionKind = "remove-notification"
	KindSetSystemStatus    ActionKind = "set-system-status"
	KindResetToInitial     ActionKind = "reset-to-initial"
)

// Action is one store mutation. Actions are immutable and built only via
// the constructor functions in this package, which keeps the action set
// closed: there is no way to construct a kind the reducer does not handle.
type Action struct {
	kind ActionKind

	sidebarOpen    bool
	theme          Theme
	patch          FilterPatch
	selectionID    string
	notification   Notification
	notificationID int64
	status         SystemStatus
}

// Kind returns the action's kind.
func (a Action) Kind() ActionKind {
	return a.kind
}

// NotificationID returns the identifier carried by add-notification and
// remove-notification actions, and zero for every other kind. Exposed for
// action hooks.
func (a Action) NotificationID() int64 {
	switch a.kind {
	case KindAddNotification:
		return a.notification.ID
	case KindRemoveNotification:
		return a.notificationID
	default:
		return 0
	}
}

// SetSidebar opens or closes the navigation sidebar.
func SetSidebar(open bool) Action {
	return Action{kind: KindSetSidebar, sidebarOpen: open}
}

// SetTheme switches the colour scheme.
func SetTheme(t Theme) Action {
	return Action{kind: KindSetTheme, theme: t}
}

// MergeEventFilters shallow-merges the patch into the event filter record.
// Fields left nil in the patch are preserved.
func MergeEventFilters(p FilterPatch) Action {
	return Action{kind: KindMergeEventFilters, patch: p}
}

// MergeAlertFilters shallow-merges the patch into the alert filter record.
// Fields left nil in the patch are preserved.
func MergeAlertFilters(p FilterPatch) Action {
	return Action{kind: KindMergeAlertFilters, patch: p}
}

// SelectEvent sets the event detail selection. An empty id clears it.
func SelectEvent(id string) Action {
	return Action{kind: KindSelectEvent, selectionID: id}
}

// SelectAlert sets the alert detail selection. An empty id clears it.
func SelectAlert(id string) Action {
	return Action{kind: KindSelectAlert, selectionID: id}
}

// AddNotification appends a transient notice to the live collection and
// schedules its automatic removal after the store's time-to-live.
//
// A zero ID is replaced with a store-assigned monotonic identifier; a zero
// CreatedAt is stamped at dispatch time.
func AddNotification(n Notification) Action {
	return Action{kind: KindAddNotification, notification: n}
}

// RemoveNotification removes the notice with the given identifier and
// cancels its pending expiry. Removing an absent identifier is a no-op, so
// the explicit and timer-driven removal paths can race harmlessly.
func RemoveNotification(id int64) Action {
	return Action{kind: KindRemoveNotification, notificationID: id}
}

// SetSystemStatus replaces the cached backend health snapshot wholesale.
func SetSystemStatus(st SystemStatus) Action {
	return Action{kind: KindSetSystemStatus, status: st}
}

// ResetToInitial restores the documented default tree exactly and cancels
// all pending notification timers.
func ResetToInitial() Action {
	return Action{kind: KindResetToInitial}
}
