package store

import "fmt"

// reduce is the total transition function (state, action) -> state'.
//
// It never mutates its input: every branch that changes anything builds the
// changed portion fresh, so prior State values stay valid snapshots.
// An unrecognized kind panics; reaching the default branch means an Action
// was constructed outside this package's constructors, which is a wiring
// bug the caller must hear about immediately.
func reduce(s State, a Action) State {
	switch a.kind {
	case KindSetSidebar:
		s.SidebarOpen = a.sidebarOpen
		return s

	case KindSetTheme:
		s.Theme = a.theme
		return s

	case KindMergeEventFilters:
		s.EventFilters = mergeFilters(s.EventFilters, a.patch)
		return s

	case KindMergeAlertFilters:
		s.AlertFilters = mergeFilters(s.AlertFilters, a.patch)
		return s

	case KindSelectEvent:
		s.SelectedEventID = a.selectionID
		return s

	case KindSelectAlert:
		s.SelectedAlertID = a.selectionID
		return s

	case KindAddNotification:
		// copy-on-append keeps previously handed-out trees intact
		notifications := make([]Notification, 0, len(s.Notifications)+1)
		notifications = append(notifications, s.Notifications...)
		s.Notifications = append(notifications, a.notification)
		return s

	case KindRemoveNotification:
		idx := -1
		for i, n := range s.Notifications {
			if n.ID == a.notificationID {
				idx = i
				break
			}
		}
		if idx == -1 {
			// already absent: explicit removal and timer expiry raced
			return s
		}
		notifications := make([]Notification, 0, len(s.Notifications)-1)
		notifications = append(notifications, s.Notifications[:idx]...)
		s.Notifications = append(notifications, s.Notifications[idx+1:]...)
		if len(s.Notifications) == 0 {
			s.Notifications = nil
		}
		return s

	case KindSetSystemStatus:
		st := a.status
		s.SystemStatus = &st
		return s

	case KindResetToInitial:
		return initialState()

	default:
		panic(fmt.Sprintf("store: unknown action kind %q", a.kind))
	}
}

// mergeFilters applies the non-nil fields of the patch over the existing
// record.
func mergeFilters(f Filters, p FilterPatch) Filters {
	if p.TimeRange != nil {
		f.TimeRange = *p.TimeRange
	}
	if p.Severity != nil {
		f.Severity = *p.Severity
	}
	if p.Search != nil {
		f.Search = *p.Search
	}
	return f
}
