package store

import (
	"reflect"
	"sync"
	"testing"
	"time"
)

func TestNew_StartsWithDefaultTree(t *testing.T) {
	s := New()

	got := s.CurrentState()
	if !got.SidebarOpen {
		t.Error("SidebarOpen = false, want true")
	}
	if got.Theme != ThemeDark {
		t.Errorf("Theme = %q, want %q", got.Theme, ThemeDark)
	}
	if got.EventFilters.TimeRange != DefaultTimeRange {
		t.Errorf("EventFilters.TimeRange = %q, want %q", got.EventFilters.TimeRange, DefaultTimeRange)
	}
	if got.SystemStatus != nil {
		t.Error("SystemStatus non-nil before first fetch")
	}
	if got.Notifications != nil {
		t.Error("Notifications non-nil on fresh store")
	}
}

func TestStore_DispatchAppliesInCallOrder(t *testing.T) {
	s := New()

	s.Dispatch(SetTheme(ThemeLight))
	s.Dispatch(SetTheme(ThemeDark))
	s.Dispatch(SetTheme(ThemeLight))

	if got := s.CurrentState().Theme; got != ThemeLight {
		t.Errorf("Theme = %q, want %q", got, ThemeLight)
	}
}

func TestStore_NotificationExpiresAfterTTL(t *testing.T) {
	s := New(WithNotificationTTL(50 * time.Millisecond))
	defer s.Close()

	s.Dispatch(AddNotification(Notification{Message: "transient"}))

	// present before the delay elapses
	if n := len(s.CurrentState().Notifications); n != 1 {
		t.Fatalf("len(Notifications) = %d before TTL, want 1", n)
	}

	time.Sleep(150 * time.Millisecond)

	// absent after
	if n := len(s.CurrentState().Notifications); n != 0 {
		t.Errorf("len(Notifications) = %d after TTL, want 0", n)
	}
}

func TestStore_ExplicitRemoveCancelsTimer(t *testing.T) {
	s := New(WithNotificationTTL(50 * time.Millisecond))
	defer s.Close()

	s.Dispatch(AddNotification(Notification{ID: 7, Message: "short lived"}))
	s.Dispatch(RemoveNotification(7))

	if n := len(s.CurrentState().Notifications); n != 0 {
		t.Fatalf("len(Notifications) = %d after explicit remove, want 0", n)
	}

	// the timer firing later must not disturb anything
	time.Sleep(120 * time.Millisecond)
	if n := len(s.CurrentState().Notifications); n != 0 {
		t.Errorf("len(Notifications) = %d, want 0", n)
	}
}

func TestStore_DoubleRemoveIsNoOp(t *testing.T) {
	s := New()
	defer s.Close()

	s.Dispatch(AddNotification(Notification{ID: 3}))
	s.Dispatch(RemoveNotification(3))
	s.Dispatch(RemoveNotification(3)) // second removal must not panic or corrupt

	if n := len(s.CurrentState().Notifications); n != 0 {
		t.Errorf("len(Notifications) = %d, want 0", n)
	}
}

func TestStore_AssignsMonotonicIDs(t *testing.T) {
	s := New(WithNotificationTTL(time.Minute))
	defer s.Close()

	for i := 0; i < 10; i++ {
		s.Dispatch(AddNotification(Notification{Message: "n"}))
	}

	notifications := s.CurrentState().Notifications
	if len(notifications) != 10 {
		t.Fatalf("len(Notifications) = %d, want 10", len(notifications))
	}
	for i := 1; i < len(notifications); i++ {
		if notifications[i].ID <= notifications[i-1].ID {
			t.Fatalf("IDs not monotonic: %d then %d", notifications[i-1].ID, notifications[i].ID)
		}
	}
	for _, n := range notifications {
		if n.CreatedAt.IsZero() {
			t.Error("CreatedAt not stamped")
		}
	}
}

func TestStore_SuppliedIDKept(t *testing.T) {
	s := New(WithNotificationTTL(time.Minute))
	defer s.Close()

	s.Dispatch(AddNotification(Notification{ID: 12345, Message: "caller id"}))

	notifications := s.CurrentState().Notifications
	if len(notifications) != 1 || notifications[0].ID != 12345 {
		t.Errorf("Notifications = %+v, want single entry with ID 12345", notifications)
	}
}

func TestStore_ResetReproducesFreshStore(t *testing.T) {
	s := New(WithNotificationTTL(time.Minute))
	defer s.Close()

	s.Dispatch(SetSidebar(false))
	s.Dispatch(SetTheme(ThemeLight))
	s.Dispatch(MergeAlertFilters(FilterPatch{Severity: strPtr("high")}))
	s.Dispatch(SelectEvent("evt-1"))
	s.Dispatch(AddNotification(Notification{Message: "pending"}))
	s.Dispatch(SetSystemStatus(SystemStatus{Status: "healthy"}))

	s.Dispatch(ResetToInitial())

	fresh := New()
	if got, want := s.CurrentState(), fresh.CurrentState(); !reflect.DeepEqual(got, want) {
		t.Errorf("state after reset = %+v, want %+v", got, want)
	}

	// pending expiry timers are cancelled by the reset
	time.Sleep(20 * time.Millisecond)
	if !reflect.DeepEqual(s.CurrentState(), fresh.CurrentState()) {
		t.Error("reset store drifted after pending timers should have been cancelled")
	}
}

func TestStore_SnapshotsAreIsolated(t *testing.T) {
	s := New(WithNotificationTTL(time.Minute))
	defer s.Close()

	s.Dispatch(AddNotification(Notification{ID: 1, Message: "original"}))
	snapshot := s.CurrentState()

	s.Dispatch(AddNotification(Notification{ID: 2}))
	s.Dispatch(SetSystemStatus(SystemStatus{Components: map[string]any{"db": "healthy"}}))

	if len(snapshot.Notifications) != 1 {
		t.Errorf("earlier snapshot grew to %d notifications", len(snapshot.Notifications))
	}

	// mutating a snapshot's map must not leak into the store
	current := s.CurrentState()
	current.SystemStatus.Components["db"] = "tampered"
	if got := s.CurrentState().SystemStatus.Components["db"]; got != "healthy" {
		t.Errorf("store components tampered via snapshot: %v", got)
	}
}

func TestStore_SubscribeReceivesSnapshots(t *testing.T) {
	s := New()
	defer s.Close()

	ch := s.Subscribe()

	s.Dispatch(SetTheme(ThemeLight))

	select {
	case got := <-ch:
		if got.Theme != ThemeLight {
			t.Errorf("received Theme = %q, want %q", got.Theme, ThemeLight)
		}
	case <-time.After(time.Second):
		t.Error("Subscribe() channel did not receive a snapshot")
	}
}

func TestStore_UnsubscribeClosesChannel(t *testing.T) {
	s := New()
	defer s.Close()

	ch := s.Subscribe()
	s.Unsubscribe(ch)

	if _, open := <-ch; open {
		t.Error("channel still open after Unsubscribe")
	}

	s.Unsubscribe(ch) // second unsubscribe is a no-op
	s.Dispatch(SetSidebar(false))
}

func TestStore_OnActionHookObservesDispatch(t *testing.T) {
	s := New()
	defer s.Close()

	var mu sync.Mutex
	var kinds []ActionKind
	s.OnAction(func(a Action) {
		mu.Lock()
		defer mu.Unlock()
		kinds = append(kinds, a.Kind())
	})

	s.Dispatch(SelectAlert("alr-1"))
	s.Dispatch(SetSidebar(false))

	mu.Lock()
	defer mu.Unlock()
	want := []ActionKind{KindSelectAlert, KindSetSidebar}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("hook saw %v, want %v", kinds, want)
	}
}

func TestStore_PanickingHookRecovered(t *testing.T) {
	s := New()
	defer s.Close()

	s.OnAction(func(Action) { panic("misbehaving consumer") })

	// must not propagate
	s.Dispatch(SetSidebar(false))

	if got := s.CurrentState().SidebarOpen; got {
		t.Error("dispatch lost to a panicking hook")
	}
}

func TestStore_ConcurrentDispatches(t *testing.T) {
	s := New(WithNotificationTTL(time.Minute))
	defer s.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Dispatch(AddNotification(Notification{Message: "burst"}))
		}()
	}
	wg.Wait()

	if n := len(s.CurrentState().Notifications); n != 20 {
		t.Errorf("len(Notifications) = %d, want 20", n)
	}
}
