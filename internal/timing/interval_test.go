package timing

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestInterval_FiresRepeatedly(t *testing.T) {
	var count atomic.Int32
	iv := NewInterval(func() { count.Add(1) }, 20*time.Millisecond)
	defer iv.Stop()

	time.Sleep(150 * time.Millisecond)

	if n := count.Load(); n < 3 {
		t.Errorf("fired %d times in 150ms at 20ms period, want at least 3", n)
	}
}

func TestInterval_SetFuncRebindsWithoutRestart(t *testing.T) {
	var first, second atomic.Int32
	iv := NewInterval(func() { first.Add(1) }, 20*time.Millisecond)
	defer iv.Stop()

	time.Sleep(50 * time.Millisecond)
	iv.SetFunc(func() { second.Add(1) })
	time.Sleep(100 * time.Millisecond)

	if first.Load() == 0 {
		t.Error("original callback never fired")
	}
	if second.Load() == 0 {
		t.Error("rebound callback never fired")
	}
}

func TestInterval_ZeroPeriodSuspends(t *testing.T) {
	var count atomic.Int32
	iv := NewInterval(func() { count.Add(1) }, 0)
	defer iv.Stop()

	time.Sleep(60 * time.Millisecond)
	if n := count.Load(); n != 0 {
		t.Fatalf("fired %d times while suspended, want 0", n)
	}

	// resuming with a positive period starts firing again
	iv.SetEvery(15 * time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	if n := count.Load(); n == 0 {
		t.Error("never fired after resuming")
	}
}

func TestInterval_SuspendMidFlight(t *testing.T) {
	var count atomic.Int32
	iv := NewInterval(func() { count.Add(1) }, 15*time.Millisecond)
	defer iv.Stop()

	time.Sleep(60 * time.Millisecond)
	iv.SetEvery(0)
	settled := count.Load()

	time.Sleep(80 * time.Millisecond)
	if n := count.Load(); n != settled {
		t.Errorf("fired %d more times after suspension", n-settled)
	}
}

func TestInterval_StopCancels(t *testing.T) {
	var count atomic.Int32
	iv := NewInterval(func() { count.Add(1) }, 10*time.Millisecond)

	time.Sleep(35 * time.Millisecond)
	iv.Stop()
	settled := count.Load()

	time.Sleep(60 * time.Millisecond)
	if n := count.Load(); n != settled {
		t.Errorf("fired after Stop: %d -> %d", settled, n)
	}

	// SetEvery after Stop must not revive the interval
	iv.SetEvery(10 * time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	if n := count.Load(); n != settled {
		t.Errorf("revived after Stop: %d -> %d", settled, n)
	}
}
