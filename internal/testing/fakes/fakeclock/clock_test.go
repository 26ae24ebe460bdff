package fakeclock

import (
	"testing"
	"time"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestClock_AutoAdvance(t *testing.T) {
	c := New(epoch)
	c.SetAutoAdvance(true)

	select {
	case got := <-c.After(5 * time.Second):
		if !got.Equal(epoch.Add(5 * time.Second)) {
			t.Errorf("fired at %v, want %v", got, epoch.Add(5*time.Second))
		}
	default:
		t.Fatal("After() did not fire with auto advance")
	}
	if got := c.Now(); !got.Equal(epoch.Add(5 * time.Second)) {
		t.Errorf("Now() = %v, want %v", got, epoch.Add(5*time.Second))
	}
	if c.Waited() != 5*time.Second || c.Pending() != 0 {
		t.Errorf("Waited() = %v, Pending() = %d", c.Waited(), c.Pending())
	}
}

func TestClock_AfterFiresOnAdvance(t *testing.T) {
	c := New(epoch)
	ch := c.After(time.Second)

	select {
	case <-ch:
		t.Fatal("After() fired before Advance")
	default:
	}

	if c.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", c.Pending())
	}
	c.Advance(time.Second)

	select {
	case got := <-ch:
		if !got.Equal(epoch.Add(time.Second)) {
			t.Errorf("fired at %v, want %v", got, epoch.Add(time.Second))
		}
	default:
		t.Fatal("After() did not fire after Advance")
	}
}

func TestClock_AfterZeroFiresImmediately(t *testing.T) {
	c := New(epoch)
	select {
	case <-c.After(0):
	default:
		t.Fatal("After(0) should fire immediately")
	}
}
