package risk

import (
	"testing"
	"time"
)

func TestInsertBudgetReservesCancelHeadroom(t *testing.T) {
	now := time.Now()
	th := NewThrottle(50, time.Second)

	// (50 - 2 - 5) / 2, every insert reserves a matching cancel.
	if got := th.InsertBudget(now); got != 21 {
		t.Fatalf("idle budget: got %d want 21", got)
	}

	for i := 0; i < 10; i++ {
		th.Note(now)
	}
	if got := th.InsertBudget(now); got != 16 {
		t.Fatalf("budget after 10 messages: got %d want 16", got)
	}
}

func TestInsertBudgetClipsAtZero(t *testing.T) {
	now := time.Now()
	th := NewThrottle(50, time.Second)
	for i := 0; i < 50; i++ {
		th.Note(now)
	}
	if got := th.InsertBudget(now); got != 0 {
		t.Fatalf("saturated budget: got %d want 0", got)
	}
}

func TestWindowPruning(t *testing.T) {
	now := time.Now()
	th := NewThrottle(50, time.Second)
	for i := 0; i < 50; i++ {
		th.Note(now)
	}
	later := now.Add(time.Second + time.Millisecond)
	if got := th.Pending(later); got != 0 {
		t.Fatalf("pending after window: got %d want 0", got)
	}
	if got := th.InsertBudget(later); got != 21 {
		t.Fatalf("budget after window: got %d want 21", got)
	}
}

func TestPruneCompactsUnderSustainedTraffic(t *testing.T) {
	base := time.Now()
	th := NewThrottle(50, time.Second)

	// 40 msg/s for 1000 simulated seconds keeps the window permanently
	// occupied; expired entries must still be reclaimed.
	last := base
	for i := 0; i < 40000; i++ {
		last = base.Add(time.Duration(i) * 25 * time.Millisecond)
		th.Note(last)
		th.Pending(last)
	}

	if got := len(th.times); got > 2*th.limit {
		t.Fatalf("retained entries: got %d want at most %d", got, 2*th.limit)
	}
	if got := th.Pending(last); got != 41 {
		t.Fatalf("pending: got %d want 41", got)
	}
}

func TestDisabledThrottle(t *testing.T) {
	th := NewThrottle(0, time.Second)
	th.Note(time.Now())
	if got := th.InsertBudget(time.Now()); got != maxInt {
		t.Fatalf("disabled budget: got %d want %d", got, maxInt)
	}
}
