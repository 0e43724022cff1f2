package risk

import "time"

const (
	// One resting bid plus one resting ask may need a cancel each before
	// their replacements go out, so an insert is budgeted as a pair.
	maxOpenOrders = 2
	safetyMargin  = 5

	maxInt = int(^uint(0) >> 1)
)

// Throttle tracks outbound message frequency over a rolling window and
// budgets non-cancel messages so the exchange's message-rate cap cannot
// be breached even if every insert later needs a matching cancel.
// Cancels themselves are never budgeted.
type Throttle struct {
	limit  int
	window time.Duration
	times  []time.Time
	head   int
}

// NewThrottle creates a throttle. A non-positive limit disables it.
func NewThrottle(limit int, window time.Duration) *Throttle {
	return &Throttle{limit: limit, window: window}
}

// Note records one outbound message.
func (t *Throttle) Note(now time.Time) {
	if t.limit <= 0 {
		return
	}
	t.times = append(t.times, now)
}

// Pending returns the number of messages still inside the window.
func (t *Throttle) Pending(now time.Time) int {
	t.prune(now)
	return len(t.times) - t.head
}

// InsertBudget returns how many new non-cancel messages may be sent now.
func (t *Throttle) InsertBudget(now time.Time) int {
	if t.limit <= 0 {
		return maxInt
	}
	free := t.limit - t.Pending(now)
	budget := (free - maxOpenOrders - safetyMargin) / 2
	if budget < 0 {
		return 0
	}
	return budget
}

func (t *Throttle) prune(now time.Time) {
	for t.head < len(t.times) && now.Sub(t.times[t.head]) > t.window {
		t.head++
	}
	if t.head == 0 {
		return
	}
	if t.head == len(t.times) {
		t.times = t.times[:0]
		t.head = 0
		return
	}
	// Sustained traffic never fully drains the window, so reclaim the
	// expired prefix once it outgrows one window's worth of entries.
	if t.head > t.limit {
		n := copy(t.times, t.times[t.head:])
		t.times = t.times[:n]
		t.head = 0
	}
}
