package obs

import (
	"sync/atomic"
	"time"

	"main/internal/schema"
)

const maxEventType = int(schema.EventError)

// Metrics collects lightweight counters and handler latency stats. All
// counters are atomics so the main goroutine can snapshot them while the
// engine goroutine is running.
type Metrics struct {
	eventCounts [maxEventType + 1]uint64

	staleBooks   uint64
	gateAccepts  uint64
	gateRejects  uint64
	arbOrders    uint64
	hedgeOrders  uint64
	quoteCancels uint64
	retired      uint64

	handlerLatency LatencyStats
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	EventCounts    map[schema.EventType]uint64
	StaleBooks     uint64
	GateAccepts    uint64
	GateRejects    uint64
	ArbOrders      uint64
	HedgeOrders    uint64
	QuoteCancels   uint64
	Retired        uint64
	HandlerLatency LatencySnapshot
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// ObserveEvent counts an inbound event by type.
func (m *Metrics) ObserveEvent(header schema.EventHeader) {
	if m == nil {
		return
	}
	if idx := int(header.Type); idx >= 0 && idx <= maxEventType {
		atomic.AddUint64(&m.eventCounts[idx], 1)
	}
}

// ObserveStaleBook counts a discarded out-of-order book update.
func (m *Metrics) ObserveStaleBook() {
	if m != nil {
		atomic.AddUint64(&m.staleBooks, 1)
	}
}

// ObserveGate counts a compliance decision.
func (m *Metrics) ObserveGate(allowed bool) {
	if m == nil {
		return
	}
	if allowed {
		atomic.AddUint64(&m.gateAccepts, 1)
	} else {
		atomic.AddUint64(&m.gateRejects, 1)
	}
}

// ObserveArbOrder counts a fired arbitrage order.
func (m *Metrics) ObserveArbOrder() {
	if m != nil {
		atomic.AddUint64(&m.arbOrders, 1)
	}
}

// ObserveHedgeOrder counts an issued hedge.
func (m *Metrics) ObserveHedgeOrder() {
	if m != nil {
		atomic.AddUint64(&m.hedgeOrders, 1)
	}
}

// ObserveQuoteCancel counts a quote teardown.
func (m *Metrics) ObserveQuoteCancel() {
	if m != nil {
		atomic.AddUint64(&m.quoteCancels, 1)
	}
}

// ObserveRetired counts a terminal order retirement.
func (m *Metrics) ObserveRetired() {
	if m != nil {
		atomic.AddUint64(&m.retired, 1)
	}
}

// ObserveHandler records one handler execution duration.
func (m *Metrics) ObserveHandler(d time.Duration) {
	if m == nil || d < 0 {
		return
	}
	m.handlerLatency.observe(uint64(d))
}

// Snapshot returns the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	counts := make(map[schema.EventType]uint64, maxEventType+1)
	for i := 0; i <= maxEventType; i++ {
		if v := atomic.LoadUint64(&m.eventCounts[i]); v > 0 {
			counts[schema.EventType(i)] = v
		}
	}
	return Snapshot{
		EventCounts:    counts,
		StaleBooks:     atomic.LoadUint64(&m.staleBooks),
		GateAccepts:    atomic.LoadUint64(&m.gateAccepts),
		GateRejects:    atomic.LoadUint64(&m.gateRejects),
		ArbOrders:      atomic.LoadUint64(&m.arbOrders),
		HedgeOrders:    atomic.LoadUint64(&m.hedgeOrders),
		QuoteCancels:   atomic.LoadUint64(&m.quoteCancels),
		Retired:        atomic.LoadUint64(&m.retired),
		HandlerLatency: m.handlerLatency.snapshot(),
	}
}

func (s *LatencyStats) observe(ns uint64) {
	atomic.AddUint64(&s.count, 1)
	atomic.AddUint64(&s.sum, ns)
	for {
		cur := atomic.LoadUint64(&s.min)
		if cur != 0 && cur <= ns {
			break
		}
		if atomic.CompareAndSwapUint64(&s.min, cur, ns) {
			break
		}
	}
	for {
		cur := atomic.LoadUint64(&s.max)
		if cur >= ns {
			break
		}
		if atomic.CompareAndSwapUint64(&s.max, cur, ns) {
			break
		}
	}
}

func (s *LatencyStats) snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&s.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	sum := atomic.LoadUint64(&s.sum)
	return LatencySnapshot{
		Count: count,
		Min:   time.Duration(atomic.LoadUint64(&s.min)),
		Max:   time.Duration(atomic.LoadUint64(&s.max)),
		Avg:   time.Duration(sum / count),
	}
}
