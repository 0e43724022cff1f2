package book

import (
	"main/internal/schema"
)

// Level is one (price, volume) entry of a book side.
type Level struct {
	Price  schema.Price
	Volume schema.Volume
}

// Snapshot is a validated top-of-book snapshot. Placeholder zero-price
// levels from the raw update are stripped; both sides remain best-first.
type Snapshot struct {
	Instrument schema.Instrument
	Seq        uint64
	Bids       []Level
	Asks       []Level
}

// NewSnapshot trims placeholder levels from a raw book update.
func NewSnapshot(u schema.OrderBookUpdate) Snapshot {
	return Snapshot{
		Instrument: u.Instrument,
		Seq:        u.Seq,
		Bids:       trimLevels(u.BidPrices, u.BidVolumes),
		Asks:       trimLevels(u.AskPrices, u.AskVolumes),
	}
}

func trimLevels(prices [schema.TopLevels]schema.Price, volumes [schema.TopLevels]schema.Volume) []Level {
	levels := make([]Level, 0, schema.TopLevels)
	for i := 0; i < schema.TopLevels; i++ {
		if prices[i] == 0 {
			continue
		}
		levels = append(levels, Level{Price: prices[i], Volume: volumes[i]})
	}
	return levels
}

// BestBid returns the top bid level, if any.
func (s Snapshot) BestBid() (Level, bool) {
	if len(s.Bids) == 0 {
		return Level{}, false
	}
	return s.Bids[0], true
}

// BestAsk returns the top ask level, if any.
func (s Snapshot) BestAsk() (Level, bool) {
	if len(s.Asks) == 0 {
		return Level{}, false
	}
	return s.Asks[0], true
}

// Store holds the latest accepted snapshot per instrument.
type Store struct {
	last [2]Snapshot
	seen [2]bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Update accepts a book update unless its sequence number is strictly
// lower than the last accepted one for the instrument. The stored
// snapshot is replaced, never merged. Returns the accepted snapshot and
// false when the update was discarded as stale.
func (st *Store) Update(u schema.OrderBookUpdate) (Snapshot, bool) {
	if !u.Instrument.Valid() {
		return Snapshot{}, false
	}
	idx := int(u.Instrument)
	if st.seen[idx] && u.Seq < st.last[idx].Seq {
		return Snapshot{}, false
	}
	snap := NewSnapshot(u)
	st.last[idx] = snap
	st.seen[idx] = true
	return snap, true
}

// Get returns the most recent accepted snapshot for the instrument.
func (st *Store) Get(instrument schema.Instrument) (Snapshot, bool) {
	if !instrument.Valid() || !st.seen[instrument] {
		return Snapshot{}, false
	}
	return st.last[instrument], true
}

// Pair returns both snapshots when the two feeds are sequence-aligned.
// The feeds advance independently, so alignment is an expected
// steady-state condition rather than an error when absent.
func (st *Store) Pair() (etf, future Snapshot, ok bool) {
	if !st.seen[schema.InstrumentETF] || !st.seen[schema.InstrumentFuture] {
		return Snapshot{}, Snapshot{}, false
	}
	etf = st.last[schema.InstrumentETF]
	future = st.last[schema.InstrumentFuture]
	if etf.Seq != future.Seq {
		return Snapshot{}, Snapshot{}, false
	}
	return etf, future, true
}
