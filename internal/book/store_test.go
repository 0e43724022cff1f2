package book

import (
	"testing"

	"main/internal/schema"
)

func bookUpdate(instrument schema.Instrument, seq uint64, bid, bidVol, ask, askVol int64) schema.OrderBookUpdate {
	u := schema.OrderBookUpdate{Instrument: instrument, Seq: seq}
	if bid != 0 {
		u.BidPrices[0] = schema.Price(bid)
		u.BidVolumes[0] = schema.Volume(bidVol)
	}
	if ask != 0 {
		u.AskPrices[0] = schema.Price(ask)
		u.AskVolumes[0] = schema.Volume(askVol)
	}
	return u
}

func TestSnapshotTrimsPlaceholderLevels(t *testing.T) {
	u := schema.OrderBookUpdate{Instrument: schema.InstrumentETF, Seq: 3}
	u.BidPrices[0] = 10000
	u.BidVolumes[0] = 5
	u.BidPrices[2] = 9800
	u.BidVolumes[2] = 7

	snap := NewSnapshot(u)
	if len(snap.Bids) != 2 {
		t.Fatalf("bids length: got %d want 2", len(snap.Bids))
	}
	if snap.Bids[0].Price != 10000 || snap.Bids[1].Price != 9800 {
		t.Fatalf("bids order: got %+v", snap.Bids)
	}
	if len(snap.Asks) != 0 {
		t.Fatalf("asks length: got %d want 0", len(snap.Asks))
	}
	if _, ok := snap.BestAsk(); ok {
		t.Fatal("expected no best ask on empty side")
	}
}

func TestStoreRejectsLowerSequence(t *testing.T) {
	st := NewStore()
	if _, ok := st.Update(bookUpdate(schema.InstrumentETF, 5, 10000, 5, 10100, 5)); !ok {
		t.Fatal("first update rejected")
	}
	if _, ok := st.Update(bookUpdate(schema.InstrumentETF, 4, 9900, 5, 10000, 5)); ok {
		t.Fatal("stale update accepted")
	}
	snap, ok := st.Get(schema.InstrumentETF)
	if !ok || snap.Seq != 5 {
		t.Fatalf("stored seq: got %d want 5", snap.Seq)
	}

	// An equal sequence number replaces the snapshot.
	if _, ok := st.Update(bookUpdate(schema.InstrumentETF, 5, 9900, 9, 10000, 9)); !ok {
		t.Fatal("equal-sequence update rejected")
	}
	snap, _ = st.Get(schema.InstrumentETF)
	if best, _ := snap.BestBid(); best.Price != 9900 {
		t.Fatalf("replacement not stored: got bid %d want 9900", best.Price)
	}
}

func TestPairRequiresAlignment(t *testing.T) {
	st := NewStore()
	st.Update(bookUpdate(schema.InstrumentETF, 7, 10100, 20, 10200, 20))
	if _, _, ok := st.Pair(); ok {
		t.Fatal("pair reported with one feed missing")
	}

	st.Update(bookUpdate(schema.InstrumentFuture, 6, 10000, 15, 10100, 15))
	if _, _, ok := st.Pair(); ok {
		t.Fatal("pair reported with misaligned sequences")
	}

	st.Update(bookUpdate(schema.InstrumentFuture, 7, 10000, 15, 10100, 15))
	etf, fut, ok := st.Pair()
	if !ok {
		t.Fatal("aligned pair not reported")
	}
	if etf.Instrument != schema.InstrumentETF || fut.Instrument != schema.InstrumentFuture {
		t.Fatalf("pair instruments: got %s/%s", etf.Instrument, fut.Instrument)
	}
}
