package recorder

import (
	"context"
	"path/filepath"
	"testing"

	"main/internal/schema"
)

func journalEvents() []schema.Event {
	book := &schema.OrderBookUpdate{Instrument: schema.InstrumentFuture, Seq: 1}
	book.BidPrices[0] = 10000
	book.BidVolumes[0] = 50
	return []schema.Event{
		{Header: schema.NewHeader(schema.EventOrderBook, 1, 100, 110), Book: book},
		{Header: schema.NewHeader(schema.EventOrderFilled, 2, 200, 210), Filled: &schema.OrderFilled{OrderID: 1, Price: 9900, Volume: 10}},
		{Header: schema.NewHeader(schema.EventOrderStatus, 3, 300, 310), Status: &schema.OrderStatus{OrderID: 1}},
	}
}

func writeJournal(t *testing.T, dir string, events []schema.Event) string {
	t.Helper()
	w, err := NewWriter(DefaultConfig(dir))
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, ev := range events {
		if err := w.TryRecord(ev); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "journal-*.jsonl"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("journal files: got %v err %v", matches, err)
	}
	return matches[0]
}

func TestWriterReaderRoundTrip(t *testing.T) {
	events := journalEvents()
	path := writeJournal(t, t.TempDir(), events)

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != len(events) {
		t.Fatalf("events: got %d want %d", len(got), len(events))
	}
	if got[0].Header != events[0].Header {
		t.Fatalf("header: got %+v want %+v", got[0].Header, events[0].Header)
	}
	if got[0].Book == nil || got[0].Book.BidPrices[0] != 10000 {
		t.Fatalf("book payload: got %+v", got[0].Book)
	}
	if got[1].Filled == nil || got[1].Filled.Volume != 10 {
		t.Fatalf("fill payload: got %+v", got[1].Filled)
	}
	if got[2].Status == nil || got[2].Status.RemainingVolume != 0 {
		t.Fatalf("status payload: got %+v", got[2].Status)
	}
}

func TestTryRecordBeforeStart(t *testing.T) {
	w, err := NewWriter(DefaultConfig(t.TempDir()))
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	if err := w.TryRecord(schema.Event{}); err != ErrNotStarted {
		t.Fatalf("record before start: got %v want %v", err, ErrNotStarted)
	}
}

func TestPlaybackPreservesOrder(t *testing.T) {
	events := journalEvents()
	path := writeJournal(t, t.TempDir(), events)

	var seqs []uint64
	err := Playback(context.Background(), PlaybackConfig{Path: path}, func(ev schema.Event) {
		seqs = append(seqs, ev.Header.Seq)
	})
	if err != nil {
		t.Fatalf("playback: %v", err)
	}
	if len(seqs) != 3 || seqs[0] != 1 || seqs[1] != 2 || seqs[2] != 3 {
		t.Fatalf("order: got %v", seqs)
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "absent.jsonl")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
