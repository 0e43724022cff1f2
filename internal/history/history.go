// Package history persists executed fills into Postgres for later
// reconciliation. Inserts are buffered and written off the hot path.
package history

import (
	"sync/atomic"
	"time"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"main/internal/og"
	"main/internal/schema"
)

const defaultQueueSize = 1024

// FillRecord is one executed trade on the traded instrument.
type FillRecord struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement"`
	OrderID    uint64 `gorm:"index"`
	Instrument int16
	Strategy   int16
	Side       int16
	Price      int64
	Volume     int64
	CreatedAt  time.Time
}

// HedgeRecord is one executed hedge trade on the future.
type HedgeRecord struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	OrderID   uint64 `gorm:"index"`
	Side      int16
	Price     int64
	Volume    int64
	CreatedAt time.Time
}

type record struct {
	fill  *FillRecord
	hedge *HedgeRecord
}

// Sink buffers fill records and flushes them to Postgres from its own
// goroutine. It implements the engine's fill observer.
type Sink struct {
	db      *gorm.DB
	queue   chan record
	done    chan struct{}
	closed  atomic.Bool
	dropped atomic.Int64
}

// Open connects to Postgres, migrates the schema and starts the writer.
func Open(dsn string) (*Sink, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}

	if err := db.AutoMigrate(&FillRecord{}, &HedgeRecord{}); err != nil {
		return nil, errors.Wrap(err, "migrate history tables")
	}

	s := &Sink{
		db:    db,
		queue: make(chan record, defaultQueueSize),
		done:  make(chan struct{}),
	}
	go s.run()
	return s, nil
}

// OrderFilled records a trade on the traded instrument.
func (s *Sink) OrderFilled(order og.Order, price schema.Price, volume schema.Volume) {
	s.enqueue(record{fill: &FillRecord{
		OrderID:    order.ID,
		Instrument: int16(order.Instrument),
		Strategy:   int16(order.Strategy),
		Side:       int16(order.Side),
		Price:      int64(price),
		Volume:     int64(volume),
		CreatedAt:  time.Now().UTC(),
	}})
}

// HedgeFilled records an executed hedge on the future.
func (s *Sink) HedgeFilled(order og.Order, price schema.Price, volume schema.Volume) {
	s.enqueue(record{hedge: &HedgeRecord{
		OrderID:   order.ID,
		Side:      int16(order.Side),
		Price:     int64(price),
		Volume:    int64(volume),
		CreatedAt: time.Now().UTC(),
	}})
}

// Dropped reports how many records were discarded on a full queue.
func (s *Sink) Dropped() int64 {
	return s.dropped.Load()
}

// Close stops accepting records and waits for the queue to drain.
func (s *Sink) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	close(s.queue)
	<-s.done
}

func (s *Sink) enqueue(r record) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.queue <- r:
	default:
		s.dropped.Add(1)
	}
}

func (s *Sink) run() {
	defer close(s.done)
	for r := range s.queue {
		var err error
		switch {
		case r.fill != nil:
			err = s.db.Create(r.fill).Error
		case r.hedge != nil:
			err = s.db.Create(r.hedge).Error
		}
		if err != nil {
			logs.Errorf("insert history record, err: %+v", err)
		}
	}
}
