package quote

import (
	"time"

	"github.com/yanun0323/logs"

	"main/internal/book"
	"main/internal/obs"
	"main/internal/og"
	"main/internal/risk"
	"main/internal/schema"
)

// Config holds the quoting parameters.
type Config struct {
	LotSize       schema.Volume
	PositionLimit schema.Volume
	TickSize      schema.Price
}

// Engine maintains an inventory-skewed two-sided quote in the ETF,
// repriced on every Future book update. At most one bid and one ask are
// working at any time; a price move tears the old quote down before a
// replacement is considered.
type Engine struct {
	cfg      Config
	gate     *risk.Gate
	gateway  og.Gateway
	throttle *risk.Throttle
	metrics  *obs.Metrics

	bidID    uint64
	askID    uint64
	bidPrice schema.Price
	askPrice schema.Price
	futMid   schema.Price
}

// NewEngine creates a quoting engine. The throttle and metrics may be nil.
func NewEngine(cfg Config, gate *risk.Gate, gateway og.Gateway, throttle *risk.Throttle, metrics *obs.Metrics) *Engine {
	return &Engine{
		cfg:      cfg,
		gate:     gate,
		gateway:  gateway,
		throttle: throttle,
		metrics:  metrics,
	}
}

// Reprice recomputes the quote from a Future snapshot and the current net
// ETF position, cancelling and replacing the working orders as needed.
func (e *Engine) Reprice(fut book.Snapshot, position schema.Volume) {
	adjustment := -floorDiv(int64(position), 3*int64(e.cfg.LotSize)) * int64(e.cfg.TickSize)

	bestBid, bidOK := fut.BestBid()
	bestAsk, askOK := fut.BestAsk()

	if bidOK && askOK {
		e.futMid = roundToTick((bestBid.Price+bestAsk.Price)/2, e.cfg.TickSize)
	}

	var newBid, newAsk schema.Price
	if bidOK {
		newBid = bestBid.Price + schema.Price(adjustment) - e.cfg.TickSize
	}
	if askOK {
		newAsk = bestAsk.Price + schema.Price(adjustment) + e.cfg.TickSize
	}

	if e.bidID != 0 && newBid != e.bidPrice && newBid != 0 {
		e.cancel(e.bidID)
		e.bidID = 0
	}
	if e.askID != 0 && newAsk != e.askPrice && newAsk != 0 {
		e.cancel(e.askID)
		e.askID = 0
	}

	now := time.Now()
	if e.bidID == 0 && newBid != 0 && position < e.cfg.PositionLimit && e.budget(now) > 0 {
		volume := minVolume(e.cfg.LotSize, e.cfg.PositionLimit-position)
		if id, decision := e.gate.Submit(schema.InstrumentETF, schema.SideBuy, newBid, volume, schema.LifespanGoodForDay, schema.StrategyQuoteBid); decision.Allowed() {
			e.bidID = id
			e.bidPrice = newBid
		} else {
			logs.Warnf("quote bid rejected at %d: reason %d", newBid, decision.Reason)
		}
	}
	if e.askID == 0 && newAsk != 0 && position > -e.cfg.PositionLimit && e.budget(now) > 0 {
		volume := minVolume(e.cfg.LotSize, e.cfg.PositionLimit+position)
		if id, decision := e.gate.Submit(schema.InstrumentETF, schema.SideSell, newAsk, volume, schema.LifespanGoodForDay, schema.StrategyQuoteAsk); decision.Allowed() {
			e.askID = id
			e.askPrice = newAsk
		} else {
			logs.Warnf("quote ask rejected at %d: reason %d", newAsk, decision.Reason)
		}
	}
}

// ClearSlot drops the bid or ask handle referencing a retired order.
func (e *Engine) ClearSlot(id uint64) bool {
	switch id {
	case 0:
		return false
	case e.bidID:
		e.bidID = 0
		return true
	case e.askID:
		e.askID = 0
		return true
	default:
		return false
	}
}

// FutureMid returns the last Future mid rounded to the nearest tick, or
// zero when no two-sided Future book has been seen yet.
func (e *Engine) FutureMid() schema.Price {
	return e.futMid
}

// BidID returns the working bid order id, zero when no bid is working.
func (e *Engine) BidID() uint64 { return e.bidID }

// AskID returns the working ask order id, zero when no ask is working.
func (e *Engine) AskID() uint64 { return e.askID }

func (e *Engine) cancel(id uint64) {
	if err := e.gateway.SendCancelOrder(schema.CancelOrder{OrderID: id}); err != nil {
		logs.Errorf("cancel order %d: %+v", id, err)
		return
	}
	e.metrics.ObserveQuoteCancel()
	if e.throttle != nil {
		e.throttle.Note(time.Now())
	}
}

func (e *Engine) budget(now time.Time) int {
	if e.throttle == nil {
		return 1
	}
	return e.throttle.InsertBudget(now)
}

// floorDiv is integer division rounding toward negative infinity, so a
// short position skews quotes upward symmetrically to a long one.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func roundToTick(p, tick schema.Price) schema.Price {
	return (p + tick/2) / tick * tick
}

func minVolume(a, b schema.Volume) schema.Volume {
	if a < b {
		return a
	}
	return b
}
