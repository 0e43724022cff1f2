package engine

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/logs"

	"main/internal/arb"
	"main/internal/book"
	"main/internal/ledger"
	"main/internal/obs"
	"main/internal/og"
	"main/internal/quote"
	"main/internal/risk"
	"main/internal/schema"
)

// Config holds the fixed exchange constants the core depends on.
type Config struct {
	LotSize       schema.Volume
	PositionLimit schema.Volume
	TickSize      schema.Price
	TakerFee      decimal.Decimal
	// Allowances bound per-strategy partitions; may be empty.
	Allowances map[schema.Group]schema.Volume
	// MinBidNearestTick and MaxAskNearestTick are the exchange's absolute
	// tradeable price bounds rounded onto the tick grid. They price
	// fallback hedges so the hedge is guaranteed to cross the book.
	MinBidNearestTick schema.Price
	MaxAskNearestTick schema.Price
}

// FillObserver receives execution notifications after the ledger has been
// updated. Implementations must not block; slow sinks buffer internally.
type FillObserver interface {
	OrderFilled(order og.Order, price schema.Price, volume schema.Volume)
	HedgeFilled(order og.Order, price schema.Price, volume schema.Volume)
}

// RecoveryPolicy is consulted when the ledger is observed outside its
// limits despite the gate's projections (overlapping in-flight fills can
// do this). A policy must bring projected worst-case exposure back within
// limits even under adverse full fills of all resting orders, aim for
// delta-neutral exposure across instruments, and avoid oscillating
// re-entry into the breached state.
type RecoveryPolicy interface {
	OnBreach(instrument schema.Instrument, net schema.Volume, gate *risk.Gate)
}

// Engine is the single-owner aggregate of all mutable strategy state.
// Handlers execute one at a time; nothing outside the engine retains a
// mutable alias into its components.
type Engine struct {
	cfg      Config
	books    *book.Store
	ledger   *ledger.Ledger
	registry *og.Registry
	gate     *risk.Gate
	quoter   *quote.Engine
	detector *arb.Detector
	metrics  *obs.Metrics

	observer FillObserver
	recovery RecoveryPolicy
}

// New wires a complete engine around the given gateway. The throttle and
// metrics may be nil.
func New(cfg Config, gateway og.Gateway, throttle *risk.Throttle, metrics *obs.Metrics) *Engine {
	books := book.NewStore()
	positions := ledger.NewLedger()
	registry := og.NewRegistry()
	gate := risk.NewGate(risk.Config{
		PositionLimit: cfg.PositionLimit,
		Allowances:    cfg.Allowances,
	}, positions, registry, gateway, throttle, metrics)

	return &Engine{
		cfg:      cfg,
		books:    books,
		ledger:   positions,
		registry: registry,
		gate:     gate,
		quoter: quote.NewEngine(quote.Config{
			LotSize:       cfg.LotSize,
			PositionLimit: cfg.PositionLimit,
			TickSize:      cfg.TickSize,
		}, gate, gateway, throttle, metrics),
		detector: arb.NewDetector(arb.Config{
			LotSize:       cfg.LotSize,
			PositionLimit: cfg.PositionLimit,
			TickSize:      cfg.TickSize,
			TakerFee:      cfg.TakerFee,
		}, gate, metrics),
		metrics: metrics,
	}
}

// SetFillObserver attaches an execution sink. Call before the first event.
func (e *Engine) SetFillObserver(observer FillObserver) {
	e.observer = observer
}

// SetRecoveryPolicy attaches a breach-recovery policy. Call before the
// first event.
func (e *Engine) SetRecoveryPolicy(policy RecoveryPolicy) {
	e.recovery = policy
}

// Ledger exposes the position ledger for read queries.
func (e *Engine) Ledger() *ledger.Ledger { return e.ledger }

// Registry exposes the active-order registry for read queries.
func (e *Engine) Registry() *og.Registry { return e.registry }

// Quoter exposes the quoting engine for read queries.
func (e *Engine) Quoter() *quote.Engine { return e.quoter }

// Books exposes the order book store for read queries.
func (e *Engine) Books() *book.Store { return e.books }

// HandleEvent dispatches one inbound gateway event. It is the bus
// consumer; it must never be invoked concurrently.
func (e *Engine) HandleEvent(ev schema.Event) {
	start := time.Now()
	defer func() {
		e.metrics.ObserveHandler(time.Since(start))
	}()
	e.metrics.ObserveEvent(ev.Header)

	switch ev.Header.Type {
	case schema.EventOrderBook:
		if ev.Book != nil {
			e.onOrderBook(*ev.Book)
		}
	case schema.EventTradeTicks:
		if ev.Ticks != nil {
			e.onTradeTicks(*ev.Ticks)
		}
	case schema.EventOrderFilled:
		if ev.Filled != nil {
			e.onOrderFilled(*ev.Filled)
		}
	case schema.EventOrderStatus:
		if ev.Status != nil {
			e.onOrderStatus(*ev.Status)
		}
	case schema.EventHedgeFilled:
		if ev.Hedge != nil {
			e.onHedgeFilled(*ev.Hedge)
		}
	case schema.EventError:
		if ev.Err != nil {
			e.onError(*ev.Err)
		}
	default:
		logs.Warnf("dropping event with unknown type %d", ev.Header.Type)
	}
}

func (e *Engine) onOrderBook(u schema.OrderBookUpdate) {
	snap, ok := e.books.Update(u)
	if !ok {
		e.metrics.ObserveStaleBook()
		logs.Infof("discarding stale book for %s with sequence number %d", u.Instrument, u.Seq)
		return
	}

	position := e.ledger.Net(schema.InstrumentETF)
	if etf, fut, aligned := e.books.Pair(); aligned {
		e.detector.Evaluate(etf, fut, position)
	}
	if u.Instrument == schema.InstrumentFuture {
		e.quoter.Reprice(snap, position)
	}
}

func (e *Engine) onTradeTicks(t schema.TradeTicks) {
	// Recorded only; trade ticks carry no actionable state.
	logs.Debugf("trade ticks for %s with sequence number %d", t.Instrument, t.Seq)
}

func (e *Engine) onOrderFilled(f schema.OrderFilled) {
	order, ok := e.registry.Get(f.OrderID)
	if !ok {
		logs.Warnf("unknown order %d had a fill", f.OrderID)
		return
	}
	logs.Infof("order %d filled %d lots at %d", f.OrderID, f.Volume, f.Price)

	if order.Strategy.IsHedge() {
		// Hedge executions are reported through hedge_filled.
		return
	}

	side := order.Strategy.Side()
	e.ledger.Apply(schema.InstrumentETF, order.Strategy.Group(), side, f.Volume)
	e.issueHedge(side.Opposite(), f.Volume)

	if e.observer != nil {
		e.observer.OrderFilled(*order, f.Price, f.Volume)
	}
	e.checkBreach()
}

// issueHedge offsets an ETF fill on the Future. The hedge prices at the
// Future mid when one is known, else at the exchange's extreme tradeable
// price on the hedge's side so it is guaranteed to cross.
func (e *Engine) issueHedge(side schema.Side, volume schema.Volume) {
	price := e.quoter.FutureMid()
	if price == 0 {
		if side == schema.SideSell {
			price = e.cfg.MinBidNearestTick
		} else {
			price = e.cfg.MaxAskNearestTick
		}
	}
	if id, decision := e.gate.Submit(schema.InstrumentFuture, side, price, volume, schema.LifespanFillAndKill, schema.StrategyHedge); decision.Allowed() {
		e.metrics.ObserveHedgeOrder()
		logs.Infof("hedging %s %d lots at %d as order %d", side, volume, price, id)
	} else {
		logs.Errorf("hedge %s %d lots rejected: reason %d projected %d", side, volume, decision.Reason, decision.Projected)
	}
}

func (e *Engine) onOrderStatus(s schema.OrderStatus) {
	if s.RemainingVolume != 0 {
		e.registry.SetRemaining(s.OrderID, s.RemainingVolume)
		return
	}
	e.quoter.ClearSlot(s.OrderID)
	if _, ok := e.registry.Retire(s.OrderID); ok {
		e.metrics.ObserveRetired()
		logs.Debugf("order %d retired", s.OrderID)
	}
}

func (e *Engine) onError(em schema.ErrorMessage) {
	logs.Warnf("error with order %d: %s", em.OrderID, em.Message)
	if em.OrderID == 0 {
		return
	}
	if _, ok := e.registry.Get(em.OrderID); ok {
		// A venue rejection retires the order like a terminal status.
		e.onOrderStatus(schema.OrderStatus{OrderID: em.OrderID})
	}
}

func (e *Engine) onHedgeFilled(h schema.HedgeFilled) {
	order, ok := e.registry.Get(h.OrderID)
	if !ok {
		logs.Warnf("unknown hedge order %d had a fill", h.OrderID)
		return
	}
	logs.Infof("hedge order %d filled %d lots at average price %d", h.OrderID, h.Volume, h.Price)

	e.ledger.Apply(schema.InstrumentFuture, schema.GroupHedge, order.Side, h.Volume)
	if e.observer != nil {
		e.observer.HedgeFilled(*order, h.Price, h.Volume)
	}
	// Hedges execute immediately; the acknowledgment is terminal.
	e.registry.Retire(h.OrderID)
	e.checkBreach()
}

func (e *Engine) checkBreach() {
	if e.cfg.PositionLimit <= 0 {
		return
	}
	for _, instrument := range []schema.Instrument{schema.InstrumentFuture, schema.InstrumentETF} {
		net := e.ledger.Net(instrument)
		if net > e.cfg.PositionLimit || net < -e.cfg.PositionLimit {
			logs.Errorf("position breach on %s: %d beyond %d", instrument, net, e.cfg.PositionLimit)
			if e.recovery != nil {
				e.recovery.OnBreach(instrument, net, e.gate)
			}
		}
	}
}
