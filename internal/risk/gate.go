package risk

import (
	"time"

	"main/internal/ledger"
	"main/internal/obs"
	"main/internal/og"
	"main/internal/schema"
)

// Config defines the position limits enforced by the compliance gate.
type Config struct {
	// PositionLimit bounds the absolute net position per instrument.
	PositionLimit schema.Volume
	// Allowances bound the absolute position of individual strategy
	// partitions. A group without an entry is only checked globally.
	Allowances map[schema.Group]schema.Volume
}

// Action is the outcome of a compliance decision.
type Action uint16

const (
	ActionUnknown Action = iota
	ActionAllow
	ActionDeny
)

// Reason is a coarse reason code for compliance decisions.
type Reason uint16

const (
	ReasonNone Reason = iota
	ReasonInvalidVolume
	ReasonGlobalLimit
	ReasonAllowance
	ReasonGateway
)

// Decision reports the outcome of a proposed submission.
type Decision struct {
	OrderID   uint64
	Action    Action
	Reason    Reason
	Projected schema.Volume
	Limit     schema.Volume
}

// Allowed reports whether the proposal was accepted.
func (d Decision) Allowed() bool {
	return d.Action == ActionAllow
}

// Gate projects the position impact of a proposed order and only forwards
// it to the gateway when every ledger invariant survives the projection.
// Rejection leaves the ledger, the registry, and the gateway untouched.
type Gate struct {
	cfg      Config
	ledger   *ledger.Ledger
	registry *og.Registry
	gateway  og.Gateway
	throttle *Throttle
	metrics  *obs.Metrics
}

// NewGate creates a compliance gate. The throttle and metrics may be nil.
func NewGate(cfg Config, l *ledger.Ledger, registry *og.Registry, gateway og.Gateway, throttle *Throttle, metrics *obs.Metrics) *Gate {
	return &Gate{
		cfg:      cfg,
		ledger:   l,
		registry: registry,
		gateway:  gateway,
		throttle: throttle,
		metrics:  metrics,
	}
}

// Registry exposes the active-order registry for read queries.
func (g *Gate) Registry() *og.Registry {
	return g.registry
}

// Submit proposes an order. On acceptance it assigns the next order id,
// forwards the order to the gateway (ETF submissions as resting limit
// orders, Future submissions as immediate hedge orders) and records it in
// the registry. The returned id is zero on rejection.
func (g *Gate) Submit(instrument schema.Instrument, side schema.Side, price schema.Price, volume schema.Volume, lifespan schema.Lifespan, strategy schema.Strategy) (uint64, Decision) {
	id, decision := g.submit(instrument, side, price, volume, lifespan, strategy)
	g.metrics.ObserveGate(decision.Allowed())
	return id, decision
}

func (g *Gate) submit(instrument schema.Instrument, side schema.Side, price schema.Price, volume schema.Volume, lifespan schema.Lifespan, strategy schema.Strategy) (uint64, Decision) {
	decision := Decision{Action: ActionAllow, Reason: ReasonNone, Limit: g.cfg.PositionLimit}

	if volume <= 0 || side == schema.SideUnknown {
		decision.Action = ActionDeny
		decision.Reason = ReasonInvalidVolume
		return 0, decision
	}

	delta := volume
	if side == schema.SideSell {
		delta = -volume
	}

	group := strategy.Group()
	if allowance, ok := g.cfg.Allowances[group]; ok {
		projected := g.ledger.Position(instrument, group) + delta
		if absVolume(projected) > allowance {
			decision.Action = ActionDeny
			decision.Reason = ReasonAllowance
			decision.Projected = projected
			decision.Limit = allowance
			return 0, decision
		}
	}

	projected := g.ledger.Net(instrument) + delta
	decision.Projected = projected
	if g.cfg.PositionLimit > 0 && absVolume(projected) > g.cfg.PositionLimit {
		decision.Action = ActionDeny
		decision.Reason = ReasonGlobalLimit
		return 0, decision
	}

	id := g.registry.NextID()
	decision.OrderID = id

	var err error
	switch instrument {
	case schema.InstrumentETF:
		err = g.gateway.SendInsertOrder(schema.InsertOrder{
			OrderID:  id,
			Side:     side,
			Price:    price,
			Volume:   volume,
			Lifespan: lifespan,
		})
	default:
		err = g.gateway.SendHedgeOrder(schema.HedgeOrder{
			OrderID: id,
			Side:    side,
			Price:   price,
			Volume:  volume,
		})
	}
	if err != nil {
		decision.Action = ActionDeny
		decision.Reason = ReasonGateway
		return 0, decision
	}

	if g.throttle != nil {
		g.throttle.Note(time.Now())
	}
	_ = g.registry.Add(og.Order{
		ID:         id,
		Instrument: instrument,
		Strategy:   strategy,
		Side:       side,
		Price:      price,
		Volume:     volume,
		Lifespan:   lifespan,
	})
	return id, decision
}

func absVolume(v schema.Volume) schema.Volume {
	if v < 0 {
		return -v
	}
	return v
}
