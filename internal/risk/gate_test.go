package risk

import (
	"testing"

	"github.com/yanun0323/errors"

	"main/internal/ledger"
	"main/internal/og"
	"main/internal/schema"
)

func newTestGate(cfg Config) (*Gate, *ledger.Ledger, *og.Loopback) {
	l := ledger.NewLedger()
	loopback := og.NewLoopback()
	gate := NewGate(cfg, l, og.NewRegistry(), loopback, nil, nil)
	return gate, l, loopback
}

func TestSubmitWithinLimits(t *testing.T) {
	gate, l, loopback := newTestGate(Config{PositionLimit: 100})

	id, decision := gate.Submit(schema.InstrumentETF, schema.SideBuy, 9900, 10, schema.LifespanGoodForDay, schema.StrategyQuoteBid)
	if !decision.Allowed() || id != 1 {
		t.Fatalf("submit: got id %d decision %+v", id, decision)
	}
	if len(loopback.Inserts) != 1 {
		t.Fatalf("inserts: got %d want 1", len(loopback.Inserts))
	}
	cmd := loopback.Inserts[0]
	if cmd.OrderID != 1 || cmd.Side != schema.SideBuy || cmd.Price != 9900 || cmd.Volume != 10 {
		t.Fatalf("insert command: got %+v", cmd)
	}
	if _, ok := gate.Registry().Get(1); !ok {
		t.Fatal("accepted order not tracked")
	}
	// Acceptance is a pure projection; only fills move the ledger.
	if got := l.Count(); got != 0 {
		t.Fatalf("ledger partitions: got %d want 0", got)
	}
}

func TestSubmitDeniesGlobalLimit(t *testing.T) {
	gate, l, loopback := newTestGate(Config{PositionLimit: 100})
	l.Apply(schema.InstrumentETF, schema.GroupQuote, schema.SideBuy, 95)

	id, decision := gate.Submit(schema.InstrumentETF, schema.SideBuy, 9900, 10, schema.LifespanGoodForDay, schema.StrategyQuoteBid)
	if decision.Allowed() || id != 0 {
		t.Fatalf("expected denial, got id %d decision %+v", id, decision)
	}
	if decision.Reason != ReasonGlobalLimit {
		t.Fatalf("reason: got %d want %d", decision.Reason, ReasonGlobalLimit)
	}
	if decision.Projected != 105 {
		t.Fatalf("projected: got %d want 105", decision.Projected)
	}
	if len(loopback.Inserts) != 0 || gate.Registry().Len() != 0 {
		t.Fatal("denial reached the gateway or the registry")
	}

	// The mirrored sell projects away from the limit and passes.
	if _, decision := gate.Submit(schema.InstrumentETF, schema.SideSell, 10200, 10, schema.LifespanGoodForDay, schema.StrategyQuoteAsk); !decision.Allowed() {
		t.Fatalf("sell denied: %+v", decision)
	}
}

func TestSubmitDeniesAllowance(t *testing.T) {
	gate, l, _ := newTestGate(Config{
		PositionLimit: 100,
		Allowances:    map[schema.Group]schema.Volume{schema.GroupQuote: 40},
	})
	l.Apply(schema.InstrumentETF, schema.GroupQuote, schema.SideBuy, 35)

	_, decision := gate.Submit(schema.InstrumentETF, schema.SideBuy, 9900, 10, schema.LifespanGoodForDay, schema.StrategyQuoteBid)
	if decision.Allowed() || decision.Reason != ReasonAllowance {
		t.Fatalf("expected allowance denial, got %+v", decision)
	}
	if decision.Limit != 40 {
		t.Fatalf("limit in decision: got %d want 40", decision.Limit)
	}

	// A group without an allowance is only checked globally.
	if _, decision := gate.Submit(schema.InstrumentETF, schema.SideBuy, 10000, 10, schema.LifespanFillAndKill, schema.StrategyArbBid); !decision.Allowed() {
		t.Fatalf("unbounded group denied: %+v", decision)
	}
}

func TestSubmitDeniesInvalidVolume(t *testing.T) {
	gate, _, _ := newTestGate(Config{PositionLimit: 100})
	if _, decision := gate.Submit(schema.InstrumentETF, schema.SideBuy, 9900, 0, schema.LifespanGoodForDay, schema.StrategyQuoteBid); decision.Reason != ReasonInvalidVolume {
		t.Fatalf("zero volume: got %+v", decision)
	}
	if _, decision := gate.Submit(schema.InstrumentETF, schema.SideUnknown, 9900, 10, schema.LifespanGoodForDay, schema.StrategyQuoteBid); decision.Reason != ReasonInvalidVolume {
		t.Fatalf("unknown side: got %+v", decision)
	}
}

func TestSubmitRoutesFutureToHedgeOrders(t *testing.T) {
	gate, _, loopback := newTestGate(Config{PositionLimit: 100})
	id, decision := gate.Submit(schema.InstrumentFuture, schema.SideSell, 10100, 10, schema.LifespanFillAndKill, schema.StrategyHedge)
	if !decision.Allowed() {
		t.Fatalf("hedge denied: %+v", decision)
	}
	if len(loopback.Hedges) != 1 || len(loopback.Inserts) != 0 {
		t.Fatalf("routing: hedges %d inserts %d", len(loopback.Hedges), len(loopback.Inserts))
	}
	if loopback.Hedges[0].OrderID != id {
		t.Fatalf("hedge id: got %d want %d", loopback.Hedges[0].OrderID, id)
	}
}

type failingGateway struct{}

func (failingGateway) SendInsertOrder(schema.InsertOrder) error {
	return errors.New("gateway down")
}
func (failingGateway) SendCancelOrder(schema.CancelOrder) error {
	return errors.New("gateway down")
}
func (failingGateway) SendHedgeOrder(schema.HedgeOrder) error {
	return errors.New("gateway down")
}

func TestSubmitDeniesOnGatewayError(t *testing.T) {
	gate := NewGate(Config{PositionLimit: 100}, ledger.NewLedger(), og.NewRegistry(), failingGateway{}, nil, nil)
	id, decision := gate.Submit(schema.InstrumentETF, schema.SideBuy, 9900, 10, schema.LifespanGoodForDay, schema.StrategyQuoteBid)
	if decision.Allowed() || id != 0 {
		t.Fatalf("expected denial, got id %d decision %+v", id, decision)
	}
	if decision.Reason != ReasonGateway {
		t.Fatalf("reason: got %d want %d", decision.Reason, ReasonGateway)
	}
	if gate.Registry().Len() != 0 {
		t.Fatal("failed send left a tracked order")
	}
}
