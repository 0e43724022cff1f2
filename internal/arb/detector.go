package arb

import (
	"github.com/shopspring/decimal"
	"github.com/yanun0323/logs"

	"main/internal/book"
	"main/internal/obs"
	"main/internal/risk"
	"main/internal/schema"
)

// Config holds the arbitrage parameters.
type Config struct {
	LotSize       schema.Volume
	PositionLimit schema.Volume
	TickSize      schema.Price
	TakerFee      decimal.Decimal
}

// Detector exploits transient mispricing between the ETF and the Future.
// It only acts when both books carry the same sequence number and only on
// the first crossed level; deeper crossed levels are left alone.
type Detector struct {
	cfg     Config
	gate    *risk.Gate
	metrics *obs.Metrics
}

// NewDetector creates a detector submitting through the compliance gate.
// The metrics may be nil.
func NewDetector(cfg Config, gate *risk.Gate, metrics *obs.Metrics) *Detector {
	return &Detector{cfg: cfg, gate: gate, metrics: metrics}
}

// Evaluate runs both symmetric cross checks against sequence-aligned
// snapshots. It submits at most one fill-and-kill order per side.
func (d *Detector) Evaluate(etf, fut book.Snapshot, position schema.Volume) {
	if etf.Seq != fut.Seq {
		return
	}

	// ETF bid over Future ask: sell the ETF at its best bid.
	if etfBid, ok := etf.BestBid(); ok {
		if futAsk, ok := fut.BestAsk(); ok {
			diff := etfBid.Price - futAsk.Price
			if diff > 0 && d.exceedsFee(diff, etfBid.Price) && !d.gate.Registry().RestingAt(etfBid.Price) {
				size := minVolume(etfBid.Volume, futAsk.Volume)
				size = minVolume(size, d.cfg.PositionLimit-d.cfg.LotSize+position)
				size = minVolume(size, d.edgeCap(diff))
				if size > 0 {
					if id, decision := d.gate.Submit(schema.InstrumentETF, schema.SideSell, etfBid.Price, size, schema.LifespanFillAndKill, schema.StrategyArbAsk); decision.Allowed() {
						d.metrics.ObserveArbOrder()
						logs.Infof("crossed etf>fut: selling %d@%d as order %d, edge %d", size, etfBid.Price, id, diff)
					}
				}
			}
		}
	}

	// Future bid over ETF ask: buy the ETF at its best ask.
	if futBid, ok := fut.BestBid(); ok {
		if etfAsk, ok := etf.BestAsk(); ok {
			diff := futBid.Price - etfAsk.Price
			if diff > 0 && d.exceedsFee(diff, etfAsk.Price) && !d.gate.Registry().RestingAt(etfAsk.Price) {
				size := minVolume(etfAsk.Volume, futBid.Volume)
				size = minVolume(size, d.cfg.PositionLimit-d.cfg.LotSize-position)
				size = minVolume(size, d.edgeCap(diff))
				if size > 0 {
					if id, decision := d.gate.Submit(schema.InstrumentETF, schema.SideBuy, etfAsk.Price, size, schema.LifespanFillAndKill, schema.StrategyArbBid); decision.Allowed() {
						d.metrics.ObserveArbOrder()
						logs.Infof("crossed fut>etf: buying %d@%d as order %d, edge %d", size, etfAsk.Price, id, diff)
					}
				}
			}
		}
	}
}

// exceedsFee applies the strict taker-fee threshold: the cross must pay
// more than the fee on the ETF leg, never exactly the fee.
func (d *Detector) exceedsFee(diff, price schema.Price) bool {
	fee := decimal.NewFromInt(int64(price)).Mul(d.cfg.TakerFee)
	return decimal.NewFromInt(int64(diff)).GreaterThan(fee)
}

// edgeCap scales the target size linearly with the mispricing magnitude
// measured in ticks, clipped to be non-negative.
func (d *Detector) edgeCap(diff schema.Price) schema.Volume {
	ticks := int64(diff) / int64(d.cfg.TickSize)
	capped := (int64(d.cfg.PositionLimit) - int64(d.cfg.LotSize)) / 3 * ticks
	if capped < 0 {
		return 0
	}
	return schema.Volume(capped)
}

func minVolume(a, b schema.Volume) schema.Volume {
	if a < b {
		return a
	}
	return b
}
