package ops

import (
	"encoding/json"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"

	"main/internal/engine"
	"main/internal/schema"
)

// FileConfig mirrors the JSON config layout.
type FileConfig struct {
	Instrument InstrumentConfig `json:"instrument"`
	Risk       RiskConfig       `json:"risk"`
	Fees       FeesConfig       `json:"fees"`
	Throttle   ThrottleConfig   `json:"throttle"`
	Gateway    GatewayConfig    `json:"gateway"`
	History    HistoryConfig    `json:"history"`
}

// InstrumentConfig describes the exchange's fixed trading constants.
type InstrumentConfig struct {
	LotSize  int64 `json:"lotSize"`
	TickSize int64 `json:"tickSize"`
	MinPrice int64 `json:"minPrice"`
	MaxPrice int64 `json:"maxPrice"`
}

// RiskConfig describes position limits. Allowance ratios are fractions of
// the global limit keyed by strategy group name ("quote", "arb").
type RiskConfig struct {
	PositionLimit   int64             `json:"positionLimit"`
	AllowanceRatios map[string]string `json:"allowanceRatios"`
}

// FeesConfig carries fee rates as decimal strings. The maker rate is
// informational; a negative value is a rebate.
type FeesConfig struct {
	Taker string `json:"taker"`
	Maker string `json:"maker"`
}

// ThrottleConfig bounds outbound message frequency.
type ThrottleConfig struct {
	MessageLimit int    `json:"messageLimit"`
	Window       string `json:"window"`
}

// GatewayConfig locates the exchange gateway.
type GatewayConfig struct {
	URL     string `json:"url"`
	Account string `json:"account"`
	Secret  string `json:"secret"`
}

// HistoryConfig enables the Postgres execution-history sink when set.
type HistoryConfig struct {
	DSN string `json:"dsn"`
}

// ThrottleSpec is the resolved throttle definition.
type ThrottleSpec struct {
	Limit  int
	Window time.Duration
}

// GatewaySpec is the resolved gateway endpoint.
type GatewaySpec struct {
	URL     string
	Account string
	Secret  string
}

// HistorySpec is the resolved history sink definition.
type HistorySpec struct {
	DSN string
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Engine   engine.Config
	MakerFee decimal.Decimal
	Throttle ThrottleSpec
	Gateway  GatewaySpec
	History  HistorySpec
}

// DefaultFileConfig returns the exchange defaults used when no config
// file is given.
func DefaultFileConfig() FileConfig {
	return FileConfig{
		Instrument: InstrumentConfig{
			LotSize:  10,
			TickSize: 100,
			MinPrice: 1,
			MaxPrice: 1<<31 - 1,
		},
		Risk: RiskConfig{
			PositionLimit: 100,
			AllowanceRatios: map[string]string{
				"quote": "0.4",
				"arb":   "0.6",
			},
		},
		Fees: FeesConfig{
			Taker: "0.0002",
			Maker: "-0.0001",
		},
		Throttle: ThrottleConfig{
			MessageLimit: 50,
			Window:       "1s",
		},
		Gateway: GatewayConfig{
			URL: "ws://localhost:8000/exec",
		},
	}
}

// Load reads a JSON config file and resolves it. An empty path resolves
// the defaults.
func Load(path string) (Loaded, error) {
	cfg := DefaultFileConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Loaded{}, errors.Wrap(err, "read config")
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Loaded{}, errors.Wrap(err, "unmarshal config")
		}
	}
	return Resolve(cfg)
}

// Resolve validates a file config and derives the runtime values.
func Resolve(cfg FileConfig) (Loaded, error) {
	if cfg.Instrument.LotSize <= 0 {
		return Loaded{}, errors.New("lotSize must be > 0")
	}
	if cfg.Instrument.TickSize <= 0 {
		return Loaded{}, errors.New("tickSize must be > 0")
	}
	if cfg.Instrument.MinPrice <= 0 || cfg.Instrument.MinPrice >= cfg.Instrument.MaxPrice {
		return Loaded{}, errors.New("price bounds must satisfy 0 < minPrice < maxPrice")
	}
	if cfg.Risk.PositionLimit <= 0 {
		return Loaded{}, errors.New("positionLimit must be > 0")
	}

	taker, err := decimal.NewFromString(cfg.Fees.Taker)
	if err != nil {
		return Loaded{}, errors.Wrapf(err, "parse taker fee %q", cfg.Fees.Taker)
	}
	if taker.IsNegative() {
		return Loaded{}, errors.New("taker fee must be >= 0")
	}
	maker, err := decimal.NewFromString(cfg.Fees.Maker)
	if err != nil {
		return Loaded{}, errors.Wrapf(err, "parse maker fee %q", cfg.Fees.Maker)
	}

	allowances, err := resolveAllowances(cfg.Risk)
	if err != nil {
		return Loaded{}, err
	}

	window := time.Second
	if cfg.Throttle.Window != "" {
		window, err = time.ParseDuration(cfg.Throttle.Window)
		if err != nil {
			return Loaded{}, errors.Wrapf(err, "parse throttle window %q", cfg.Throttle.Window)
		}
	}

	tick := schema.Price(cfg.Instrument.TickSize)
	return Loaded{
		Engine: engine.Config{
			LotSize:           schema.Volume(cfg.Instrument.LotSize),
			PositionLimit:     schema.Volume(cfg.Risk.PositionLimit),
			TickSize:          tick,
			TakerFee:          taker,
			Allowances:        allowances,
			MinBidNearestTick: (schema.Price(cfg.Instrument.MinPrice) + tick) / tick * tick,
			MaxAskNearestTick: schema.Price(cfg.Instrument.MaxPrice) / tick * tick,
		},
		MakerFee: maker,
		Throttle: ThrottleSpec{Limit: cfg.Throttle.MessageLimit, Window: window},
		Gateway: GatewaySpec{
			URL:     cfg.Gateway.URL,
			Account: cfg.Gateway.Account,
			Secret:  cfg.Gateway.Secret,
		},
		History: HistorySpec{DSN: cfg.History.DSN},
	}, nil
}

// resolveAllowances turns fractional ratios into absolute lot allowances.
// The ratios may sum to at most 1 so the partitions never outgrow the
// global limit.
func resolveAllowances(cfg RiskConfig) (map[schema.Group]schema.Volume, error) {
	if len(cfg.AllowanceRatios) == 0 {
		return nil, nil
	}
	limit := decimal.NewFromInt(cfg.PositionLimit)
	sum := decimal.Zero
	allowances := make(map[schema.Group]schema.Volume, len(cfg.AllowanceRatios))
	for name, raw := range cfg.AllowanceRatios {
		group, ok := groupByName(name)
		if !ok {
			return nil, errors.Errorf("unknown strategy group %q", name)
		}
		ratio, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "parse allowance ratio %q for %q", raw, name)
		}
		if ratio.IsNegative() {
			return nil, errors.Errorf("allowance ratio for %q must be >= 0", name)
		}
		sum = sum.Add(ratio)
		allowances[group] = schema.Volume(ratio.Mul(limit).IntPart())
	}
	if sum.GreaterThan(decimal.NewFromInt(1)) {
		return nil, errors.New("allowance ratios must sum to at most 1")
	}
	return allowances, nil
}

func groupByName(name string) (schema.Group, bool) {
	switch name {
	case "quote":
		return schema.GroupQuote, true
	case "arb":
		return schema.GroupArb, true
	case "hedge":
		return schema.GroupHedge, true
	default:
		return schema.GroupUnknown, false
	}
}
