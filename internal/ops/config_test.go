package ops

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"main/internal/schema"
)

func TestResolveDefaults(t *testing.T) {
	loaded, err := Resolve(DefaultFileConfig())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	eng := loaded.Engine
	if eng.LotSize != 10 || eng.PositionLimit != 100 || eng.TickSize != 100 {
		t.Fatalf("engine constants: got %+v", eng)
	}
	if !eng.TakerFee.Equal(decimal.RequireFromString("0.0002")) {
		t.Fatalf("taker fee: got %s", eng.TakerFee)
	}
	if !loaded.MakerFee.Equal(decimal.RequireFromString("-0.0001")) {
		t.Fatalf("maker fee: got %s", loaded.MakerFee)
	}
	if got := eng.Allowances[schema.GroupQuote]; got != 40 {
		t.Fatalf("quote allowance: got %d want 40", got)
	}
	if got := eng.Allowances[schema.GroupArb]; got != 60 {
		t.Fatalf("arb allowance: got %d want 60", got)
	}
	if eng.MinBidNearestTick != 100 {
		t.Fatalf("min bid nearest tick: got %d want 100", eng.MinBidNearestTick)
	}
	if eng.MaxAskNearestTick != 2147483600 {
		t.Fatalf("max ask nearest tick: got %d want 2147483600", eng.MaxAskNearestTick)
	}
	if loaded.Throttle.Limit != 50 || loaded.Throttle.Window != time.Second {
		t.Fatalf("throttle: got %+v", loaded.Throttle)
	}
}

func TestResolveRejectsBadInput(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*FileConfig)
	}{
		{"zero lot size", func(c *FileConfig) { c.Instrument.LotSize = 0 }},
		{"zero tick size", func(c *FileConfig) { c.Instrument.TickSize = 0 }},
		{"inverted bounds", func(c *FileConfig) { c.Instrument.MinPrice = c.Instrument.MaxPrice }},
		{"zero limit", func(c *FileConfig) { c.Risk.PositionLimit = 0 }},
		{"bad taker fee", func(c *FileConfig) { c.Fees.Taker = "lots" }},
		{"negative taker fee", func(c *FileConfig) { c.Fees.Taker = "-0.1" }},
		{"bad window", func(c *FileConfig) { c.Throttle.Window = "soon" }},
		{"unknown group", func(c *FileConfig) { c.Risk.AllowanceRatios = map[string]string{"momentum": "0.5"} }},
		{"ratios above one", func(c *FileConfig) { c.Risk.AllowanceRatios = map[string]string{"quote": "0.7", "arb": "0.6"} }},
		{"negative ratio", func(c *FileConfig) { c.Risk.AllowanceRatios = map[string]string{"quote": "-0.1"} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultFileConfig()
			tc.mutate(&cfg)
			if _, err := Resolve(cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
		"instrument": {"lotSize": 5, "tickSize": 50, "minPrice": 1, "maxPrice": 1000000},
		"risk": {"positionLimit": 200},
		"fees": {"taker": "0.0003", "maker": "0"},
		"throttle": {"messageLimit": 25, "window": "500ms"},
		"gateway": {"url": "ws://exchange:9000/exec", "account": "desk-1"}
	}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Engine.LotSize != 5 || loaded.Engine.PositionLimit != 200 {
		t.Fatalf("overrides not applied: %+v", loaded.Engine)
	}
	if loaded.Throttle.Limit != 25 || loaded.Throttle.Window != 500*time.Millisecond {
		t.Fatalf("throttle: got %+v", loaded.Throttle)
	}
	if loaded.Gateway.URL != "ws://exchange:9000/exec" || loaded.Gateway.Account != "desk-1" {
		t.Fatalf("gateway: got %+v", loaded.Gateway)
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	loaded, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Engine.LotSize != 10 {
		t.Fatalf("defaults not used: %+v", loaded.Engine)
	}
}
