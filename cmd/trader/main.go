package main

import (
	"context"
	"flag"
	"log"
	"sync"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"

	"main/internal/bus"
	"main/internal/chaos"
	"main/internal/engine"
	"main/internal/history"
	"main/internal/ingest"
	"main/internal/obs"
	"main/internal/og"
	"main/internal/ops"
	"main/internal/recorder"
	"main/internal/risk"
	"main/internal/schema"
)

func main() {
	configPath := flag.String("config", "", "Path to JSON config (empty=defaults)")
	journalDir := flag.String("journal-dir", "testdata/journal", "Journal directory for event recording")
	gatewayURL := flag.String("gateway-url", "", "Exchange gateway endpoint override")
	historyDSN := flag.String("history-dsn", "", "Postgres DSN override for execution history")
	pyroscopeAddr := flag.String("pyroscope", "", "Pyroscope server address (empty=disabled)")

	replayPath := flag.String("replay", "", "Journal file to replay instead of trading live")
	replaySpeed := flag.Float64("replay-speed", 0, "Playback speed (1=real-time, 0=no pacing)")
	chaosSeed := flag.Int64("chaos-seed", 0, "Chaos RNG seed (0=time-based)")
	chaosDrop := flag.Float64("chaos-drop-rate", 0, "Probability of dropping a replayed event")
	chaosDup := flag.Float64("chaos-duplicate-rate", 0, "Probability of duplicating a replayed event")
	chaosReorder := flag.Int("chaos-reorder-window", 0, "Reorder buffer size for replayed events (0=disable)")
	flag.Parse()

	loaded, err := ops.Load(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if *gatewayURL != "" {
		loaded.Gateway.URL = *gatewayURL
	}
	if *historyDSN != "" {
		loaded.History.DSN = *historyDSN
	}

	if *pyroscopeAddr != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "trader",
			ServerAddress:   *pyroscopeAddr,
			Tags: map[string]string{
				"env": "local",
			},
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			log.Fatalf("pyroscope start failed: %v", err)
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := obs.NewMetrics()
	throttle := risk.NewThrottle(loaded.Throttle.Limit, loaded.Throttle.Window)

	if *replayPath != "" {
		chaosCfg := chaos.Config{
			Seed:          *chaosSeed,
			DropRate:      *chaosDrop,
			DuplicateRate: *chaosDup,
			ReorderWindow: *chaosReorder,
		}
		if err := runReplay(ctx, loaded, *replayPath, *replaySpeed, chaosCfg, throttle, metrics); err != nil {
			log.Fatalf("replay failed: %v", err)
		}
		return
	}

	if err := runLive(ctx, loaded, *journalDir, throttle, metrics); err != nil {
		log.Fatalf("trader failed: %v", err)
	}
}

func runLive(ctx context.Context, loaded ops.Loaded, journalDir string, throttle *risk.Throttle, metrics *obs.Metrics) error {
	gw := ingest.NewGateway(ctx, loaded.Gateway.URL)
	if err := gw.Start(ctx); err != nil {
		return err
	}
	defer gw.Close()

	if loaded.Gateway.Account != "" {
		if err := gw.Login(ctx, loaded.Gateway.Account, loaded.Gateway.Secret); err != nil {
			return err
		}
	}

	eng := engine.New(loaded.Engine, gw, throttle, metrics)

	if loaded.History.DSN != "" {
		sink, err := history.Open(loaded.History.DSN)
		if err != nil {
			return err
		}
		defer sink.Close()
		eng.SetFillObserver(sink)
	}

	w, err := recorder.NewWriter(recorder.DefaultConfig(journalDir))
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}

	queue := bus.NewQueue(4096)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		queue.Run(ctx, eng.HandleEvent)
	}()

	unsubscribe := gw.ObserveEvents(ctx, func(ev schema.Event) {
		if err := w.TryRecord(ev); err != nil {
			logs.Warnf("record event, err: %+v", err)
		}
		if err := queue.TryPublish(ev); err != nil {
			logs.Warnf("publish event, err: %+v", err)
		}
	})
	defer unsubscribe()

	logs.Infof("trading, gateway: %s", loaded.Gateway.URL)
	select {
	case <-sys.Shutdown():
	case <-ctx.Done():
	}

	queue.Close()
	wg.Wait()
	if err := w.Close(); err != nil {
		logs.Errorf("close journal, err: %+v", err)
	}
	logSummary(eng, metrics, queue.Drops())
	return nil
}

func runReplay(ctx context.Context, loaded ops.Loaded, path string, speed float64, chaosCfg chaos.Config, throttle *risk.Throttle, metrics *obs.Metrics) error {
	loopback := og.NewLoopback()
	eng := engine.New(loaded.Engine, loopback, throttle, metrics)

	var faults *chaos.Engine
	if chaosCfg.DropRate > 0 || chaosCfg.DuplicateRate > 0 || chaosCfg.ReorderWindow > 0 {
		var err error
		faults, err = chaos.NewEngine(chaosCfg)
		if err != nil {
			return err
		}
	}

	cfg := recorder.PlaybackConfig{Path: path, Speed: speed}
	err := recorder.Playback(ctx, cfg, func(ev schema.Event) {
		if faults == nil {
			eng.HandleEvent(ev)
			return
		}
		for _, out := range faults.Apply(ev) {
			eng.HandleEvent(out)
		}
	})
	if err != nil {
		return err
	}
	if faults != nil {
		for _, out := range faults.Flush() {
			eng.HandleEvent(out)
		}
	}

	logs.Infof("replay completed, inserts: %d, cancels: %d, hedges: %d",
		len(loopback.Inserts), len(loopback.Cancels), len(loopback.Hedges))
	logSummary(eng, metrics, 0)
	return nil
}

func logSummary(eng *engine.Engine, metrics *obs.Metrics, drops uint64) {
	s := metrics.Snapshot()
	logs.Infof("metrics, events: %v, stale: %d, accepts: %d, rejects: %d, arb: %d, hedges: %d, cancels: %d, retired: %d, drops: %d",
		s.EventCounts, s.StaleBooks, s.GateAccepts, s.GateRejects,
		s.ArbOrders, s.HedgeOrders, s.QuoteCancels, s.Retired, drops)
	logs.Infof("handler latency, count: %d, min: %s, avg: %s, max: %s",
		s.HandlerLatency.Count, s.HandlerLatency.Min, s.HandlerLatency.Avg, s.HandlerLatency.Max)
	logs.Infof("positions, etf: %d, future: %d, open orders: %d",
		eng.Ledger().Net(schema.InstrumentETF), eng.Ledger().Net(schema.InstrumentFuture), eng.Registry().Len())
}
