package chaos

import (
	"fmt"
	"math/rand"
	"time"

	"main/internal/schema"
)

// Config controls feed-fault injection during replay: dropped frames,
// duplicated frames, and local reordering. Useful for exercising the
// core's stale-sequence and duplicate-status tolerance.
type Config struct {
	Seed          int64
	DropRate      float64
	DuplicateRate float64
	ReorderWindow int
}

// Validate ensures the config is within supported ranges.
func (c Config) Validate() error {
	if c.DropRate < 0 || c.DropRate > 1 {
		return fmt.Errorf("dropRate must be between 0 and 1")
	}
	if c.DuplicateRate < 0 || c.DuplicateRate > 1 {
		return fmt.Errorf("duplicateRate must be between 0 and 1")
	}
	if c.ReorderWindow < 1 {
		return fmt.Errorf("reorderWindow must be >= 1")
	}
	return nil
}

// Engine applies chaos rules to a replayed event stream.
type Engine struct {
	cfg     Config
	rng     *rand.Rand
	pending []schema.Event
}

// NewEngine creates a chaos engine with validation.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.ReorderWindow <= 0 {
		cfg.ReorderWindow = 1
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UTC().UnixNano()
	}
	return &Engine{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Apply returns the events to deliver in place of the input event. The
// result may be empty (drop), contain the event twice (duplicate), or be
// deferred into a reorder window.
func (e *Engine) Apply(ev schema.Event) []schema.Event {
	if e.rng.Float64() < e.cfg.DropRate {
		return nil
	}
	out := []schema.Event{ev}
	if e.rng.Float64() < e.cfg.DuplicateRate {
		out = append(out, ev)
	}
	if e.cfg.ReorderWindow <= 1 {
		return out
	}

	e.pending = append(e.pending, out...)
	if len(e.pending) < e.cfg.ReorderWindow {
		return nil
	}
	return e.Flush()
}

// Flush releases any pending events after shuffling them inside the
// reorder window.
func (e *Engine) Flush() []schema.Event {
	if len(e.pending) == 0 {
		return nil
	}
	out := e.pending
	e.pending = nil
	e.rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
