package recorder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"

	"main/internal/schema"
)

var (
	ErrQueueFull      = errors.New("journal queue full")
	ErrClosed         = errors.New("journal writer closed")
	ErrNotStarted     = errors.New("journal writer not started")
	ErrAlreadyStarted = errors.New("journal writer already started")
)

// Writer appends events to a JSONL journal file from a buffered queue, so
// recording never blocks the engine's event handlers.
type Writer struct {
	cfg Config
	ch  chan schema.Event
	wg  sync.WaitGroup
	err atomic.Value

	started uint32
	closed  uint32
	dropped uint64
}

// NewWriter creates a journal writer and ensures the target directory
// exists.
func NewWriter(cfg Config) (*Writer, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, err
	}
	return &Writer{
		cfg: cfg,
		ch:  make(chan schema.Event, cfg.QueueSize),
	}, nil
}

// Start runs the writer loop in a new goroutine.
func (w *Writer) Start(ctx context.Context) error {
	if !atomic.CompareAndSwapUint32(&w.started, 0, 1) {
		return ErrAlreadyStarted
	}
	name := fmt.Sprintf("%s-%d.jsonl", w.cfg.FilePrefix, time.Now().UTC().UnixNano())
	file, err := os.Create(filepath.Join(w.cfg.Dir, name))
	if err != nil {
		w.err.Store(err)
		return err
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx, file)
	}()
	return nil
}

// TryRecord enqueues an event without blocking. Events are dropped with
// ErrQueueFull when the journal cannot keep up.
func (w *Writer) TryRecord(ev schema.Event) error {
	if atomic.LoadUint32(&w.started) == 0 {
		return ErrNotStarted
	}
	if atomic.LoadUint32(&w.closed) != 0 {
		return ErrClosed
	}
	select {
	case w.ch <- ev:
		return nil
	default:
		atomic.AddUint64(&w.dropped, 1)
		return ErrQueueFull
	}
}

// Dropped returns the number of events lost on a full queue.
func (w *Writer) Dropped() uint64 {
	return atomic.LoadUint64(&w.dropped)
}

// Close stops the writer and flushes any buffered data.
func (w *Writer) Close() error {
	if atomic.CompareAndSwapUint32(&w.closed, 0, 1) {
		close(w.ch)
	}
	w.wg.Wait()
	return w.Err()
}

// Err returns the first error observed by the writer, if any.
func (w *Writer) Err() error {
	if v := w.err.Load(); v != nil {
		return v.(error)
	}
	return nil
}

func (w *Writer) run(ctx context.Context, file *os.File) {
	buf := bufio.NewWriter(file)
	ticker := time.NewTicker(w.cfg.FlushInterval)
	defer func() {
		ticker.Stop()
		if err := buf.Flush(); err != nil {
			w.storeErr(err)
		}
		if err := file.Close(); err != nil {
			w.storeErr(err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := buf.Flush(); err != nil {
				w.storeErr(err)
				return
			}
		case ev, ok := <-w.ch:
			if !ok {
				return
			}
			line, err := sonic.Marshal(ev)
			if err != nil {
				w.storeErr(err)
				continue
			}
			if _, err := buf.Write(line); err != nil {
				w.storeErr(err)
				return
			}
			if err := buf.WriteByte('\n'); err != nil {
				w.storeErr(err)
				return
			}
		}
	}
}

func (w *Writer) storeErr(err error) {
	if w.err.Load() == nil {
		w.err.Store(err)
	}
}
