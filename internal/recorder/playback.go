package recorder

import (
	"context"
	"time"

	"main/internal/schema"
)

// PlaybackConfig controls paced journal replay.
type PlaybackConfig struct {
	Path string
	// Speed is the playback factor: 1 is real time, 0 disables pacing.
	Speed float64
}

// Playback feeds journal events to the handler in recorded order, pacing
// by receive-timestamp deltas when a speed is set.
func Playback(ctx context.Context, cfg PlaybackConfig, handler func(schema.Event)) error {
	events, err := ReadFile(cfg.Path)
	if err != nil {
		return err
	}

	var prev int64
	for _, ev := range events {
		if cfg.Speed > 0 && prev != 0 && ev.Header.TsRecv > prev {
			delay := time.Duration(float64(ev.Header.TsRecv-prev) / cfg.Speed)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
		prev = ev.Header.TsRecv

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		handler(ev)
	}
	return nil
}
