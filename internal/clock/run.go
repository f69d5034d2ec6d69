package clock

import (
	"context"
	"time"
)

// Run calls fn with the current sample on every tick until ctx is done.
// Ticks that arrive while the clock is paused are skipped.
func (c *Clock) Run(ctx context.Context, interval time.Duration, fn func(Sample)) error {
	if interval <= 0 {
		interval = time.Second / 30
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if c.Paused() {
				continue
			}
			fn(c.Sample())
		}
	}
}
