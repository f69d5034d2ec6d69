package engine

import (
	"context"
	"time"

	"netlens/internal/logging"
	"netlens/internal/render"
)

// Run repaints at the configured frame interval until ctx is done. Frames are
// only rendered while somebody is subscribed, and only when something changed
// or the clock is running.
func (e *Engine) Run(ctx context.Context) error {
	interval := e.Config().FrameInterval.Duration()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.log.Info(ctx, "frame loop started", logging.String("interval", interval.String()))

	for {
		select {
		case <-ctx.Done():
			e.log.Info(ctx, "frame loop stopped")
			return ctx.Err()
		case <-ticker.C:
		}

		if next := e.Config().FrameInterval.Duration(); next != interval {
			interval = next
			ticker.Reset(interval)
		}
		e.Tick(ctx)
	}
}

// Tick publishes one frame if one is due and returns whether it did
func (e *Engine) Tick(ctx context.Context) bool {
	if e.Subscribers() == 0 {
		return false
	}
	if !e.clock.Paused() {
		e.dirty.Store(true)
	}
	if !e.dirty.CompareAndSwap(true, false) {
		return false
	}
	e.publish(ctx, e.Frame())
	return true
}

func (e *Engine) publish(ctx context.Context, f render.Frame) {
	e.subsMu.RLock()
	subs := make([]Subscriber, 0, len(e.subs))
	for _, fn := range e.subs {
		subs = append(subs, fn)
	}
	e.subsMu.RUnlock()

	for _, fn := range subs {
		e.deliver(ctx, fn, f)
	}
}

func (e *Engine) deliver(ctx context.Context, fn Subscriber, f render.Frame) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error(ctx, "frame subscriber panicked", logging.Any("panic", r))
		}
	}()
	fn(f)
}
