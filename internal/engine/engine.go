// Package engine owns the live diagram: the current topology snapshot, the
// selection, the animation clock and the redraw loop.
//
// Snapshots are swapped whole through an atomic pointer. A frame loads the
// pointer once, so it never mixes nodes of one snapshot with links of another.
package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"netlens/internal/clock"
	"netlens/internal/config"
	"netlens/internal/domain"
	"netlens/internal/interact"
	"netlens/internal/logging"
	"netlens/internal/render"
)

// Recorder receives engine measurements
type Recorder interface {
	FrameRendered(d time.Duration)
	TopologySwapped(key string)
	PointerHit(hit bool)
}

type noopRecorder struct{}

func (noopRecorder) FrameRendered(time.Duration) {}
func (noopRecorder) TopologySwapped(string)      {}
func (noopRecorder) PointerHit(bool)             {}

// Subscriber receives published frames
type Subscriber func(render.Frame)

// Engine is safe for concurrent use
type Engine struct {
	log      logging.Logger
	clock    *clock.Clock
	recorder Recorder

	snapshot atomic.Pointer[domain.Topology]
	pipeline atomic.Pointer[render.Pipeline]

	mu        sync.Mutex
	selection interact.Selection
	path      []string

	animateAll atomic.Bool
	dirty      atomic.Bool

	subsMu  sync.RWMutex
	subs    map[int]Subscriber
	nextSub int
}

// New creates an engine showing an empty topology. A nil clock uses real time.
func New(cfg config.Render, clk *clock.Clock, log logging.Logger) (*Engine, error) {
	p, err := render.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if clk == nil {
		clk = clock.New(nil)
	}
	if log == nil {
		log = logging.Noop()
	}

	e := &Engine{
		log:      log,
		clock:    clk,
		recorder: noopRecorder{},
		subs:     make(map[int]Subscriber),
	}
	e.pipeline.Store(p)
	e.snapshot.Store(domain.Empty())
	e.animateAll.Store(cfg.AnimateAll)
	e.dirty.Store(true)
	return e, nil
}

// SetRecorder installs a measurement sink
func (e *Engine) SetRecorder(r Recorder) {
	if r == nil {
		r = noopRecorder{}
	}
	e.recorder = r
}

// Topology returns the current snapshot; it is never nil
func (e *Engine) Topology() *domain.Topology {
	return e.snapshot.Load()
}

// Swap installs a new snapshot. A selection pointing at a node that is not in
// the new snapshot is cleared, and any path overlay is dropped.
func (e *Engine) Swap(t *domain.Topology) {
	if t == nil {
		t = domain.Empty()
	}
	e.snapshot.Store(t)

	e.mu.Lock()
	before := e.selection
	e.selection = e.selection.Retain(t)
	e.path = nil
	e.mu.Unlock()

	if before != e.Selection() {
		e.log.Debug(context.Background(), "selection cleared by swap", logging.String("node", before.String()))
	}
	e.recorder.TopologySwapped(t.Key)
	e.MarkDirty()
}

// Config returns the active render constants
func (e *Engine) Config() config.Render {
	return e.pipeline.Load().Config()
}

// UpdateConfig swaps in new render constants
func (e *Engine) UpdateConfig(cfg config.Render) error {
	p, err := render.New(cfg)
	if err != nil {
		return err
	}
	e.pipeline.Store(p)
	e.animateAll.Store(cfg.AnimateAll)
	e.MarkDirty()
	return nil
}

// Click hit-tests p against the current snapshot and applies the result to
// the selection
func (e *Engine) Click(p domain.Position) interact.Selection {
	t := e.snapshot.Load()
	id, ok := interact.HitTest(t, p, e.Config().EffectiveHitRadius())
	e.recorder.PointerHit(ok)

	e.mu.Lock()
	e.selection = e.selection.Click(id, ok)
	sel := e.selection
	e.mu.Unlock()

	e.MarkDirty()
	return sel
}

// Selection returns the current selection
func (e *Engine) Selection() interact.Selection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selection
}

// SetPath installs a path overlay
func (e *Engine) SetPath(ids []string) {
	e.mu.Lock()
	e.path = append([]string(nil), ids...)
	e.mu.Unlock()
	e.MarkDirty()
}

// ClearPath removes the path overlay
func (e *Engine) ClearPath() {
	e.SetPath(nil)
}

// Path returns the path overlay
func (e *Engine) Path() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.path...)
}

// SetPaused pauses or resumes animation
func (e *Engine) SetPaused(paused bool) {
	e.clock.SetPaused(paused)
	e.MarkDirty()
}

// TogglePaused flips the animation state and returns the new paused state
func (e *Engine) TogglePaused() bool {
	paused := e.clock.Toggle()
	e.MarkDirty()
	return paused
}

// Paused reports whether animation is frozen
func (e *Engine) Paused() bool {
	return e.clock.Paused()
}

// SetAnimateAll makes every node pulse, not just the selected one
func (e *Engine) SetAnimateAll(on bool) {
	e.animateAll.Store(on)
	e.MarkDirty()
}

// AnimateAll reports whether every node pulses
func (e *Engine) AnimateAll() bool {
	return e.animateAll.Load()
}

// MarkDirty forces the next tick to publish a frame
func (e *Engine) MarkDirty() {
	e.dirty.Store(true)
}

// Frame renders the current state at the current clock sample
func (e *Engine) Frame() render.Frame {
	start := time.Now()

	t := e.snapshot.Load()
	e.mu.Lock()
	in := render.Input{
		Topology:   t,
		Selection:  e.selection,
		Path:       append([]string(nil), e.path...),
		Sample:     e.clock.Sample(),
		Paused:     e.clock.Paused(),
		AnimateAll: e.animateAll.Load(),
	}
	e.mu.Unlock()

	f := e.pipeline.Load().Render(in)
	e.recorder.FrameRendered(time.Since(start))
	return f
}

// Subscribe registers fn for published frames and returns its cancel func
func (e *Engine) Subscribe(fn Subscriber) func() {
	e.subsMu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	e.subsMu.Unlock()

	e.MarkDirty()
	return func() {
		e.subsMu.Lock()
		delete(e.subs, id)
		e.subsMu.Unlock()
	}
}

// Subscribers returns the number of attached subscribers
func (e *Engine) Subscribers() int {
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	return len(e.subs)
}
