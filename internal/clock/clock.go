// Package clock provides the pausable animation time base and the pure effect
// functions derived from it.
package clock

import (
	"sync"
	"time"
)

// Source reports monotonic elapsed time
type Source interface {
	Now() time.Duration
}

type realSource struct {
	start time.Time
}

// RealSource measures time since its creation using the monotonic clock
func RealSource() Source {
	return &realSource{start: time.Now()}
}

func (s *realSource) Now() time.Duration {
	return time.Since(s.start)
}

// Manual is a Source advanced explicitly, for tests and offline rendering
type Manual struct {
	mu  sync.Mutex
	now time.Duration
}

// NewManual creates a manual source at t
func NewManual(t time.Duration) *Manual {
	return &Manual{now: t}
}

// Now returns the current manual time
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the manual time forward
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	m.mu.Unlock()
}

// Set jumps to t
func (m *Manual) Set(t time.Duration) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

// Sample is animation time in seconds
type Sample float64

// Seconds returns the sample as a float
func (s Sample) Seconds() float64 {
	return float64(s)
}

// Clock turns a Source into animation samples that can be frozen.
//
// While paused, Sample keeps returning the value captured by Pause. Resume
// continues from that value, so time spent paused never shows up as a jump.
type Clock struct {
	mu       sync.RWMutex
	src      Source
	paused   bool
	frozen   time.Duration
	pausedAt time.Duration
	skipped  time.Duration
}

// New creates a running clock. A nil source uses RealSource.
func New(src Source) *Clock {
	if src == nil {
		src = RealSource()
	}
	return &Clock{src: src}
}

// Sample returns the current animation time
func (c *Clock) Sample() Sample {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Sample(c.elapsed().Seconds())
}

func (c *Clock) elapsed() time.Duration {
	if c.paused {
		return c.frozen
	}
	return c.src.Now() - c.skipped
}

// Pause freezes the sample; pausing a paused clock does nothing
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pauseLocked()
}

// Resume restarts the clock from the frozen sample
func (c *Clock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resumeLocked()
}

func (c *Clock) pauseLocked() {
	if c.paused {
		return
	}
	c.frozen = c.elapsed()
	c.pausedAt = c.src.Now()
	c.paused = true
}

func (c *Clock) resumeLocked() {
	if !c.paused {
		return
	}
	c.skipped += c.src.Now() - c.pausedAt
	c.paused = false
}

// SetPaused pauses or resumes
func (c *Clock) SetPaused(paused bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if paused {
		c.pauseLocked()
	} else {
		c.resumeLocked()
	}
}

// Toggle flips the paused state and returns the new state
func (c *Clock) Toggle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused {
		c.resumeLocked()
	} else {
		c.pauseLocked()
	}
	return c.paused
}

// Paused reports whether the clock is frozen
func (c *Clock) Paused() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.paused
}
