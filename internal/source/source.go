// Package source runs topology sources on a schedule.
//
// A Source refreshes the displayed topology from somewhere outside netlens,
// typically the routing simulation service whose tables converge over time.
// The Registry owns one polling loop per enabled source and lets operators
// trigger a sync by hand.
package source

import (
	"context"
	"time"
)

// Kind defines how a source is driven
type Kind string

const (
	// KindPolling sources sync on a schedule and on demand
	KindPolling Kind = "polling"
	// KindOneShot sources only sync on demand
	KindOneShot Kind = "oneshot"
)

// Config holds the schedule of a registered source
type Config struct {
	Enabled      bool          `json:"enabled"`
	PollInterval time.Duration `json:"poll_interval,omitempty"`
}

// Source refreshes the displayed topology
type Source interface {
	// Name returns the unique identifier for this source
	Name() string

	// Kind returns how this source is driven
	Kind() Kind

	// Sync pulls from the source and installs the result
	Sync(ctx context.Context) error
}

// Func adapts a function to a Source
type Func struct {
	SourceName string
	SourceKind Kind
	SyncFunc   func(ctx context.Context) error
}

func (f Func) Name() string                   { return f.SourceName }
func (f Func) Kind() Kind                     { return f.SourceKind }
func (f Func) Sync(ctx context.Context) error { return f.SyncFunc(ctx) }
