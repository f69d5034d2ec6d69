package source

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"netlens/internal/logging"
)

// DefaultPollInterval is used when a polling source has no interval
const DefaultPollInterval = time.Minute

var (
	ErrUnknownSource  = errors.New("source not registered")
	ErrSourceDisabled = errors.New("source is disabled")
)

// Info provides read-only information about a source
type Info struct {
	Name         string    `json:"name"`
	Kind         Kind      `json:"kind"`
	Enabled      bool      `json:"enabled"`
	PollInterval string    `json:"poll_interval,omitempty"`
	LastSync     time.Time `json:"last_sync,omitempty"`
	LastError    string    `json:"last_error,omitempty"`
	Syncs        int       `json:"syncs"`
}

type entry struct {
	src    Source
	config Config

	lastSync  time.Time
	lastError string
	syncs     int
}

// Registry manages all registered sources and their polling loops
type Registry struct {
	mu      sync.RWMutex
	sources map[string]*entry
	log     logging.Logger
	now     func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRegistry creates a new source registry
func NewRegistry(log logging.Logger) *Registry {
	if log == nil {
		log = logging.Noop()
	}
	return &Registry{
		sources: make(map[string]*entry),
		log:     log.With(logging.String("component", "sources")),
		now:     time.Now,
	}
}

// Register adds a source to the registry
func (r *Registry) Register(src Source, config Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := src.Name()
	if _, exists := r.sources[name]; exists {
		return fmt.Errorf("source %s already registered", name)
	}
	r.sources[name] = &entry{src: src, config: config}

	r.log.Info(context.Background(), "registered source",
		logging.String("source", name),
		logging.String("kind", string(src.Kind())),
		logging.Bool("enabled", config.Enabled),
	)
	return nil
}

// Start begins the polling loops of all enabled polling sources
func (r *Registry) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, r.cancel = context.WithCancel(ctx)
	for name, e := range r.sources {
		if !e.config.Enabled {
			r.log.Debug(ctx, "source is disabled, skipping", logging.String("source", name))
			continue
		}
		if e.src.Kind() == KindPolling {
			r.startPollingLoop(ctx, name, e)
		}
	}
}

// Stop cancels all polling loops and waits for them to finish
func (r *Registry) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
}

// TriggerSync runs one sync of the named source
func (r *Registry) TriggerSync(ctx context.Context, name string) error {
	r.mu.RLock()
	e, exists := r.sources[name]
	r.mu.RUnlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownSource, name)
	}
	if !e.config.Enabled {
		return fmt.Errorf("%w: %s", ErrSourceDisabled, name)
	}
	return r.runSync(ctx, name, e)
}

// List returns information about registered sources, sorted by name
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.sources))
	for name, e := range r.sources {
		info := Info{
			Name:      name,
			Kind:      e.src.Kind(),
			Enabled:   e.config.Enabled,
			LastSync:  e.lastSync,
			LastError: e.lastError,
			Syncs:     e.syncs,
		}
		if e.src.Kind() == KindPolling {
			info.PollInterval = interval(e.config).String()
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

func interval(c Config) time.Duration {
	if c.PollInterval <= 0 {
		return DefaultPollInterval
	}
	return c.PollInterval
}

// startPollingLoop syncs once immediately, then on every tick
func (r *Registry) startPollingLoop(ctx context.Context, name string, e *entry) {
	every := interval(e.config)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		if err := r.runSync(ctx, name, e); err != nil {
			r.log.Warn(ctx, "initial sync failed", logging.String("source", name), logging.Err(err))
		}

		ticker := time.NewTicker(every)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				r.log.Debug(ctx, "stopping polling loop", logging.String("source", name))
				return
			case <-ticker.C:
				if err := r.runSync(ctx, name, e); err != nil {
					r.log.Warn(ctx, "sync failed", logging.String("source", name), logging.Err(err))
				}
			}
		}
	}()

	r.log.Info(ctx, "started polling loop", logging.String("source", name), logging.String("interval", every.String()))
}

func (r *Registry) runSync(ctx context.Context, name string, e *entry) error {
	err := e.src.Sync(ctx)

	r.mu.Lock()
	e.lastSync = r.now()
	e.syncs++
	e.lastError = ""
	if err != nil {
		e.lastError = err.Error()
	}
	r.mu.Unlock()

	if err != nil {
		return fmt.Errorf("sync %s: %w", name, err)
	}
	r.log.Debug(ctx, "sync complete", logging.String("source", name))
	return nil
}
