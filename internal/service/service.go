package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"netlens/internal/codec"
	"netlens/internal/domain"
	"netlens/internal/engine"
	"netlens/internal/interact"
	"netlens/internal/loader"
	"netlens/internal/logging"
	"netlens/internal/remote"
	"netlens/internal/render"
	"netlens/internal/repository"
	"netlens/internal/stats"
)

var (
	ErrNoRemote      = errors.New("no remote service configured")
	ErrNoRepository  = errors.New("no repository configured")
	ErrNodeNotFound  = errors.New("node not found")
	ErrInvalidName   = errors.New("name must not be empty")
	ErrUnknownFormat = errors.New("unknown format")
	ErrMalformed     = errors.New("malformed topology data")
)

// State is the load state of the displayed topology
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// Status describes the displayed topology and how it got there
type Status struct {
	State     State     `json:"state"`
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	Source    string    `json:"source"`
	Digest    string    `json:"digest"`
	Nodes     int       `json:"nodes"`
	Links     int       `json:"links"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Remote is the part of the simulation service client the service uses
type Remote interface {
	FetchTopology(ctx context.Context, key string) (*codec.RawTopology, error)
	SwitchTopology(ctx context.Context, key string, raw *codec.RawTopology) error
	ShortestPath(ctx context.Context, source, destination string) (*remote.PathResult, error)
}

// Gauges receives the size of each installed snapshot
type Gauges interface {
	SetTopologyCounts(nodes, links int)
}

// LibraryEntry summarizes one canonical topology
type LibraryEntry struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	NodeCount   int    `json:"node_count"`
	LinkCount   int    `json:"link_count"`
}

// TopologyService provides business logic for topology loading and interaction
type TopologyService struct {
	engine   *engine.Engine
	loader   *loader.Loader
	eventBus *EventBus
	log      logging.Logger

	remote Remote
	repo   repository.Repository
	gauges Gauges

	mu     sync.RWMutex
	status Status
	now    func() time.Time
}

// NewTopologyService creates a new topology service
func NewTopologyService(eng *engine.Engine, ld *loader.Loader, eventBus *EventBus, log logging.Logger) *TopologyService {
	if log == nil {
		log = logging.Noop()
	}
	if ld == nil {
		ld = loader.New(log)
	}
	return &TopologyService{
		engine:   eng,
		loader:   ld,
		eventBus: eventBus,
		log:      log.With(logging.String("component", "topology")),
		status:   Status{State: StateLoading},
		now:      time.Now,
	}
}

// WithRemote enables the simulation service as the topology source
func (s *TopologyService) WithRemote(r Remote) *TopologyService {
	s.remote = r
	return s
}

// WithRepository enables saved topologies
func (s *TopologyService) WithRepository(r repository.Repository) *TopologyService {
	s.repo = r
	return s
}

// WithGauges sets the receiver of snapshot sizes
func (s *TopologyService) WithGauges(g Gauges) *TopologyService {
	s.gauges = g
	return s
}

// Engine returns the engine the service swaps snapshots into
func (s *TopologyService) Engine() *engine.Engine {
	return s.engine
}

// HasRemote reports whether a simulation service is configured
func (s *TopologyService) HasRemote() bool {
	return s.remote != nil
}

// Library lists the canonical topologies in their fixed order
func (s *TopologyService) Library() []LibraryEntry {
	lib := domain.Library()
	out := make([]LibraryEntry, 0, len(lib))
	for _, t := range lib {
		out = append(out, LibraryEntry{
			Key:         t.Key,
			Name:        t.Name,
			Description: t.Description,
			NodeCount:   stats.NodeCount(t),
			LinkCount:   stats.LinkCount(t),
		})
	}
	return out
}

// Topology returns the displayed snapshot
func (s *TopologyService) Topology() *domain.Topology {
	return s.engine.Topology()
}

// Status returns the current load status
func (s *TopologyService) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Switch displays a canonical topology. With a remote service configured the
// library copy is pushed to it and the service's view is fetched back, so
// routing tables come from the simulation.
func (s *TopologyService) Switch(ctx context.Context, key string) error {
	lib, ok := domain.LibraryTopology(key)
	if !ok {
		return &domain.DataError{Kind: domain.DataErrorUnknownTopology, ID: key, Reason: "not in the canonical library"}
	}
	s.setLoading()

	if s.remote == nil {
		t, err := s.loader.Load(ctx, loader.LibraryKey(key))
		if err != nil {
			return s.fail(ctx, "switch", err)
		}
		s.install(ctx, t, "library")
		return nil
	}

	if err := s.remote.SwitchTopology(ctx, key, codec.FromTopology(lib)); err != nil {
		return s.fail(ctx, "switch", err)
	}
	return s.fetch(ctx, key)
}

// Refresh reloads the displayed topology from its source
func (s *TopologyService) Refresh(ctx context.Context) error {
	key := s.engine.Topology().Key
	if s.remote != nil {
		s.setLoading()
		return s.fetch(ctx, key)
	}
	if _, ok := domain.LibraryTopology(key); !ok {
		return fmt.Errorf("refresh %q: %w", key, ErrNoRemote)
	}
	return s.Switch(ctx, key)
}

func (s *TopologyService) fetch(ctx context.Context, key string) error {
	raw, err := s.remote.FetchTopology(ctx, key)
	if err != nil {
		return s.fail(ctx, "fetch", err)
	}
	if raw.Key == "" {
		raw.Key = key
	}
	if raw.Name == "" {
		if lib, ok := domain.LibraryTopology(key); ok {
			raw.Name, raw.Description = lib.Name, lib.Description
		}
	}
	t, err := s.loader.Load(ctx, loader.Raw(raw))
	if err != nil {
		return s.fail(ctx, "fetch", err)
	}
	s.install(ctx, t, "remote")
	return nil
}

// Import decodes topology data in the given format and displays it
func (s *TopologyService) Import(ctx context.Context, format string, r io.Reader) (*loader.Report, error) {
	c, err := codec.ForFormat(format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, err)
	}
	raw, err := c.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrMalformed, c.Format(), err)
	}
	return s.ImportRaw(ctx, raw, "import:"+c.Format())
}

// ImportRaw displays already decoded topology data
func (s *TopologyService) ImportRaw(ctx context.Context, raw *codec.RawTopology, source string) (*loader.Report, error) {
	t, report, err := s.loader.LoadWithReport(ctx, loader.Raw(raw))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", source, err)
	}
	s.install(ctx, t, source)
	return report, nil
}

// ReloadFile displays the topology stored at path, picking the codec from
// the file extension
func (s *TopologyService) ReloadFile(ctx context.Context, path string) error {
	c, err := codec.ForPath(path)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open topology file: %w", err)
	}
	defer f.Close()

	raw, err := c.Decode(f)
	if err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrMalformed, path, err)
	}
	_, err = s.ImportRaw(ctx, raw, "file:"+path)
	return err
}

// Export writes the displayed topology in the given format
func (s *TopologyService) Export(format string, w io.Writer) error {
	c, err := codec.ForFormat(format)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnknownFormat, err)
	}
	return c.Encode(codec.FromTopology(s.engine.Topology()), w)
}

// Save persists the displayed topology under name
func (s *TopologyService) Save(ctx context.Context, name string) (*repository.SavedTopology, error) {
	if s.repo == nil {
		return nil, ErrNoRepository
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	saved, err := s.repo.SaveTopology(ctx, name, s.engine.Topology())
	if err != nil {
		return nil, fmt.Errorf("save topology %q: %w", name, err)
	}

	s.log.Info(ctx, "topology saved", logging.String("name", name), logging.String("digest", saved.Digest))
	s.eventBus.Publish(Event{Type: EventTopologySaved, Payload: saved})
	return saved, nil
}

// ListSaved returns all saved topologies
func (s *TopologyService) ListSaved(ctx context.Context) ([]repository.SavedTopology, error) {
	if s.repo == nil {
		return nil, ErrNoRepository
	}
	return s.repo.ListTopologies(ctx)
}

// LoadSaved displays a saved topology
func (s *TopologyService) LoadSaved(ctx context.Context, name string) (*domain.Topology, error) {
	if s.repo == nil {
		return nil, ErrNoRepository
	}
	t, err := s.repo.GetTopology(ctx, name)
	if err != nil {
		return nil, err
	}
	s.install(ctx, t, "saved:"+name)
	return t, nil
}

// DeleteSaved removes a saved topology
func (s *TopologyService) DeleteSaved(ctx context.Context, name string) error {
	if s.repo == nil {
		return ErrNoRepository
	}
	return s.repo.DeleteTopology(ctx, name)
}

// Stats summarizes the displayed topology
func (s *TopologyService) Stats() stats.Summary {
	return stats.Compute(s.engine.Topology())
}

// Detail returns the detail view of a node in the displayed topology
func (s *TopologyService) Detail(id string) (render.NodeDetail, error) {
	d, ok := render.Detail(s.engine.Topology(), id)
	if !ok {
		return render.NodeDetail{}, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return d, nil
}

// Click hit-tests p and applies the selection transition
func (s *TopologyService) Click(p domain.Position) interact.Selection {
	before := s.engine.Selection()
	sel := s.engine.Click(p)
	if sel != before {
		s.eventBus.Publish(Event{Type: EventSelectionChanged, Payload: selectionPayload(sel)})
	}
	return sel
}

// SetPaused freezes or resumes the animation
func (s *TopologyService) SetPaused(paused bool) bool {
	s.engine.SetPaused(paused)
	s.publishAnimation()
	return paused
}

// TogglePaused flips the animation state and returns the new one
func (s *TopologyService) TogglePaused() bool {
	paused := s.engine.TogglePaused()
	s.publishAnimation()
	return paused
}

// SetAnimateAll switches pulsing for every node
func (s *TopologyService) SetAnimateAll(on bool) {
	s.engine.SetAnimateAll(on)
	s.publishAnimation()
}

func (s *TopologyService) publishAnimation() {
	s.eventBus.Publish(Event{Type: EventAnimationChanged, Payload: map[string]bool{
		"paused":      s.engine.Paused(),
		"animate_all": s.engine.AnimateAll(),
	}})
}

// ShortestPath asks the simulation service for the best route and shows it
// as an overlay. A missing route clears the overlay.
func (s *TopologyService) ShortestPath(ctx context.Context, source, destination string) (*remote.PathResult, error) {
	if s.remote == nil {
		return nil, ErrNoRemote
	}
	t := s.engine.Topology()
	for _, id := range []string{source, destination} {
		if !t.Has(id) {
			return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
		}
	}

	res, err := s.remote.ShortestPath(ctx, source, destination)
	if err != nil {
		return nil, fmt.Errorf("shortest path %s -> %s: %w", source, destination, err)
	}

	if res.Found {
		s.engine.SetPath(res.Path)
	} else {
		s.engine.ClearPath()
	}
	s.eventBus.Publish(Event{Type: EventPathChanged, Payload: res})
	return res, nil
}

// ClearPath removes the path overlay
func (s *TopologyService) ClearPath() {
	s.engine.ClearPath()
	s.eventBus.Publish(Event{Type: EventPathChanged, Payload: map[string]any{"path": []string{}}})
}

func (s *TopologyService) install(ctx context.Context, t *domain.Topology, source string) {
	s.engine.Swap(t)
	if s.gauges != nil {
		s.gauges.SetTopologyCounts(len(t.Nodes), len(t.Links))
	}

	st := Status{
		State:     StateReady,
		Key:       t.Key,
		Name:      t.Name,
		Source:    source,
		Digest:    domain.Digest(t),
		Nodes:     len(t.Nodes),
		Links:     len(t.Links),
		UpdatedAt: s.now(),
	}
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()

	s.log.Info(ctx, "topology installed",
		logging.String("key", t.Key),
		logging.String("source", source),
		logging.Int("nodes", st.Nodes),
		logging.Int("links", st.Links),
	)
	s.eventBus.Publish(Event{Type: EventTopologySwapped, Payload: st})
	s.eventBus.Publish(Event{Type: EventSelectionChanged, Payload: selectionPayload(s.engine.Selection())})
}

func (s *TopologyService) setLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.State != StateReady {
		s.status.State = StateLoading
	}
}

// fail records err and keeps whatever snapshot is displayed. The state is
// error even when nothing was ever installed, so an empty diagram is never
// reported as still loading.
func (s *TopologyService) fail(ctx context.Context, op string, err error) error {
	s.mu.Lock()
	s.status.State = StateError
	s.status.Error = err.Error()
	s.status.UpdatedAt = s.now()
	st := s.status
	s.mu.Unlock()

	var te *remote.TransportError
	if errors.As(err, &te) {
		s.log.Warn(ctx, "remote topology unavailable, keeping last snapshot",
			logging.String("op", op), logging.Int("status", te.Status), logging.Err(err))
	} else {
		s.log.Error(ctx, "topology load failed", logging.String("op", op), logging.Err(err))
	}
	s.eventBus.Publish(Event{Type: EventTopologyError, Payload: st})
	return fmt.Errorf("%s topology: %w", op, err)
}

func selectionPayload(sel interact.Selection) map[string]any {
	id, ok := sel.ID()
	if !ok {
		return map[string]any{"selected": nil}
	}
	return map[string]any{"selected": id}
}
