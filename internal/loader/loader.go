package loader

import (
	"context"
	"fmt"
	"math"

	"netlens/internal/codec"
	"netlens/internal/domain"
	"netlens/internal/logging"
)

// DefaultWeight is used for links that carry none of weight, cost or distance.
// It matches the hop-count metric of distance-vector routing.
const DefaultWeight = 1

// Source identifies where a topology comes from
type Source struct {
	key string
	raw *codec.RawTopology
}

// LibraryKey selects a topology from the canonical library
func LibraryKey(key string) Source {
	return Source{key: key}
}

// Raw wraps externally supplied topology data
func Raw(raw *codec.RawTopology) Source {
	return Source{raw: raw}
}

func (s Source) String() string {
	if s.raw != nil {
		return "raw"
	}
	return "library:" + s.key
}

// Report lists the elements dropped while loading
type Report struct {
	Dropped []*domain.DataError `json:"dropped"`
}

// Clean reports whether nothing was dropped
func (r *Report) Clean() bool {
	return r == nil || len(r.Dropped) == 0
}

func (r *Report) add(kind domain.DataErrorKind, id, reason string) {
	r.Dropped = append(r.Dropped, &domain.DataError{Kind: kind, ID: id, Reason: reason})
}

// DropRecorder is notified of every dropped element
type DropRecorder interface {
	RecordDropped(kind domain.DataErrorKind)
}

// Loader builds topology snapshots
type Loader struct {
	log      logging.Logger
	recorder DropRecorder
}

// New creates a loader
func New(log logging.Logger) *Loader {
	if log == nil {
		log = logging.Noop()
	}
	return &Loader{log: log}
}

// WithRecorder sets the recorder notified of dropped elements
func (l *Loader) WithRecorder(r DropRecorder) *Loader {
	l.recorder = r
	return l
}

// Load builds a topology, discarding the report
func (l *Loader) Load(ctx context.Context, src Source) (*domain.Topology, error) {
	t, _, err := l.LoadWithReport(ctx, src)
	return t, err
}

// LoadWithReport builds a topology and returns what was dropped
func (l *Loader) LoadWithReport(ctx context.Context, src Source) (*domain.Topology, *Report, error) {
	var (
		t      *domain.Topology
		report = &Report{}
	)

	switch {
	case src.raw != nil:
		t = fromRaw(src.raw, report)
	case src.key != "":
		lib, ok := domain.LibraryTopology(src.key)
		if !ok {
			return nil, nil, &domain.DataError{
				Kind:   domain.DataErrorUnknownTopology,
				ID:     src.key,
				Reason: "not in the canonical library",
			}
		}
		t = lib
	default:
		return nil, nil, &domain.DataError{Kind: domain.DataErrorMalformed, Reason: "empty source"}
	}

	filtered, dropped := Filter(t)
	report.Dropped = append(report.Dropped, dropped.Dropped...)

	for _, de := range report.Dropped {
		l.log.Warn(ctx, "dropped topology element",
			logging.String("source", src.String()),
			logging.String("kind", string(de.Kind)),
			logging.String("id", de.ID),
			logging.String("reason", de.Reason),
		)
		if l.recorder != nil {
			l.recorder.RecordDropped(de.Kind)
		}
	}
	for _, lk := range filtered.Links {
		if lk.Weight < 0 {
			l.log.Warn(ctx, "negative link weight rendered as given",
				logging.String("source", src.String()),
				logging.String("link", lk.Key()),
				logging.Float("weight", lk.Weight),
			)
		}
	}

	l.log.Debug(ctx, "topology loaded",
		logging.String("source", src.String()),
		logging.Int("nodes", len(filtered.Nodes)),
		logging.Int("links", len(filtered.Links)),
	)
	return filtered, report, nil
}

// Filter drops duplicate nodes, empty node identifiers, dangling links and
// links with a NaN or infinite weight. Positions, neighbor lists, routing
// tables and finite weights of any sign are kept as given. Filter(Filter(t)) yields the same topology as Filter(t).
func Filter(t *domain.Topology) (*domain.Topology, *Report) {
	report := &Report{}
	if t == nil {
		return domain.Empty(), report
	}

	seen := make(map[string]bool, len(t.Nodes))
	nodes := make([]domain.Node, 0, len(t.Nodes))
	for _, n := range t.Nodes {
		switch {
		case n.ID == "":
			report.add(domain.DataErrorEmptyNodeID, "", "node without identifier")
			continue
		case seen[n.ID]:
			report.add(domain.DataErrorDuplicateNode, n.ID, "duplicate node identifier, keeping the first")
			continue
		}
		seen[n.ID] = true
		nodes = append(nodes, n)
	}

	links := make([]domain.Link, 0, len(t.Links))
	for _, lk := range t.Links {
		switch {
		case !seen[lk.Source] || !seen[lk.Target]:
			report.add(domain.DataErrorDanglingLink, lk.Key(),
				fmt.Sprintf("references unknown node (source %q, target %q)", lk.Source, lk.Target))
			continue
		case math.IsNaN(lk.Weight) || math.IsInf(lk.Weight, 0):
			report.add(domain.DataErrorInvalidWeight, lk.Key(),
				fmt.Sprintf("weight %v is not a finite number", lk.Weight))
			continue
		}
		links = append(links, lk)
	}

	return domain.NewTopology(t.Key, t.Name, t.Description, nodes, links), report
}

// fromRaw converts wire data without filtering. Link weights are normalized
// here; nothing is dropped except what cannot be represented.
func fromRaw(raw *codec.RawTopology, report *Report) *domain.Topology {
	nodes := make([]domain.Node, 0, len(raw.Nodes))
	for _, rn := range raw.Nodes {
		n := domain.NewNode(rn.ID, rn.X, rn.Y, append([]string{}, rn.NodeNeighbors()...)...)
		if len(rn.RoutingTable) > 0 {
			n.Routes = make(domain.RoutingTable, len(rn.RoutingTable))
			for dest, rr := range rn.RoutingTable {
				n.Routes[dest] = rr.Entry()
			}
		}
		nodes = append(nodes, n)
	}

	links := make([]domain.Link, 0, len(raw.Links))
	for _, rl := range raw.Links {
		w, ok := rl.LinkWeight()
		if !ok {
			w = DefaultWeight
		}
		if rl.Source == "" || rl.Target == "" {
			report.add(domain.DataErrorMalformed, rl.Source+"--"+rl.Target, "link without both endpoints")
			continue
		}
		links = append(links, domain.NewLink(rl.Source, rl.Target, w))
	}

	return domain.NewTopology(raw.Key, raw.Name, raw.Description, nodes, links)
}
