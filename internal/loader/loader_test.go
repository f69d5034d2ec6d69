package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"netlens/internal/codec"
	"netlens/internal/domain"
	"netlens/internal/logging"
	"netlens/internal/stats"
)

func ptr[T any](v T) *T { return &v }

type countingRecorder struct {
	kinds []domain.DataErrorKind
}

func (c *countingRecorder) RecordDropped(kind domain.DataErrorKind) {
	c.kinds = append(c.kinds, kind)
}

func TestLoadLibrary(t *testing.T) {
	l := New(logging.Noop())

	for _, key := range domain.LibraryKeys() {
		t.Run(key, func(t *testing.T) {
			topo, report, err := l.LoadWithReport(context.Background(), LibraryKey(key))
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if !report.Clean() {
				t.Errorf("expected canonical topology to load cleanly, dropped %v", report.Dropped)
			}
			if topo.Key != key || len(topo.Nodes) == 0 {
				t.Errorf("unexpected topology %q with %d nodes", topo.Key, len(topo.Nodes))
			}
		})
	}
}

func TestLoadUnknownKey(t *testing.T) {
	_, err := New(nil).Load(context.Background(), LibraryKey("ring"))

	var de *domain.DataError
	if !errors.As(err, &de) {
		t.Fatalf("expected DataError, got %v", err)
	}
	if de.Kind != domain.DataErrorUnknownTopology {
		t.Errorf("expected unknown_topology, got %s", de.Kind)
	}
}

func TestLoadEmptySource(t *testing.T) {
	if _, err := New(nil).Load(context.Background(), Source{}); err == nil {
		t.Error("expected error for empty source")
	}
}

func TestLoadDropsDanglingLink(t *testing.T) {
	raw := &codec.RawTopology{
		Nodes: []codec.RawNode{
			{ID: "A", X: 100, Y: 100, Connections: []string{"B"}},
			{ID: "B", X: 200, Y: 100, Connections: []string{"A", "Z"}},
		},
		Links: []codec.RawLink{
			{Source: "A", Target: "B", Cost: ptr(2.0)},
			{Source: "B", Target: "Z", Cost: ptr(1.0)},
		},
	}
	rec := &countingRecorder{}
	var buf bytes.Buffer
	log := logging.New(logging.Config{Level: "debug", Format: "json", Output: &buf})

	topo, report, err := New(log).WithRecorder(rec).LoadWithReport(context.Background(), Raw(raw))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(topo.Links) != 1 || topo.Links[0].Weight != 2 {
		t.Fatalf("expected only A--B with weight 2, got %+v", topo.Links)
	}
	if len(report.Dropped) != 1 || report.Dropped[0].Kind != domain.DataErrorDanglingLink {
		t.Errorf("expected one dangling link in report, got %v", report.Dropped)
	}
	if len(rec.kinds) != 1 {
		t.Errorf("expected recorder to see one drop, got %d", len(rec.kinds))
	}
	// neighbors are kept as given
	if got := topo.NeighborsOf("B"); !reflect.DeepEqual(got, []string{"A", "Z"}) {
		t.Errorf("expected neighbors [A Z], got %v", got)
	}
	if got := stats.NodeCount(topo); got != 2 {
		t.Errorf("expected node count 2, got %d", got)
	}

	warned := false
	for _, r := range logRecords(t, &buf) {
		if r["level"] == "WARN" && r["kind"] == string(domain.DataErrorDanglingLink) {
			warned = true
		}
	}
	if !warned {
		t.Errorf("expected a warning for the dangling link, got log:\n%s", buf.String())
	}
}

func TestLoadKeepsNegativeWeight(t *testing.T) {
	raw := &codec.RawTopology{
		Nodes: []codec.RawNode{
			{ID: "A", X: 100, Y: 100},
			{ID: "B", X: 200, Y: 100},
		},
		Links: []codec.RawLink{{Source: "A", Target: "B", Weight: ptr(-2.0)}},
	}
	var buf bytes.Buffer
	log := logging.New(logging.Config{Level: "debug", Format: "json", Output: &buf})

	topo, report, err := New(log).LoadWithReport(context.Background(), Raw(raw))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !report.Clean() {
		t.Errorf("expected nothing dropped, got %v", report.Dropped)
	}
	if len(topo.Links) != 1 || topo.Links[0].Weight != -2 {
		t.Fatalf("expected A--B with weight -2, got %+v", topo.Links)
	}

	warned := false
	for _, r := range logRecords(t, &buf) {
		if r["level"] == "WARN" && r["link"] == "A--B" && r["weight"] == -2.0 {
			warned = true
		}
	}
	if !warned {
		t.Errorf("expected a warning for the negative weight, got log:\n%s", buf.String())
	}
}

func logRecords(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("log line %q is not JSON: %v", line, err)
		}
		out = append(out, rec)
	}
	return out
}

func TestLoadNormalizesRaw(t *testing.T) {
	raw := &codec.RawTopology{
		Name: "raw",
		Nodes: []codec.RawNode{
			{ID: "A", X: 12.5, Y: 40, Neighbors: []string{"B"},
				RoutingTable: map[string]codec.RawRoute{
					"A": {Distance: ptr(0.0)},
					"B": {NextHop: ptr("B"), Distance: ptr(3.0)},
					"C": {Distance: ptr(-1.0)},
					"D": {NextHop: ptr("B")},
				}},
			{ID: "B", X: 80, Y: 40, Neighbors: []string{"A"}},
		},
		Links: []codec.RawLink{{Source: "A", Target: "B"}},
	}

	topo, err := New(nil).Load(context.Background(), Raw(raw))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	a, _ := topo.Get("A")
	if a.Position.X != 12.5 || a.Position.Y != 40 {
		t.Errorf("expected position preserved, got %+v", a.Position)
	}
	if topo.Links[0].Weight != DefaultWeight {
		t.Errorf("expected default weight, got %v", topo.Links[0].Weight)
	}
	if r, _ := a.Route("C"); r.IsReachable() {
		t.Error("expected C to decode as unreachable")
	}
	if r, ok := a.Route("D"); !ok || r.IsReachable() {
		t.Error("expected a row without distance to decode as unreachable")
	}
	if !a.IsSelfRoute("A") {
		t.Error("expected self route for A")
	}
	if hop, _ := mustRoute(t, a, "B").NextHop(); hop != "B" {
		t.Errorf("expected next hop B, got %q", hop)
	}
}

func mustRoute(t *testing.T, n domain.Node, dest string) domain.RouteEntry {
	t.Helper()
	r, ok := n.Route(dest)
	if !ok {
		t.Fatalf("node %s has no route to %s", n.ID, dest)
	}
	return r
}

func TestFilter(t *testing.T) {
	dirty := domain.NewTopology("d", "Dirty", "",
		[]domain.Node{
			domain.NewNode("A", 0, 0),
			domain.NewNode("A", 99, 99),
			domain.NewNode("", 5, 5),
			domain.NewNode("B", 10, 0),
		},
		[]domain.Link{
			domain.NewLink("A", "B", 1),
			domain.NewLink("A", "Q", 1),
			domain.NewLink("A", "B", math.NaN()),
			domain.NewLink("B", "A", -4),
			domain.NewLink("B", "A", math.Inf(1)),
		})

	once, report := Filter(dirty)

	t.Run("drops invalid elements", func(t *testing.T) {
		if got := once.NodeIDs(); !reflect.DeepEqual(got, []string{"A", "B"}) {
			t.Errorf("expected nodes [A B], got %v", got)
		}
		if len(once.Links) != 2 {
			t.Errorf("expected 2 links, got %d", len(once.Links))
		}
		if len(report.Dropped) != 5 {
			t.Errorf("expected 5 dropped elements, got %d", len(report.Dropped))
		}
		invalid := 0
		for _, de := range report.Dropped {
			if de.Kind == domain.DataErrorInvalidWeight {
				invalid++
			}
		}
		if invalid != 2 {
			t.Errorf("expected only the NaN and Inf weights dropped, got %d", invalid)
		}
		if once.Links[1].Weight != -4 {
			t.Errorf("expected negative weight kept as given, got %v", once.Links[1].Weight)
		}
	})

	t.Run("first duplicate wins", func(t *testing.T) {
		a, _ := once.Get("A")
		if a.Position.X != 0 {
			t.Errorf("expected first A at x=0, got %v", a.Position.X)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		twice, again := Filter(once)
		if !reflect.DeepEqual(twice.Nodes, once.Nodes) || !reflect.DeepEqual(twice.Links, once.Links) {
			t.Error("expected second filter to be a no-op")
		}
		if !again.Clean() {
			t.Errorf("expected nothing dropped on second pass, got %v", again.Dropped)
		}
	})

	t.Run("nil topology", func(t *testing.T) {
		empty, r := Filter(nil)
		if len(empty.Nodes) != 0 || !r.Clean() {
			t.Error("expected empty clean result")
		}
	})
}
