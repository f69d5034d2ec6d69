package interact

import (
	"testing"

	"netlens/internal/domain"
)

const radius = 25

func linear(t *testing.T) *domain.Topology {
	t.Helper()
	topo, ok := domain.LibraryTopology(domain.TopologyLinear)
	if !ok {
		t.Fatal("linear topology missing from library")
	}
	return topo
}

func TestHitTestCenters(t *testing.T) {
	for _, topo := range domain.Library() {
		t.Run(topo.Key, func(t *testing.T) {
			for _, n := range topo.Nodes {
				id, ok := HitTest(topo, n.Position, radius)
				if !ok || id != n.ID {
					t.Errorf("click at center of %s hit %q (%v)", n.ID, id, ok)
				}
			}
		})
	}
}

func TestHitTest(t *testing.T) {
	topo := linear(t)

	tests := []struct {
		name string
		p    domain.Position
		want string
		ok   bool
	}{
		{"on the rim", domain.Position{X: 450 + radius, Y: 200}, "C", true},
		{"just outside", domain.Position{X: 450 + radius + 0.01, Y: 200}, "", false},
		{"empty space", domain.Position{X: 10, Y: 10}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := HitTest(topo, tt.p, radius)
			if id != tt.want || ok != tt.ok {
				t.Errorf("HitTest(%v) = (%q, %v), want (%q, %v)", tt.p, id, ok, tt.want, tt.ok)
			}
		})
	}

	t.Run("nil topology", func(t *testing.T) {
		if _, ok := HitTest(nil, domain.Position{}, radius); ok {
			t.Error("expected no hit on nil topology")
		}
	})
}

func TestHitTestFirstMatchWins(t *testing.T) {
	topo := domain.NewTopology("overlap", "", "", []domain.Node{
		domain.NewNode("far", 0, 0),
		domain.NewNode("near", 20, 0),
	}, nil)

	// closer to "near" but inside both discs
	id, ok := HitTest(topo, domain.Position{X: 18, Y: 0}, radius)
	if !ok || id != "far" {
		t.Errorf("expected first node in order, got %q", id)
	}
}

func TestSelectionCycle(t *testing.T) {
	var s Selection
	if !s.Empty() {
		t.Fatal("expected initial selection to be empty")
	}

	s = s.Click("A", true)
	if !s.Is("A") {
		t.Fatalf("expected A selected, got %s", s)
	}

	s = s.Click("B", true)
	if !s.Is("B") {
		t.Fatalf("expected B to replace A, got %s", s)
	}

	s = s.Click("B", true)
	if !s.Empty() {
		t.Fatalf("expected clicking B again to clear, got %s", s)
	}

	s = s.Click("A", true).Click("", false)
	if !s.Empty() {
		t.Fatalf("expected miss to clear, got %s", s)
	}
}

func TestLinearScenario(t *testing.T) {
	topo := linear(t)
	c, _ := topo.Get("C")

	var s Selection
	s = s.Click(HitTest(topo, c.Position, radius))
	if id, ok := s.ID(); !ok || id != "C" {
		t.Fatalf("expected C selected, got %s", s)
	}

	s = s.Click(HitTest(topo, c.Position, radius))
	if !s.Empty() {
		t.Fatalf("expected second click to deselect, got %s", s)
	}
}

func TestSelectionRetain(t *testing.T) {
	topo := linear(t)

	if s := Select("C").Retain(topo); !s.Is("C") {
		t.Error("expected C to survive")
	}
	if s := Select("Hub").Retain(topo); !s.Empty() {
		t.Error("expected vanished node to be cleared")
	}
}
