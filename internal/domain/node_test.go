package domain

import "testing"

func TestNewNode(t *testing.T) {
	n := NewNode("B", 300, 200, "A", "C")

	if n.ID != "B" {
		t.Errorf("expected ID 'B', got %s", n.ID)
	}
	if n.Position.X != 300 || n.Position.Y != 200 {
		t.Errorf("expected position (300, 200), got %+v", n.Position)
	}
	if n.Degree() != 2 {
		t.Errorf("expected degree 2, got %d", n.Degree())
	}
	if n.Routes != nil {
		t.Error("expected no routing table")
	}
}

func TestNodeHasNeighbor(t *testing.T) {
	n := NewNode("B", 0, 0, "A", "C")

	t.Run("listed neighbor", func(t *testing.T) {
		if !n.HasNeighbor("C") {
			t.Error("expected C to be a neighbor")
		}
	})

	t.Run("unlisted node", func(t *testing.T) {
		if n.HasNeighbor("D") {
			t.Error("expected D not to be a neighbor")
		}
	})
}

func TestNodeRoute(t *testing.T) {
	n := NewNode("A", 0, 0, "B")

	if _, ok := n.Route("B"); ok {
		t.Error("expected no route without a table")
	}

	n.Routes = RoutingTable{"B": Reachable("B", 1)}
	r, ok := n.Route("B")
	if !ok || !r.IsReachable() {
		t.Fatalf("expected reachable route to B, got %v", r)
	}
}

func TestNodeIsSelfRoute(t *testing.T) {
	n := NewNode("A", 0, 0, "B")
	n.Routes = RoutingTable{
		"A": Reachable("", 0),
		"B": Reachable("B", 0),
		"C": Unreachable(),
	}

	tests := []struct {
		dest string
		want bool
	}{
		{"A", true},
		{"B", false},
		{"C", false},
		{"Z", false},
	}
	for _, tt := range tests {
		if got := n.IsSelfRoute(tt.dest); got != tt.want {
			t.Errorf("IsSelfRoute(%q) = %v, want %v", tt.dest, got, tt.want)
		}
	}
}

func TestNodeCloneIsIndependent(t *testing.T) {
	n := NewNode("A", 0, 0, "B")
	n.Routes = RoutingTable{"B": Reachable("B", 1)}

	c := n.clone()
	c.Neighbors[0] = "Z"
	c.Routes["C"] = Unreachable()

	if n.Neighbors[0] != "B" {
		t.Error("expected original neighbors untouched")
	}
	if _, ok := n.Routes["C"]; ok {
		t.Error("expected original routes untouched")
	}
}
