package domain

import "testing"

func TestLibrary(t *testing.T) {
	tests := []struct {
		key   string
		nodes int
		links int
	}{
		{TopologyLinear, 4, 3},
		{TopologyStar, 6, 5},
		{TopologyMesh, 5, 8},
		{TopologyTree, 7, 6},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			topo, ok := LibraryTopology(tt.key)
			if !ok {
				t.Fatalf("expected %s in library", tt.key)
			}
			if len(topo.Nodes) != tt.nodes {
				t.Errorf("expected %d nodes, got %d", tt.nodes, len(topo.Nodes))
			}
			if len(topo.Links) != tt.links {
				t.Errorf("expected %d links, got %d", tt.links, len(topo.Links))
			}

			for _, l := range topo.Links {
				if !topo.Has(l.Source) || !topo.Has(l.Target) {
					t.Errorf("link %s has a dangling endpoint", l.Key())
				}
			}
			for _, n := range topo.Nodes {
				for _, nb := range n.Neighbors {
					found := false
					for _, l := range topo.LinksOf(n.ID) {
						if l.OtherEnd(n.ID) == nb {
							found = true
						}
					}
					if !found {
						t.Errorf("neighbor %s of %s has no link", nb, n.ID)
					}
				}
			}
		})
	}

	if _, ok := LibraryTopology("ring"); ok {
		t.Error("expected unknown key to be missing")
	}
}

func TestLibraryReturnsFreshCopies(t *testing.T) {
	a, _ := LibraryTopology(TopologyLinear)
	a.Nodes[0].ID = "mutated"

	b, _ := LibraryTopology(TopologyLinear)
	if b.Nodes[0].ID != "A" {
		t.Error("expected library topologies not to share state")
	}

	if keys := LibraryKeys(); len(keys) != 4 || keys[0] != TopologyLinear {
		t.Errorf("unexpected keys %v", keys)
	}
}
