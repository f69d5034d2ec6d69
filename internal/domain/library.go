package domain

// Canonical topology keys
const (
	TopologyLinear = "linear"
	TopologyStar   = "star"
	TopologyMesh   = "mesh"
	TopologyTree   = "tree"
)

var libraryOrder = []string{TopologyLinear, TopologyStar, TopologyMesh, TopologyTree}

var library = map[string]func() *Topology{
	TopologyLinear: func() *Topology {
		return NewTopology(TopologyLinear, "Linear Network",
			"Simple chain topology - best for step-by-step routing demonstrations",
			[]Node{
				NewNode("A", 150, 200, "B"),
				NewNode("B", 300, 200, "A", "C"),
				NewNode("C", 450, 200, "B", "D"),
				NewNode("D", 600, 200, "C"),
			},
			[]Link{
				NewLink("A", "B", 1),
				NewLink("B", "C", 1),
				NewLink("C", "D", 1),
			})
	},
	TopologyStar: func() *Topology {
		return NewTopology(TopologyStar, "Star Network",
			"Central hub topology - demonstrates centralized routing",
			[]Node{
				NewNode("Hub", 375, 200, "A", "B", "C", "D", "E"),
				NewNode("A", 375, 100, "Hub"),
				NewNode("B", 500, 150, "Hub"),
				NewNode("C", 500, 250, "Hub"),
				NewNode("D", 375, 300, "Hub"),
				NewNode("E", 250, 250, "Hub"),
			},
			[]Link{
				NewLink("Hub", "A", 1),
				NewLink("Hub", "B", 2),
				NewLink("Hub", "C", 1),
				NewLink("Hub", "D", 2),
				NewLink("Hub", "E", 1),
			})
	},
	TopologyMesh: func() *Topology {
		return NewTopology(TopologyMesh, "Mesh Network",
			"Interconnected topology - multiple paths for redundancy",
			[]Node{
				NewNode("A", 200, 150, "B", "C", "D"),
				NewNode("B", 400, 150, "A", "C", "E"),
				NewNode("C", 300, 250, "A", "B", "D", "E"),
				NewNode("D", 200, 350, "A", "C", "E"),
				NewNode("E", 400, 350, "B", "C", "D"),
			},
			[]Link{
				NewLink("A", "B", 3),
				NewLink("A", "C", 2),
				NewLink("A", "D", 4),
				NewLink("B", "C", 1),
				NewLink("B", "E", 2),
				NewLink("C", "D", 1),
				NewLink("C", "E", 3),
				NewLink("D", "E", 2),
			})
	},
	TopologyTree: func() *Topology {
		return NewTopology(TopologyTree, "Tree Network",
			"Hierarchical topology - simulates enterprise network structure",
			[]Node{
				NewNode("Root", 375, 100, "L1A", "L1B"),
				NewNode("L1A", 250, 200, "Root", "L2A", "L2B"),
				NewNode("L1B", 500, 200, "Root", "L2C", "L2D"),
				NewNode("L2A", 150, 300, "L1A"),
				NewNode("L2B", 350, 300, "L1A"),
				NewNode("L2C", 450, 300, "L1B"),
				NewNode("L2D", 600, 300, "L1B"),
			},
			[]Link{
				NewLink("Root", "L1A", 1),
				NewLink("Root", "L1B", 1),
				NewLink("L1A", "L2A", 2),
				NewLink("L1A", "L2B", 1),
				NewLink("L1B", "L2C", 1),
				NewLink("L1B", "L2D", 3),
			})
	},
}

// LibraryKeys returns the canonical topology keys in display order
func LibraryKeys() []string {
	return append([]string(nil), libraryOrder...)
}

// LibraryTopology returns a fresh copy of a canonical topology
func LibraryTopology(key string) (*Topology, bool) {
	build, ok := library[key]
	if !ok {
		return nil, false
	}
	return build(), true
}

// Library returns fresh copies of every canonical topology in display order
func Library() []*Topology {
	out := make([]*Topology, 0, len(libraryOrder))
	for _, key := range libraryOrder {
		out = append(out, library[key]())
	}
	return out
}
