package domain

// Topology is an immutable snapshot of a named graph.
//
// Build it with NewTopology and never modify the slices afterwards; replace the
// whole snapshot instead.
type Topology struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Nodes       []Node `json:"nodes"`
	Links       []Link `json:"links"`

	index map[string]int
}

// NewTopology copies nodes and links into a new snapshot
func NewTopology(key, name, description string, nodes []Node, links []Link) *Topology {
	t := &Topology{
		Key:         key,
		Name:        name,
		Description: description,
		Nodes:       make([]Node, 0, len(nodes)),
		Links:       append(make([]Link, 0, len(links)), links...),
		index:       make(map[string]int, len(nodes)),
	}
	for _, n := range nodes {
		if _, dup := t.index[n.ID]; !dup {
			t.index[n.ID] = len(t.Nodes)
		}
		t.Nodes = append(t.Nodes, n.clone())
	}
	return t
}

// Empty returns a topology with no nodes or links
func Empty() *Topology {
	return NewTopology("", "", "", nil, nil)
}

// Get returns the node with the given identifier
func (t *Topology) Get(id string) (Node, bool) {
	if t == nil {
		return Node{}, false
	}
	if t.index != nil {
		i, ok := t.index[id]
		if !ok {
			return Node{}, false
		}
		return t.Nodes[i], true
	}
	// Decoded from JSON without NewTopology
	for _, n := range t.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Has reports whether a node with the identifier exists
func (t *Topology) Has(id string) bool {
	_, ok := t.Get(id)
	return ok
}

// NeighborsOf returns a copy of the node's neighbor list, or nil if the node is unknown
func (t *Topology) NeighborsOf(id string) []string {
	n, ok := t.Get(id)
	if !ok {
		return nil
	}
	return append([]string{}, n.Neighbors...)
}

// Endpoints resolves both ends of a link in this snapshot
func (t *Topology) Endpoints(l Link) (Node, Node, bool) {
	src, ok := t.Get(l.Source)
	if !ok {
		return Node{}, Node{}, false
	}
	dst, ok := t.Get(l.Target)
	if !ok {
		return Node{}, Node{}, false
	}
	return src, dst, true
}

// LinksOf returns the links touching the node, in link order
func (t *Topology) LinksOf(id string) []Link {
	if t == nil {
		return nil
	}
	var out []Link
	for _, l := range t.Links {
		if l.Involves(id) {
			out = append(out, l)
		}
	}
	return out
}

// NodeIDs returns node identifiers in node order
func (t *Topology) NodeIDs() []string {
	if t == nil {
		return nil
	}
	ids := make([]string, len(t.Nodes))
	for i, n := range t.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// Clone returns a deep copy with a fresh index
func (t *Topology) Clone() *Topology {
	if t == nil {
		return Empty()
	}
	return NewTopology(t.Key, t.Name, t.Description, t.Nodes, t.Links)
}

// Index maps node identifiers to their positions
func (t *Topology) Index() map[string]Position {
	if t == nil {
		return map[string]Position{}
	}
	out := make(map[string]Position, len(t.Nodes))
	for _, n := range t.Nodes {
		if _, dup := out[n.ID]; !dup {
			out[n.ID] = n.Position
		}
	}
	return out
}
