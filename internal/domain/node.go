package domain

// Node is a vertex of a Topology with a fixed diagram position
type Node struct {
	ID        string       `json:"id"`
	Position  Position     `json:"position"`
	Neighbors []string     `json:"neighbors"`
	Routes    RoutingTable `json:"routing_table,omitempty"`
}

// NewNode creates a node at (x, y) with the given neighbors
func NewNode(id string, x, y float64, neighbors ...string) Node {
	return Node{
		ID:        id,
		Position:  Position{X: x, Y: y},
		Neighbors: neighbors,
	}
}

// Degree returns the number of neighbors reported for the node
func (n Node) Degree() int {
	return len(n.Neighbors)
}

// HasNeighbor reports whether id is in the node's neighbor list
func (n Node) HasNeighbor(id string) bool {
	for _, nb := range n.Neighbors {
		if nb == id {
			return true
		}
	}
	return false
}

// Route returns the routing entry for dest, if the node has one
func (n Node) Route(dest string) (RouteEntry, bool) {
	if n.Routes == nil {
		return RouteEntry{}, false
	}
	r, ok := n.Routes[dest]
	return r, ok
}

// IsSelfRoute reports whether dest is the node itself and the table holds a
// reachable route to it. Distance alone does not decide this: a zero-weight
// link gives a distance 0 route to another node.
func (n Node) IsSelfRoute(dest string) bool {
	r, ok := n.Route(dest)
	return ok && r.IsReachable() && dest == n.ID
}

func (n Node) clone() Node {
	out := n
	if n.Neighbors != nil {
		out.Neighbors = append([]string(nil), n.Neighbors...)
	}
	out.Routes = n.Routes.Clone()
	return out
}
