package codec

import "netlens/internal/domain"

// RawTopology is the wire form of a topology as produced by data sources. Field
// names follow the simulation service: nodes carry "connections" or
// "neighbors", links carry "cost", "distance" or "weight".
type RawTopology struct {
	Key         string    `json:"key,omitempty" yaml:"key,omitempty" toml:"key,omitempty"`
	Name        string    `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Nodes       []RawNode `json:"nodes" yaml:"nodes" toml:"nodes"`
	Links       []RawLink `json:"links" yaml:"links" toml:"links"`
}

// RawNode is a node as delivered by a data source
type RawNode struct {
	ID           string              `json:"id" yaml:"id" toml:"id"`
	Label        string              `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
	X            float64             `json:"x" yaml:"x" toml:"x"`
	Y            float64             `json:"y" yaml:"y" toml:"y"`
	Connections  []string            `json:"connections,omitempty" yaml:"connections,omitempty" toml:"connections,omitempty"`
	Neighbors    []string            `json:"neighbors,omitempty" yaml:"neighbors,omitempty" toml:"neighbors,omitempty"`
	RoutingTable map[string]RawRoute `json:"routing_table,omitempty" yaml:"routing_table,omitempty" toml:"routing_table,omitempty"`
}

// RawRoute is a distance vector row. Distance -1 or a missing distance means
// unreachable.
type RawRoute struct {
	NextHop  *string  `json:"next_hop" yaml:"next_hop,omitempty" toml:"next_hop,omitempty"`
	Distance *float64 `json:"distance" yaml:"distance" toml:"distance"`
}

// Entry decodes the row into a route entry
func (r RawRoute) Entry() domain.RouteEntry {
	if r.Distance == nil {
		return domain.Unreachable()
	}
	hop := ""
	if r.NextHop != nil {
		hop = *r.NextHop
	}
	return domain.DecodeRoute(hop, *r.Distance)
}

// RawLink is a link as delivered by a data source
type RawLink struct {
	Source   string   `json:"source" yaml:"source" toml:"source"`
	Target   string   `json:"target" yaml:"target" toml:"target"`
	Weight   *float64 `json:"weight,omitempty" yaml:"weight,omitempty" toml:"weight,omitempty"`
	Cost     *float64 `json:"cost,omitempty" yaml:"cost,omitempty" toml:"cost,omitempty"`
	Distance *float64 `json:"distance,omitempty" yaml:"distance,omitempty" toml:"distance,omitempty"`
}

// NodeNeighbors returns "neighbors" when present, otherwise "connections"
func (n RawNode) NodeNeighbors() []string {
	if len(n.Neighbors) > 0 {
		return n.Neighbors
	}
	return n.Connections
}

// LinkWeight returns the first weight field present, in the order weight,
// cost, distance
func (l RawLink) LinkWeight() (float64, bool) {
	for _, w := range []*float64{l.Weight, l.Cost, l.Distance} {
		if w != nil {
			return *w, true
		}
	}
	return 0, false
}

// FromTopology converts a snapshot back into its wire form
func FromTopology(t *domain.Topology) *RawTopology {
	raw := &RawTopology{
		Nodes: make([]RawNode, 0),
		Links: make([]RawLink, 0),
	}
	if t == nil {
		return raw
	}
	raw.Key = t.Key
	raw.Name = t.Name
	raw.Description = t.Description

	for _, n := range t.Nodes {
		rn := RawNode{
			ID:        n.ID,
			X:         n.Position.X,
			Y:         n.Position.Y,
			Neighbors: append([]string{}, n.Neighbors...),
		}
		if len(n.Routes) > 0 {
			rn.RoutingTable = make(map[string]RawRoute, len(n.Routes))
			for dest, entry := range n.Routes {
				hop, dist := entry.Encode()
				rr := RawRoute{Distance: &dist}
				if hop != "" {
					rr.NextHop = &hop
				}
				rn.RoutingTable[dest] = rr
			}
		}
		raw.Nodes = append(raw.Nodes, rn)
	}

	for _, l := range t.Links {
		w := l.Weight
		raw.Links = append(raw.Links, RawLink{Source: l.Source, Target: l.Target, Weight: &w})
	}
	return raw
}
