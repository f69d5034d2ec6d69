package render

import (
	"sort"

	"netlens/internal/domain"
)

// Infinity is shown for unreachable destinations
const Infinity = "∞"

// NoHop is shown where a route has no next hop
const NoHop = "-"

// RouteRow is one displayed row of a routing table
type RouteRow struct {
	Destination string `json:"destination"`
	NextHop     string `json:"next_hop"`
	Distance    string `json:"distance"`
	Reachable   bool   `json:"reachable"`
	Self        bool   `json:"self"`
}

// LinkRow describes a link leaving the node
type LinkRow struct {
	Neighbor string  `json:"neighbor"`
	Weight   float64 `json:"weight"`
}

// NodeDetail is the detail view of a selected node
type NodeDetail struct {
	ID        string          `json:"id"`
	Position  domain.Position `json:"position"`
	Neighbors []string        `json:"neighbors"`
	Degree    int             `json:"degree"`
	Links     []LinkRow       `json:"links"`
	Routes    []RouteRow      `json:"routes"`
}

// Detail builds the detail view of node id. Routing rows are ordered by
// destination.
func Detail(t *domain.Topology, id string) (NodeDetail, bool) {
	n, ok := t.Get(id)
	if !ok {
		return NodeDetail{}, false
	}

	d := NodeDetail{
		ID:        n.ID,
		Position:  n.Position,
		Neighbors: t.NeighborsOf(id),
		Degree:    n.Degree(),
		Links:     make([]LinkRow, 0),
		Routes:    make([]RouteRow, 0, len(n.Routes)),
	}
	for _, l := range t.LinksOf(id) {
		d.Links = append(d.Links, LinkRow{Neighbor: l.OtherEnd(id), Weight: l.Weight})
	}
	sort.SliceStable(d.Links, func(i, j int) bool { return d.Links[i].Neighbor < d.Links[j].Neighbor })

	for _, dest := range n.Routes.Destinations() {
		d.Routes = append(d.Routes, Row(n.ID, dest, n.Routes[dest]))
	}
	return d, true
}

// Row formats the routing entry of owner for dest. Only the owner's own row
// is marked Self and shown without a next hop.
func Row(owner, dest string, r domain.RouteEntry) RouteRow {
	row := RouteRow{
		Destination: dest,
		NextHop:     NoHop,
		Reachable:   r.IsReachable(),
		Self:        r.IsReachable() && dest == owner,
	}

	dist, ok := r.Distance()
	if !ok {
		row.Distance = Infinity
		return row
	}
	row.Distance = FormatNumber(dist)
	if row.Self {
		return row
	}
	if hop, ok := r.NextHop(); ok {
		row.NextHop = hop
	}
	return row
}
