package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// UnreachableSentinel is the distance value data sources use for "no route".
// It is only interpreted by DecodeRoute.
const UnreachableSentinel = -1

// RouteEntry is one row of a node's distance vector. The zero value is Unreachable.
type RouteEntry struct {
	reachable bool
	nextHop   string
	distance  float64
}

// Reachable builds a route through nextHop with the given distance
func Reachable(nextHop string, distance float64) RouteEntry {
	return RouteEntry{reachable: true, nextHop: nextHop, distance: distance}
}

// Unreachable builds a route entry with no path to the destination
func Unreachable() RouteEntry {
	return RouteEntry{}
}

// DecodeRoute converts a raw (next hop, distance) pair into a RouteEntry.
// Negative or non-finite distances, including the -1 sentinel, are Unreachable.
func DecodeRoute(nextHop string, distance float64) RouteEntry {
	if distance < 0 || math.IsNaN(distance) || math.IsInf(distance, 0) {
		return Unreachable()
	}
	return Reachable(nextHop, distance)
}

// IsReachable reports whether the destination has a route
func (r RouteEntry) IsReachable() bool {
	return r.reachable
}

// NextHop returns the next hop for a reachable route
func (r RouteEntry) NextHop() (string, bool) {
	if !r.reachable || r.nextHop == "" {
		return "", false
	}
	return r.nextHop, true
}

// Distance returns the distance for a reachable route
func (r RouteEntry) Distance() (float64, bool) {
	if !r.reachable {
		return 0, false
	}
	return r.distance, true
}

// Encode converts the entry back into the wire form used by data sources
func (r RouteEntry) Encode() (string, float64) {
	if !r.reachable {
		return "", UnreachableSentinel
	}
	return r.nextHop, r.distance
}

func (r RouteEntry) String() string {
	switch {
	case !r.reachable:
		return "unreachable"
	case r.nextHop == "":
		return fmt.Sprintf("direct (%g)", r.distance)
	default:
		return fmt.Sprintf("via %s (%g)", r.nextHop, r.distance)
	}
}

type routeJSON struct {
	Reachable *bool    `json:"reachable,omitempty"`
	NextHop   string   `json:"next_hop,omitempty"`
	Distance  *float64 `json:"distance,omitempty"`
}

// MarshalJSON emits the tagged form: {"reachable":false} or
// {"reachable":true,"next_hop":"B","distance":2}
func (r RouteEntry) MarshalJSON() ([]byte, error) {
	reachable := r.reachable
	out := routeJSON{Reachable: &reachable}
	if r.reachable {
		d := r.distance
		out.NextHop = r.nextHop
		out.Distance = &d
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts the tagged form and the sentinel form used by data sources
func (r *RouteEntry) UnmarshalJSON(data []byte) error {
	var in routeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("decode route entry: %w", err)
	}
	if in.Reachable != nil && !*in.Reachable {
		*r = Unreachable()
		return nil
	}
	if in.Distance == nil {
		*r = Unreachable()
		return nil
	}
	*r = DecodeRoute(in.NextHop, *in.Distance)
	return nil
}

// RoutingTable maps destination identifiers to route entries
type RoutingTable map[string]RouteEntry

// Destinations returns the table's destinations in sorted order
func (rt RoutingTable) Destinations() []string {
	dests := make([]string, 0, len(rt))
	for dest := range rt {
		dests = append(dests, dest)
	}
	sort.Strings(dests)
	return dests
}

// Clone returns a copy of the table
func (rt RoutingTable) Clone() RoutingTable {
	if rt == nil {
		return nil
	}
	out := make(RoutingTable, len(rt))
	for k, v := range rt {
		out[k] = v
	}
	return out
}
