// Package stats derives summary metrics from a topology snapshot.
//
// Every function accepts a nil or empty topology and returns zero values.
package stats

import "netlens/internal/domain"

// Summary bundles the scalar metrics shown on the dashboard
type Summary struct {
	NodeCount     int     `json:"node_count"`
	LinkCount     int     `json:"link_count"`
	AverageDegree float64 `json:"average_degree"`
	MaxWeight     float64 `json:"max_weight"`
}

// NodeCount returns the number of nodes
func NodeCount(t *domain.Topology) int {
	if t == nil {
		return 0
	}
	return len(t.Nodes)
}

// LinkCount returns the number of links
func LinkCount(t *domain.Topology) int {
	if t == nil {
		return 0
	}
	return len(t.Links)
}

// AverageDegree is 2*links/nodes, or 0 without nodes
func AverageDegree(t *domain.Topology) float64 {
	nodes := NodeCount(t)
	if nodes == 0 {
		return 0
	}
	return 2 * float64(LinkCount(t)) / float64(nodes)
}

// MaxWeight returns the largest link weight, or 0 without links
func MaxWeight(t *domain.Topology) float64 {
	if t == nil || len(t.Links) == 0 {
		return 0
	}
	max := t.Links[0].Weight
	for _, l := range t.Links[1:] {
		if l.Weight > max {
			max = l.Weight
		}
	}
	return max
}

// Compute returns all metrics at once
func Compute(t *domain.Topology) Summary {
	return Summary{
		NodeCount:     NodeCount(t),
		LinkCount:     LinkCount(t),
		AverageDegree: AverageDegree(t),
		MaxWeight:     MaxWeight(t),
	}
}
