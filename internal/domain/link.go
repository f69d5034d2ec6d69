package domain

import "fmt"

// Link is an undirected, weighted connection between two nodes
type Link struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

// NewLink creates a link between source and target
func NewLink(source, target string, weight float64) Link {
	return Link{Source: source, Target: target, Weight: weight}
}

// Involves checks if this link touches the given node
func (l Link) Involves(nodeID string) bool {
	return l.Source == nodeID || l.Target == nodeID
}

// OtherEnd returns the node on the other end of this link
func (l Link) OtherEnd(nodeID string) string {
	if l.Source == nodeID {
		return l.Target
	}
	return l.Source
}

// Key returns an identifier that is the same regardless of direction
func (l Link) Key() string {
	from, to := l.Source, l.Target
	if from > to {
		from, to = to, from
	}
	return fmt.Sprintf("%s--%s", from, to)
}
