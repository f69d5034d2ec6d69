// Package interact maps pointer input onto the topology and tracks the
// selected node.
package interact

import "netlens/internal/domain"

// HitTest returns the first node, in node order, whose center lies within
// radius of p. Overlapping discs resolve to the earlier node, not the nearest.
func HitTest(t *domain.Topology, p domain.Position, radius float64) (string, bool) {
	if t == nil || radius < 0 {
		return "", false
	}
	for _, n := range t.Nodes {
		if n.Position.Distance(p) <= radius {
			return n.ID, true
		}
	}
	return "", false
}

// Selection is either empty or holds one node identifier. The zero value is
// empty.
type Selection struct {
	id string
}

// Select returns a selection holding id
func Select(id string) Selection {
	return Selection{id: id}
}

// ID returns the selected node, if any
func (s Selection) ID() (string, bool) {
	return s.id, s.id != ""
}

// Empty reports whether nothing is selected
func (s Selection) Empty() bool {
	return s.id == ""
}

// Is reports whether id is the selected node
func (s Selection) Is(id string) bool {
	return s.id != "" && s.id == id
}

// Click applies a pointer click. A miss clears the selection, a hit on the
// selected node clears it, and a hit on any other node selects that node.
func (s Selection) Click(hit string, ok bool) Selection {
	if !ok || hit == "" || s.id == hit {
		return Selection{}
	}
	return Selection{id: hit}
}

// Retain clears the selection when its node is no longer in t
func (s Selection) Retain(t *domain.Topology) Selection {
	if s.id != "" && !t.Has(s.id) {
		return Selection{}
	}
	return s
}

// MarshalText encodes the selection as its node id, empty for none
func (s Selection) MarshalText() ([]byte, error) {
	return []byte(s.id), nil
}

// UnmarshalText restores a selection from its node id
func (s *Selection) UnmarshalText(b []byte) error {
	s.id = string(b)
	return nil
}

func (s Selection) String() string {
	if s.id == "" {
		return "none"
	}
	return s.id
}
