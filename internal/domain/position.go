package domain

import "math"

// Position is a point in diagram coordinate space
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance between two positions
func (p Position) Distance(q Position) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Lerp returns p + (q - p) * t
func (p Position) Lerp(q Position, t float64) Position {
	return Position{
		X: p.X + (q.X-p.X)*t,
		Y: p.Y + (q.Y-p.Y)*t,
	}
}

// Midpoint returns the point halfway between p and q
func (p Position) Midpoint(q Position) Position {
	return p.Lerp(q, 0.5)
}
