package repository

import (
	"context"
	"errors"
	"time"

	"netlens/internal/domain"
)

// ErrNotFound is returned when no topology is saved under a name
var ErrNotFound = errors.New("saved topology not found")

// SavedTopology summarizes a stored topology
type SavedTopology struct {
	Name        string    `json:"name"`
	Key         string    `json:"key"`
	Description string    `json:"description"`
	Digest      string    `json:"digest"`
	NodeCount   int       `json:"node_count"`
	LinkCount   int       `json:"link_count"`
	SavedAt     time.Time `json:"saved_at"`
}

// Repository stores named topology snapshots
type Repository interface {
	// SaveTopology stores t under name, replacing any previous copy
	SaveTopology(ctx context.Context, name string, t *domain.Topology) (*SavedTopology, error)
	GetTopology(ctx context.Context, name string) (*domain.Topology, error)
	ListTopologies(ctx context.Context) ([]SavedTopology, error)
	DeleteTopology(ctx context.Context, name string) error

	// Close releases resources
	Close() error
}
