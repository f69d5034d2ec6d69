package stats

import (
	"math"
	"testing"

	"netlens/internal/domain"
)

func TestCompute(t *testing.T) {
	linear, _ := domain.LibraryTopology(domain.TopologyLinear)
	mesh, _ := domain.LibraryTopology(domain.TopologyMesh)

	tests := []struct {
		name string
		topo *domain.Topology
		want Summary
	}{
		{"nil", nil, Summary{}},
		{"empty", domain.Empty(), Summary{}},
		{"linear", linear, Summary{NodeCount: 4, LinkCount: 3, AverageDegree: 1.5, MaxWeight: 1}},
		{"nodes without links", domain.NewTopology("", "", "",
			[]domain.Node{domain.NewNode("A", 0, 0), domain.NewNode("B", 1, 1)}, nil),
			Summary{NodeCount: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compute(tt.topo); got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}

	t.Run("mesh max weight", func(t *testing.T) {
		want := 0.0
		for _, l := range mesh.Links {
			if l.Weight > want {
				want = l.Weight
			}
		}
		if got := MaxWeight(mesh); got != want {
			t.Errorf("expected %v, got %v", want, got)
		}
	})
}

func TestAverageDegreeIdentity(t *testing.T) {
	for _, topo := range domain.Library() {
		t.Run(topo.Key, func(t *testing.T) {
			got := AverageDegree(topo) * float64(NodeCount(topo))
			if want := 2 * float64(LinkCount(topo)); math.Abs(got-want) > 1e-9 {
				t.Errorf("expected avgDegree*nodes = %v, got %v", want, got)
			}
		})
	}
}
