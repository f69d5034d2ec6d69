package render

import (
	"reflect"
	"strings"
	"testing"

	"netlens/internal/clock"
	"netlens/internal/config"
	"netlens/internal/domain"
	"netlens/internal/interact"
)

func newPipeline(t *testing.T) *Pipeline {
	t.Helper()
	p, err := New(config.DefaultRender())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p
}

func library(t *testing.T, key string) *domain.Topology {
	t.Helper()
	topo, ok := domain.LibraryTopology(key)
	if !ok {
		t.Fatalf("missing library topology %s", key)
	}
	return topo
}

func TestNewRejectsBadPalette(t *testing.T) {
	cfg := config.DefaultRender()
	cfg.Theme.LinkPalette = []string{"#00d4ff", "coral", "#ffe66d"}
	if _, err := New(cfg); err == nil {
		t.Error("expected error for non-hex palette color")
	}
}

func TestRenderEmptyTopology(t *testing.T) {
	p := newPipeline(t)

	for _, topo := range []*domain.Topology{nil, domain.Empty()} {
		f := p.Render(Input{Topology: topo, Sample: 1.5})
		if len(f.Commands) != 1 || f.Commands[0].Kind != KindGrid {
			t.Errorf("expected grid only, got %d commands", len(f.Commands))
		}
	}
}

func TestRenderLayers(t *testing.T) {
	p := newPipeline(t)
	f := p.Render(Input{Topology: library(t, domain.TopologyLinear), Sample: 0.25})

	want := map[Layer]int{
		LayerGrid:    1,
		LayerLinks:   3,
		LayerWeights: 3,
		LayerMarkers: 3,
		LayerPath:    0,
		LayerNodes:   12,
		LayerLabels:  4,
		LayerBadges:  8,
	}
	for layer, n := range want {
		if got := len(f.Layer(layer)); got != n {
			t.Errorf("layer %s: expected %d commands, got %d", layer, n, got)
		}
	}

	t.Run("draw order", func(t *testing.T) {
		last := LayerGrid
		for i, c := range f.Commands {
			if c.Layer < last {
				t.Fatalf("command %d on layer %s drawn after layer %s", i, c.Layer, last)
			}
			last = c.Layer
		}
	})
}

func TestRenderPausedIsDeterministic(t *testing.T) {
	p := newPipeline(t)
	in := Input{
		Topology:  library(t, domain.TopologyMesh),
		Selection: interact.Select("C"),
		Sample:    4.2,
		Paused:    true,
	}

	a, b := p.Render(in), p.Render(in)
	if !reflect.DeepEqual(a, b) {
		t.Error("expected identical frames at a frozen sample")
	}
	if n := len(a.Layer(LayerMarkers)); n != 0 {
		t.Errorf("expected no markers while paused, got %d", n)
	}
}

func TestMarkersArePureFunctionsOfTime(t *testing.T) {
	p := newPipeline(t)
	in := Input{Topology: library(t, domain.TopologyStar), Sample: 7.77}

	a := p.Render(in).Layer(LayerMarkers)
	b := p.Render(in).Layer(LayerMarkers)
	if !reflect.DeepEqual(a, b) {
		t.Error("expected identical markers for the same sample")
	}

	in.Sample = 8.1
	if reflect.DeepEqual(a, p.Render(in).Layer(LayerMarkers)) {
		t.Error("expected markers to move with time")
	}
}

func TestRenderSelectionHighlight(t *testing.T) {
	p := newPipeline(t)
	cfg := p.Config()
	f := p.Render(Input{Topology: library(t, domain.TopologyLinear), Selection: interact.Select("B")})

	links := f.Layer(LayerLinks)
	for i, wantBoost := range []bool{true, true, false} {
		boosted := links[i].Style.Stroke == cfg.Theme.Highlight && links[i].Style.Width == cfg.SelectedLinkWidth
		if boosted != wantBoost {
			t.Errorf("link %d: boosted = %v, want %v", i, boosted, wantBoost)
		}
	}
	if f.Selected != "B" {
		t.Errorf("expected frame to record selection B, got %q", f.Selected)
	}
}

func TestRenderPulseOnlySelected(t *testing.T) {
	p := newPipeline(t)
	cfg := p.Config()
	// sin(4 * 0.3) is far from zero, so the pulse scale differs from 1
	f := p.Render(Input{Topology: library(t, domain.TopologyLinear), Selection: interact.Select("A"), Sample: 0.3})

	for _, c := range f.Layer(LayerNodes) {
		if c.Style.Fill != cfg.Theme.NodeFill {
			continue
		}
		pulsing := c.R != cfg.NodeRadius
		if pulsing != (c.NodeID == "A") {
			t.Errorf("node %s: pulsing = %v", c.NodeID, pulsing)
		}
	}

	all := p.Render(Input{Topology: library(t, domain.TopologyLinear), Sample: 0.3, AnimateAll: true})
	for _, c := range all.Layer(LayerNodes) {
		if c.Style.Fill == cfg.Theme.NodeFill && c.R == cfg.NodeRadius {
			t.Errorf("node %s: expected pulse with AnimateAll", c.NodeID)
		}
	}
}

func TestWeightLabelAboveHorizontalLink(t *testing.T) {
	p := newPipeline(t)
	f := p.Render(Input{Topology: library(t, domain.TopologyLinear)})

	label := f.Layer(LayerWeights)[0]
	if label.X != 225 || label.Y != 190 || label.Text != "1" {
		t.Errorf("expected label 1 at (225, 190), got %q at (%v, %v)", label.Text, label.X, label.Y)
	}
}

func TestBadgeShowsNeighborCount(t *testing.T) {
	p := newPipeline(t)
	f := p.Render(Input{Topology: library(t, domain.TopologyStar)})

	for _, c := range f.Layer(LayerBadges) {
		if c.Kind == KindText && c.NodeID == "Hub" {
			if c.Text != "5" {
				t.Errorf("expected hub badge 5, got %s", c.Text)
			}
			return
		}
	}
	t.Error("hub badge not found")
}

func TestRenderSkipsDanglingLinks(t *testing.T) {
	topo := domain.NewTopology("d", "", "",
		[]domain.Node{domain.NewNode("A", 10, 10, "B"), domain.NewNode("B", 60, 10, "A", "Z")},
		[]domain.Link{domain.NewLink("A", "B", 1), domain.NewLink("B", "Z", 1)})

	f := newPipeline(t).Render(Input{Topology: topo})
	if n := len(f.Layer(LayerLinks)); n != 1 {
		t.Errorf("expected 1 link, got %d", n)
	}
}

func TestRenderPathOverlay(t *testing.T) {
	p := newPipeline(t)
	topo := library(t, domain.TopologyLinear)

	tests := []struct {
		name string
		path []string
		want int
	}{
		{"full path", []string{"A", "B", "C", "D"}, 3},
		{"single node", []string{"A"}, 0},
		{"unknown hop", []string{"A", "Q", "C"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := p.Render(Input{Topology: topo, Path: tt.path})
			if got := len(f.Layer(LayerPath)); got != tt.want {
				t.Errorf("expected %d path segments, got %d", tt.want, got)
			}
		})
	}
}

func TestLinkColorCycles(t *testing.T) {
	p := newPipeline(t)
	topo := library(t, domain.TopologyLinear)

	at := func(s clock.Sample) string {
		return p.Render(Input{Topology: topo, Sample: s, Paused: true}).Layer(LayerLinks)[0].Style.Stroke
	}
	if at(0) != "#00d4ff" {
		t.Errorf("expected first palette color at t=0, got %s", at(0))
	}
	if at(0) == at(1.5) {
		t.Error("expected link color to change over the cycle")
	}
}

func TestDetail(t *testing.T) {
	a := domain.NewNode("A", 0, 0, "B")
	a.Routes = domain.RoutingTable{
		"A": domain.Reachable("", 0),
		"B": domain.Reachable("B", 2),
		"C": domain.Unreachable(),
		"D": domain.Reachable("B", 0),
	}
	topo := domain.NewTopology("t", "", "",
		[]domain.Node{a, domain.NewNode("B", 10, 0, "A")},
		[]domain.Link{domain.NewLink("A", "B", 2)})

	d, ok := Detail(topo, "A")
	if !ok {
		t.Fatal("expected detail for A")
	}

	want := []RouteRow{
		{Destination: "A", NextHop: NoHop, Distance: "0", Reachable: true, Self: true},
		{Destination: "B", NextHop: "B", Distance: "2", Reachable: true},
		{Destination: "C", NextHop: NoHop, Distance: Infinity},
		{Destination: "D", NextHop: "B", Distance: "0", Reachable: true},
	}
	if !reflect.DeepEqual(d.Routes, want) {
		t.Errorf("routes = %+v\nwant %+v", d.Routes, want)
	}
	if len(d.Links) != 1 || d.Links[0].Neighbor != "B" || d.Degree != 1 {
		t.Errorf("unexpected links %+v", d.Links)
	}

	if _, ok := Detail(topo, "Z"); ok {
		t.Error("expected no detail for unknown node")
	}
}

func TestRow(t *testing.T) {
	tests := []struct {
		name  string
		dest  string
		route domain.RouteEntry
		want  RouteRow
	}{
		{
			name:  "own row",
			dest:  "A",
			route: domain.Reachable("A", 0),
			want:  RouteRow{Destination: "A", NextHop: NoHop, Distance: "0", Reachable: true, Self: true},
		},
		{
			name:  "zero distance to another node keeps its next hop",
			dest:  "B",
			route: domain.Reachable("B", 0),
			want:  RouteRow{Destination: "B", NextHop: "B", Distance: "0", Reachable: true},
		},
		{
			name:  "direct route without next hop",
			dest:  "C",
			route: domain.Reachable("", 1),
			want:  RouteRow{Destination: "C", NextHop: NoHop, Distance: "1", Reachable: true},
		},
		{
			name:  "unreachable",
			dest:  "D",
			route: domain.Unreachable(),
			want:  RouteRow{Destination: "D", NextHop: NoHop, Distance: Infinity},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Row("A", tt.dest, tt.route); got != tt.want {
				t.Errorf("Row() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSVG(t *testing.T) {
	p := newPipeline(t)
	topo := domain.NewTopology("x", "", "",
		[]domain.Node{domain.NewNode("<A&B>", 100, 100)}, nil)

	out := SVG(p.Render(Input{Topology: topo}))

	for _, want := range []string{
		`<svg width="800" height="400"`,
		`xmlns="http://www.w3.org/2000/svg"`,
		`viewBox="0 0 800 400"`,
		`data-topology="x"`,
		`<circle cx="100" cy="100"`,
		`data-node="&lt;A&amp;B&gt;"`,
		`>&lt;A&amp;B&gt;</text>`,
		`<g class="grid"`,
		"</svg>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
}
