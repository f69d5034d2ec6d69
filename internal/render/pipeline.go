// Package render composes diagram frames as a list of drawing commands and
// turns them into SVG.
//
// A Pipeline is a pure function of its Input: the same topology, selection,
// sample and flags always produce the same Frame.
package render

import (
	"fmt"
	"math"
	"strconv"

	"netlens/internal/clock"
	"netlens/internal/config"
	"netlens/internal/domain"
	"netlens/internal/interact"
)

const (
	labelFontSize  = 14
	weightFontSize = 12
	badgeFontSize  = 10
	labelBaseline  = 5
	badgeBaseline  = 4
	markerStagger  = 0.5
)

// Input is everything one frame depends on
type Input struct {
	Topology   *domain.Topology
	Selection  interact.Selection
	Sample     clock.Sample
	Paused     bool
	AnimateAll bool
	Path       []string
}

// Pipeline renders frames with a fixed set of visual constants
type Pipeline struct {
	cfg     config.Render
	palette []clock.RGB
}

// New validates cfg and builds a pipeline
func New(cfg config.Render) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	palette, err := clock.ParsePalette(cfg.Theme.LinkPalette)
	if err != nil {
		return nil, fmt.Errorf("render: link palette: %w", err)
	}
	return &Pipeline{cfg: cfg, palette: palette}, nil
}

// Config returns the constants the pipeline was built with
func (p *Pipeline) Config() config.Render {
	return p.cfg
}

// Render composes one frame. Links whose endpoints are missing from the
// topology are skipped.
func (p *Pipeline) Render(in Input) Frame {
	t := in.Topology
	if t == nil {
		t = domain.Empty()
	}
	selected, _ := in.Selection.ID()

	f := Frame{
		Width:      p.cfg.Width,
		Height:     p.cfg.Height,
		Background: p.cfg.Theme.Background,
		Topology:   t.Key,
		Digest:     domain.Digest(t),
		Selected:   selected,
		Sample:     in.Sample.Seconds(),
		Paused:     in.Paused,
		Commands:   make([]Command, 0, 1+len(t.Links)*3+len(t.Nodes)*6),
	}

	f.Commands = append(f.Commands, p.grid())

	links := drawable(t)
	linkColor := clock.CycleColor(in.Sample, p.cfg.ColorPeriod, p.palette).Hex()
	dashOffset := clock.DashOffset(in.Sample, p.cfg.DashPeriod, p.cfg.DashLength)

	for _, dl := range links {
		f.Commands = append(f.Commands, p.link(dl, in.Selection, linkColor, dashOffset))
	}
	for _, dl := range links {
		f.Commands = append(f.Commands, p.weightLabel(dl))
	}
	if !in.Paused {
		for i, dl := range links {
			f.Commands = append(f.Commands, p.marker(dl, in.Sample+clock.Sample(float64(i)*markerStagger), linkColor))
		}
	}
	f.Commands = append(f.Commands, p.path(t, in.Path)...)

	for _, n := range t.Nodes {
		scale := 1.0
		if in.AnimateAll || in.Selection.Is(n.ID) {
			scale = clock.Pulse(in.Sample, p.cfg.PulseFrequency, p.cfg.PulseAmplitude)
		}
		f.Commands = append(f.Commands, p.node(n, in.Selection.Is(n.ID), scale)...)
	}
	for _, n := range t.Nodes {
		f.Commands = append(f.Commands, p.nodeLabel(n))
	}
	for _, n := range t.Nodes {
		f.Commands = append(f.Commands, p.badge(n)...)
	}
	return f
}

type drawableLink struct {
	link     domain.Link
	src, dst domain.Position
}

func drawable(t *domain.Topology) []drawableLink {
	out := make([]drawableLink, 0, len(t.Links))
	for _, l := range t.Links {
		src, dst, ok := t.Endpoints(l)
		if !ok {
			continue
		}
		out = append(out, drawableLink{link: l, src: src.Position, dst: dst.Position})
	}
	return out
}

func (p *Pipeline) grid() Command {
	return Command{
		Kind:  KindGrid,
		Layer: LayerGrid,
		W:     p.cfg.Width,
		H:     p.cfg.Height,
		Pitch: p.cfg.GridPitch,
		Style: Style{Stroke: p.cfg.Theme.Grid, Width: 1, Opacity: 1},
	}
}

func (p *Pipeline) link(dl drawableLink, sel interact.Selection, color string, dashOffset float64) Command {
	style := Style{
		Stroke:     color,
		Width:      p.cfg.LinkWidth,
		Opacity:    0.8,
		Dash:       []float64{p.cfg.DashLength / 2, p.cfg.DashLength / 2},
		DashOffset: dashOffset,
	}
	if sel.Is(dl.link.Source) || sel.Is(dl.link.Target) {
		style.Stroke = p.cfg.Theme.Highlight
		style.Width = p.cfg.SelectedLinkWidth
		style.Opacity = 1
	}
	return Command{
		Kind:  KindLine,
		Layer: LayerLinks,
		X:     dl.src.X,
		Y:     dl.src.Y,
		X2:    dl.dst.X,
		Y2:    dl.dst.Y,
		Style: style,
	}
}

// weightLabel sits on the midpoint, pushed along the normal that points up
// the screen (toward smaller y)
func (p *Pipeline) weightLabel(dl drawableLink) Command {
	mid := dl.src.Midpoint(dl.dst)
	nx, ny := 0.0, -1.0
	if d := dl.src.Distance(dl.dst); d > 0 {
		nx, ny = -(dl.dst.Y-dl.src.Y)/d, (dl.dst.X-dl.src.X)/d
		if ny > 0 || (ny == 0 && nx > 0) {
			nx, ny = -nx, -ny
		}
	}
	return Command{
		Kind:  KindText,
		Layer: LayerWeights,
		X:     mid.X + nx*p.cfg.LabelOffset,
		Y:     mid.Y + ny*p.cfg.LabelOffset,
		Text:  FormatNumber(dl.link.Weight),
		Style: Style{
			Fill:       p.cfg.Theme.WeightLabel,
			FontSize:   weightFontSize,
			FontWeight: "bold",
			Anchor:     "middle",
		},
	}
}

func (p *Pipeline) marker(dl drawableLink, t clock.Sample, glow string) Command {
	pos := clock.MarkerPosition(dl.src, dl.dst, clock.MarkerProgress(t, p.cfg.MarkerSpeed))
	return Command{
		Kind:  KindCircle,
		Layer: LayerMarkers,
		X:     pos.X,
		Y:     pos.Y,
		R:     p.cfg.MarkerRadius,
		Style: Style{
			Fill:      p.cfg.Theme.Marker,
			Opacity:   1,
			Glow:      p.cfg.GlowRadius / 2,
			GlowColor: glow,
		},
	}
}

// path draws consecutive hops of a route; hops naming unknown nodes are skipped
func (p *Pipeline) path(t *domain.Topology, ids []string) []Command {
	if len(ids) < 2 {
		return nil
	}
	var out []Command
	for i := 1; i < len(ids); i++ {
		a, okA := t.Get(ids[i-1])
		b, okB := t.Get(ids[i])
		if !okA || !okB {
			continue
		}
		out = append(out, Command{
			Kind:  KindLine,
			Layer: LayerPath,
			X:     a.Position.X,
			Y:     a.Position.Y,
			X2:    b.Position.X,
			Y2:    b.Position.Y,
			Style: Style{
				Stroke:    p.cfg.Theme.Path,
				Width:     p.cfg.SelectedLinkWidth + 2,
				Opacity:   0.6,
				Glow:      p.cfg.GlowRadius / 2,
				GlowColor: p.cfg.Theme.Path,
			},
		})
	}
	return out
}

func (p *Pipeline) node(n domain.Node, selected bool, scale float64) []Command {
	r := p.cfg.NodeRadius * scale
	outer := Style{Fill: p.cfg.Theme.NodeFill, Opacity: 1}
	border := Style{Stroke: p.cfg.Theme.NodeBorder, Fill: "none", Width: 2, Opacity: 1}
	if scale != 1 {
		outer.Glow = p.cfg.GlowRadius * scale
		outer.GlowColor = p.cfg.Theme.NodeBorder
	}
	if selected {
		outer.GlowColor = p.cfg.Theme.Highlight
		border.Stroke = p.cfg.Theme.Highlight
		border.Width = 3
	}

	at := func(radius float64, s Style) Command {
		return Command{
			Kind:   KindCircle,
			Layer:  LayerNodes,
			NodeID: n.ID,
			X:      n.Position.X,
			Y:      n.Position.Y,
			R:      radius,
			Style:  s,
		}
	}
	return []Command{
		at(r, outer),
		at(r*p.cfg.InnerRatio, Style{Fill: p.cfg.Theme.NodeInner, Opacity: 1}),
		at(r, border),
	}
}

func (p *Pipeline) nodeLabel(n domain.Node) Command {
	return Command{
		Kind:   KindText,
		Layer:  LayerLabels,
		NodeID: n.ID,
		X:      n.Position.X,
		Y:      n.Position.Y + labelBaseline,
		Text:   n.ID,
		Style: Style{
			Fill:       p.cfg.Theme.Label,
			FontSize:   labelFontSize,
			FontWeight: "bold",
			Anchor:     "middle",
		},
	}
}

func (p *Pipeline) badge(n domain.Node) []Command {
	x := n.Position.X + p.cfg.BadgeOffset
	y := n.Position.Y - p.cfg.BadgeOffset
	return []Command{
		{
			Kind:   KindCircle,
			Layer:  LayerBadges,
			NodeID: n.ID,
			X:      x,
			Y:      y,
			R:      p.cfg.BadgeRadius,
			Style:  Style{Fill: p.cfg.Theme.Badge, Stroke: p.cfg.Theme.BadgeBorder, Width: 1, Opacity: 1},
		},
		{
			Kind:   KindText,
			Layer:  LayerBadges,
			NodeID: n.ID,
			X:      x,
			Y:      y + badgeBaseline,
			Text:   strconv.Itoa(n.Degree()),
			Style: Style{
				Fill:       p.cfg.Theme.Label,
				FontSize:   badgeFontSize,
				FontWeight: "bold",
				Anchor:     "middle",
			},
		},
	}
}

// FormatNumber prints weights and distances without trailing zeros
func FormatNumber(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return Infinity
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
