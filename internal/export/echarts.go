// Package export renders topologies for viewing outside netlens.
package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"netlens/internal/config"
	"netlens/internal/domain"
	"netlens/internal/render"
)

// ECharts writes a standalone HTML page drawing t at its stored positions.
// Node values carry the connection count and link values the weight.
func ECharts(w io.Writer, t *domain.Topology, cfg config.Render) error {
	if t == nil {
		t = domain.Empty()
	}

	page := components.NewPage()
	page.PageTitle = pageTitle(t)
	page.AddCharts(graphBase(t, cfg))

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render echarts page: %w", err)
	}
	return nil
}

func pageTitle(t *domain.Topology) string {
	if t.Name != "" {
		return "netlens - " + t.Name
	}
	return "netlens"
}

func graphBase(t *domain.Topology, cfg config.Render) *charts.Graph {
	nodes := make([]opts.GraphNode, 0, len(t.Nodes))
	for _, n := range t.Nodes {
		nodes = append(nodes, opts.GraphNode{
			Name:       n.ID,
			X:          float32(n.Position.X),
			Y:          float32(n.Position.Y),
			Value:      float32(n.Degree()),
			SymbolSize: 2 * cfg.NodeRadius,
		})
	}

	links := make([]opts.GraphLink, 0, len(t.Links))
	for _, l := range t.Links {
		if !t.Has(l.Source) || !t.Has(l.Target) {
			continue
		}
		links = append(links, opts.GraphLink{
			Source: l.Source,
			Target: l.Target,
			Value:  float32(l.Weight),
		})
	}

	graph := charts.NewGraph()
	graph.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:       pageTitle(t),
			Width:           fmt.Sprintf("%spx", render.FormatNumber(cfg.Width)),
			Height:          fmt.Sprintf("%spx", render.FormatNumber(cfg.Height)),
			BackgroundColor: cfg.Theme.Background,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    t.Name,
			Subtitle: t.Description,
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
	)
	graph.AddSeries(
		"topology",
		nodes,
		links,
		charts.WithGraphChartOpts(
			opts.GraphChart{
				Layout:    "none",
				Draggable: opts.Bool(false),
				Roam:      opts.Bool(true),
			},
		),
		charts.WithLabelOpts(opts.Label{
			Show:     opts.Bool(true),
			Color:    cfg.Theme.Label,
			Position: "inside",
		}),
	)
	return graph
}
