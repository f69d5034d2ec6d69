package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"netlens/internal/codec"
	"netlens/internal/domain"
	"netlens/internal/loader"
	"netlens/internal/logging"
	"netlens/internal/stats"
	"netlens/internal/ui"
)

func topologiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "topologies",
		Aliases: []string{"ls"},
		Short:   "List the canonical topology library",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			ui.Banner(out, "topology library")

			headers := []string{"Key", "Name", "Nodes", "Links", "Description"}
			var rows [][]string
			for _, t := range domain.Library() {
				rows = append(rows, []string{
					t.Key,
					t.Name,
					fmt.Sprint(stats.NodeCount(t)),
					fmt.Sprint(stats.LinkCount(t)),
					t.Description,
				})
			}
			ui.Table(out, headers, rows)
		},
	}
}

// topologySource names a topology by library key or by file
type topologySource struct {
	key  string
	file string
}

func (s *topologySource) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&s.key, "topology", "t", domain.TopologyLinear, "Library topology key")
	cmd.Flags().StringVarP(&s.file, "file", "f", "", "Topology file (.json, .yaml, .toml); overrides --topology")
}

func (s *topologySource) load(ctx context.Context, log logging.Logger) (*domain.Topology, *loader.Report, error) {
	ld := loader.New(log)
	if s.file == "" {
		return ld.LoadWithReport(ctx, loader.LibraryKey(s.key))
	}

	c, err := codec.ForPath(s.file)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(s.file)
	if err != nil {
		return nil, nil, fmt.Errorf("open topology file: %w", err)
	}
	defer f.Close()

	raw, err := c.Decode(f)
	if err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", s.file, err)
	}
	return ld.LoadWithReport(ctx, loader.Raw(raw))
}
