package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"netlens/internal/domain"
	"netlens/internal/render"
	"netlens/internal/stats"
	"netlens/internal/ui"
)

func statsCmd(root *rootOptions) *cobra.Command {
	var (
		src    topologySource
		node   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show topology statistics and node routing tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, log, err := root.load()
			if err != nil {
				return err
			}
			t, report, err := src.load(cmd.Context(), log)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			summary := stats.Compute(t)
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}

			ui.Banner(out, title(t))
			printSummary(out, summary)

			if !report.Clean() {
				fmt.Fprintln(out)
				ui.Warn.Fprintf(out, "  %d element(s) dropped while loading\n", len(report.Dropped))
				for _, de := range report.Dropped {
					fmt.Fprintf(out, "    %s %s\n", ui.StatusIcon(false), de.Error())
				}
			}

			if node == "" {
				return nil
			}
			detail, ok := render.Detail(t, node)
			if !ok {
				return fmt.Errorf("node %q is not in topology %q", node, t.Key)
			}
			fmt.Fprintln(out)
			printDetail(out, detail)
			return nil
		},
	}

	src.bind(cmd)
	cmd.Flags().StringVarP(&node, "node", "n", "", "Show the routing table of this node")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")
	return cmd
}

func title(t *domain.Topology) string {
	if t.Name != "" {
		return t.Name
	}
	return t.Key
}

func printSummary(w io.Writer, s stats.Summary) {
	ui.Table(w, []string{"Metric", "Value"}, [][]string{
		{"Nodes", fmt.Sprint(s.NodeCount)},
		{"Links", fmt.Sprint(s.LinkCount)},
		{"Average degree", fmt.Sprintf("%.2f", s.AverageDegree)},
		{"Max weight", render.FormatNumber(s.MaxWeight)},
	})
}

func printDetail(w io.Writer, d render.NodeDetail) {
	ui.Brand.Fprintf(w, "  Node %s", d.ID)
	fmt.Fprintf(w, " at (%s, %s), %d connection(s)\n\n",
		render.FormatNumber(d.Position.X), render.FormatNumber(d.Position.Y), d.Degree)

	if len(d.Routes) == 0 {
		ui.Subtle.Fprintln(w, "  No routing table")
		return
	}
	rows := make([][]string, 0, len(d.Routes))
	for _, r := range d.Routes {
		rows = append(rows, []string{r.Destination, r.NextHop, r.Distance})
	}
	ui.Table(w, []string{"Destination", "Next hop", "Distance"}, rows)
}
