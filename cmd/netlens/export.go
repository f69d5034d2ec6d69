package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"netlens/internal/codec"
	"netlens/internal/export"
	"netlens/internal/render"
)

func exportCmd(root *rootOptions) *cobra.Command {
	var (
		src    topologySource
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Convert a topology to json, yaml, toml or an echarts HTML page",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, log, err := root.load()
			if err != nil {
				return err
			}
			t, _, err := src.load(cmd.Context(), log)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				w = f
			}

			if format == "echarts" || format == "html" {
				return export.ECharts(w, t, cfg.Render)
			}
			c, err := codec.ForFormat(format)
			if err != nil {
				return err
			}
			return c.Encode(codec.FromTopology(t), w)
		},
	}

	src.bind(cmd)
	cmd.Flags().StringVar(&format, "format", "yaml", "Output format: json, yaml, toml or echarts")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "Output file, - for stdout")
	return cmd
}

func writeFrameJSON(w io.Writer, f render.Frame) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(f)
}
