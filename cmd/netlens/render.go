package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"netlens/internal/clock"
	"netlens/internal/interact"
	"netlens/internal/render"
)

func renderCmd(root *rootOptions) *cobra.Command {
	var (
		src        topologySource
		out        string
		at         float64
		selected   string
		paused     bool
		animateAll bool
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one frame of a topology as SVG",
		Long: "Render one frame of a topology. The frame is a pure function of the\n" +
			"topology, the selection and the animation time given with --at.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, log, err := root.load()
			if err != nil {
				return err
			}
			t, _, err := src.load(cmd.Context(), log)
			if err != nil {
				return err
			}

			pipeline, err := render.New(cfg.Render)
			if err != nil {
				return err
			}

			in := render.Input{
				Topology:   t,
				Sample:     clock.Sample(at),
				Paused:     paused,
				AnimateAll: animateAll || cfg.Render.AnimateAll,
			}
			if selected != "" {
				if !t.Has(selected) {
					return fmt.Errorf("node %q is not in topology %q", selected, t.Key)
				}
				in.Selection = interact.Select(selected)
			}
			frame := pipeline.Render(in)

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				w = f
			}

			if asJSON {
				return writeFrameJSON(w, frame)
			}
			return render.WriteSVG(w, frame)
		},
	}

	src.bind(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "-", "Output file, - for stdout")
	cmd.Flags().Float64Var(&at, "at", 0, "Animation time in seconds")
	cmd.Flags().StringVar(&selected, "select", "", "Selected node id")
	cmd.Flags().BoolVar(&paused, "paused", false, "Render the paused state")
	cmd.Flags().BoolVar(&animateAll, "animate-all", false, "Pulse every node")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Write the command list as JSON instead of SVG")
	return cmd
}
