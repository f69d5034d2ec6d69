package render

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"math"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo"
)

// WriteSVG writes the frame as a standalone SVG document. Geometry is snapped
// to whole pixels; paint attributes such as dash offsets keep two decimals.
func WriteSVG(w io.Writer, f Frame) error {
	bw := bufio.NewWriter(w)
	canvas := svg.New(bw)

	width, height := px(f.Width), px(f.Height)
	canvas.Start(width, height,
		fmt.Sprintf(`viewBox="0 0 %d %d"`, width, height),
		attr("data-topology", f.Topology),
		attr("data-digest", f.Digest),
	)
	if f.Background != "" {
		canvas.Rect(0, 0, width, height, attr("fill", f.Background))
	}

	for _, c := range f.Commands {
		writeCommand(canvas, c)
	}

	canvas.End()
	return bw.Flush()
}

// SVG renders the frame into a string
func SVG(f Frame) string {
	var b strings.Builder
	_ = WriteSVG(&b, f)
	return b.String()
}

func writeCommand(canvas *svg.SVG, c Command) {
	class := attr("class", c.Layer.String())

	switch c.Kind {
	case KindGrid:
		canvas.Group(append([]string{class}, paint(c.Style, false)...)...)
		if c.Pitch > 0 {
			w, h := px(c.W), px(c.H)
			for x := 0.0; x <= c.W; x += c.Pitch {
				canvas.Line(px(x), 0, px(x), h)
			}
			for y := 0.0; y <= c.H; y += c.Pitch {
				canvas.Line(0, px(y), w, px(y))
			}
		}
		canvas.Gend()
	case KindLine:
		canvas.Line(px(c.X), px(c.Y), px(c.X2), px(c.Y2),
			append([]string{class}, paint(c.Style, false)...)...)
	case KindCircle:
		canvas.Circle(px(c.X), px(c.Y), px(c.R),
			append(nodeAttrs(class, c.NodeID), paint(c.Style, true)...)...)
	case KindText:
		canvas.Text(px(c.X), px(c.Y), c.Text,
			append(nodeAttrs(class, c.NodeID), paint(c.Style, true)...)...)
	}
}

func nodeAttrs(class, id string) []string {
	if id == "" {
		return []string{class}
	}
	return []string{class, attr("data-node", id)}
}

// attr formats one escaped attribute. svgo passes strings containing "=" through
// as attributes and wraps anything else in style="".
func attr(name, value string) string {
	return name + `="` + html.EscapeString(value) + `"`
}

// paint converts a style into SVG presentation attributes. Unfilled shapes
// get fill="none" so strokes do not render as solid black.
func paint(s Style, fillable bool) []string {
	var out []string

	if s.Stroke != "" {
		out = append(out, attr("stroke", s.Stroke))
	}
	switch {
	case s.Fill != "":
		out = append(out, attr("fill", s.Fill))
	case !fillable:
		out = append(out, attr("fill", "none"))
	}
	if s.Width > 0 {
		out = append(out, attr("stroke-width", num(s.Width)))
	}
	if s.Opacity > 0 && s.Opacity < 1 {
		out = append(out, attr("opacity", num(s.Opacity)))
	}
	if len(s.Dash) > 0 {
		parts := make([]string, len(s.Dash))
		for i, d := range s.Dash {
			parts[i] = num(d)
		}
		out = append(out,
			attr("stroke-dasharray", strings.Join(parts, " ")),
			attr("stroke-dashoffset", num(s.DashOffset)))
	}
	if s.FontSize > 0 {
		out = append(out, attr("font-size", num(s.FontSize)))
	}
	if s.FontWeight != "" {
		out = append(out, attr("font-weight", s.FontWeight))
	}
	if s.Anchor != "" {
		out = append(out, attr("text-anchor", s.Anchor))
	}
	if s.Glow > 0 {
		color := s.GlowColor
		if color == "" {
			color = s.Fill
		}
		out = append(out, attr("style", fmt.Sprintf("filter:drop-shadow(0 0 %spx %s)", num(s.Glow), color)))
	}
	return out
}

func px(v float64) int {
	return int(math.Round(v))
}

// num prints paint values with at most two decimals
func num(v float64) string {
	r := math.Round(v*100) / 100
	if r == 0 {
		r = 0 // drop negative zero
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
