package render

import "fmt"

// Kind is the drawing primitive of a Command
type Kind string

const (
	KindGrid   Kind = "grid"
	KindLine   Kind = "line"
	KindCircle Kind = "circle"
	KindText   Kind = "text"
)

// Layer orders commands back to front
type Layer int

const (
	LayerGrid Layer = iota
	LayerLinks
	LayerWeights
	LayerMarkers
	LayerPath
	LayerNodes
	LayerLabels
	LayerBadges
)

var layerNames = [...]string{"grid", "links", "weights", "markers", "path", "nodes", "labels", "badges"}

func (l Layer) String() string {
	if l < 0 || int(l) >= len(layerNames) {
		return fmt.Sprintf("layer(%d)", int(l))
	}
	return layerNames[l]
}

// MarshalText encodes the layer by name
func (l Layer) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText decodes a layer name
func (l *Layer) UnmarshalText(b []byte) error {
	for i, name := range layerNames {
		if name == string(b) {
			*l = Layer(i)
			return nil
		}
	}
	return fmt.Errorf("unknown layer %q", b)
}

// Style carries paint attributes. Empty strings and zero values mean "unset".
type Style struct {
	Stroke     string    `json:"stroke,omitempty"`
	Fill       string    `json:"fill,omitempty"`
	Width      float64   `json:"width,omitempty"`
	Opacity    float64   `json:"opacity,omitempty"`
	Dash       []float64 `json:"dash,omitempty"`
	DashOffset float64   `json:"dash_offset,omitempty"`
	Glow       float64   `json:"glow,omitempty"`
	GlowColor  string    `json:"glow_color,omitempty"`
	FontSize   float64   `json:"font_size,omitempty"`
	FontWeight string    `json:"font_weight,omitempty"`
	Anchor     string    `json:"anchor,omitempty"`
}

// Command is one backend-agnostic drawing instruction.
//
//	grid:   W, H, Pitch
//	line:   X, Y to X2, Y2
//	circle: center X, Y and radius R
//	text:   anchor point X, Y and Text
type Command struct {
	Kind   Kind    `json:"kind"`
	Layer  Layer   `json:"layer"`
	NodeID string  `json:"node_id,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	X2     float64 `json:"x2,omitempty"`
	Y2     float64 `json:"y2,omitempty"`
	R      float64 `json:"r,omitempty"`
	W      float64 `json:"w,omitempty"`
	H      float64 `json:"h,omitempty"`
	Pitch  float64 `json:"pitch,omitempty"`
	Text   string  `json:"text,omitempty"`
	Style  Style   `json:"style"`
}

// Frame is a complete picture of one snapshot at one clock sample
type Frame struct {
	Width      float64   `json:"width"`
	Height     float64   `json:"height"`
	Background string    `json:"background"`
	Topology   string    `json:"topology"`
	Digest     string    `json:"digest"`
	Selected   string    `json:"selected,omitempty"`
	Sample     float64   `json:"sample"`
	Paused     bool      `json:"paused"`
	Commands   []Command `json:"commands"`
}

// Layer returns the commands of one layer, in draw order
func (f Frame) Layer(l Layer) []Command {
	var out []Command
	for _, c := range f.Commands {
		if c.Layer == l {
			out = append(out, c)
		}
	}
	return out
}

// Count returns how many commands of a kind the frame holds
func (f Frame) Count(k Kind) int {
	n := 0
	for _, c := range f.Commands {
		if c.Kind == k {
			n++
		}
	}
	return n
}
