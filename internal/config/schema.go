package config

import (
	"fmt"
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version  int            `yaml:"version"`
	Topology string         `yaml:"topology"` // initial library key
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Remote   RemoteConfig   `yaml:"remote"`
	Render   Render         `yaml:"render"`
	Logging  LoggingConfig  `yaml:"logging"`
	Watch    WatchConfig    `yaml:"watch"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Addr         string   `yaml:"addr"`
	ReadTimeout  Duration `yaml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"`
	IdleTimeout  Duration `yaml:"idle_timeout"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// RemoteConfig points at the simulation service. An empty BaseURL means the
// canonical library is authoritative and no remote calls are made.
type RemoteConfig struct {
	BaseURL      string   `yaml:"base_url"`
	Timeout      Duration `yaml:"timeout"`
	PollInterval Duration `yaml:"poll_interval"` // 0 = refresh on demand only
}

// LoggingConfig selects the log handler
type LoggingConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	AddSource bool   `yaml:"add_source"`
}

// WatchConfig lists topology files to hot-swap on change
type WatchConfig struct {
	Files    []string `yaml:"files,omitempty"`
	Debounce Duration `yaml:"debounce"`
}

// Render holds every visual constant of the diagram. Periods and frequencies are
// expressed in clock time units (seconds).
type Render struct {
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
	GridPitch  float64 `yaml:"grid_pitch"`
	NodeRadius float64 `yaml:"node_radius"`
	HitRadius  float64 `yaml:"hit_radius"` // 0 = NodeRadius
	InnerRatio float64 `yaml:"inner_ratio"`

	BadgeOffset float64 `yaml:"badge_offset"`
	BadgeRadius float64 `yaml:"badge_radius"`
	LabelOffset float64 `yaml:"label_offset"`

	LinkWidth         float64 `yaml:"link_width"`
	SelectedLinkWidth float64 `yaml:"selected_link_width"`
	DashPeriod        float64 `yaml:"dash_period"`
	DashLength        float64 `yaml:"dash_length"`
	ColorPeriod       float64 `yaml:"color_period"`

	PulseFrequency float64 `yaml:"pulse_frequency"` // angular, rad per time unit
	PulseAmplitude float64 `yaml:"pulse_amplitude"`
	GlowRadius     float64 `yaml:"glow_radius"`

	MarkerSpeed  float64 `yaml:"marker_speed"`
	MarkerRadius float64 `yaml:"marker_radius"`

	FrameInterval Duration `yaml:"frame_interval"`
	AnimateAll    bool     `yaml:"animate_all"`

	Theme Theme `yaml:"theme"`
}

// Theme holds colors as CSS color strings
type Theme struct {
	Background  string   `yaml:"background"`
	Grid        string   `yaml:"grid"`
	LinkPalette []string `yaml:"link_palette"` // three colors cycled on link strokes
	Highlight   string   `yaml:"highlight"`
	NodeFill    string   `yaml:"node_fill"`
	NodeInner   string   `yaml:"node_inner"`
	NodeBorder  string   `yaml:"node_border"`
	Label       string   `yaml:"label"`
	WeightLabel string   `yaml:"weight_label"`
	Badge       string   `yaml:"badge"`
	BadgeBorder string   `yaml:"badge_border"`
	Marker      string   `yaml:"marker"`
	Path        string   `yaml:"path"`
}

// EffectiveHitRadius returns the pointer hit radius
func (r Render) EffectiveHitRadius() float64 {
	if r.HitRadius > 0 {
		return r.HitRadius
	}
	return r.NodeRadius
}

// Validate rejects settings the renderer cannot draw
func (r Render) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("render: canvas must be positive, got %gx%g", r.Width, r.Height)
	}
	if r.NodeRadius <= 0 {
		return fmt.Errorf("render: node_radius must be positive, got %g", r.NodeRadius)
	}
	if r.DashPeriod <= 0 || r.ColorPeriod <= 0 {
		return fmt.Errorf("render: dash_period and color_period must be positive")
	}
	if r.PulseAmplitude < 0 || r.PulseAmplitude >= 1 {
		return fmt.Errorf("render: pulse_amplitude must be in [0,1), got %g", r.PulseAmplitude)
	}
	if len(r.Theme.LinkPalette) != 3 {
		return fmt.Errorf("render: link_palette needs 3 colors, got %d", len(r.Theme.LinkPalette))
	}
	if r.FrameInterval.Duration() <= 0 {
		return fmt.Errorf("render: frame_interval must be positive")
	}
	return nil
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
