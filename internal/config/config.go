// Package config provides configuration management for netlens.
//
// Config file locations (priority order):
//  1. $NETLENS_CONFIG
//  2. ./netlens.yaml
//  3. $XDG_CONFIG_HOME/netlens/config.yaml
//  4. ~/.config/netlens/config.yaml
//  5. /etc/netlens/config.yaml
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// Parse decodes YAML config bytes and applies defaults
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Render.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// DefaultRender returns the renderer defaults: an 800x400 canvas with a 40px
// grid and 25px nodes
func DefaultRender() Render {
	var r Render
	r.applyDefaults()
	return r
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Topology == "" {
		c.Topology = "linear"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(10 * time.Second)
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = Duration(30 * time.Second)
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = Duration(60 * time.Second)
	}
	if c.Database.Path == "" {
		c.Database.Path = "./netlens.db"
	}
	if c.Remote.Timeout == 0 {
		c.Remote.Timeout = Duration(5 * time.Second)
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = Duration(500 * time.Millisecond)
	}
	c.Render.applyDefaults()
}

func (r *Render) applyDefaults() {
	setDefault(&r.Width, 800)
	setDefault(&r.Height, 400)
	setDefault(&r.GridPitch, 40)
	setDefault(&r.NodeRadius, 25)
	setDefault(&r.InnerRatio, 0.6)
	setDefault(&r.BadgeOffset, 20)
	setDefault(&r.BadgeRadius, 8)
	setDefault(&r.LabelOffset, 10)
	setDefault(&r.LinkWidth, 3)
	setDefault(&r.SelectedLinkWidth, 5)
	setDefault(&r.DashPeriod, 2)
	setDefault(&r.DashLength, 10)
	setDefault(&r.ColorPeriod, 3)
	setDefault(&r.PulseFrequency, 4)
	setDefault(&r.PulseAmplitude, 0.15)
	setDefault(&r.GlowRadius, 12)
	setDefault(&r.MarkerSpeed, 2)
	setDefault(&r.MarkerRadius, 4)
	if r.FrameInterval == 0 {
		r.FrameInterval = Duration(time.Second / 30)
	}

	t := &r.Theme
	setColor(&t.Background, "#0a0e27")
	setColor(&t.Grid, "rgba(255,255,255,0.1)")
	if len(t.LinkPalette) == 0 {
		t.LinkPalette = []string{"#00d4ff", "#ff6b6b", "#ffe66d"}
	}
	setColor(&t.Highlight, "#ffe66d")
	setColor(&t.NodeFill, "rgba(0,150,180,0.8)")
	setColor(&t.NodeInner, "rgba(0,212,255,0.3)")
	setColor(&t.NodeBorder, "rgba(0,212,255,0.8)")
	setColor(&t.Label, "#ffffff")
	setColor(&t.WeightLabel, "rgba(255,230,109,0.9)")
	setColor(&t.Badge, "rgba(255,107,107,0.8)")
	setColor(&t.BadgeBorder, "#ffffff")
	setColor(&t.Marker, "#ffffff")
	setColor(&t.Path, "#7cff6b")
}

func setDefault(v *float64, def float64) {
	if *v == 0 {
		*v = def
	}
}

func setColor(v *string, def string) {
	if *v == "" {
		*v = def
	}
}
