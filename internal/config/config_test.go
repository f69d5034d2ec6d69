package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Server.Addr != ":3000" {
		t.Errorf("Server.Addr = %s, want :3000", cfg.Server.Addr)
	}
	if cfg.Topology != "linear" {
		t.Errorf("Topology = %s, want linear", cfg.Topology)
	}
	if cfg.Render.Width != 800 || cfg.Render.Height != 400 {
		t.Errorf("canvas = %gx%g, want 800x400", cfg.Render.Width, cfg.Render.Height)
	}
	if cfg.Render.GridPitch != 40 {
		t.Errorf("GridPitch = %g, want 40", cfg.Render.GridPitch)
	}
	if cfg.Render.EffectiveHitRadius() != cfg.Render.NodeRadius {
		t.Error("hit radius should default to node radius")
	}
	if err := cfg.Render.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestParseOverridesAndDefaults(t *testing.T) {
	data := []byte(`
topology: mesh
remote:
  base_url: http://localhost:5000
  timeout: 2s
render:
  width: 1024
  hit_radius: 30
  frame_interval: 50ms
  theme:
    link_palette: ["#111111", "#222222", "#333333"]
`)

	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if cfg.Topology != "mesh" {
		t.Errorf("Topology = %s, want mesh", cfg.Topology)
	}
	if cfg.Remote.Timeout.Duration() != 2*time.Second {
		t.Errorf("Remote.Timeout = %s, want 2s", cfg.Remote.Timeout.Duration())
	}
	if cfg.Render.Width != 1024 || cfg.Render.Height != 400 {
		t.Errorf("canvas = %gx%g, want 1024x400", cfg.Render.Width, cfg.Render.Height)
	}
	if cfg.Render.EffectiveHitRadius() != 30 {
		t.Errorf("EffectiveHitRadius = %g, want 30", cfg.Render.EffectiveHitRadius())
	}
	if cfg.Render.FrameInterval.Duration() != 50*time.Millisecond {
		t.Errorf("FrameInterval = %s", cfg.Render.FrameInterval.Duration())
	}
	if cfg.Render.Theme.LinkPalette[2] != "#333333" {
		t.Errorf("LinkPalette = %v", cfg.Render.Theme.LinkPalette)
	}
	if cfg.Render.Theme.Badge == "" {
		t.Error("unset theme colors should get defaults")
	}
}

func TestParseRejectsInvalidRender(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"negative width", "render:\n  width: -5\n"},
		{"pulse amplitude too large", "render:\n  pulse_amplitude: 1.5\n"},
		{"palette too short", "render:\n  theme:\n    link_palette: [\"#fff\"]\n"},
		{"bad duration", "render:\n  frame_interval: soon\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Topology = "tree"
	cfg.Render.AnimateAll = true
	cfg.Watch.Files = []string{"/tmp/topo.yaml"}

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, path, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if path != configPath {
		t.Errorf("path = %s, want %s", path, configPath)
	}
	if loaded.Topology != "tree" {
		t.Errorf("Topology = %s, want tree", loaded.Topology)
	}
	if !loaded.Render.AnimateAll {
		t.Error("AnimateAll should survive a round trip")
	}
	if loaded.Render.FrameInterval != cfg.Render.FrameInterval {
		t.Errorf("FrameInterval = %s, want %s", loaded.Render.FrameInterval.Duration(), cfg.Render.FrameInterval.Duration())
	}
	if len(loaded.Watch.Files) != 1 {
		t.Errorf("Watch.Files = %v", loaded.Watch.Files)
	}
}

func TestFindConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	cfg := DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	if found := FindConfigPath(); found == "" {
		t.Error("FindConfigPath() should find config in working directory")
	}

	// Explicit path doesn't exist, should fall back
	t.Setenv(EnvConfigPath, "/nonexistent/path.yaml")
	if found := FindConfigPath(); found == "" {
		t.Error("FindConfigPath() should fall back when env path doesn't exist")
	}

	explicit := filepath.Join(tmpDir, "explicit.yaml")
	if err := cfg.Save(explicit); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	t.Setenv(EnvConfigPath, explicit)
	if found := FindConfigPath(); found != explicit {
		t.Errorf("FindConfigPath() = %s, want %s", found, explicit)
	}
}

func TestSearchPathsOrder(t *testing.T) {
	t.Setenv(EnvConfigPath, "/srv/netlens.yaml")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	t.Setenv("HOME", "/home/op")

	want := []string{
		"/srv/netlens.yaml",
		"netlens.yaml",
		"/xdg/netlens/config.yaml",
		"/home/op/.config/netlens/config.yaml",
		"/etc/netlens/config.yaml",
	}
	got := SearchPaths()
	if len(got) != len(want) {
		t.Fatalf("SearchPaths() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SearchPaths()[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	t.Setenv(EnvConfigPath, "")
	t.Setenv("XDG_CONFIG_HOME", "")
	if got := SearchPaths(); len(got) != 3 || got[0] != ConfigFileName {
		t.Errorf("SearchPaths() without env = %v", got)
	}
}

func TestDuration(t *testing.T) {
	d := Duration(5 * time.Minute)

	if d.Duration() != 5*time.Minute {
		t.Errorf("Duration() = %s, want 5m", d.Duration())
	}

	marshaled, err := d.MarshalYAML()
	if err != nil {
		t.Fatalf("MarshalYAML() error: %v", err)
	}
	if marshaled != "5m0s" {
		t.Errorf("MarshalYAML() = %v, want 5m0s", marshaled)
	}
}
