package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	color.NoColor = true

	cfgPath := filepath.Join(t.TempDir(), "netlens.yaml")
	if err := os.WriteFile(cfgPath, []byte("version: 1\nlogging:\n  level: error\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	if err := cmd.Execute(); err != nil {
		t.Fatalf("netlens %v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestRenderCommand(t *testing.T) {
	out := run(t, "render", "-t", "star", "--select", "Hub", "--paused")
	if !strings.Contains(out, "<svg") || !strings.Contains(out, `data-topology="star"`) {
		t.Errorf("unexpected output: %.80s", out)
	}
}

func TestRenderRejectsUnknownSelection(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"render", "--select", "nope"})
	if err := cmd.Execute(); err == nil {
		t.Error("expected error for unknown node")
	}
}

func TestStatsCommand(t *testing.T) {
	out := run(t, "stats", "-t", "linear", "--node", "A")
	for _, want := range []string{"Linear Network", "Nodes", "Average degree", "1.50"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestStatsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "net.json")
	body := `{"key":"lab","nodes":[{"id":"A","x":0,"y":0},{"id":"B","x":10,"y":0}],
		"links":[{"source":"A","target":"B","distance":7},{"source":"A","target":"Z"}]}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	out := run(t, "stats", "-f", path)
	if !strings.Contains(out, "1 element(s) dropped") {
		t.Errorf("drop report missing:\n%s", out)
	}
	if !strings.Contains(out, "7") {
		t.Errorf("max weight missing:\n%s", out)
	}
}

func TestTopologiesCommand(t *testing.T) {
	out := run(t, "topologies")
	for _, key := range []string{"linear", "star", "mesh", "tree"} {
		if !strings.Contains(out, key) {
			t.Errorf("output missing %q", key)
		}
	}
}

func TestExportCommand(t *testing.T) {
	out := run(t, "export", "-t", "mesh", "--format", "toml")
	if !strings.Contains(out, "[[nodes]]") {
		t.Errorf("toml export missing nodes:\n%s", out)
	}
}
