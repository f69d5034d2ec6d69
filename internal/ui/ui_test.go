package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestTable(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	Table(&buf, []string{"Key", "Nodes"}, [][]string{
		{"linear", "4"},
		{"star", "6"},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if lines[0] != "  Key     Nodes" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[2] != "  linear  4" {
		t.Errorf("row = %q", lines[2])
	}
}

func TestTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	Table(&buf, []string{"Key"}, nil)
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestStatusIcon(t *testing.T) {
	color.NoColor = true
	if StatusIcon(true) != "✓" || StatusIcon(false) != "✗" {
		t.Error("unexpected icons")
	}
}
