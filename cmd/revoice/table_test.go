package main

import (
	"strings"
	"testing"
)

func TestRenderTableRightAlignsRequestedColumns(t *testing.T) {
	out := renderTable(
		[]string{"ID", "Status"},
		[][]string{{"5", "completed"}, {"12", "failed"}},
		1,
	)
	for _, fragment := range []string{"ID", "Status", "completed", "failed"} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("table missing %q:\n%s", fragment, out)
		}
	}
	// Right alignment pads the narrow ID up to the widest value in the column.
	if !strings.Contains(out, "  5 ") {
		t.Fatalf("ID column should be right-aligned:\n%s", out)
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable(
		[]string{"Tool", "Detail"},
		[][]string{{"python"}},
	)
	if !strings.Contains(out, "python") {
		t.Fatalf("table missing row value:\n%s", out)
	}
}

func TestRenderTableEmptyHeaders(t *testing.T) {
	if out := renderTable(nil, nil); out != "" {
		t.Fatalf("expected empty render, got %q", out)
	}
}
