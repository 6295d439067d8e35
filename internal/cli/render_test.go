package cli

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func TestRenderTableAlignsColumns(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	out := RenderTable(Table{
		Title:   "Channels",
		Headers: []string{"Channel", "ROI"},
		Rows: [][]string{
			{"SEM", "6.69x"},
			{"---"},
			{"Affiliate", "∞"},
		},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 8 {
		t.Fatalf("got %d lines, want 8:\n%s", len(lines), out)
	}
	width := lipgloss.Width(lines[1])
	for i, line := range lines[1:] {
		if w := lipgloss.Width(line); w != width {
			t.Fatalf("line %d width %d, want %d:\n%s", i+1, w, width, out)
		}
	}
	if !strings.Contains(lines[4], "│ SEM       │ 6.69x │") {
		t.Fatalf("unexpected row layout: %q", lines[4])
	}
	if !strings.Contains(lines[6], "│     ∞ │") {
		t.Fatalf("unicode cell not right-aligned: %q", lines[6])
	}
}

func TestRenderTableEmpty(t *testing.T) {
	if got := RenderTable(Table{}); got != "" {
		t.Fatalf("RenderTable(empty) = %q", got)
	}
}

func TestRenderSparklineHandlesNegatives(t *testing.T) {
	got := []rune(RenderSparkline([]float64{-100, -50, 0, 50, 100}))
	if len(got) != 5 {
		t.Fatalf("len = %d, want 5", len(got))
	}
	if got[0] != '▁' || got[4] != '█' {
		t.Fatalf("sparkline = %q, want lowest first and highest last", string(got))
	}
	if flat := RenderSparkline([]float64{3, 3}); flat != "▁▁" {
		t.Fatalf("flat sparkline = %q", flat)
	}
}

func TestRenderKeyValues(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	out := RenderKeyValues([][2]string{{"LTV", "$200.00"}, {"Peak funding", "$77,900"}})
	if !strings.Contains(out, "  LTV           $200.00\n") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}
