package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/mrrcast/internal/cli"
	"github.com/theirongolddev/mrrcast/internal/tui/theme"
)

// Sparkline renders a colored sparkline scaled between the series minimum
// and maximum.
func Sparkline(values []float64, color lipgloss.Color) string {
	style := lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface)
	return style.Render(cli.RenderSparkline(values))
}

// BarChart renders one bar per value around a zero baseline: gains rise above
// the axis in the Positive color and losses hang below it in Negative. Each
// side is scaled to its own extreme. Falls back to a sparkline when the
// bars do not fit.
func BarChart(values []float64, labels []string, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active
	if width < 15 || height < 2 {
		return Sparkline(values, t.Accent)
	}

	top, bottom := 0.0, 0.0
	for _, v := range values {
		top = max(top, v)
		bottom = min(bottom, v)
	}
	if top == 0 && bottom == 0 {
		top = 1
	}

	above := int(math.Round(float64(height) * top / (top - bottom)))
	switch {
	case top > 0 && above == 0:
		above = 1
	case bottom < 0 && above == height:
		above = height - 1
	}
	below := height - above

	topLabel, bottomLabel := formatChartLabel(top), ""
	if below > 0 {
		bottomLabel = formatChartLabel(bottom)
	}
	yLabelW := max(4, len(topLabel)+1, len(bottomLabel)+1)

	n := len(values)
	chartW := width - yLabelW - 1
	gap := 0
	barW := chartW
	if n > 1 {
		gap = 1
		barW = (chartW - (n - 1)) / n
	}
	if barW < 1 {
		return Sparkline(values, t.Accent)
	}
	barW = min(barW, 6)
	axisLen := n*barW + (n-1)*gap

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)
	upStyle := lipgloss.NewStyle().Foreground(t.Positive).Background(t.Surface)
	downStyle := lipgloss.NewStyle().Foreground(t.Negative).Background(t.Surface)

	var b strings.Builder
	writeRow := func(label string, filled func(v float64) bool, style lipgloss.Style) {
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, label)))
		b.WriteString(axisStyle.Render("│"))
		for i, v := range values {
			if i > 0 && gap > 0 {
				b.WriteString(blank.Render(strings.Repeat(" ", gap)))
			}
			if filled(v) {
				b.WriteString(style.Render(strings.Repeat("█", barW)))
			} else {
				b.WriteString(blank.Render(strings.Repeat(" ", barW)))
			}
		}
	}

	for r := above; r >= 1; r-- {
		label := ""
		if r == above {
			label = topLabel
		}
		threshold := (float64(r) - 0.5) * top / float64(above)
		writeRow(label, func(v float64) bool { return v > 0 && v >= threshold }, upStyle)
		b.WriteString("\n")
	}

	corner := "└"
	if below > 0 {
		corner = "┼"
	}
	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, "0")))
	b.WriteString(axisStyle.Render(corner))
	b.WriteString(axisStyle.Render(strings.Repeat("─", axisLen)))

	for r := 1; r <= below; r++ {
		b.WriteString("\n")
		label := ""
		if r == below {
			label = bottomLabel
		}
		threshold := (float64(r) - 0.5) * -bottom / float64(below)
		writeRow(label, func(v float64) bool { return v < 0 && -v >= threshold }, downStyle)
	}

	if len(labels) == n {
		buf := []byte(strings.Repeat(" ", axisLen))
		lastEnd := -1
		for i, lbl := range labels {
			pos := i * (barW + gap)
			if pos <= lastEnd || pos >= axisLen {
				continue
			}
			end := min(pos+len(lbl), axisLen)
			copy(buf[pos:end], lbl[:end-pos])
			lastEnd = end
		}
		b.WriteString("\n")
		b.WriteString(blank.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(axisStyle.Render(strings.TrimRight(string(buf), " ")))
	}

	return b.String()
}

func formatChartLabel(v float64) string {
	if v < 0 {
		return "-" + formatChartLabel(-v)
	}
	if v < 1 {
		return fmt.Sprintf("%.2f", v)
	}
	if v == math.Trunc(v) && v < 1000 {
		return fmt.Sprintf("%.0f", v)
	}
	return cli.FormatCompact(v)
}
