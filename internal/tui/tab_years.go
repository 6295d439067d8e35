package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/mrrcast/internal/cli"
	"github.com/theirongolddev/mrrcast/internal/tui/components"
	"github.com/theirongolddev/mrrcast/internal/tui/theme"
)

func (a App) renderYearsTab(cw int) string {
	t := theme.Active
	years := a.proj.Summary.Years

	revenue := make([]float64, len(years))
	ebt := make([]float64, len(years))
	labels := make([]string, len(years))
	for i, y := range years {
		revenue[i] = y.Revenue
		ebt[i] = y.EBT
		labels[i] = fmt.Sprintf("Y%d", y.Year)
	}

	halves := components.LayoutRow(cw, 2)
	chartH := max(6, min(14, a.contentHeight()-len(years)-8))
	charts := components.CardRow([]string{
		components.ContentCard("Subscription revenue by year",
			components.BarChart(revenue, labels, components.CardInnerWidth(halves[0]), chartH), halves[0]),
		components.ContentCard("EBT by year",
			components.BarChart(ebt, labels, components.CardInnerWidth(halves[1]), chartH), halves[1]),
	})

	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)

	var b strings.Builder
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%-6s %10s %12s %12s %12s %14s",
		"Year", "New subs", "Revenue", "Marketing", "EBT", "Ending cash")))
	for _, y := range years {
		b.WriteString("\n")
		b.WriteString(valueStyle.Render(fmt.Sprintf("%-6s %10s %12s %12s ",
			fmt.Sprintf("Y%d", y.Year), cli.FormatCount(y.NewSubs), cli.FormatMoney(y.Revenue), cli.FormatMoney(y.Marketing))))
		b.WriteString(lipgloss.NewStyle().Foreground(t.Signed(y.EBT)).Render(fmt.Sprintf("%12s", cli.FormatMoney(y.EBT))))
		b.WriteString(lipgloss.NewStyle().Foreground(t.Signed(y.EndingCash)).Render(fmt.Sprintf(" %14s", cli.FormatMoney(y.EndingCash))))
	}
	totals := components.ContentCard("Yearly totals", b.String(), cw)

	return charts + "\n" + totals
}
