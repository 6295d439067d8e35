package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/mrrcast/internal/cli"
	"github.com/theirongolddev/mrrcast/internal/model"
	"github.com/theirongolddev/mrrcast/internal/tui/components"
	"github.com/theirongolddev/mrrcast/internal/tui/theme"
)

// maxLTVRows bounds the cumulative table shown on the payback tab.
const maxLTVRows = 24

func (a App) renderPaybackTab(cw int) string {
	t := theme.Active
	halves := components.LayoutRow(cw, 2)

	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	accentStyle := lipgloss.NewStyle().Foreground(t.Accent)

	// Mark the periods where each channel pays back.
	marks := make(map[int][]string)
	for _, ch := range a.proj.Summary.Channels {
		if ch.Payback.Outcome == model.PaybackMonths {
			marks[ch.Payback.Period] = append(marks[ch.Payback.Period], ch.Name)
		}
	}

	var ltv strings.Builder
	ltv.WriteString(mutedStyle.Render(fmt.Sprintf("%6s %12s %12s", "Period", "Contribution", "Cumulative")))
	table := a.proj.LTVTable
	shown := min(len(table), maxLTVRows)
	for _, period := range table[:shown] {
		ltv.WriteString("\n")
		ltv.WriteString(valueStyle.Render(fmt.Sprintf("%6d %12s %12s", period.Index,
			cli.FormatMoney(period.Contribution), cli.FormatMoney(period.Cumulative))))
		if names := marks[period.Index]; len(names) > 0 {
			ltv.WriteString(accentStyle.Render(" ◂ " + strings.Join(names, ", ")))
		}
	}
	if len(table) > shown {
		ltv.WriteString("\n")
		ltv.WriteString(mutedStyle.Render(fmt.Sprintf("… %d more periods", len(table)-shown)))
	}
	ltvCard := components.ContentCard(
		fmt.Sprintf("Cumulative LTV (%s)", cli.FormatMetric(a.proj.Summary.LTV, cli.FormatMoney)),
		ltv.String(), halves[0])

	var pb strings.Builder
	for i, ch := range a.proj.Summary.Channels {
		if i > 0 {
			pb.WriteString("\n\n")
		}
		pb.WriteString(accentStyle.Bold(true).Render(ch.Name))
		pb.WriteString("\n")
		pb.WriteString(mutedStyle.Render("  CPA      ") + valueStyle.Render(cli.FormatMoney(ch.CPA)))
		pb.WriteString("\n")
		pb.WriteString(mutedStyle.Render("  Payback  ") + valueStyle.Render(cli.FormatPayback(ch.Payback)))
		pb.WriteString("\n")
		pb.WriteString(mutedStyle.Render("  ROI      ") + valueStyle.Render(cli.FormatMetric(ch.ROI, cli.FormatRatio)))
		pb.WriteString("\n")
		pb.WriteString(mutedStyle.Render("  Spend    ") + valueStyle.Render(cli.FormatMoney(ch.Spend)))
	}
	if len(a.proj.Summary.Channels) == 0 {
		pb.WriteString(mutedStyle.Render("no acquisition channels"))
	}
	paybackCard := components.ContentCard("Channel payback", pb.String(), halves[1])

	return components.CardRow([]string{ltvCard, paybackCard})
}
