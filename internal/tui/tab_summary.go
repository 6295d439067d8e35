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

func (a App) renderSummaryTab(cw int) string {
	t := theme.Active
	s := a.proj.Summary
	p := a.proj.Params

	var last model.MonthRow
	if n := len(a.proj.Rows); n > 0 {
		last = a.proj.Rows[n-1]
	}

	peakColor := t.TextPrimary
	if s.PeakFundingNeed > 0 {
		peakColor = t.Warning
	}

	headline := []components.Metric{
		{Label: "Lifetime value", Value: cli.FormatMetric(s.LTV, cli.FormatMoney), Note: "per trial start", Color: t.Accent},
		{Label: "Blended CAC", Value: cli.FormatMetric(s.BlendedCAC, cli.FormatMoney), Note: "spend / new subs"},
		{Label: "Ending MRR", Value: cli.FormatMoney(last.TotalMRR), Note: cli.FormatMonth(last.Month)},
		{Label: "Subscribers", Value: cli.FormatCount(s.EndingSubscribers), Note: "paying, final month"},
	}
	cash := []components.Metric{
		{Label: "Break-even", Value: cli.FormatMonthIndex(s.BreakEvenMonth, p.KickOff), Note: "first month with EBT >= 0"},
		{Label: "Cash positive", Value: cli.FormatMonthIndex(s.CashBreakEvenMonth, p.KickOff), Note: "cash stays >= 0"},
		{Label: "Peak funding", Value: cli.FormatMoney(s.PeakFundingNeed), Note: "deepest cash trough", Color: peakColor},
		{Label: "Ending cash", Value: cli.FormatMoney(last.CumulativeCash), Color: t.Signed(last.CumulativeCash)},
	}

	var b strings.Builder
	b.WriteString(components.MetricCardRow(headline, cw))
	b.WriteString("\n")
	b.WriteString(components.MetricCardRow(cash, cw))
	b.WriteString("\n")

	halves := components.LayoutRow(cw, 2)
	channels := components.ContentCard("Acquisition channels", a.channelLines(halves[0]), halves[0])

	values := make([]float64, len(a.proj.Rows))
	for i, r := range a.proj.Rows {
		values[i] = r.CumulativeCash
	}
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	trend := components.Sparkline(values, t.Signed(last.CumulativeCash)) + "\n" +
		mutedStyle.Render(fmt.Sprintf("%s → %s", cli.FormatMonth(p.KickOff), cli.FormatMonth(last.Month)))
	cashCard := components.ContentCard("Cumulative cash", trend, halves[1])

	b.WriteString(components.CardRow([]string{channels, cashCard}))
	return b.String()
}

func (a App) channelLines(outerWidth int) string {
	t := theme.Active
	inner := components.CardInnerWidth(outerWidth)

	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextMuted)

	if len(a.proj.Summary.Channels) == 0 {
		return dimStyle.Render("no acquisition channels")
	}

	nameW := max(8, inner-36)
	var lines []string
	lines = append(lines, dimStyle.Render(fmt.Sprintf("%-*s %10s %10s %12s", nameW, "Channel", "CPA", "ROI", "Payback")))
	for _, ch := range a.proj.Summary.Channels {
		name := ch.Name
		if len(name) > nameW {
			name = name[:nameW]
		}
		roiColor := t.TextPrimary
		if ch.ROI.IsDefined() {
			roiColor = t.Signed(ch.ROI.Value)
		}
		roi := lipgloss.NewStyle().Foreground(roiColor).Render(fmt.Sprintf("%10s", cli.FormatMetric(ch.ROI, cli.FormatRatio)))
		lines = append(lines, nameStyle.Render(fmt.Sprintf("%-*s %10s ", nameW, name, cli.FormatMoney(ch.CPA)))+
			roi+nameStyle.Render(fmt.Sprintf(" %12s", cli.FormatPayback(ch.Payback))))
	}
	return strings.Join(lines, "\n")
}
