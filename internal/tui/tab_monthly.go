package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/mrrcast/internal/cli"
	"github.com/theirongolddev/mrrcast/internal/model"
	"github.com/theirongolddev/mrrcast/internal/tui/theme"
)

var monthlyColumns = []table.Column{
	{Title: "Month", Width: 9},
	{Title: "New", Width: 9},
	{Title: "Paid", Width: 9},
	{Title: "Renewals", Width: 9},
	{Title: "MRR", Width: 11},
	{Title: "Marketing", Width: 11},
	{Title: "EBT", Width: 11},
	{Title: "Cash", Width: 12},
	{Title: "CAC", Width: 8},
}

func newMonthlyTable() table.Model {
	t := theme.Active

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(t.Border).
		BorderBottom(true).
		Foreground(t.Accent).
		Bold(true)
	styles.Cell = styles.Cell.Foreground(t.TextPrimary)
	styles.Selected = styles.Selected.
		Foreground(t.AccentBright).
		Background(t.SurfaceHover).
		Bold(false)

	return table.New(
		table.WithColumns(monthlyColumns),
		table.WithFocused(true),
		table.WithStyles(styles),
	)
}

func monthlyRows(p model.Projection) []table.Row {
	rows := make([]table.Row, len(p.Rows))
	for i, r := range p.Rows {
		rows[i] = table.Row{
			r.Month.Format("Jan 2006"),
			cli.FormatCount(r.NewSubs),
			cli.FormatCount(r.TrialToPaid),
			cli.FormatCount(r.Renewals),
			cli.FormatMoney(r.TotalMRR),
			cli.FormatMoney(r.Marketing),
			cli.FormatMoney(r.EBT),
			cli.FormatMoney(r.CumulativeCash),
			cli.FormatMetric(r.WeightedCAC, cli.FormatMoney),
		}
	}
	return rows
}
