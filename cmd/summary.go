package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/mrrcast/internal/cli"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Headline metrics: LTV, channel ROI and payback, break-even",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	proj, err := loadProjection()
	if err != nil {
		return err
	}
	s := proj.Summary
	p := proj.Params
	last := proj.Rows[len(proj.Rows)-1]

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("MRR PROJECTION  %s - %s",
		cli.FormatMonth(p.KickOff), cli.FormatMonth(last.Month))))
	fmt.Println()

	fmt.Print(cli.RenderKeyValues([][2]string{
		{"Price", cli.FormatMoney(p.Price) + "/mo"},
		{"Trial", fmt.Sprintf("%d days, %s convert", p.FreeTrialDays, cli.FormatPercent(p.TrialToPaidRate))},
		{"Churn", cli.FormatPercent(p.ChurnRate) + "/mo"},
		{"Lifetime value", cli.FormatMetric(s.LTV, cli.FormatMoney)},
		{"Blended CAC", cli.FormatMetric(s.BlendedCAC, cli.FormatMoney)},
		{"Break-even", cli.FormatMonthIndex(s.BreakEvenMonth, p.KickOff)},
		{"Cash positive", cli.FormatMonthIndex(s.CashBreakEvenMonth, p.KickOff)},
		{"Peak funding", cli.FormatMoney(s.PeakFundingNeed)},
		{"Ending MRR", cli.FormatMoney(last.TotalMRR)},
		{"Ending subscribers", cli.FormatCount(s.EndingSubscribers)},
		{"Ending cash", cli.FormatMoney(last.CumulativeCash)},
	}))
	fmt.Println()

	if len(s.Channels) > 0 {
		rows := make([][]string, 0, len(s.Channels))
		for _, ch := range s.Channels {
			rows = append(rows, []string{
				ch.Name,
				cli.FormatMoney(ch.CPA),
				cli.FormatCount(ch.NewSubs),
				cli.FormatMoney(ch.Spend),
				cli.FormatMetric(ch.ROI, cli.FormatRatio),
				cli.FormatPayback(ch.Payback),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Acquisition Channels",
			Headers: []string{"Channel", "CPA", "New Subs", "Spend", "ROI", "Payback"},
			Rows:    rows,
		}))
		fmt.Println()
	}

	fmt.Print(yearTable(proj))
	return nil
}
