package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/mrrcast/internal/cli"
)

var flagMonthlyChannels bool

var monthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Month-by-month projection table",
	RunE:  runMonthly,
}

func init() {
	monthlyCmd.Flags().BoolVar(&flagMonthlyChannels, "channels", false, "Add a traffic and new-subs column per channel")
	rootCmd.AddCommand(monthlyCmd)
}

func runMonthly(_ *cobra.Command, _ []string) error {
	proj, err := loadProjection()
	if err != nil {
		return err
	}

	headers := []string{"Month", "New Subs", "Paid", "Renewals", "MRR", "Marketing", "EBT", "Cash", "CAC"}
	if flagMonthlyChannels {
		for _, ch := range proj.Params.Channels {
			headers = append(headers, ch.Name+" Traffic", ch.Name+" Subs")
		}
	}

	rows := make([][]string, 0, len(proj.Rows))
	for _, r := range proj.Rows {
		row := []string{
			cli.FormatMonth(r.Month),
			cli.FormatCount(r.NewSubs),
			cli.FormatCount(r.TrialToPaid),
			cli.FormatCount(r.Renewals),
			cli.FormatMoney(r.TotalMRR),
			cli.FormatMoney(r.Marketing),
			cli.FormatMoney(r.EBT),
			cli.FormatMoney(r.CumulativeCash),
			cli.FormatMetric(r.WeightedCAC, cli.FormatMoney),
		}
		if flagMonthlyChannels {
			for _, ch := range r.Channels {
				row = append(row, cli.FormatCompact(ch.Traffic), cli.FormatCount(ch.NewSubs))
			}
		}
		rows = append(rows, row)
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Monthly Projection",
		Headers: headers,
		Rows:    rows,
	}))
	return nil
}
