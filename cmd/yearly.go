package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/mrrcast/internal/cli"
	"github.com/theirongolddev/mrrcast/internal/model"
)

var yearlyCmd = &cobra.Command{
	Use:   "yearly",
	Short: "Per-year totals with a revenue chart",
	RunE:  runYearly,
}

func init() {
	rootCmd.AddCommand(yearlyCmd)
}

func runYearly(_ *cobra.Command, _ []string) error {
	proj, err := loadProjection()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Print(yearTable(proj))
	fmt.Println()

	maxRevenue := 0.0
	for _, y := range proj.Summary.Years {
		maxRevenue = max(maxRevenue, y.Revenue)
	}
	for _, y := range proj.Summary.Years {
		fmt.Println(cli.RenderHorizontalBar(
			fmt.Sprintf("Y%d", y.Year), cli.FormatMoney(y.Revenue), y.Revenue, maxRevenue, 40))
	}
	return nil
}

func yearTable(proj model.Projection) string {
	rows := make([][]string, 0, len(proj.Summary.Years))
	for _, y := range proj.Summary.Years {
		first := (y.Year - 1) * model.MonthsPerYear
		rows = append(rows, []string{
			fmt.Sprintf("Y%d (%d)", y.Year, proj.Params.KickOff.AddDate(0, first, 0).Year()),
			cli.FormatCount(y.NewSubs),
			cli.FormatCount(y.TrialToPaid),
			cli.FormatMoney(y.Revenue),
			cli.FormatMoney(y.Marketing),
			cli.FormatMoney(y.EBT),
			cli.FormatMoney(y.EndingCash),
		})
	}
	return cli.RenderTable(cli.Table{
		Title:   "Yearly Totals",
		Headers: []string{"Year", "New Subs", "Paid", "Revenue", "Marketing", "EBT", "Ending Cash"},
		Rows:    rows,
	})
}
