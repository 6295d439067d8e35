package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/mrrcast/internal/cli"
	"github.com/theirongolddev/mrrcast/internal/model"
	"github.com/theirongolddev/mrrcast/internal/projection"
)

var (
	flagPaybackLimit int
	flagPaybackCost  float64
)

var paybackCmd = &cobra.Command{
	Use:   "payback",
	Short: "Cumulative LTV table and payback per channel",
	RunE:  runPayback,
}

func init() {
	paybackCmd.Flags().IntVar(&flagPaybackLimit, "limit", 36, "Max LTV periods to show (0 = all)")
	paybackCmd.Flags().Float64Var(&flagPaybackCost, "cost", -1, "Also solve payback for this acquisition cost")
	rootCmd.AddCommand(paybackCmd)
}

func runPayback(_ *cobra.Command, _ []string) error {
	proj, err := loadProjection()
	if err != nil {
		return err
	}
	s := proj.Summary

	table := proj.LTVTable
	if flagPaybackLimit > 0 && len(table) > flagPaybackLimit {
		table = table[:flagPaybackLimit]
	}

	recovered := make(map[int][]string)
	for _, ch := range s.Channels {
		if ch.Payback.Outcome == model.PaybackMonths {
			recovered[ch.Payback.Period] = append(recovered[ch.Payback.Period], ch.Name)
		}
	}

	rows := make([][]string, 0, len(table))
	for _, period := range table {
		note := ""
		for i, name := range recovered[period.Index] {
			if i > 0 {
				note += ", "
			}
			note += name
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", period.Index),
			cli.FormatMoney(period.Contribution),
			cli.FormatMoney(period.Cumulative),
			note,
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Cumulative LTV  (LTV %s)", cli.FormatMetric(s.LTV, cli.FormatMoney)),
		Headers: []string{"Period", "Contribution", "Cumulative", "Recovers CPA"},
		Rows:    rows,
	}))
	if len(table) < len(proj.LTVTable) {
		fmt.Printf("  … %d more periods (use --limit 0)\n", len(proj.LTVTable)-len(table))
	}
	fmt.Println()

	pairs := make([][2]string, 0, len(s.Channels)+1)
	for _, ch := range s.Channels {
		pairs = append(pairs, [2]string{
			ch.Name,
			fmt.Sprintf("%s at %s CPA (ROI %s)",
				cli.FormatPayback(ch.Payback), cli.FormatMoney(ch.CPA), cli.FormatMetric(ch.ROI, cli.FormatRatio)),
		})
	}
	if flagPaybackCost >= 0 {
		pb := projection.PaybackFor(flagPaybackCost, proj.LTVTable, s.LTV, proj.Params.ChurnRate, proj.Params.FreeTrialDays)
		pairs = append(pairs, [2]string{"Custom cost", fmt.Sprintf("%s at %s", cli.FormatPayback(pb), cli.FormatMoney(flagPaybackCost))})
	}
	fmt.Print(cli.RenderKeyValues(pairs))
	return nil
}
