package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/mrrcast/internal/cli"
	"github.com/theirongolddev/mrrcast/internal/config"
	"github.com/theirongolddev/mrrcast/internal/model"
	"github.com/theirongolddev/mrrcast/internal/projection"
)

var flagScenarioJSON bool

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Manage named assumption sets",
}

var scenarioSaveCmd = &cobra.Command{
	Use:   "save NAME",
	Short: "Store the current assumptions under NAME",
	Args:  cobra.ExactArgs(1),
	RunE:  runScenarioSave,
}

var scenarioListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored scenarios",
	Args:  cobra.NoArgs,
	RunE:  runScenarioList,
}

var scenarioShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Show a stored scenario's assumptions",
	Args:  cobra.ExactArgs(1),
	RunE:  runScenarioShow,
}

var scenarioDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a stored scenario",
	Args:  cobra.ExactArgs(1),
	RunE:  runScenarioDelete,
}

func init() {
	scenarioShowCmd.Flags().BoolVar(&flagScenarioJSON, "json", false, "Print the parameters as JSON")

	scenarioCmd.AddCommand(scenarioSaveCmd)
	scenarioCmd.AddCommand(scenarioListCmd)
	scenarioCmd.AddCommand(scenarioShowCmd)
	scenarioCmd.AddCommand(scenarioDeleteCmd)
	rootCmd.AddCommand(scenarioCmd)
}

func runScenarioSave(_ *cobra.Command, args []string) error {
	p, source, err := loadParams()
	if err != nil {
		return err
	}
	if err := projection.Validate(p); err != nil {
		printParameterErrors(err)
		return fmt.Errorf("checking %s: %w", source, err)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	sc, err := st.Save(args[0], p)
	if err != nil {
		return fmt.Errorf("saving scenario: %w", err)
	}
	fmt.Printf("  Saved scenario %q from %s (%s)\n", sc.Name, source, sc.Fingerprint[:12])
	return nil
}

func runScenarioList(_ *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	infos, err := st.List()
	if err != nil {
		return fmt.Errorf("listing scenarios: %w", err)
	}
	if len(infos) == 0 {
		fmt.Println("\n  No scenarios stored yet.")
		fmt.Println("  Save one with: mrrcast scenario save NAME -a FILE")
		return nil
	}

	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, []string{
			info.Name,
			cli.FormatMonth(info.KickOff),
			cli.FormatMoney(info.Price),
			strings.Join(info.Channels, ", "),
			info.UpdatedAt.Local().Format(time.DateTime),
		})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Scenarios",
		Headers: []string{"Name", "Kick-off", "Price", "Channels", "Updated"},
		Rows:    rows,
	}))
	return nil
}

func runScenarioShow(_ *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	sc, err := st.Get(args[0])
	if err != nil {
		return err
	}

	if flagScenarioJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sc.Params)
	}

	a := config.FromParameterSet(sc.Params)
	fmt.Println()
	fmt.Print(cli.RenderKeyValues([][2]string{
		{"Name", sc.Name},
		{"ID", sc.ID},
		{"Fingerprint", sc.Fingerprint},
		{"Created", sc.CreatedAt.Local().Format(time.DateTime)},
		{"Updated", sc.UpdatedAt.Local().Format(time.DateTime)},
		{"Kick-off", a.KickOff},
		{"Price", cli.FormatMoney(sc.Params.Price)},
		{"Free trial", fmt.Sprintf("%d days", sc.Params.FreeTrialDays)},
		{"Trial to paid", cli.FormatPercent(sc.Params.TrialToPaidRate)},
		{"Churn", cli.FormatPercent(sc.Params.ChurnRate)},
	}))
	fmt.Println()

	rows := make([][]string, 0, len(sc.Params.Channels))
	for _, ch := range sc.Params.Channels {
		rows = append(rows, []string{
			ch.Name,
			string(ch.Kind),
			cli.FormatCount(ch.Initial),
			cli.FormatMoney(ch.CPA),
			formatSchedule(ch.Growth),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Channels",
		Headers: []string{"Name", "Kind", "Initial", "CPA", "Growth Y1-Y5"},
		Rows:    rows,
	}))
	return nil
}

func runScenarioDelete(_ *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Delete(args[0]); err != nil {
		return err
	}
	fmt.Printf("  Deleted scenario %q\n", args[0])
	return nil
}

func formatSchedule(s model.Schedule) string {
	parts := make([]string, len(s))
	for i, r := range s {
		parts[i] = cli.FormatPercent(r)
	}
	return strings.Join(parts, " ")
}
