package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/mrrcast/internal/config"
	"github.com/theirongolddev/mrrcast/internal/projection"
	"github.com/theirongolddev/mrrcast/internal/tui"
)

var flagSetupOutput string

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive wizard that writes an assumptions file",
	RunE:  runSetup,
}

func init() {
	setupCmd.Flags().StringVarP(&flagSetupOutput, "output", "o", "", "Assumptions file to write (default: config dir)")
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg, _ := config.Load()

	defaults := tui.DefaultWizardAnswers(time.Now())
	if cfg.Appearance.Theme != "" {
		defaults.Theme = cfg.Appearance.Theme
	}

	fmt.Println()
	fmt.Println("  Welcome to mrrcast!")
	fmt.Println("  Answer a few questions to build a five-year projection.")
	fmt.Println()

	answers, err := tui.RunWizard(defaults)
	if errors.Is(err, huh.ErrUserAborted) {
		fmt.Println("  Setup canceled; nothing was written.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("running wizard: %w", err)
	}

	p, err := answers.ParameterSet()
	if err != nil {
		return err
	}
	if err := projection.Validate(p); err != nil {
		printParameterErrors(err)
		return fmt.Errorf("checking answers: %w", err)
	}

	path := flagSetupOutput
	if path == "" {
		path = filepath.Join(config.ConfigDir(), "assumptions.toml")
	}
	if err := config.SaveAssumptions(path, p); err != nil {
		return fmt.Errorf("saving assumptions: %w", err)
	}

	cfg.General.DefaultAssumptions = path
	cfg.Appearance.Theme = answers.Theme
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Assumptions saved to %s\n", path)
	fmt.Printf("  Config saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `mrrcast` for the summary, or `mrrcast tui` to explore.")
	fmt.Println()
	return nil
}
