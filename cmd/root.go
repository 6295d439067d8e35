package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/mrrcast/internal/config"
	"github.com/theirongolddev/mrrcast/internal/model"
	"github.com/theirongolddev/mrrcast/internal/projection"
	"github.com/theirongolddev/mrrcast/internal/store"
)

var (
	flagAssumptions string
	flagScenario    string
	flagQuiet       bool
	flagDB          string
)

var rootCmd = &cobra.Command{
	Use:   "mrrcast",
	Short: "60-month SaaS revenue and cash projection",
	Long:  "Project subscribers, MRR, costs and cash for a subscription business over five years.",
	RunE:  runSummary,

	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagAssumptions, "assumptions", "a", "", "Assumptions TOML file")
	rootCmd.PersistentFlags().StringVarP(&flagScenario, "scenario", "s", "", "Stored scenario name")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Scenario database path")
}

// errNoAssumptions is returned when no input source was given or configured.
var errNoAssumptions = errors.New("no assumptions: pass --assumptions FILE, --scenario NAME, or run `mrrcast setup`")

// loadParams resolves the input parameters: an explicit scenario, then an
// explicit assumptions file, then the configured default file.
// It returns the parameters and a label naming their source.
func loadParams() (model.ParameterSet, string, error) {
	if flagScenario != "" {
		if flagAssumptions != "" {
			return model.ParameterSet{}, "", errors.New("--scenario and --assumptions are mutually exclusive")
		}
		st, err := openStore()
		if err != nil {
			return model.ParameterSet{}, "", err
		}
		defer st.Close()

		sc, err := st.Get(flagScenario)
		if err != nil {
			return model.ParameterSet{}, "", fmt.Errorf("loading scenario: %w", err)
		}
		return sc.Params, "scenario " + sc.Name, nil
	}

	path := flagAssumptions
	if path == "" {
		cfg, _ := config.Load()
		path = cfg.General.DefaultAssumptions
	}
	if path == "" {
		return model.ParameterSet{}, "", errNoAssumptions
	}

	p, err := config.LoadAssumptions(path)
	if err != nil {
		return model.ParameterSet{}, "", err
	}
	return p, path, nil
}

// loadProjection is the shared load-and-project path used by the report
// commands.
func loadProjection() (model.Projection, error) {
	p, source, err := loadParams()
	if err != nil {
		return model.Projection{}, err
	}

	start := time.Now()
	proj, err := projection.Project(p)
	if err != nil {
		printParameterErrors(err)
		return model.Projection{}, fmt.Errorf("projecting %s: %w", source, err)
	}

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Projected %d months from %s in %s\n",
			len(proj.Rows), source, time.Since(start).Round(time.Microsecond))
	}
	return proj, nil
}

// printParameterErrors lists each invalid field on stderr.
func printParameterErrors(err error) {
	if !errors.Is(err, projection.ErrInvalidParameter) {
		return
	}
	fmt.Fprintln(os.Stderr)
	for _, pe := range projection.ParameterErrors(err) {
		fmt.Fprintf(os.Stderr, "  %s = %v: %s\n", pe.Field, pe.Value, pe.Reason)
	}
	fmt.Fprintln(os.Stderr)
}

// openStore opens the scenario database from --db, the config file, or the
// default data directory.
func openStore() (*store.Store, error) {
	path := flagDB
	if path == "" {
		cfg, _ := config.Load()
		path = cfg.General.ScenarioDB
	}
	if path == "" {
		path = store.DefaultPath()
	}

	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening scenario store: %w", err)
	}
	return st, nil
}
