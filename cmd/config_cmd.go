// Package cmd implements the mrrcast CLI commands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/mrrcast/internal/config"
	"github.com/theirongolddev/mrrcast/internal/store"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	if cfg.General.DefaultAssumptions != "" {
		fmt.Printf("    Default assumptions: %s\n", cfg.General.DefaultAssumptions)
	} else {
		fmt.Println("    Default assumptions: not set")
	}
	db := cfg.General.ScenarioDB
	if db == "" {
		db = store.DefaultPath() + " (default)"
	}
	fmt.Printf("    Scenario database:   %s\n", db)
	if st, err := openStore(); err == nil {
		if n, err := st.Count(); err == nil {
			fmt.Printf("    Stored scenarios:    %d\n", n)
		}
		_ = st.Close()
	}
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address:   %s\n", cfg.Server.Addr)
	fmt.Printf("    Cache TTL: %s\n", cfg.Server.CacheTTL())
	if cfg.Server.RedisAddr != "" {
		fmt.Printf("    Redis:     %s\n", cfg.Server.RedisAddr)
	} else {
		fmt.Println("    Redis:     not configured (in-memory cache)")
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `mrrcast setup` to reconfigure.")
	return nil
}
