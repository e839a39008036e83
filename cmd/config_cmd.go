// Package cmd implements the tripfund CLI commands.
package cmd

import (
	"fmt"

	"github.com/palmvoyage/tripfund/internal/config"

	"github.com/spf13/cobra"
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
	fmt.Printf("  Config file: %s\n", flagConfig)
	if config.ExistsAt(flagConfig) {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Database:        %s\n", dbPath())
	fmt.Println()

	fmt.Println("  [Planner]")
	fmt.Printf("    Slider max:      %.0f €\n", cfg.Planner.SliderMax)
	fmt.Printf("    Fallback months: %d\n", cfg.Planner.FallbackMonths)
	fmt.Printf("    Fallback step:   %.0f €\n", cfg.Planner.FallbackStep)
	fmt.Println()

	fmt.Println("  [Maps]")
	if key := config.GetMapsAPIKey(cfg); key != "" {
		fmt.Printf("    API key:   %s\n", maskAPIKey(key))
	} else {
		fmt.Println("    API key:   not configured (stops are saved without coordinates)")
	}
	if cfg.Maps.BaseURL != "" {
		fmt.Printf("    Base URL:  %s\n", cfg.Maps.BaseURL)
	}
	fmt.Println()

	fmt.Println("  [Cache]")
	if addr := config.GetRedisAddr(cfg); addr != "" {
		fmt.Printf("    Redis:     %s\n", addr)
	} else {
		fmt.Println("    Redis:     not configured (in memory)")
	}
	fmt.Printf("    TTL:       %s\n", cfg.Cache.CacheTTL())
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address:   %s\n", cfg.Server.Addr)
	fmt.Printf("    Polling:   %s\n", cfg.Server.PollInterval())
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Logging]")
	fmt.Printf("    Level:  %s\n", cfg.Logging.Level)
	fmt.Printf("    Format: %s\n", cfg.Logging.Format)
	fmt.Printf("    Output: %s\n", cfg.Logging.Output)
	fmt.Println()

	fmt.Println("  Run `tripfund setup` to reconfigure.")
	return nil
}
