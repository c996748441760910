// Package cmd defines and implements the CLI commands for the vessel
// scanner executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/r-uben/baltic-shipping/internal/config"
	"github.com/r-uben/baltic-shipping/internal/logging"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vessel-scan",
		Short: "Enumerates a vessel registry and extracts structured records",
		Long: `vessel-scan walks the IMO identifier space, fetches the registry's
detail page for every checksum-valid number, classifies whether a vessel
exists, extracts its attributes through structured, generative, and
heuristic passes, and persists one JSON record per vessel.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: built-in defaults plus SCAN_* env)")

	cmd.AddCommand(newScanCmd())
	cmd.AddCommand(newMergeCmd())
	return cmd
}

// loadConfig reads config and builds the logger both subcommands share.
func loadConfig() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
