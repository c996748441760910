package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/r-uben/baltic-shipping/internal/merge"
)

// newMergeCmd creates the 'merge' subcommand, which flattens the per-vessel
// JSON records into a single CSV dataset.
func newMergeCmd() *cobra.Command {
	var dir, out string

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Combines per-vessel JSON records into one CSV dataset",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck // best-effort flush
			if dir == "" {
				dir = cfg.Storage.Dir
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			defer f.Close()

			n, err := merge.CSV(dir, f)
			if err != nil {
				return fmt.Errorf("merge records: %w", err)
			}
			logger.Info("dataset written",
				zap.String("path", out),
				zap.Int("rows", n),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "directory of vessel_*.json records (default: storage.dir)")
	cmd.Flags().StringVar(&out, "out", "vessels.csv", "output CSV path")
	return cmd
}
