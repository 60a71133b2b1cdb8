package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var reloadForce bool

// reloadCmd reloads claim data only when the source files changed.
var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Reload claim data if the source files changed",
	Long: `Reload compares the current CSV fingerprints against the cached snapshot
and reloads the database only when a file changed. Use --force to skip the
check and reload unconditionally.`,
	RunE: runReload,
}

func init() {
	reloadCmd.Flags().BoolVar(&reloadForce, "force", false, "Reload even when no change is detected")
	RootCmd.AddCommand(reloadCmd)
}

func runReload(cmd *cobra.Command, args []string) error {
	svc, l, err := buildIngestService()
	if err != nil {
		return err
	}

	ctx := context.Background()
	reload := svc.CheckAndReload
	if reloadForce {
		reload = svc.ForceReload
	}
	result, err := reload(ctx)
	if err != nil {
		return fmt.Errorf("reload failed: %w", err)
	}

	if result.Skipped {
		l.Info("No changes detected, reload skipped")
		return nil
	}
	l.Info("Reload completed",
		zap.Strings("changed_files", result.ChangedFiles),
		zap.Int64("claims_loaded", result.ClaimsLoaded),
		zap.Int64("details_loaded", result.DetailsLoaded),
		zap.Int("rows_skipped", result.RowsSkipped))
	return nil
}
