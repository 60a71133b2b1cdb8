package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"claims-tracker/feature/ingest"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	monitorInterval   int
	monitorContinuous bool
)

// monitorCmd watches the source files and reloads when they change.
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch the source CSV files and reload on change",
	Long: `Monitor fingerprints the CSV files in the data directory and reloads the
database whenever a file changes. By default it runs a single check; use
--continuous to keep watching at the given interval.`,
	RunE: runMonitor,
}

func init() {
	monitorCmd.Flags().IntVar(&monitorInterval, "interval", 60, "Seconds between checks in continuous mode")
	monitorCmd.Flags().BoolVar(&monitorContinuous, "continuous", false, "Keep watching until interrupted")
	RootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	if monitorInterval <= 0 {
		return fmt.Errorf("invalid interval %d: must be positive", monitorInterval)
	}

	svc, l, err := buildIngestService()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if !monitorContinuous {
		return checkOnce(ctx, svc, l)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	l.Info("Monitoring data directory", zap.Int("interval_seconds", monitorInterval))
	ticker := time.NewTicker(time.Duration(monitorInterval) * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-sig:
			l.Info("Monitor stopped")
			return nil
		case <-ticker.C:
			if err := checkOnce(ctx, svc, l); err != nil {
				l.Error("Check failed", zap.Error(err))
			}
		}
	}
}

func checkOnce(ctx context.Context, svc *ingest.Service, l *zap.Logger) error {
	result, err := svc.CheckAndReload(ctx)
	if err != nil {
		return err
	}
	if result.Skipped {
		l.Info("No changes detected")
		return nil
	}
	l.Info("Changes detected, data reloaded",
		zap.Strings("changed_files", result.ChangedFiles),
		zap.Int64("claims_loaded", result.ClaimsLoaded),
		zap.Int64("details_loaded", result.DetailsLoaded))
	return nil
}
