package cmd

import (
	"context"
	"fmt"

	"claims-tracker/core/config"
	"claims-tracker/core/logger"
	"claims-tracker/core/storage"
	"claims-tracker/feature/ingest"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fetchPrefix string

// fetchCmd downloads claim CSV drops from the storage bucket.
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download claim CSV files from the storage bucket",
	Long: `Fetch pulls every CSV object from the configured bucket into the local
data directory, where the monitor and loader pick them up.

Examples:
  # Pull the whole bucket
  claims-tracker fetch

  # Pull only objects under drops/2024/
  claims-tracker fetch --prefix drops/2024/`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchPrefix, "prefix", "", "Only fetch objects with this key prefix")
	RootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to connect to storage: %w", err)
	}

	fetcher := ingest.NewFetcher(client, cfg.Storage.Bucket, fetchPrefix, cfg.Ingest.DataDir, l)
	result, err := fetcher.Fetch(context.Background())
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	l.Info("Fetch completed",
		zap.Int("downloaded", len(result.Downloaded)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Strings("files", result.Downloaded))
	return nil
}
