package cmd

import (
	"context"
	"fmt"

	"claims-tracker/core/cache"
	"claims-tracker/core/config"
	"claims-tracker/core/database"
	"claims-tracker/core/logger"
	"claims-tracker/feature/claims/models"
	"claims-tracker/feature/ingest"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	loadMode        string
	loadClaimList   string
	loadClaimDetail string
)

// loadCmd loads claim data from the CSV files into the database.
var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load claim data from the source CSV files",
	Long: `Load parses the claim list and claim detail files and bulk inserts them.

Examples:
  # Replace the current data
  claims-tracker load

  # Keep existing rows and only add new ids
  claims-tracker load --mode append`,
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().StringVar(&loadMode, "mode", string(ingest.ModeOverwrite), "Load mode: overwrite or append")
	loadCmd.Flags().StringVar(&loadClaimList, "claim-list", "", "Claim list file name (overrides the configured name)")
	loadCmd.Flags().StringVar(&loadClaimDetail, "claim-detail", "", "Claim detail file name (overrides the configured name)")
	RootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	mode := ingest.LoadMode(loadMode)
	if !mode.Valid() {
		return fmt.Errorf("invalid mode %q: must be overwrite or append", loadMode)
	}

	svc, l, err := buildIngestService(func(c *ingest.Config) {
		if loadClaimList != "" {
			c.ClaimListFile = loadClaimList
		}
		if loadClaimDetail != "" {
			c.ClaimDetailFile = loadClaimDetail
		}
	})
	if err != nil {
		return err
	}

	result, err := svc.Reload(context.Background(), mode)
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}
	l.Info("Load completed",
		zap.String("mode", string(mode)),
		zap.Int64("claims_loaded", result.ClaimsLoaded),
		zap.Int64("details_loaded", result.DetailsLoaded),
		zap.Int("rows_skipped", result.RowsSkipped))
	return nil
}

// buildIngestService wires config, logger, database, and cache for the
// data commands. Overrides run against the ingest config before wiring,
// letting commands point at alternate source files.
func buildIngestService(overrides ...func(*ingest.Config)) (*ingest.Service, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(
		&models.ClaimList{},
		&models.ClaimDetail{},
		&models.ClaimFlag{},
		&models.ClaimNote{},
	); err != nil {
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	store, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create cache store: %w", err)
	}

	ingestCfg := cfg.Ingest
	for _, override := range overrides {
		override(&ingestCfg)
	}

	return ingest.NewService(db, store, l, ingestCfg), l, nil
}
