package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"claims-tracker/feature/claims/models"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// ReloadResult reports the outcome of one check-and-reload cycle.
type ReloadResult struct {
	// ChangedFiles lists the paths the change detector reported.
	ChangedFiles []string `json:"changed_files,omitempty"`
	// Skipped is true when the detector found no changes and no reload ran.
	Skipped bool `json:"skipped"`
	// ClaimsLoaded and DetailsLoaded count rows admitted into each table.
	ClaimsLoaded  int64 `json:"claims_loaded"`
	DetailsLoaded int64 `json:"details_loaded"`
	// RowsSkipped counts rows rejected by the parser across both files.
	RowsSkipped int `json:"rows_skipped"`
	// ReloadedAt is the completion time of a successful reload.
	ReloadedAt time.Time `json:"reloaded_at,omitempty"`
}

// Orchestrator ties the monitor, parser, and bulk loader together. A reload
// loads both record kinds inside one transaction, so either both tables
// reflect the new files or neither does. Overlapping triggers from the API,
// the scheduler, and the CLI serialize through singleflight instead of
// racing at the storage layer.
type Orchestrator struct {
	db              *gorm.DB
	monitor         *Monitor
	loader          *BulkLoader
	logger          *zap.Logger
	claimListPath   string
	claimDetailPath string

	sf singleflight.Group
}

// NewOrchestrator creates a reload orchestrator for the two source files.
func NewOrchestrator(db *gorm.DB, monitor *Monitor, loader *BulkLoader, logger *zap.Logger, claimListPath, claimDetailPath string) *Orchestrator {
	return &Orchestrator{
		db:              db,
		monitor:         monitor,
		loader:          loader,
		logger:          logger,
		claimListPath:   claimListPath,
		claimDetailPath: claimDetailPath,
	}
}

// CheckAndReload runs change detection and reloads both record kinds in
// overwrite mode when any source file changed. With an empty change set it
// only records the check and returns a skipped result. Errors surface to
// the caller; the orchestrator does not retry on its own.
func (o *Orchestrator) CheckAndReload(ctx context.Context) (*ReloadResult, error) {
	changed, _, err := o.monitor.CheckForChanges(ctx)
	if err != nil {
		return nil, fmt.Errorf("change check failed: %w", err)
	}
	if len(changed) == 0 {
		o.logger.Info("No changes detected")
		return &ReloadResult{Skipped: true}, nil
	}

	o.logger.Info("Changes detected, reloading", zap.Strings("files", changed))
	result, err := o.Reload(ctx, ModeOverwrite)
	if err != nil {
		return nil, err
	}
	result.ChangedFiles = changed
	return result, nil
}

// Reload loads both record kinds from the source files in one transaction.
// Concurrent calls with the same mode share a single execution.
func (o *Orchestrator) Reload(ctx context.Context, mode LoadMode) (*ReloadResult, error) {
	v, err, _ := o.sf.Do("reload:"+string(mode), func() (interface{}, error) {
		return o.reload(ctx, mode)
	})
	if err != nil {
		return nil, err
	}
	return v.(*ReloadResult), nil
}

func (o *Orchestrator) reload(ctx context.Context, mode LoadMode) (*ReloadResult, error) {
	claims, claimsSkipped, err := o.readClaims()
	if err != nil {
		return nil, err
	}
	details, detailsSkipped, err := o.readDetails()
	if err != nil {
		return nil, err
	}

	result := &ReloadResult{RowsSkipped: claimsSkipped + detailsSkipped}

	err = o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loaded, err := o.loader.LoadClaims(tx, claims, mode)
		if err != nil {
			return err
		}
		result.ClaimsLoaded = loaded

		loaded, err = o.loader.LoadClaimDetails(tx, details, mode)
		if err != nil {
			return err
		}
		result.DetailsLoaded = loaded
		return nil
	})
	if err != nil {
		o.logger.Error("Reload failed, transaction rolled back", zap.Error(err))
		return nil, fmt.Errorf("reload failed: %w", err)
	}

	result.ReloadedAt = time.Now().UTC()
	if err := o.monitor.recordReload(ctx, result.ReloadedAt); err != nil {
		// Data is committed; a bookkeeping miss only affects the status endpoint.
		o.logger.Warn("Failed to record reload time", zap.Error(err))
	}

	o.logger.Info("Reload completed",
		zap.String("mode", string(mode)),
		zap.Int64("claims", result.ClaimsLoaded),
		zap.Int64("details", result.DetailsLoaded),
		zap.Int("rows_skipped", result.RowsSkipped),
	)
	return result, nil
}

// readClaims parses the claim list file. A missing file is empty input,
// not an error: in overwrite mode the table ends up cleared.
func (o *Orchestrator) readClaims() ([]models.ClaimList, int, error) {
	rows, skipped, err := ReadClaimListFile(o.claimListPath, o.logger)
	if errors.Is(err, fs.ErrNotExist) {
		o.logger.Warn("Claim list file not found", zap.String("file", o.claimListPath))
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read claim list: %w", err)
	}
	return rows, skipped, nil
}

func (o *Orchestrator) readDetails() ([]models.ClaimDetail, int, error) {
	rows, skipped, err := ReadClaimDetailFile(o.claimDetailPath, o.logger)
	if errors.Is(err, fs.ErrNotExist) {
		o.logger.Warn("Claim detail file not found", zap.String("file", o.claimDetailPath))
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read claim detail: %w", err)
	}
	return rows, skipped, nil
}
