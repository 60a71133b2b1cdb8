package ingest

import (
	"context"
	"time"

	"claims-tracker/core/cache"
	"claims-tracker/feature/claims/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StatusReport is the payload of the data status endpoint.
type StatusReport struct {
	DataStatus
	TotalClaims       int64      `json:"total_claims"`
	TotalClaimDetails int64      `json:"total_claim_details"`
	LastCheck         time.Time  `json:"last_check"`
	LastReload        *time.Time `json:"last_reload,omitempty"`
}

// ChangeReport is the payload of the change-check endpoint.
type ChangeReport struct {
	ChangesDetected bool      `json:"changes_detected"`
	ChangedFiles    []string  `json:"changed_files"`
	TotalFiles      int       `json:"total_files"`
	LastCheck       time.Time `json:"last_check"`
}

// Service exposes the ingestion pipeline to the HTTP handler and the CLI.
type Service struct {
	db      *gorm.DB
	monitor *Monitor
	orch    *Orchestrator
	logger  *zap.Logger
}

// NewService wires the monitor, bulk loader, and orchestrator.
func NewService(db *gorm.DB, store cache.Store, logger *zap.Logger, cfg Config) *Service {
	monitor := NewMonitor(cfg.DataDir, store, logger)
	loader := NewBulkLoader(logger)
	orch := NewOrchestrator(db, monitor, loader, logger, cfg.ClaimListPath(), cfg.ClaimDetailPath())
	return &Service{
		db:      db,
		monitor: monitor,
		orch:    orch,
		logger:  logger,
	}
}

// Monitor returns the underlying change monitor.
func (s *Service) Monitor() *Monitor {
	return s.monitor
}

// Status reports source file state plus current database row counts.
func (s *Service) Status(ctx context.Context) (*StatusReport, error) {
	report := &StatusReport{
		DataStatus: *s.monitor.DataStatus(),
		LastCheck:  time.Now().UTC(),
	}

	if err := s.db.WithContext(ctx).Model(&models.ClaimList{}).Count(&report.TotalClaims).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.ClaimDetail{}).Count(&report.TotalClaimDetails).Error; err != nil {
		return nil, err
	}

	lastReload, err := s.monitor.LastReload(ctx)
	if err != nil {
		s.logger.Warn("Failed to read last reload time", zap.Error(err))
	} else {
		report.LastReload = lastReload
	}
	return report, nil
}

// CheckChanges runs change detection without reloading.
func (s *Service) CheckChanges(ctx context.Context) (*ChangeReport, error) {
	changed, snapshot, err := s.monitor.CheckForChanges(ctx)
	if err != nil {
		return nil, err
	}
	return &ChangeReport{
		ChangesDetected: len(changed) > 0,
		ChangedFiles:    changed,
		TotalFiles:      len(snapshot),
		LastCheck:       time.Now().UTC(),
	}, nil
}

// ForceReload reloads both record kinds in overwrite mode regardless of
// what the change detector says.
func (s *Service) ForceReload(ctx context.Context) (*ReloadResult, error) {
	return s.orch.Reload(ctx, ModeOverwrite)
}

// Reload reloads both record kinds in the given mode.
func (s *Service) Reload(ctx context.Context, mode LoadMode) (*ReloadResult, error) {
	return s.orch.Reload(ctx, mode)
}

// CheckAndReload reloads only when the change detector reports drift.
func (s *Service) CheckAndReload(ctx context.Context) (*ReloadResult, error) {
	return s.orch.CheckAndReload(ctx)
}
