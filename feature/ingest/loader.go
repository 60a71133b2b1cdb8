package ingest

import (
	"fmt"

	"claims-tracker/feature/claims/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LoadMode controls whether existing rows are purged before inserting.
type LoadMode string

const (
	// ModeOverwrite deletes all existing rows of the kind, then inserts.
	ModeOverwrite LoadMode = "overwrite"
	// ModeAppend inserts on top of existing rows, silently skipping
	// duplicate primary keys.
	ModeAppend LoadMode = "append"
)

// insertBatchSize is the number of rows per INSERT statement.
const insertBatchSize = 500

// Valid reports whether the mode is one of the supported values.
func (m LoadMode) Valid() bool {
	return m == ModeOverwrite || m == ModeAppend
}

// BulkLoader writes parsed rows into the relational store. It operates on
// whatever *gorm.DB handle it is given, so the orchestrator can pass a
// transaction handle and keep a full reload all-or-nothing.
type BulkLoader struct {
	logger *zap.Logger
}

// NewBulkLoader creates a bulk loader.
func NewBulkLoader(logger *zap.Logger) *BulkLoader {
	return &BulkLoader{logger: logger}
}

// LoadClaims loads claim list rows and returns the number admitted.
// Duplicate primary keys are skipped, not errors; the count excludes them.
func (l *BulkLoader) LoadClaims(db *gorm.DB, rows []models.ClaimList, mode LoadMode) (int64, error) {
	if !mode.Valid() {
		return 0, fmt.Errorf("invalid load mode: %s", mode)
	}
	if mode == ModeOverwrite {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.ClaimList{}).Error; err != nil {
			return 0, fmt.Errorf("failed to clear claim_list: %w", err)
		}
	}
	if len(rows) == 0 {
		l.logger.Warn("No claim list rows to load")
		return 0, nil
	}

	result := db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&rows, insertBatchSize)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to insert claim_list rows: %w", result.Error)
	}
	l.logger.Info("Loaded claim list records",
		zap.Int64("admitted", result.RowsAffected),
		zap.Int("offered", len(rows)),
	)
	return result.RowsAffected, nil
}

// LoadClaimDetails loads claim detail rows and returns the number admitted.
func (l *BulkLoader) LoadClaimDetails(db *gorm.DB, rows []models.ClaimDetail, mode LoadMode) (int64, error) {
	if !mode.Valid() {
		return 0, fmt.Errorf("invalid load mode: %s", mode)
	}
	if mode == ModeOverwrite {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.ClaimDetail{}).Error; err != nil {
			return 0, fmt.Errorf("failed to clear claim_detail: %w", err)
		}
	}
	if len(rows) == 0 {
		l.logger.Warn("No claim detail rows to load")
		return 0, nil
	}

	result := db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&rows, insertBatchSize)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to insert claim_detail rows: %w", result.Error)
	}
	l.logger.Info("Loaded claim detail records",
		zap.Int64("admitted", result.RowsAffected),
		zap.Int("offered", len(rows)),
	)
	return result.RowsAffected, nil
}
