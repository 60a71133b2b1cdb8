package ingest

import (
	"claims-tracker/core/cache"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the ingestion feature.
func NewFeature(db *gorm.DB, store cache.Store, logger *zap.Logger, cfg Config) *Feature {
	svc := NewService(db, store, logger, cfg)
	h := NewHandler(svc)
	return &Feature{service: svc, handler: h}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "ingest"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

// Service exposes the ingestion service for the CLI commands and the
// background monitor.
func (f *Feature) Service() *Service {
	return f.service
}
