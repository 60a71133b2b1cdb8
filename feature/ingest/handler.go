package ingest

import (
	"claims-tracker/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the ingestion pipeline.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the data pipeline routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/data")
	group.Get("/status", h.HandleStatus)
	group.Get("/check", h.HandleCheckChanges)
	group.Post("/reload", h.HandleForceReload)
}

// HandleStatus reports source file state and database row counts.
// @Summary Data status
// @Description Reports source CSV files, their sizes and modification times, plus database row counts.
// @Tags data
// @Produce json
// @Success 200 {object} ingest.StatusReport "Data Status"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /data/status [get]
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	status, err := h.service.Status(c.Context())
	if err != nil {
		l.Error("Data status failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(status)
}

// HandleCheckChanges runs change detection against the cached snapshot.
// @Summary Check for source changes
// @Description Compares the current CSV fingerprints against the cached snapshot and reports changed files.
// @Tags data
// @Produce json
// @Success 200 {object} ingest.ChangeReport "Change Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /data/check [get]
func (h *Handler) HandleCheckChanges(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.CheckChanges(c.Context())
	if err != nil {
		l.Error("Change check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(report)
}

// HandleForceReload reloads both tables from the source files.
// @Summary Force reload
// @Description Reloads claim list and claim detail tables from the CSV files in one transaction.
// @Tags data
// @Produce json
// @Success 200 {object} ingest.ReloadResult "Reload Result"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /data/reload [post]
func (h *Handler) HandleForceReload(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	result, err := h.service.ForceReload(c.Context())
	if err != nil {
		l.Error("Force reload failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(result)
}
