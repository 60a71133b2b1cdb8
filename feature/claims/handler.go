package claims

import (
	"errors"
	"strings"

	"claims-tracker/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for claims.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the claims routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/dashboard", h.HandleDashboard)
	app.Get("/analytics", h.HandleAnalytics)

	claimsGroup := app.Group("/claims")
	claimsGroup.Get("/", h.HandleListClaims)
	claimsGroup.Get("/:id", h.HandleGetClaim)
	claimsGroup.Get("/:id/export", h.HandleExportClaim)
	claimsGroup.Post("/:id/flags", h.HandleFlagClaim)
	claimsGroup.Post("/:id/notes", h.HandleAddNote)

	app.Get("/claim-details", h.HandleListDetails)

	flagsGroup := app.Group("/flags")
	flagsGroup.Get("/", h.HandleListFlags)
	flagsGroup.Post("/:id/resolve", h.HandleResolveFlag)
	flagsGroup.Delete("/:id", h.HandleDeleteFlag)

	notesGroup := app.Group("/notes")
	notesGroup.Get("/", h.HandleListNotes)
	notesGroup.Put("/:id", h.HandleEditNote)
	notesGroup.Delete("/:id", h.HandleDeleteNote)
}

// actor returns the acting username forwarded by the auth proxy.
func actor(c *fiber.Ctx) string {
	return strings.TrimSpace(c.Get("X-User"))
}

// errStatus maps service errors onto HTTP status codes.
func errStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, ErrEmptyNote):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	l := logger.WithRayID(h.service.logger, c)
	status := errStatus(err)
	if status == fiber.StatusInternalServerError {
		l.Error(msg, zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// HandleDashboard returns the dashboard summary statistics.
// @Summary Dashboard summary
// @Description Aggregate claim statistics excluding test insurers.
// @Tags claims
// @Produce json
// @Success 200 {object} claims.DashboardSummary "Dashboard Summary"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /dashboard [get]
func (h *Handler) HandleDashboard(c *fiber.Ctx) error {
	summary, err := h.service.Dashboard(c.Context())
	if err != nil {
		return h.fail(c, "Dashboard failed", err)
	}
	return c.JSON(summary)
}

// HandleAnalytics returns the per-month and per-insurer aggregates.
// @Summary Analytics
// @Description Claims grouped by discharge month and by insurer, excluding test insurers.
// @Tags claims
// @Produce json
// @Success 200 {object} claims.AnalyticsReport "Analytics Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /analytics [get]
func (h *Handler) HandleAnalytics(c *fiber.Ctx) error {
	report, err := h.service.Analytics(c.Context())
	if err != nil {
		return h.fail(c, "Analytics failed", err)
	}
	return c.JSON(report)
}

// HandleListClaims returns a page of claims.
// @Summary List claims
// @Description Search and filter claims, paginated and ordered by id.
// @Tags claims
// @Produce json
// @Param search query string false "Free-text match on id, patient, insurer"
// @Param status query string false "Exact status filter"
// @Param insurer query string false "Exact insurer filter"
// @Param page query int false "Page number (1-based)"
// @Success 200 {object} claims.ClaimPage "Claim Page"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /claims [get]
func (h *Handler) HandleListClaims(c *fiber.Ctx) error {
	page, err := h.service.ListClaims(c.Context(), ClaimListParams{
		Search:  c.Query("search"),
		Status:  c.Query("status"),
		Insurer: c.Query("insurer"),
		Page:    c.QueryInt("page", 1),
	})
	if err != nil {
		return h.fail(c, "Claim listing failed", err)
	}
	return c.JSON(page)
}

// HandleGetClaim returns one claim with details, flags, and notes.
// @Summary Get claim
// @Description One claim plus its detail rows, flags, notes, and totals.
// @Tags claims
// @Produce json
// @Param id path int true "Claim ID"
// @Success 200 {object} claims.ClaimBundle "Claim Bundle"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /claims/{id} [get]
func (h *Handler) HandleGetClaim(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid claim id"})
	}
	bundle, err := h.service.GetClaim(c.Context(), int64(id))
	if err != nil {
		return h.fail(c, "Claim fetch failed", err)
	}
	return c.JSON(bundle)
}

// HandleExportClaim serves one claim's details as a CSV attachment.
// @Summary Export claim
// @Description One claim's details as CSV with a fixed column order.
// @Tags claims
// @Produce text/csv
// @Param id path int true "Claim ID"
// @Success 200 {string} string "CSV content"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /claims/{id}/export [get]
func (h *Handler) HandleExportClaim(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid claim id"})
	}
	export, err := h.service.ExportClaim(c.Context(), int64(id))
	if err != nil {
		return h.fail(c, "Claim export failed", err)
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+export.Filename+`"`)
	return c.Send(export.Content)
}

// HandleListDetails returns a page of claim detail rows.
// @Summary List claim details
// @Description Search and filter claim detail rows, paginated and ordered by id.
// @Tags claims
// @Produce json
// @Param search query string false "Free-text match on claim id, denial reason, CPT codes"
// @Param denial_reason query string false "Exact denial reason filter ('No Denial' for empty)"
// @Param page query int false "Page number (1-based)"
// @Success 200 {object} claims.DetailPage "Detail Page"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /claim-details [get]
func (h *Handler) HandleListDetails(c *fiber.Ctx) error {
	page, err := h.service.ListDetails(c.Context(), DetailListParams{
		Search:       c.Query("search"),
		DenialReason: c.Query("denial_reason"),
		Page:         c.QueryInt("page", 1),
	})
	if err != nil {
		return h.fail(c, "Claim detail listing failed", err)
	}
	return c.JSON(page)
}

// HandleFlagClaim flags a claim for review.
// @Summary Flag claim
// @Description Create a review flag on a claim for the acting user.
// @Tags annotations
// @Accept json
// @Produce json
// @Param id path int true "Claim ID"
// @Success 201 {object} models.ClaimFlag "Created Flag"
// @Failure 401 {object} map[string]string "Missing actor"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /claims/{id}/flags [post]
func (h *Handler) HandleFlagClaim(c *fiber.Ctx) error {
	user := actor(c)
	if user == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing X-User header"})
	}
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid claim id"})
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&body); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	flag, err := h.service.FlagClaim(c.Context(), int64(id), user, body.Reason)
	if err != nil {
		return h.fail(c, "Flag creation failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(flag)
}

// HandleAddNote adds a note to a claim.
// @Summary Add note
// @Description Attach a free-text note to a claim for the acting user.
// @Tags annotations
// @Accept json
// @Produce json
// @Param id path int true "Claim ID"
// @Success 201 {object} models.ClaimNote "Created Note"
// @Failure 400 {object} map[string]string "Empty note"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /claims/{id}/notes [post]
func (h *Handler) HandleAddNote(c *fiber.Ctx) error {
	user := actor(c)
	if user == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing X-User header"})
	}
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid claim id"})
	}

	var body struct {
		Note string `json:"note"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	note, err := h.service.AddNote(c.Context(), int64(id), user, body.Note)
	if err != nil {
		return h.fail(c, "Note creation failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(note)
}

// HandleListFlags returns a page of flags across claims.
// @Summary List flags
// @Description Flagged claims, filterable by resolution state, user, and search.
// @Tags annotations
// @Produce json
// @Param status query string false "open or resolved"
// @Param user query string false "Filter by flagging user"
// @Param search query string false "Free-text match on claim id or reason"
// @Param page query int false "Page number (1-based)"
// @Success 200 {object} claims.FlagPage "Flag Page"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /flags [get]
func (h *Handler) HandleListFlags(c *fiber.Ctx) error {
	page, err := h.service.ListFlags(c.Context(), FlagListParams{
		Status: c.Query("status"),
		User:   c.Query("user"),
		Search: c.Query("search"),
		Page:   c.QueryInt("page", 1),
	})
	if err != nil {
		return h.fail(c, "Flag listing failed", err)
	}
	return c.JSON(page)
}

// HandleResolveFlag marks a flag resolved.
// @Summary Resolve flag
// @Description Mark a flag resolved by the acting user. Idempotent.
// @Tags annotations
// @Produce json
// @Param id path int true "Flag ID"
// @Success 200 {object} models.ClaimFlag "Resolved Flag"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /flags/{id}/resolve [post]
func (h *Handler) HandleResolveFlag(c *fiber.Ctx) error {
	user := actor(c)
	if user == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing X-User header"})
	}
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid flag id"})
	}

	flag, err := h.service.ResolveFlag(c.Context(), int64(id), user)
	if err != nil {
		return h.fail(c, "Flag resolution failed", err)
	}
	return c.JSON(flag)
}

// HandleDeleteFlag deletes a flag (owner or admin only).
// @Summary Delete flag
// @Description Delete a flag. Only its owner or an admin may do this.
// @Tags annotations
// @Param id path int true "Flag ID"
// @Success 204 "Deleted"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /flags/{id} [delete]
func (h *Handler) HandleDeleteFlag(c *fiber.Ctx) error {
	user := actor(c)
	if user == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing X-User header"})
	}
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid flag id"})
	}

	if err := h.service.DeleteFlag(c.Context(), int64(id), user); err != nil {
		return h.fail(c, "Flag deletion failed", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleListNotes returns a page of notes across claims.
// @Summary List notes
// @Description Notes across claims, filterable by user and search.
// @Tags annotations
// @Produce json
// @Param search query string false "Free-text match on claim id, note, username"
// @Param user query string false "Filter by author"
// @Param page query int false "Page number (1-based)"
// @Success 200 {object} claims.NotePage "Note Page"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /notes [get]
func (h *Handler) HandleListNotes(c *fiber.Ctx) error {
	page, err := h.service.ListNotes(c.Context(), NoteListParams{
		Search: c.Query("search"),
		User:   c.Query("user"),
		Page:   c.QueryInt("page", 1),
	})
	if err != nil {
		return h.fail(c, "Note listing failed", err)
	}
	return c.JSON(page)
}

// HandleEditNote replaces a note's text (owner or admin only).
// @Summary Edit note
// @Description Replace a note's text. Only its owner or an admin may do this.
// @Tags annotations
// @Accept json
// @Produce json
// @Param id path int true "Note ID"
// @Success 200 {object} models.ClaimNote "Updated Note"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /notes/{id} [put]
func (h *Handler) HandleEditNote(c *fiber.Ctx) error {
	user := actor(c)
	if user == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing X-User header"})
	}
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid note id"})
	}

	var body struct {
		Note string `json:"note"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	note, err := h.service.EditNote(c.Context(), int64(id), user, body.Note)
	if err != nil {
		return h.fail(c, "Note update failed", err)
	}
	return c.JSON(note)
}

// HandleDeleteNote deletes a note (owner or admin only).
// @Summary Delete note
// @Description Delete a note. Only its owner or an admin may do this.
// @Tags annotations
// @Param id path int true "Note ID"
// @Success 204 "Deleted"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /notes/{id} [delete]
func (h *Handler) HandleDeleteNote(c *fiber.Ctx) error {
	user := actor(c)
	if user == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing X-User header"})
	}
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid note id"})
	}

	if err := h.service.DeleteNote(c.Context(), int64(id), user); err != nil {
		return h.fail(c, "Note deletion failed", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
