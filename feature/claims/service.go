package claims

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"claims-tracker/feature/claims/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PageSize is the fixed page size for every listing.
const PageSize = 25

// Sentinel errors the handler maps onto HTTP status codes.
var (
	ErrNotFound  = errors.New("record not found")
	ErrForbidden = errors.New("not allowed")
	ErrEmptyNote = errors.New("note cannot be empty")
)

// Service handles claim queries and annotations.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
	admins map[string]struct{}
}

// NewService creates a claims service. Usernames in admins may resolve or
// delete any flag or note, not just their own.
func NewService(db *gorm.DB, logger *zap.Logger, admins []string) *Service {
	adminSet := make(map[string]struct{}, len(admins))
	for _, name := range admins {
		if name = strings.TrimSpace(name); name != "" {
			adminSet[name] = struct{}{}
		}
	}
	return &Service{db: db, logger: logger, admins: adminSet}
}

func (s *Service) isAdmin(username string) bool {
	_, ok := s.admins[username]
	return ok
}

// excludeTestInsurers filters out rows whose insurer name contains "test",
// case-insensitive. Summary statistics never count test insurers.
func excludeTestInsurers(db *gorm.DB) *gorm.DB {
	return db.Where("LOWER(insurer_name) NOT LIKE ?", "%test%")
}

// ClaimListParams are the search and filter inputs for claim listings.
type ClaimListParams struct {
	Search  string
	Status  string
	Insurer string
	Page    int
}

// ClaimPage is one page of claims plus the distinct filter values.
type ClaimPage struct {
	Claims     []models.ClaimList `json:"claims"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
	TotalCount int64              `json:"total_count"`
	Statuses   []string           `json:"statuses"`
	Insurers   []string           `json:"insurers"`
}

// ListClaims returns a page of claims matching the search and filters,
// ordered by id for stable pagination.
func (s *Service) ListClaims(ctx context.Context, p ClaimListParams) (*ClaimPage, error) {
	query := s.db.WithContext(ctx).Model(&models.ClaimList{})

	if p.Search != "" {
		pattern := "%" + strings.ToLower(p.Search) + "%"
		query = query.Where(
			"CAST(id AS CHAR) LIKE ? OR LOWER(patient_name) LIKE ? OR LOWER(insurer_name) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if p.Status != "" {
		query = query.Where("status = ?", p.Status)
	}
	if p.Insurer != "" {
		query = query.Where("insurer_name = ?", p.Insurer)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count claims: %w", err)
	}

	page := normalizePage(p.Page, total)
	var claims []models.ClaimList
	if err := query.Order("id").Limit(PageSize).Offset((page - 1) * PageSize).Find(&claims).Error; err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}

	statuses, err := s.distinctStatuses(ctx)
	if err != nil {
		return nil, err
	}
	insurers, err := s.distinctInsurers(ctx)
	if err != nil {
		return nil, err
	}

	return &ClaimPage{
		Claims:     claims,
		Page:       page,
		PageSize:   PageSize,
		TotalPages: totalPages(total),
		TotalCount: total,
		Statuses:   statuses,
		Insurers:   insurers,
	}, nil
}

// ClaimBundle is one claim with its related rows and totals.
type ClaimBundle struct {
	Claim        models.ClaimList     `json:"claim"`
	ClaimDetails []models.ClaimDetail `json:"claim_details"`
	Flags        []models.ClaimFlag   `json:"flags"`
	Notes        []models.ClaimNote   `json:"notes"`
	TotalBilled  decimal.Decimal      `json:"total_billed"`
	TotalPaid    decimal.Decimal      `json:"total_paid"`
}

// GetClaim fetches one claim plus its detail rows, flags, and notes.
func (s *Service) GetClaim(ctx context.Context, claimID int64) (*ClaimBundle, error) {
	var claim models.ClaimList
	if err := s.db.WithContext(ctx).First(&claim, claimID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch claim %d: %w", claimID, err)
	}

	bundle := &ClaimBundle{Claim: claim}
	if err := s.db.WithContext(ctx).Where("claim_id = ?", claimID).Order("id").Find(&bundle.ClaimDetails).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch claim details: %w", err)
	}
	if err := s.db.WithContext(ctx).Where("claim_id = ?", claimID).Order("flagged_at DESC").Find(&bundle.Flags).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch flags: %w", err)
	}
	if err := s.db.WithContext(ctx).Where("claim_id = ?", claimID).Order("created_at DESC").Find(&bundle.Notes).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch notes: %w", err)
	}

	if claim.BilledAmount != nil {
		bundle.TotalBilled = *claim.BilledAmount
	}
	if claim.PaidAmount != nil {
		bundle.TotalPaid = *claim.PaidAmount
	}
	return bundle, nil
}

// DetailListParams are the search and filter inputs for detail listings.
type DetailListParams struct {
	Search string
	// DenialReason filters by exact reason. The pseudo-value "No Denial"
	// selects rows with an empty reason.
	DenialReason string
	Page         int
}

// DetailPage is one page of claim details plus distinct denial reasons.
type DetailPage struct {
	Details       []models.ClaimDetail `json:"details"`
	Page          int                  `json:"page"`
	PageSize      int                  `json:"page_size"`
	TotalPages    int                  `json:"total_pages"`
	TotalCount    int64                `json:"total_count"`
	DenialReasons []string             `json:"denial_reasons"`
}

// ListDetails returns a page of claim detail rows matching the filters.
func (s *Service) ListDetails(ctx context.Context, p DetailListParams) (*DetailPage, error) {
	query := s.db.WithContext(ctx).Model(&models.ClaimDetail{})

	if p.Search != "" {
		pattern := "%" + strings.ToLower(p.Search) + "%"
		query = query.Where(
			"CAST(claim_id AS CHAR) LIKE ? OR LOWER(denial_reason) LIKE ? OR LOWER(cpt_codes) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if p.DenialReason != "" {
		if p.DenialReason == "No Denial" {
			query = query.Where("denial_reason = ''")
		} else {
			query = query.Where("denial_reason = ?", p.DenialReason)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count claim details: %w", err)
	}

	page := normalizePage(p.Page, total)
	var details []models.ClaimDetail
	if err := query.Order("id").Limit(PageSize).Offset((page - 1) * PageSize).Find(&details).Error; err != nil {
		return nil, fmt.Errorf("failed to list claim details: %w", err)
	}

	var reasons []string
	err := s.db.WithContext(ctx).Model(&models.ClaimDetail{}).
		Where("denial_reason <> ''").
		Distinct().Order("denial_reason").
		Pluck("denial_reason", &reasons).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list denial reasons: %w", err)
	}

	return &DetailPage{
		Details:       details,
		Page:          page,
		PageSize:      PageSize,
		TotalPages:    totalPages(total),
		TotalCount:    total,
		DenialReasons: reasons,
	}, nil
}

func (s *Service) distinctStatuses(ctx context.Context) ([]string, error) {
	var statuses []string
	err := s.db.WithContext(ctx).Model(&models.ClaimList{}).
		Distinct().Order("status").
		Pluck("status", &statuses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list statuses: %w", err)
	}
	return statuses, nil
}

func (s *Service) distinctInsurers(ctx context.Context) ([]string, error) {
	var insurers []string
	err := excludeTestInsurers(s.db.WithContext(ctx).Model(&models.ClaimList{})).
		Distinct().Order("insurer_name").
		Pluck("insurer_name", &insurers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list insurers: %w", err)
	}
	return insurers, nil
}

func normalizePage(page int, total int64) int {
	if page < 1 {
		return 1
	}
	if max := totalPages(total); page > max {
		return max
	}
	return page
}

func totalPages(total int64) int {
	pages := int((total + PageSize - 1) / PageSize)
	if pages < 1 {
		return 1
	}
	return pages
}
