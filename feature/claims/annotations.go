package claims

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"claims-tracker/feature/claims/models"

	"gorm.io/gorm"
)

// FlagClaim flags a claim for review on behalf of username.
func (s *Service) FlagClaim(ctx context.Context, claimID int64, username, reason string) (*models.ClaimFlag, error) {
	var claim models.ClaimList
	if err := s.db.WithContext(ctx).First(&claim, claimID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch claim %d: %w", claimID, err)
	}

	flag := &models.ClaimFlag{
		ClaimID:   claimID,
		Username:  username,
		Reason:    strings.TrimSpace(reason),
		FlaggedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(flag).Error; err != nil {
		return nil, fmt.Errorf("failed to create flag: %w", err)
	}
	return flag, nil
}

// ResolveFlag marks a flag resolved. Resolving an already-resolved flag is
// a no-op; whoever resolves first wins.
func (s *Service) ResolveFlag(ctx context.Context, flagID int64, username string) (*models.ClaimFlag, error) {
	var flag models.ClaimFlag
	if err := s.db.WithContext(ctx).First(&flag, flagID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch flag %d: %w", flagID, err)
	}

	if flag.IsResolved {
		return &flag, nil
	}

	now := time.Now().UTC()
	flag.IsResolved = true
	flag.ResolvedAt = &now
	flag.ResolvedBy = username
	if err := s.db.WithContext(ctx).Save(&flag).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve flag: %w", err)
	}
	return &flag, nil
}

// DeleteFlag removes a flag. Only its owner or an admin may delete it.
func (s *Service) DeleteFlag(ctx context.Context, flagID int64, username string) error {
	var flag models.ClaimFlag
	if err := s.db.WithContext(ctx).First(&flag, flagID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to fetch flag %d: %w", flagID, err)
	}
	if flag.Username != username && !s.isAdmin(username) {
		return ErrForbidden
	}
	if err := s.db.WithContext(ctx).Delete(&flag).Error; err != nil {
		return fmt.Errorf("failed to delete flag: %w", err)
	}
	return nil
}

// AddNote attaches a note to a claim on behalf of username.
func (s *Service) AddNote(ctx context.Context, claimID int64, username, text string) (*models.ClaimNote, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyNote
	}

	var claim models.ClaimList
	if err := s.db.WithContext(ctx).First(&claim, claimID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch claim %d: %w", claimID, err)
	}

	now := time.Now().UTC()
	note := &models.ClaimNote{
		ClaimID:   claimID,
		Username:  username,
		Note:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.WithContext(ctx).Create(note).Error; err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	return note, nil
}

// EditNote replaces a note's text. Only its owner or an admin may edit it.
func (s *Service) EditNote(ctx context.Context, noteID int64, username, text string) (*models.ClaimNote, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyNote
	}

	var note models.ClaimNote
	if err := s.db.WithContext(ctx).First(&note, noteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch note %d: %w", noteID, err)
	}
	if note.Username != username && !s.isAdmin(username) {
		return nil, ErrForbidden
	}

	note.Note = text
	note.UpdatedAt = time.Now().UTC()
	if err := s.db.WithContext(ctx).Save(&note).Error; err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	return &note, nil
}

// DeleteNote removes a note. Only its owner or an admin may delete it.
func (s *Service) DeleteNote(ctx context.Context, noteID int64, username string) error {
	var note models.ClaimNote
	if err := s.db.WithContext(ctx).First(&note, noteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to fetch note %d: %w", noteID, err)
	}
	if note.Username != username && !s.isAdmin(username) {
		return ErrForbidden
	}
	if err := s.db.WithContext(ctx).Delete(&note).Error; err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}

// FlagListParams are the filters for the flagged claims listing.
type FlagListParams struct {
	// Status filters on resolution state: "open", "resolved", or empty for all.
	Status string
	User   string
	Search string
	Page   int
}

// FlagPage is one page of flags, newest first.
type FlagPage struct {
	Flags      []models.ClaimFlag `json:"flags"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
	TotalCount int64              `json:"total_count"`
}

// ListFlags returns a page of flags across all claims.
func (s *Service) ListFlags(ctx context.Context, p FlagListParams) (*FlagPage, error) {
	query := s.db.WithContext(ctx).Model(&models.ClaimFlag{})

	switch p.Status {
	case "open":
		query = query.Where("is_resolved = ?", false)
	case "resolved":
		query = query.Where("is_resolved = ?", true)
	}
	if p.User != "" {
		query = query.Where("username = ?", p.User)
	}
	if p.Search != "" {
		pattern := "%" + strings.ToLower(p.Search) + "%"
		query = query.Where(
			"CAST(claim_id AS CHAR) LIKE ? OR LOWER(reason) LIKE ?",
			pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count flags: %w", err)
	}

	page := normalizePage(p.Page, total)
	var flags []models.ClaimFlag
	err := query.Preload("Claim").
		Order("flagged_at DESC").Limit(PageSize).Offset((page - 1) * PageSize).
		Find(&flags).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list flags: %w", err)
	}

	return &FlagPage{
		Flags:      flags,
		Page:       page,
		PageSize:   PageSize,
		TotalPages: totalPages(total),
		TotalCount: total,
	}, nil
}

// NoteListParams are the filters for the notes listing.
type NoteListParams struct {
	Search string
	User   string
	Page   int
}

// NotePage is one page of notes, newest first.
type NotePage struct {
	Notes      []models.ClaimNote `json:"notes"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
	TotalCount int64              `json:"total_count"`
}

// ListNotes returns a page of notes across all claims.
func (s *Service) ListNotes(ctx context.Context, p NoteListParams) (*NotePage, error) {
	query := s.db.WithContext(ctx).Model(&models.ClaimNote{})

	if p.User != "" {
		query = query.Where("username = ?", p.User)
	}
	if p.Search != "" {
		pattern := "%" + strings.ToLower(p.Search) + "%"
		query = query.Where(
			"CAST(claim_id AS CHAR) LIKE ? OR LOWER(note) LIKE ? OR LOWER(username) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count notes: %w", err)
	}

	page := normalizePage(p.Page, total)
	var notes []models.ClaimNote
	err := query.Preload("Claim").
		Order("created_at DESC").Limit(PageSize).Offset((page - 1) * PageSize).
		Find(&notes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	return &NotePage{
		Notes:      notes,
		Page:       page,
		PageSize:   PageSize,
		TotalPages: totalPages(total),
		TotalCount: total,
	}, nil
}
