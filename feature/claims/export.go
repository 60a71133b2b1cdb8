package claims

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"claims-tracker/core/utils"
	"claims-tracker/feature/claims/models"

	"github.com/shopspring/decimal"
)

// exportHeader is the fixed column order of the claim export.
var exportHeader = []string{
	"Claim ID",
	"Patient Name",
	"Insurer",
	"Status",
	"Discharge Date",
	"Billed Amount",
	"Paid Amount",
	"Detail ID",
	"CPT Codes",
	"Denial Reason",
}

// Export is a rendered claim export ready to be served as an attachment.
type Export struct {
	Filename string
	Content  []byte
}

// ExportClaim renders one claim and its detail rows as CSV. Claims with no
// detail rows still produce a single row carrying the claim columns.
func (s *Service) ExportClaim(ctx context.Context, claimID int64) (*Export, error) {
	bundle, err := s.GetClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}
	claim := bundle.Claim

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("failed to write export header: %w", err)
	}

	claimCols := []string{
		strconv.FormatInt(claim.ID, 10),
		orDash(claim.PatientName),
		orDash(claim.InsurerName),
		orDash(claim.Status),
		exportDate(&claim),
		exportAmount(claim.BilledAmount),
		exportAmount(claim.PaidAmount),
	}

	if len(bundle.ClaimDetails) == 0 {
		row := append(append([]string{}, claimCols...), "-", "-", "-")
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write export row: %w", err)
		}
	}
	for _, detail := range bundle.ClaimDetails {
		row := append(append([]string{}, claimCols...),
			strconv.FormatInt(detail.ID, 10),
			normalizeCPTCodes(detail.CPTCodes),
			orDash(detail.DenialReason),
		)
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write export row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to render export: %w", err)
	}

	return &Export{
		Filename: exportFilename(claim),
		Content:  buf.Bytes(),
	}, nil
}

// exportFilename builds "<id>-<safe-patient>.csv" from the claim.
func exportFilename(claim models.ClaimList) string {
	patient := strings.TrimSpace(claim.PatientName)
	if patient == "" {
		patient = "patient"
	}
	return fmt.Sprintf("%d-%s.csv", claim.ID, utils.SanitizeFilename(patient))
}

// normalizeCPTCodes turns a raw code blob ("['99213', '99214']" or
// "99213,99214") into a "; "-joined list, or "-" when empty.
func normalizeCPTCodes(raw string) string {
	if raw == "" {
		return "-"
	}
	var codes []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.Trim(strings.TrimSpace(part), "[]'\"")
		if part != "" {
			codes = append(codes, part)
		}
	}
	if len(codes) == 0 {
		return "-"
	}
	return strings.Join(codes, "; ")
}

func exportDate(claim *models.ClaimList) string {
	if claim.DischargeDate == nil {
		return "-"
	}
	return claim.DischargeDate.Format("01/02/2006")
}

func exportAmount(amount *decimal.Decimal) string {
	if amount == nil {
		return decimal.Zero.StringFixed(2)
	}
	return amount.StringFixed(2)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
