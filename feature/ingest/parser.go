package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"claims-tracker/feature/claims/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Delimiter separates fields in the source files.
const Delimiter = '|'

// DateLayout is the calendar format used by the source files.
const DateLayout = "2006-01-02"

// maxRowErrorLogs caps per-row warnings so a systematically malformed
// file does not flood the log.
const maxRowErrorLogs = 5

// RowError describes a single rejected row. Rejected rows are skipped;
// the rest of the batch continues.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// parseID parses a required integer primary key. An unparseable or missing
// id invalidates the whole row since everything downstream keys off it.
func parseID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("missing id")
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// parseDecimal coerces a money field. Blank, "nan", or unparseable values
// become nil, never zero, so aggregate sums stay honest.
func parseDecimal(s string) *decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" || s == "nan" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}

// parseDate coerces a calendar date field. Blank, "nan", or malformed
// values become nil.
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" || s == "nan" {
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

// ParseClaimRow converts one named-field record into a ClaimList row.
// Only a bad primary key rejects the row; every other field falls back
// to nil or empty.
func ParseClaimRow(row map[string]string) (*models.ClaimList, error) {
	id, err := parseID(row["id"])
	if err != nil {
		return nil, err
	}
	return &models.ClaimList{
		ID:            id,
		PatientName:   strings.TrimSpace(row["patient_name"]),
		BilledAmount:  parseDecimal(row["billed_amount"]),
		PaidAmount:    parseDecimal(row["paid_amount"]),
		Status:        strings.TrimSpace(row["status"]),
		InsurerName:   strings.TrimSpace(row["insurer_name"]),
		DischargeDate: parseDate(row["discharge_date"]),
	}, nil
}

// ParseClaimDetailRow converts one named-field record into a ClaimDetail row.
// claim_id is required alongside id; it is not checked against claim_list.
func ParseClaimDetailRow(row map[string]string) (*models.ClaimDetail, error) {
	id, err := parseID(row["id"])
	if err != nil {
		return nil, err
	}
	claimID, err := parseID(row["claim_id"])
	if err != nil {
		return nil, fmt.Errorf("claim_id: %w", err)
	}
	return &models.ClaimDetail{
		ID:           id,
		ClaimID:      claimID,
		DenialReason: strings.TrimSpace(row["denial_reason"]),
		CPTCodes:     strings.TrimSpace(row["cpt_codes"]),
	}, nil
}

// readRows streams named-field records from a pipe-delimited file and hands
// each to parse. Rejected rows are counted and skipped; the first few are
// logged with their line number.
func readRows(path string, logger *zap.Logger, parse func(map[string]string) error) (skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = Delimiter
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			skipped++
			if skipped <= maxRowErrorLogs {
				logger.Warn("Skipping malformed row", zap.String("file", path), zap.Int("line", line), zap.Error(err))
			}
			continue
		}

		row := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			}
		}

		if err := parse(row); err != nil {
			skipped++
			if skipped <= maxRowErrorLogs {
				logger.Warn("Skipping row", zap.String("file", path), zap.Int("line", line), zap.Error(&RowError{Line: line, Err: err}))
			}
		}
	}

	if skipped > maxRowErrorLogs {
		logger.Warn("Further row errors suppressed",
			zap.String("file", path),
			zap.Int("skipped", skipped),
		)
	}
	return skipped, nil
}

// ReadClaimListFile parses every row of a claim list file.
// It returns the admitted rows and the number of rows skipped.
func ReadClaimListFile(path string, logger *zap.Logger) ([]models.ClaimList, int, error) {
	var rows []models.ClaimList
	skipped, err := readRows(path, logger, func(row map[string]string) error {
		claim, err := ParseClaimRow(row)
		if err != nil {
			return err
		}
		rows = append(rows, *claim)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return rows, skipped, nil
}

// ReadClaimDetailFile parses every row of a claim detail file.
// It returns the admitted rows and the number of rows skipped.
func ReadClaimDetailFile(path string, logger *zap.Logger) ([]models.ClaimDetail, int, error) {
	var rows []models.ClaimDetail
	skipped, err := readRows(path, logger, func(row map[string]string) error {
		detail, err := ParseClaimDetailRow(row)
		if err != nil {
			return err
		}
		rows = append(rows, *detail)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return rows, skipped, nil
}
