package ingest_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"claims-tracker/feature/ingest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseClaimRow(t *testing.T) {
	t.Run("ValidRow", func(t *testing.T) {
		claim, err := ingest.ParseClaimRow(map[string]string{
			"id":             "30001",
			"patient_name":   "Jane Doe",
			"billed_amount":  "1500.50",
			"paid_amount":    "1200.00",
			"status":         "Denied",
			"insurer_name":   "Acme Health",
			"discharge_date": "2024-01-15",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(30001), claim.ID)
		assert.Equal(t, "Jane Doe", claim.PatientName)
		require.NotNil(t, claim.BilledAmount)
		assert.True(t, claim.BilledAmount.Equal(decimal.RequireFromString("1500.50")))
		require.NotNil(t, claim.PaidAmount)
		assert.True(t, claim.PaidAmount.Equal(decimal.RequireFromString("1200.00")))
		assert.Equal(t, "Denied", claim.Status)
		assert.Equal(t, "Acme Health", claim.InsurerName)
		require.NotNil(t, claim.DischargeDate)
		assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), *claim.DischargeDate)
	})

	t.Run("BlankAmountBecomesNil", func(t *testing.T) {
		claim, err := ingest.ParseClaimRow(map[string]string{
			"id":             "1",
			"patient_name":   "Jane Doe",
			"billed_amount":  "100.00",
			"paid_amount":    "",
			"status":         "Denied",
			"insurer_name":   "Acme",
			"discharge_date": "2024-01-15",
		})
		require.NoError(t, err)
		require.NotNil(t, claim.BilledAmount)
		assert.Nil(t, claim.PaidAmount, "blank amount must be nil, not zero")
	})

	t.Run("NanAndGarbageBecomeNil", func(t *testing.T) {
		claim, err := ingest.ParseClaimRow(map[string]string{
			"id":             "2",
			"billed_amount":  "nan",
			"paid_amount":    "twelve",
			"discharge_date": "01/15/2024",
		})
		require.NoError(t, err)
		assert.Nil(t, claim.BilledAmount)
		assert.Nil(t, claim.PaidAmount)
		assert.Nil(t, claim.DischargeDate)
	})

	t.Run("MissingIDRejectsRow", func(t *testing.T) {
		_, err := ingest.ParseClaimRow(map[string]string{
			"patient_name": "Jane Doe",
		})
		assert.Error(t, err)
	})

	t.Run("BadIDRejectsRow", func(t *testing.T) {
		_, err := ingest.ParseClaimRow(map[string]string{
			"id": "abc",
		})
		assert.Error(t, err)
	})

	t.Run("TrimsWhitespace", func(t *testing.T) {
		claim, err := ingest.ParseClaimRow(map[string]string{
			"id":           " 3 ",
			"patient_name": "  Jane Doe ",
			"status":       " Paid ",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), claim.ID)
		assert.Equal(t, "Jane Doe", claim.PatientName)
		assert.Equal(t, "Paid", claim.Status)
	})
}

func TestParseClaimDetailRow(t *testing.T) {
	t.Run("ValidRow", func(t *testing.T) {
		detail, err := ingest.ParseClaimDetailRow(map[string]string{
			"id":            "1",
			"claim_id":      "30001",
			"denial_reason": "Policy terminated",
			"cpt_codes":     "99204,82947",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), detail.ID)
		assert.Equal(t, int64(30001), detail.ClaimID)
		assert.Equal(t, "Policy terminated", detail.DenialReason)
		assert.Equal(t, "99204,82947", detail.CPTCodes)
	})

	t.Run("MissingClaimIDRejectsRow", func(t *testing.T) {
		_, err := ingest.ParseClaimDetailRow(map[string]string{
			"id": "1",
		})
		assert.Error(t, err)
	})
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadClaimListFile(t *testing.T) {
	logger := zap.NewNop()

	t.Run("SkipsBadRowsKeepsGoodOnes", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "claim_list_data.csv",
			"id|patient_name|billed_amount|paid_amount|status|insurer_name|discharge_date\n"+
				"1|Jane Doe|100.00||Denied|Acme|2024-01-15\n"+
				"bogus|Bad Row|1.00|1.00|Paid|Acme|2024-01-16\n"+
				"2|John Roe|250.00|200.00|Paid|United|2024-02-01\n")

		rows, skipped, err := ingest.ReadClaimListFile(path, logger)
		require.NoError(t, err)
		assert.Equal(t, 1, skipped)
		require.Len(t, rows, 2)
		assert.Equal(t, int64(1), rows[0].ID)
		assert.Nil(t, rows[0].PaidAmount)
		assert.Equal(t, int64(2), rows[1].ID)
	})

	t.Run("ShortRecordFallsBackToBlank", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "claim_list_data.csv",
			"id|patient_name|billed_amount\n"+
				"5|Jane Doe\n")

		rows, skipped, err := ingest.ReadClaimListFile(path, logger)
		require.NoError(t, err)
		assert.Equal(t, 0, skipped)
		require.Len(t, rows, 1)
		assert.Nil(t, rows[0].BilledAmount)
	})

	t.Run("EmptyFile", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "claim_list_data.csv", "")

		rows, skipped, err := ingest.ReadClaimListFile(path, logger)
		require.NoError(t, err)
		assert.Equal(t, 0, skipped)
		assert.Empty(t, rows)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, _, err := ingest.ReadClaimListFile(filepath.Join(t.TempDir(), "nope.csv"), logger)
		assert.Error(t, err)
	})
}

func TestReadClaimDetailFile(t *testing.T) {
	logger := zap.NewNop()

	path := writeFile(t, t.TempDir(), "claim_detail_data.csv",
		"id|claim_id|denial_reason|cpt_codes\n"+
			"1|30001|Policy terminated|99204,82947\n"+
			"2|x|Bad claim id|99204\n")

	rows, skipped, err := ingest.ReadClaimDetailFile(path, logger)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(30001), rows[0].ClaimID)
}
