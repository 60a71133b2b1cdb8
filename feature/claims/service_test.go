package claims_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"claims-tracker/core/database"
	"claims-tracker/feature/claims"
	"claims-tracker/feature/claims/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{
		Driver: database.DriverSQLite,
		Path:   ":memory:",
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.ClaimList{},
		&models.ClaimDetail{},
		&models.ClaimFlag{},
		&models.ClaimNote{},
	))
	return db
}

func newTestService(t *testing.T, admins ...string) (*claims.Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return claims.NewService(db, zap.NewNop(), admins), db
}

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func seedClaims(t *testing.T, db *gorm.DB) {
	t.Helper()
	rows := []models.ClaimList{
		{ID: 30001, PatientName: "Jane Doe", BilledAmount: amount("1500.50"), PaidAmount: amount("1200.00"), Status: "Denied", InsurerName: "Acme Health", DischargeDate: date("2024-01-15")},
		{ID: 30002, PatientName: "John Roe", BilledAmount: amount("250.00"), Status: "Under Review", InsurerName: "United Care", DischargeDate: date("2024-02-01")},
		{ID: 30003, PatientName: "Alice Poe", BilledAmount: amount("980.00"), PaidAmount: amount("980.00"), Status: "Paid", InsurerName: "Acme Health", DischargeDate: date("2024-02-20")},
		{ID: 30004, PatientName: "Internal QA", BilledAmount: amount("10.00"), PaidAmount: amount("0.00"), Status: "Denied", InsurerName: "TEST Insurance Co", DischargeDate: date("2024-03-01")},
	}
	require.NoError(t, db.Create(&rows).Error)

	details := []models.ClaimDetail{
		{ID: 1, ClaimID: 30001, DenialReason: "Policy terminated", CPTCodes: "99204,82947"},
		{ID: 2, ClaimID: 30001, DenialReason: "", CPTCodes: "99215"},
		{ID: 3, ClaimID: 30003, DenialReason: "Prior authorization missing", CPTCodes: "82947"},
	}
	require.NoError(t, db.Create(&details).Error)
}

func TestService_ListClaims(t *testing.T) {
	ctx := context.Background()

	t.Run("ReturnsAllWithFilters", func(t *testing.T) {
		svc, db := newTestService(t)
		seedClaims(t, db)

		page, err := svc.ListClaims(ctx, claims.ClaimListParams{})
		require.NoError(t, err)
		assert.Equal(t, int64(4), page.TotalCount)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, 1, page.TotalPages)
		assert.Equal(t, claims.PageSize, page.PageSize)
		assert.Equal(t, []string{"Denied", "Paid", "Under Review"}, page.Statuses)
		// Test insurers are hidden from the filter list but not the rows.
		assert.Equal(t, []string{"Acme Health", "United Care"}, page.Insurers)
	})

	t.Run("SearchMatchesIDPatientAndInsurer", func(t *testing.T) {
		svc, db := newTestService(t)
		seedClaims(t, db)

		page, err := svc.ListClaims(ctx, claims.ClaimListParams{Search: "30001"})
		require.NoError(t, err)
		require.Len(t, page.Claims, 1)
		assert.Equal(t, int64(30001), page.Claims[0].ID)

		page, err = svc.ListClaims(ctx, claims.ClaimListParams{Search: "jane"})
		require.NoError(t, err)
		require.Len(t, page.Claims, 1)
		assert.Equal(t, "Jane Doe", page.Claims[0].PatientName)

		page, err = svc.ListClaims(ctx, claims.ClaimListParams{Search: "acme"})
		require.NoError(t, err)
		assert.Len(t, page.Claims, 2)
	})

	t.Run("StatusAndInsurerFilters", func(t *testing.T) {
		svc, db := newTestService(t)
		seedClaims(t, db)

		page, err := svc.ListClaims(ctx, claims.ClaimListParams{Status: "Denied"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.TotalCount)

		page, err = svc.ListClaims(ctx, claims.ClaimListParams{Status: "Denied", Insurer: "Acme Health"})
		require.NoError(t, err)
		require.Len(t, page.Claims, 1)
		assert.Equal(t, int64(30001), page.Claims[0].ID)
	})

	t.Run("PageOutOfRangeClampsToLast", func(t *testing.T) {
		svc, db := newTestService(t)
		seedClaims(t, db)

		page, err := svc.ListClaims(ctx, claims.ClaimListParams{Page: 99})
		require.NoError(t, err)
		assert.Equal(t, 1, page.Page)
		assert.Len(t, page.Claims, 4)

		page, err = svc.ListClaims(ctx, claims.ClaimListParams{Page: -3})
		require.NoError(t, err)
		assert.Equal(t, 1, page.Page)
	})

	t.Run("Pagination", func(t *testing.T) {
		svc, db := newTestService(t)
		var rows []models.ClaimList
		for i := 1; i <= 60; i++ {
			rows = append(rows, models.ClaimList{ID: int64(i), PatientName: fmt.Sprintf("Patient %d", i), InsurerName: "Acme", Status: "Paid"})
		}
		require.NoError(t, db.Create(&rows).Error)

		page, err := svc.ListClaims(ctx, claims.ClaimListParams{Page: 3})
		require.NoError(t, err)
		assert.Equal(t, 3, page.Page)
		assert.Equal(t, 3, page.TotalPages)
		require.Len(t, page.Claims, 10)
		assert.Equal(t, int64(51), page.Claims[0].ID)
	})
}

func TestService_GetClaim(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	seedClaims(t, db)

	t.Run("BundlesRelatedRows", func(t *testing.T) {
		bundle, err := svc.GetClaim(ctx, 30001)
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", bundle.Claim.PatientName)
		assert.Len(t, bundle.ClaimDetails, 2)
		assert.True(t, bundle.TotalBilled.Equal(decimal.RequireFromString("1500.50")))
		assert.True(t, bundle.TotalPaid.Equal(decimal.RequireFromString("1200.00")))
	})

	t.Run("NilAmountsAreZeroTotals", func(t *testing.T) {
		bundle, err := svc.GetClaim(ctx, 30002)
		require.NoError(t, err)
		assert.True(t, bundle.TotalPaid.IsZero())
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := svc.GetClaim(ctx, 99999)
		assert.ErrorIs(t, err, claims.ErrNotFound)
	})
}

func TestService_ListDetails(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	seedClaims(t, db)

	t.Run("ListsAllWithReasons", func(t *testing.T) {
		page, err := svc.ListDetails(ctx, claims.DetailListParams{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.TotalCount)
		assert.Equal(t, []string{"Policy terminated", "Prior authorization missing"}, page.DenialReasons)
	})

	t.Run("NoDenialSelectsEmptyReason", func(t *testing.T) {
		page, err := svc.ListDetails(ctx, claims.DetailListParams{DenialReason: "No Denial"})
		require.NoError(t, err)
		require.Len(t, page.Details, 1)
		assert.Equal(t, int64(2), page.Details[0].ID)
	})

	t.Run("SearchByClaimID", func(t *testing.T) {
		page, err := svc.ListDetails(ctx, claims.DetailListParams{Search: "30003"})
		require.NoError(t, err)
		require.Len(t, page.Details, 1)
		assert.Equal(t, int64(3), page.Details[0].ID)
	})

	t.Run("SearchByCPTCode", func(t *testing.T) {
		page, err := svc.ListDetails(ctx, claims.DetailListParams{Search: "82947"})
		require.NoError(t, err)
		assert.Len(t, page.Details, 2)
	})
}
