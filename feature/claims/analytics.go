package claims

import (
	"context"
	"fmt"

	"claims-tracker/feature/claims/models"

	"github.com/shopspring/decimal"
)

// StatusCount is the claim count for one status value.
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// InsurerCount is the claim count for one insurer.
type InsurerCount struct {
	InsurerName string `json:"insurer_name"`
	Count       int64  `json:"count"`
}

// DashboardSummary holds the aggregate statistics for the dashboard.
// Test insurers are excluded from every figure.
type DashboardSummary struct {
	TotalClaims     int64              `json:"total_claims"`
	TotalBilled     decimal.Decimal    `json:"total_billed"`
	TotalPaid       decimal.Decimal    `json:"total_paid"`
	AverageClaim    decimal.Decimal    `json:"average_claim"`
	TotalFlagged    int64              `json:"total_flagged"`
	ResolvedFlags   int64              `json:"resolved_flags"`
	AvgUnderpayment decimal.Decimal    `json:"avg_underpayment"`
	ClaimsByStatus  []StatusCount      `json:"claims_by_status"`
	ClaimsByInsurer []InsurerCount     `json:"claims_by_insurer"`
	RecentClaims    []models.ClaimList `json:"recent_claims"`
}

// Dashboard computes the summary statistics for the dashboard view.
func (s *Service) Dashboard(ctx context.Context) (*DashboardSummary, error) {
	summary := &DashboardSummary{}
	db := s.db.WithContext(ctx)

	if err := excludeTestInsurers(db.Model(&models.ClaimList{})).Count(&summary.TotalClaims).Error; err != nil {
		return nil, fmt.Errorf("failed to count claims: %w", err)
	}

	var totals struct {
		TotalBilled decimal.Decimal
		TotalPaid   decimal.Decimal
	}
	err := excludeTestInsurers(db.Model(&models.ClaimList{})).
		Select("COALESCE(SUM(billed_amount), 0) AS total_billed, COALESCE(SUM(paid_amount), 0) AS total_paid").
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum amounts: %w", err)
	}
	summary.TotalBilled = totals.TotalBilled
	summary.TotalPaid = totals.TotalPaid

	if summary.TotalClaims > 0 {
		summary.AverageClaim = summary.TotalBilled.Div(decimal.NewFromInt(summary.TotalClaims)).Round(2)
	}

	if err := db.Model(&models.ClaimFlag{}).Where("is_resolved = ?", false).Count(&summary.TotalFlagged).Error; err != nil {
		return nil, fmt.Errorf("failed to count open flags: %w", err)
	}
	if err := db.Model(&models.ClaimFlag{}).Where("is_resolved = ?", true).Count(&summary.ResolvedFlags).Error; err != nil {
		return nil, fmt.Errorf("failed to count resolved flags: %w", err)
	}

	var underpayment struct {
		Avg decimal.Decimal
	}
	err = excludeTestInsurers(db.Model(&models.ClaimList{})).
		Where("billed_amount > 0 AND paid_amount < billed_amount").
		Select("COALESCE(SUM(billed_amount - paid_amount) / COUNT(id), 0) AS avg").
		Scan(&underpayment).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute underpayment: %w", err)
	}
	summary.AvgUnderpayment = underpayment.Avg.Round(2)

	err = excludeTestInsurers(db.Model(&models.ClaimList{})).
		Select("status, COUNT(id) AS count").
		Group("status").Order("count DESC").
		Scan(&summary.ClaimsByStatus).Error
	if err != nil {
		return nil, fmt.Errorf("failed to group by status: %w", err)
	}

	err = excludeTestInsurers(db.Model(&models.ClaimList{})).
		Select("insurer_name, COUNT(id) AS count").
		Group("insurer_name").Order("count DESC").
		Scan(&summary.ClaimsByInsurer).Error
	if err != nil {
		return nil, fmt.Errorf("failed to group by insurer: %w", err)
	}

	err = excludeTestInsurers(db.Model(&models.ClaimList{})).
		Order("discharge_date DESC").Limit(10).
		Find(&summary.RecentClaims).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent claims: %w", err)
	}

	return summary, nil
}

// MonthStats aggregates claims for one discharge month.
type MonthStats struct {
	Month       string          `json:"month"`
	Count       int64           `json:"count"`
	TotalBilled decimal.Decimal `json:"total_billed"`
	TotalPaid   decimal.Decimal `json:"total_paid"`
	Average     decimal.Decimal `json:"average"`
}

// InsurerStats aggregates claims for one insurer.
type InsurerStats struct {
	InsurerName string          `json:"insurer_name"`
	Count       int64           `json:"count"`
	TotalBilled decimal.Decimal `json:"total_billed"`
	TotalPaid   decimal.Decimal `json:"total_paid"`
	Average     decimal.Decimal `json:"average"`
}

// AnalyticsReport holds the chart data for the analytics view.
type AnalyticsReport struct {
	TotalClaims   int64           `json:"total_claims"`
	TotalBilled   decimal.Decimal `json:"total_billed"`
	ClaimsByMonth []MonthStats    `json:"claims_by_month"`
	InsurerData   []InsurerStats  `json:"insurer_data"`
}

// monthExpr returns the dialect-specific expression truncating
// discharge_date to the first of its month.
func (s *Service) monthExpr() string {
	if s.db.Dialector.Name() == "sqlite" {
		return "strftime('%Y-%m-01', discharge_date)"
	}
	return "DATE_FORMAT(discharge_date, '%Y-%m-01')"
}

// Analytics computes per-month and per-insurer aggregates.
func (s *Service) Analytics(ctx context.Context) (*AnalyticsReport, error) {
	report := &AnalyticsReport{}
	db := s.db.WithContext(ctx)

	if err := excludeTestInsurers(db.Model(&models.ClaimList{})).Count(&report.TotalClaims).Error; err != nil {
		return nil, fmt.Errorf("failed to count claims: %w", err)
	}

	var billed struct {
		Total decimal.Decimal
	}
	err := excludeTestInsurers(db.Model(&models.ClaimList{})).
		Select("COALESCE(SUM(billed_amount), 0) AS total").
		Scan(&billed).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum billed amounts: %w", err)
	}
	report.TotalBilled = billed.Total

	err = excludeTestInsurers(db.Model(&models.ClaimList{})).
		Select(s.monthExpr()+" AS month, COUNT(id) AS count, COALESCE(SUM(billed_amount), 0) AS total_billed, COALESCE(SUM(paid_amount), 0) AS total_paid").
		Where("discharge_date IS NOT NULL").
		Group("month").Order("month").
		Scan(&report.ClaimsByMonth).Error
	if err != nil {
		return nil, fmt.Errorf("failed to group by month: %w", err)
	}
	for i := range report.ClaimsByMonth {
		m := &report.ClaimsByMonth[i]
		if m.Count > 0 {
			m.Average = m.TotalBilled.Div(decimal.NewFromInt(m.Count)).Round(2)
		}
	}

	err = excludeTestInsurers(db.Model(&models.ClaimList{})).
		Select("insurer_name, COUNT(id) AS count, COALESCE(SUM(billed_amount), 0) AS total_billed, COALESCE(SUM(paid_amount), 0) AS total_paid").
		Group("insurer_name").Order("total_paid DESC").Limit(10).
		Scan(&report.InsurerData).Error
	if err != nil {
		return nil, fmt.Errorf("failed to group by insurer: %w", err)
	}
	for i := range report.InsurerData {
		ins := &report.InsurerData[i]
		if ins.Count > 0 {
			ins.Average = ins.TotalPaid.Div(decimal.NewFromInt(ins.Count)).Round(2)
		}
	}

	return report, nil
}
