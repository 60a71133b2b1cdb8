package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClaimList represents one row of the 'claim_list' table.
// Rows are owned by the ingestion pipeline: the UI never mutates them,
// reloads replace them wholesale by primary key.
type ClaimList struct {
	ID            int64            `gorm:"column:id;primaryKey" json:"id"`
	PatientName   string           `gorm:"column:patient_name;size:255" json:"patient_name"`
	BilledAmount  *decimal.Decimal `gorm:"column:billed_amount;type:decimal(15,2)" json:"billed_amount"`
	PaidAmount    *decimal.Decimal `gorm:"column:paid_amount;type:decimal(15,2)" json:"paid_amount"`
	Status        string           `gorm:"column:status;size:100" json:"status"`
	InsurerName   string           `gorm:"column:insurer_name;size:255" json:"insurer_name"`
	DischargeDate *time.Time       `gorm:"column:discharge_date;type:date" json:"discharge_date"`
}

// TableName overrides the table name to match the source schema.
func (ClaimList) TableName() string {
	return "claim_list"
}

// ClaimDetail represents one row of the 'claim_detail' table.
// ClaimID may reference a claim that does not exist; the loader does not
// enforce referential integrity between the two CSV sources.
type ClaimDetail struct {
	ID           int64  `gorm:"column:id;primaryKey" json:"id"`
	ClaimID      int64  `gorm:"column:claim_id;index" json:"claim_id"`
	DenialReason string `gorm:"column:denial_reason;size:500" json:"denial_reason"`
	CPTCodes     string `gorm:"column:cpt_codes;size:500" json:"cpt_codes"`
}

// TableName overrides the table name to match the source schema.
func (ClaimDetail) TableName() string {
	return "claim_detail"
}

// ClaimFlag marks a claim for review. Flags survive reloads as long as the
// claim id survives; the cascade constraint drops them with their claim.
type ClaimFlag struct {
	ID         int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ClaimID    int64      `gorm:"column:claim_id;index" json:"claim_id"`
	Claim      *ClaimList `gorm:"foreignKey:ClaimID;constraint:OnDelete:CASCADE" json:"claim,omitempty"`
	Username   string     `gorm:"column:username;size:150" json:"username"`
	Reason     string     `gorm:"column:reason;size:500" json:"reason"`
	FlaggedAt  time.Time  `gorm:"column:flagged_at" json:"flagged_at"`
	IsResolved bool       `gorm:"column:is_resolved" json:"is_resolved"`
	ResolvedAt *time.Time `gorm:"column:resolved_at" json:"resolved_at,omitempty"`
	ResolvedBy string     `gorm:"column:resolved_by;size:150" json:"resolved_by,omitempty"`
}

// TableName overrides the table name to match the source schema.
func (ClaimFlag) TableName() string {
	return "claim_flag"
}

// ClaimNote is a free-text annotation attached to a claim.
type ClaimNote struct {
	ID        int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ClaimID   int64      `gorm:"column:claim_id;index" json:"claim_id"`
	Claim     *ClaimList `gorm:"foreignKey:ClaimID;constraint:OnDelete:CASCADE" json:"claim,omitempty"`
	Username  string     `gorm:"column:username;size:150" json:"username"`
	Note      string     `gorm:"column:note;type:text" json:"note"`
	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

// TableName overrides the table name to match the source schema.
func (ClaimNote) TableName() string {
	return "claim_note"
}
