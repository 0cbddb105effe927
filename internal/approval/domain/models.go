package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Terminal reports whether no further status transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// PaymentApproval authorizes release of medicine against a paid amount.
// dispense_id is assigned before the first insert and is never empty on
// a durably created record.
type PaymentApproval struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	DispenseID     string          `gorm:"column:dispense_id;uniqueIndex;not null" json:"dispense_id"`
	ApprovedBy     string          `gorm:"not null" json:"approved_by"`
	CreatedBy      string          `gorm:"not null" json:"created_by"`
	ApprovedAmount decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"approved_amount"`
	Status         Status          `gorm:"type:text;not null;index" json:"status"`
	DispensedAt    *time.Time      `json:"dispensed_at,omitempty"`
	CreatedAt      time.Time       `gorm:"not null;index" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null" json:"updated_at"`
}

func (PaymentApproval) TableName() string { return "payment_approvals" }

// ApproverRank is one row of the employee ranking, ordered by approved
// sales count descending with approved_by as the stable tie-break.
type ApproverRank struct {
	ApprovedBy  string          `gorm:"column:approved_by" json:"approved_by"`
	SalesCount  int64           `gorm:"column:sales_count" json:"sales_count"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount" json:"total_amount"`
}
