package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type ActivityType string

const (
	TypeIncome  ActivityType = "income"
	TypeExpense ActivityType = "expense"
)

type ActivityStatus string

const (
	StatusPending  ActivityStatus = "pending"
	StatusApproved ActivityStatus = "approved"
)

// FinancialActivity is a manually recorded income or expense entry,
// created and approved by a workflow outside this pipeline. Once
// approved it is immutable; transaction_date, not created_at, anchors
// it to a reporting period.
type FinancialActivity struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	Type            ActivityType    `gorm:"type:text;not null;index" json:"type"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Status          ActivityStatus  `gorm:"type:text;not null;index" json:"status"`
	Description     string          `gorm:"type:text" json:"description,omitempty"`
	TransactionDate time.Time       `gorm:"not null;index" json:"transaction_date"`
	CreatedAt       time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null" json:"updated_at"`
}

func (FinancialActivity) TableName() string { return "financial_activities" }
