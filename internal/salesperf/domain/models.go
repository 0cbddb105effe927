package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// SalesPerformance is a per-product, per-day sales record. This pipeline
// only reads it; rows are produced by the catalog import collaborator.
type SalesPerformance struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	ProductName string          `gorm:"not null;index" json:"product_name"`
	Quantity    int64           `gorm:"not null" json:"quantity"`
	Revenue     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"revenue"`
	SaleDate    time.Time       `gorm:"not null;index" json:"sale_date"`
	BranchID    snowflake.ID    `gorm:"index" json:"branch_id"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
}

func (SalesPerformance) TableName() string { return "sales_performance" }

// ProductRank is one row of the product ranking, ordered by revenue
// descending with product_name as the stable tie-break.
type ProductRank struct {
	ProductName string          `gorm:"column:product_name" json:"product_name"`
	Quantity    int64           `gorm:"column:quantity" json:"quantity"`
	Revenue     decimal.Decimal `gorm:"column:revenue" json:"revenue"`
}
