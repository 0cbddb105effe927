package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Medicine is one stock item. Stock is only mutated through the
// dispensing executor's conditional decrement.
type Medicine struct {
	ID           snowflake.ID    `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"not null" json:"name"`
	SKU          string          `gorm:"column:sku;uniqueIndex;not null" json:"sku"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	Stock        int64           `gorm:"not null" json:"stock"`
	ReorderLevel int64           `gorm:"not null;default:0" json:"reorder_level"`
	BranchID     snowflake.ID    `gorm:"index" json:"branch_id"`
	CreatedAt    time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null" json:"updated_at"`
}

func (Medicine) TableName() string { return "medicines" }

// StockCounts is the inventory section of the dashboard snapshot.
type StockCounts struct {
	Total      int64 `json:"total"`
	LowStock   int64 `json:"low_stock"`
	OutOfStock int64 `json:"out_of_stock"`
}

// StockLevel reports the remaining stock of one medicine after dispensing.
type StockLevel struct {
	MedicineID snowflake.ID `gorm:"column:id" json:"medicine_id"`
	Name       string       `gorm:"column:name" json:"name"`
	Stock      int64        `gorm:"column:stock" json:"stock"`
}
