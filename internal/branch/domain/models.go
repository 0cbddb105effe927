package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Branch struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"not null" json:"name"`
	Code      string       `gorm:"uniqueIndex;not null" json:"code"`
	Active    bool         `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
}

func (Branch) TableName() string { return "branches" }

type BranchCounts struct {
	Active int64 `json:"active"`
	Total  int64 `json:"total"`
}
