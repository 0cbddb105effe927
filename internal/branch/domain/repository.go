package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Counts(ctx context.Context, db *gorm.DB) (BranchCounts, error)
}
