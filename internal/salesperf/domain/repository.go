package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	TopProducts(ctx context.Context, db *gorm.DB, start, end time.Time, limit int) ([]ProductRank, error)
}
