package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Medicine, error)
	GetStock(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)

	// DecrementStock applies a conditional decrement and reports whether
	// a row was updated; false means the medicine is missing or short.
	DecrementStock(ctx context.Context, db *gorm.DB, id snowflake.ID, quantity int64) (bool, error)

	StockLevels(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]StockLevel, error)

	// Counts classifies stock using each medicine's reorder_level, falling
	// back to defaultThreshold where none is set.
	Counts(ctx context.Context, db *gorm.DB, defaultThreshold int64) (StockCounts, error)
}

var (
	ErrNotFound        = errors.New("medicine_not_found")
	ErrInvalidQuantity = errors.New("invalid_quantity")
)
