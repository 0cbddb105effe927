package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	// SumByTypeAndStatus sums amount over activities of the given type and
	// status whose transaction_date falls inside [start, end].
	SumByTypeAndStatus(ctx context.Context, db *gorm.DB, typ ActivityType, status ActivityStatus, start, end time.Time) (decimal.Decimal, error)

	List(ctx context.Context, db *gorm.DB, start, end time.Time) ([]FinancialActivity, error)
}
