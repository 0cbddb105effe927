package repository

import (
	"context"
	"time"

	"github.com/pharmadesk/pharmadesk/internal/finance/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// SumByTypeAndStatus adds the amounts in application code. SQL SUM over
// DECIMAL columns aggregates in binary floating point on sqlite, which
// loses fractional cents.
func (r *repo) SumByTypeAndStatus(ctx context.Context, db *gorm.DB, typ domain.ActivityType, status domain.ActivityStatus, start, end time.Time) (decimal.Decimal, error) {
	rows, err := db.WithContext(ctx).Raw(
		`SELECT amount
		 FROM financial_activities
		 WHERE type = ? AND status = ? AND transaction_date >= ? AND transaction_date <= ?`,
		typ,
		status,
		start,
		end,
	).Rows()
	if err != nil {
		return decimal.Zero, err
	}
	defer rows.Close()

	sum := decimal.Zero
	for rows.Next() {
		var amount decimal.Decimal
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, err
		}
		sum = sum.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, start, end time.Time) ([]domain.FinancialActivity, error) {
	var activities []domain.FinancialActivity
	err := db.WithContext(ctx).Raw(
		`SELECT id, type, amount, status, description, transaction_date, created_at, updated_at
		 FROM financial_activities
		 WHERE transaction_date >= ? AND transaction_date <= ?
		 ORDER BY transaction_date DESC, id DESC`,
		start,
		end,
	).Scan(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}
