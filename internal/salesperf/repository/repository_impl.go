package repository

import (
	"context"
	"sort"
	"time"

	"github.com/pharmadesk/pharmadesk/internal/salesperf/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// TopProducts groups and sums in application code to keep the
// per-product revenue totals decimal-exact.
func (r *repo) TopProducts(ctx context.Context, db *gorm.DB, start, end time.Time, limit int) ([]domain.ProductRank, error) {
	rows, err := db.WithContext(ctx).Raw(
		`SELECT product_name, quantity, revenue
		 FROM sales_performance
		 WHERE sale_date >= ? AND sale_date <= ?`,
		start,
		end,
	).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := map[string]*domain.ProductRank{}
	for rows.Next() {
		var (
			name     string
			quantity int64
			revenue  decimal.Decimal
		)
		if err := rows.Scan(&name, &quantity, &revenue); err != nil {
			return nil, err
		}
		rank, ok := totals[name]
		if !ok {
			rank = &domain.ProductRank{ProductName: name, Revenue: decimal.Zero}
			totals[name] = rank
		}
		rank.Quantity += quantity
		rank.Revenue = rank.Revenue.Add(revenue)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ranks := make([]domain.ProductRank, 0, len(totals))
	for _, rank := range totals {
		ranks = append(ranks, *rank)
	}
	sort.Slice(ranks, func(i, j int) bool {
		if cmp := ranks[i].Revenue.Cmp(ranks[j].Revenue); cmp != 0 {
			return cmp > 0
		}
		return ranks[i].ProductName < ranks[j].ProductName
	})
	if limit > 0 && len(ranks) > limit {
		ranks = ranks[:limit]
	}
	return ranks, nil
}
