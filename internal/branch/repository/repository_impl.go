package repository

import (
	"context"

	"github.com/pharmadesk/pharmadesk/internal/branch/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Counts(ctx context.Context, db *gorm.DB) (domain.BranchCounts, error) {
	var counts domain.BranchCounts
	err := db.WithContext(ctx).Raw(
		`SELECT
			COALESCE(SUM(CASE WHEN active THEN 1 ELSE 0 END), 0) AS active,
			COUNT(*) AS total
		 FROM branches`,
	).Scan(&counts).Error
	if err != nil {
		return domain.BranchCounts{}, err
	}
	return counts, nil
}
