package repository

import (
	"context"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pharmadesk/pharmadesk/internal/approval/domain"
	"github.com/pharmadesk/pharmadesk/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, approval *domain.PaymentApproval) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO payment_approvals
			(id, dispense_id, approved_by, created_by, approved_amount, status, dispensed_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		approval.ID,
		approval.DispenseID,
		approval.ApprovedBy,
		approval.CreatedBy,
		approval.ApprovedAmount,
		approval.Status,
		approval.DispensedAt,
		approval.CreatedAt,
		approval.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.PaymentApproval, error) {
	var approval domain.PaymentApproval
	err := db.WithContext(ctx).Raw(
		`SELECT id, dispense_id, approved_by, created_by, approved_amount, status, dispensed_at, created_at, updated_at
		 FROM payment_approvals WHERE id = ?`,
		id,
	).Scan(&approval).Error
	if err != nil {
		return nil, err
	}
	if approval.ID == 0 {
		return nil, nil
	}
	return &approval, nil
}

func (r *repo) FindByDispenseID(ctx context.Context, db *gorm.DB, dispenseID string) (*domain.PaymentApproval, error) {
	var approval domain.PaymentApproval
	err := db.WithContext(ctx).Raw(
		`SELECT id, dispense_id, approved_by, created_by, approved_amount, status, dispensed_at, created_at, updated_at
		 FROM payment_approvals WHERE dispense_id = ?`,
		dispenseID,
	).Scan(&approval).Error
	if err != nil {
		return nil, err
	}
	if approval.ID == 0 {
		return nil, nil
	}
	return &approval, nil
}

func (r *repo) AssignDispenseID(ctx context.Context, db *gorm.DB, id snowflake.ID, dispenseID string, at time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE payment_approvals
		 SET dispense_id = ?, updated_at = ?
		 WHERE id = ? AND (dispense_id IS NULL OR dispense_id = '')`,
		dispenseID,
		at,
		id,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) TransitionStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to domain.Status, at time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE payment_approvals
		 SET status = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		to,
		at,
		id,
		from,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) MarkDispensed(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE payment_approvals
		 SET dispensed_at = ?, updated_at = ?
		 WHERE id = ? AND dispensed_at IS NULL`,
		at,
		at,
		id,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]*domain.PaymentApproval, int64, error) {
	scoped := func() *gorm.DB {
		stmt := db.WithContext(ctx).Model(&domain.PaymentApproval{})
		if filter.Status != "" {
			stmt = stmt.Where("status = ?", filter.Status)
		}
		return stmt
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var approvals []*domain.PaymentApproval
	err := scoped().
		Order("created_at desc, id desc").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&approvals).Error
	if err != nil {
		return nil, 0, err
	}
	return approvals, total, nil
}

// SumApprovedAmount adds the amounts in application code. SQL SUM over
// DECIMAL columns aggregates in binary floating point on sqlite, which
// loses fractional cents.
func (r *repo) SumApprovedAmount(ctx context.Context, db *gorm.DB, start, end time.Time) (decimal.Decimal, error) {
	rows, err := db.WithContext(ctx).Raw(
		`SELECT approved_amount
		 FROM payment_approvals
		 WHERE status = ? AND created_at >= ? AND created_at <= ?`,
		domain.StatusApproved,
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

func (r *repo) CountApproved(ctx context.Context, db *gorm.DB, start, end time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*)
		 FROM payment_approvals
		 WHERE status = ? AND created_at >= ? AND created_at <= ?`,
		domain.StatusApproved,
		start,
		end,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// TopApprovers groups and sums in application code to keep the
// per-approver totals decimal-exact.
func (r *repo) TopApprovers(ctx context.Context, db *gorm.DB, start, end time.Time, limit int) ([]domain.ApproverRank, error) {
	rows, err := db.WithContext(ctx).Raw(
		`SELECT approved_by, approved_amount
		 FROM payment_approvals
		 WHERE status = ? AND created_at >= ? AND created_at <= ?`,
		domain.StatusApproved,
		start,
		end,
	).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := map[string]*domain.ApproverRank{}
	for rows.Next() {
		var (
			approvedBy string
			amount     decimal.Decimal
		)
		if err := rows.Scan(&approvedBy, &amount); err != nil {
			return nil, err
		}
		rank, ok := totals[approvedBy]
		if !ok {
			rank = &domain.ApproverRank{ApprovedBy: approvedBy, TotalAmount: decimal.Zero}
			totals[approvedBy] = rank
		}
		rank.SalesCount++
		rank.TotalAmount = rank.TotalAmount.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ranks := make([]domain.ApproverRank, 0, len(totals))
	for _, rank := range totals {
		ranks = append(ranks, *rank)
	}
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].SalesCount != ranks[j].SalesCount {
			return ranks[i].SalesCount > ranks[j].SalesCount
		}
		return ranks[i].ApprovedBy < ranks[j].ApprovedBy
	})
	if limit > 0 && len(ranks) > limit {
		ranks = ranks[:limit]
	}
	return ranks, nil
}
