package repository

import (
	"context"
	"database/sql"

	"github.com/bwmarrin/snowflake"
	"github.com/pharmadesk/pharmadesk/internal/inventory/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Medicine, error) {
	var medicine domain.Medicine
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, sku, unit_price, stock, reorder_level, branch_id, created_at, updated_at
		 FROM medicines WHERE id = ?`,
		id,
	).Scan(&medicine).Error
	if err != nil {
		return nil, err
	}
	if medicine.ID == 0 {
		return nil, nil
	}
	return &medicine, nil
}

func (r *repo) GetStock(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	var stock sql.NullInt64
	err := db.WithContext(ctx).Raw(
		`SELECT stock FROM medicines WHERE id = ?`,
		id,
	).Scan(&stock).Error
	if err != nil {
		return 0, err
	}
	if !stock.Valid {
		return 0, domain.ErrNotFound
	}
	return stock.Int64, nil
}

func (r *repo) DecrementStock(ctx context.Context, db *gorm.DB, id snowflake.ID, quantity int64) (bool, error) {
	if quantity <= 0 {
		return false, domain.ErrInvalidQuantity
	}
	res := db.WithContext(ctx).Exec(
		`UPDATE medicines
		 SET stock = stock - ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND stock >= ?`,
		quantity,
		id,
		quantity,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) StockLevels(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]domain.StockLevel, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var levels []domain.StockLevel
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, stock FROM medicines WHERE id IN ? ORDER BY id`,
		ids,
	).Scan(&levels).Error
	if err != nil {
		return nil, err
	}
	return levels, nil
}

func (r *repo) Counts(ctx context.Context, db *gorm.DB, defaultThreshold int64) (domain.StockCounts, error) {
	var counts domain.StockCounts
	err := db.WithContext(ctx).Raw(
		`SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN stock > 0 AND stock <= CASE WHEN reorder_level > 0 THEN reorder_level ELSE ? END THEN 1 ELSE 0 END), 0) AS low_stock,
			COALESCE(SUM(CASE WHEN stock = 0 THEN 1 ELSE 0 END), 0) AS out_of_stock
		 FROM medicines`,
		defaultThreshold,
	).Scan(&counts).Error
	if err != nil {
		return domain.StockCounts{}, err
	}
	return counts, nil
}
