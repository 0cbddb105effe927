package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	branchdomain "github.com/pharmadesk/pharmadesk/internal/branch/domain"
	inventorydomain "github.com/pharmadesk/pharmadesk/internal/inventory/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultBranchName = "Main Pharmacy"
	defaultBranchCode = "main"
)

// EnsureDemoData seeds a branch and a small medicine catalog so a fresh
// development database can serve the dashboard and dispensing flows.
// Idempotent; existing rows are left untouched.
func EnsureDemoData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		branch, err := ensureMainBranchTx(ctx, tx, node)
		if err != nil {
			return err
		}
		return ensureMedicinesTx(ctx, tx, node, branch.ID)
	})
}

func ensureMainBranchTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (branchdomain.Branch, error) {
	var branch branchdomain.Branch
	err := tx.WithContext(ctx).
		Where("code = ?", defaultBranchCode).
		First(&branch).Error
	if err == nil {
		return branch, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return branchdomain.Branch{}, err
	}

	branch = branchdomain.Branch{
		ID:        node.Generate(),
		Name:      defaultBranchName,
		Code:      defaultBranchCode,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(&branch).Error; err != nil {
		return branchdomain.Branch{}, err
	}
	return branch, nil
}

func ensureMedicinesTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, branchID snowflake.ID) error {
	now := time.Now().UTC()

	catalog := []inventorydomain.Medicine{
		{Name: "Paracetamol 500mg", SKU: "MED-PARA-500", UnitPrice: decimal.NewFromInt(5000), Stock: 200, ReorderLevel: 20},
		{Name: "Amoxicillin 250mg", SKU: "MED-AMOX-250", UnitPrice: decimal.NewFromInt(12000), Stock: 120, ReorderLevel: 15},
		{Name: "Ibuprofen 400mg", SKU: "MED-IBU-400", UnitPrice: decimal.NewFromInt(8000), Stock: 150, ReorderLevel: 20},
		{Name: "Cetirizine 10mg", SKU: "MED-CETI-10", UnitPrice: decimal.NewFromInt(6500), Stock: 80, ReorderLevel: 10},
		{Name: "Omeprazole 20mg", SKU: "MED-OMEP-20", UnitPrice: decimal.NewFromInt(15000), Stock: 60, ReorderLevel: 10},
	}

	for _, medicine := range catalog {
		var count int64
		if err := tx.WithContext(ctx).
			Model(&inventorydomain.Medicine{}).
			Where("sku = ?", medicine.SKU).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		medicine.ID = node.Generate()
		medicine.BranchID = branchID
		medicine.CreatedAt = now
		medicine.UpdatedAt = now
		if err := tx.WithContext(ctx).Create(&medicine).Error; err != nil {
			return err
		}
	}
	return nil
}
