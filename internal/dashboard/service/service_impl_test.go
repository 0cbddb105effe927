package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	approvalrepository "github.com/pharmadesk/pharmadesk/internal/approval/repository"
	branchrepository "github.com/pharmadesk/pharmadesk/internal/branch/repository"
	"github.com/pharmadesk/pharmadesk/internal/clock"
	"github.com/pharmadesk/pharmadesk/internal/config"
	"github.com/pharmadesk/pharmadesk/internal/dashboard/domain"
	financerepository "github.com/pharmadesk/pharmadesk/internal/finance/repository"
	inventoryrepository "github.com/pharmadesk/pharmadesk/internal/inventory/repository"
	revenueservice "github.com/pharmadesk/pharmadesk/internal/revenue/service"
	salesperfrepository "github.com/pharmadesk/pharmadesk/internal/salesperf/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type dashboardFixture struct {
	svc  domain.Service
	conn *gorm.DB
	node *snowflake.Node
	clk  *clock.FakeClock
}

func setupDashboard(t *testing.T) *dashboardFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	for _, stmt := range []string{
		`CREATE TABLE payment_approvals (
			id INTEGER PRIMARY KEY,
			dispense_id TEXT NOT NULL DEFAULT '',
			approved_by TEXT NOT NULL,
			created_by TEXT NOT NULL,
			approved_amount NUMERIC NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'pending',
			dispensed_at DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE financial_activities (
			id INTEGER PRIMARY KEY,
			type TEXT NOT NULL,
			amount NUMERIC NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'pending',
			description TEXT,
			transaction_date DATETIME NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE medicines (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			sku TEXT NOT NULL UNIQUE,
			unit_price NUMERIC NOT NULL DEFAULT 0,
			stock INTEGER NOT NULL DEFAULT 0,
			reorder_level INTEGER NOT NULL DEFAULT 0,
			branch_id INTEGER,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE branches (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			code TEXT NOT NULL UNIQUE,
			active BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE sales_performance (
			id INTEGER PRIMARY KEY,
			product_name TEXT NOT NULL,
			quantity INTEGER NOT NULL DEFAULT 0,
			revenue NUMERIC NOT NULL DEFAULT 0,
			sale_date DATETIME NOT NULL,
			branch_id INTEGER,
			created_at DATETIME NOT NULL
		)`,
	} {
		require.NoError(t, conn.Exec(stmt).Error)
	}

	node, err := snowflake.NewNode(5)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2026, time.May, 20, 15, 0, 0, 0, time.UTC))

	approvals := approvalrepository.Provide()
	revenueSvc := revenueservice.New(revenueservice.Params{
		DB:         conn,
		Log:        zap.NewNop(),
		Approvals:  approvals,
		Activities: financerepository.Provide(),
	})

	svc := New(Params{
		DB:        conn,
		Log:       zap.NewNop(),
		Cfg:       config.Config{LowStockThreshold: 10, DashboardTopN: 3},
		Revenue:   revenueSvc,
		Approvals: approvals,
		Medicines: inventoryrepository.Provide(),
		Branches:  branchrepository.Provide(),
		Sales:     salesperfrepository.Provide(),
		Clock:     clk,
	})

	return &dashboardFixture{svc: svc, conn: conn, node: node, clk: clk}
}

func (f *dashboardFixture) seedApproval(t *testing.T, approvedBy, amount string, createdAt time.Time) {
	t.Helper()
	id := f.node.Generate()
	require.NoError(t, f.conn.Exec(
		`INSERT INTO payment_approvals (id, dispense_id, approved_by, created_by, approved_amount, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, 'approved', ?, ?)`,
		id, fmt.Sprintf("DISP-2026-%04d", id%9999+1), approvedBy, approvedBy, amount, createdAt, createdAt,
	).Error)
}

func (f *dashboardFixture) seedMedicine(t *testing.T, name string, stock, reorderLevel int64) {
	t.Helper()
	now := f.clk.Now()
	id := f.node.Generate()
	require.NoError(t, f.conn.Exec(
		`INSERT INTO medicines (id, name, sku, stock, reorder_level, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, name, fmt.Sprintf("SKU-%s", id), stock, reorderLevel, now, now,
	).Error)
}

func (f *dashboardFixture) seedBranch(t *testing.T, code string, active bool) {
	t.Helper()
	require.NoError(t, f.conn.Exec(
		`INSERT INTO branches (id, name, code, active, created_at) VALUES (?, ?, ?, ?, ?)`,
		f.node.Generate(), code, code, active, f.clk.Now(),
	).Error)
}

func (f *dashboardFixture) seedSale(t *testing.T, product string, quantity int64, revenue string, saleDate time.Time) {
	t.Helper()
	require.NoError(t, f.conn.Exec(
		`INSERT INTO sales_performance (id, product_name, quantity, revenue, sale_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		f.node.Generate(), product, quantity, revenue, saleDate, saleDate,
	).Error)
}

func TestOverviewPopulatedSnapshot(t *testing.T) {
	f := setupDashboard(t)
	thisMonth := time.Date(2026, time.May, 5, 10, 0, 0, 0, time.UTC)
	lastMonth := time.Date(2026, time.April, 5, 10, 0, 0, 0, time.UTC)

	f.seedApproval(t, "budi", "1500000", thisMonth)
	f.seedApproval(t, "budi", "250000", thisMonth)
	f.seedApproval(t, "sari", "900000", thisMonth)
	f.seedApproval(t, "budi", "1000000", lastMonth)

	f.seedMedicine(t, "Paracetamol", 100, 0)
	f.seedMedicine(t, "Amoxicillin", 5, 0)
	f.seedMedicine(t, "Ibuprofen", 0, 0)

	f.seedBranch(t, "main", true)
	f.seedBranch(t, "north", true)
	f.seedBranch(t, "closed", false)

	f.seedSale(t, "Paracetamol", 40, "400000", thisMonth)
	f.seedSale(t, "Amoxicillin", 10, "500000", thisMonth)
	f.seedSale(t, "Paracetamol", 5, "50000", lastMonth)

	snapshot, err := f.svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snapshot.Degraded)

	assert.True(t, snapshot.Revenue.CurrentMonth.PaymentRevenue.Equal(decimal.NewFromInt(2650000)))
	assert.True(t, snapshot.Revenue.PreviousNetRevenue.Equal(decimal.NewFromInt(1000000)))
	assert.Equal(t, "165.00", snapshot.Revenue.GrowthPercentage)

	assert.Equal(t, int64(3), snapshot.Inventory.Total)
	assert.Equal(t, int64(1), snapshot.Inventory.LowStock)
	assert.Equal(t, int64(1), snapshot.Inventory.OutOfStock)

	assert.Equal(t, int64(2), snapshot.Branches.Active)
	assert.Equal(t, int64(3), snapshot.Branches.Total)

	require.Len(t, snapshot.TopProducts, 2)
	assert.Equal(t, "Amoxicillin", snapshot.TopProducts[0].ProductName, "ranked by revenue, not quantity")
	assert.Equal(t, "Paracetamol", snapshot.TopProducts[1].ProductName)
	assert.True(t, snapshot.TopProducts[1].Revenue.Equal(decimal.NewFromInt(400000)), "previous month sales excluded")

	require.Len(t, snapshot.TopEmployees, 2)
	assert.Equal(t, "budi", snapshot.TopEmployees[0].ApprovedBy)
	assert.Equal(t, int64(2), snapshot.TopEmployees[0].SalesCount)
	assert.Equal(t, "sari", snapshot.TopEmployees[1].ApprovedBy)
}

func TestOverviewDegradesSectionBySection(t *testing.T) {
	f := setupDashboard(t)
	thisMonth := time.Date(2026, time.May, 5, 10, 0, 0, 0, time.UTC)

	f.seedApproval(t, "budi", "500000", thisMonth)
	f.seedBranch(t, "main", true)

	require.NoError(t, f.conn.Exec(`DROP TABLE medicines`).Error)

	snapshot, err := f.svc.Overview(context.Background())
	require.NoError(t, err, "a degraded section must not fail the snapshot")

	assert.Contains(t, snapshot.Degraded, "inventory")
	assert.NotContains(t, snapshot.Degraded, "revenue")
	assert.NotContains(t, snapshot.Degraded, "branches")

	assert.Zero(t, snapshot.Inventory.Total)
	assert.True(t, snapshot.Revenue.CurrentMonth.PaymentRevenue.Equal(decimal.NewFromInt(500000)))
	assert.Equal(t, int64(1), snapshot.Branches.Active)
}

func TestOverviewRevenueDegradedWhenSourcesGone(t *testing.T) {
	f := setupDashboard(t)
	f.seedBranch(t, "main", true)

	require.NoError(t, f.conn.Exec(`DROP TABLE financial_activities`).Error)

	snapshot, err := f.svc.Overview(context.Background())
	require.NoError(t, err)

	assert.Contains(t, snapshot.Degraded, "revenue")
	assert.Equal(t, "0.00", snapshot.Revenue.GrowthPercentage)
	assert.True(t, snapshot.Revenue.CurrentMonth.NetRevenue.IsZero())
	assert.Equal(t, int64(1), snapshot.Branches.Active)
}

func TestOverviewRankingTieBreak(t *testing.T) {
	f := setupDashboard(t)
	thisMonth := time.Date(2026, time.May, 5, 10, 0, 0, 0, time.UTC)

	f.seedSale(t, "Zinc", 10, "100000", thisMonth)
	f.seedSale(t, "Aspirin", 10, "100000", thisMonth)

	snapshot, err := f.svc.Overview(context.Background())
	require.NoError(t, err)

	require.Len(t, snapshot.TopProducts, 2)
	assert.Equal(t, "Aspirin", snapshot.TopProducts[0].ProductName, "equal revenue orders by name")
	assert.Equal(t, "Zinc", snapshot.TopProducts[1].ProductName)
}

func TestCashierSummary(t *testing.T) {
	f := setupDashboard(t)
	today := time.Date(2026, time.May, 20, 8, 30, 0, 0, time.UTC)
	yesterday := time.Date(2026, time.May, 19, 8, 30, 0, 0, time.UTC)

	f.seedApproval(t, "budi", "120000", today)
	f.seedApproval(t, "sari", "80000", today)
	f.seedApproval(t, "budi", "999999", yesterday)

	f.seedMedicine(t, "Paracetamol", 3, 0)
	f.seedMedicine(t, "Ibuprofen", 0, 0)
	f.seedMedicine(t, "Amoxicillin", 80, 0)

	summary, err := f.svc.CashierSummary(context.Background())
	require.NoError(t, err)
	assert.Empty(t, summary.Degraded)

	assert.Equal(t, int64(2), summary.TodayApprovedCount)
	assert.True(t, summary.TodayApprovedAmount.Equal(decimal.NewFromInt(200000)))
	assert.Equal(t, int64(1), summary.LowStock)
	assert.Equal(t, int64(1), summary.OutOfStock)
}

func TestCashierSummaryDegraded(t *testing.T) {
	f := setupDashboard(t)

	require.NoError(t, f.conn.Exec(`DROP TABLE medicines`).Error)

	summary, err := f.svc.CashierSummary(context.Background())
	require.NoError(t, err)

	assert.Contains(t, summary.Degraded, "inventory")
	assert.NotContains(t, summary.Degraded, "approvals")
}
