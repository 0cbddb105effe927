package domain

import (
	"context"
	"time"

	approvaldomain "github.com/pharmadesk/pharmadesk/internal/approval/domain"
	branchdomain "github.com/pharmadesk/pharmadesk/internal/branch/domain"
	inventorydomain "github.com/pharmadesk/pharmadesk/internal/inventory/domain"
	revenuedomain "github.com/pharmadesk/pharmadesk/internal/revenue/domain"
	salesperfdomain "github.com/pharmadesk/pharmadesk/internal/salesperf/domain"
	"github.com/shopspring/decimal"
)

// RevenueSection compares the running month against the full previous
// calendar month. GrowthPercentage is rounded to two decimals here
// because the snapshot is presentation output.
type RevenueSection struct {
	CurrentMonth       revenuedomain.Summary `json:"current_month"`
	PreviousNetRevenue decimal.Decimal       `json:"previous_net_revenue"`
	GrowthPercentage   string                `json:"growth_percentage"`
}

// Snapshot is the operator-facing dashboard view. Sections fetched from
// an unreachable collaborator come back zeroed, with the section name
// listed in Degraded; the snapshot itself never fails wholesale.
type Snapshot struct {
	Revenue      RevenueSection                `json:"revenue"`
	Inventory    inventorydomain.StockCounts   `json:"inventory"`
	Branches     branchdomain.BranchCounts     `json:"branches"`
	TopProducts  []salesperfdomain.ProductRank `json:"top_products"`
	TopEmployees []approvaldomain.ApproverRank `json:"top_employees"`
	Degraded     []string                      `json:"degraded,omitempty"`
	GeneratedAt  time.Time                     `json:"generated_at"`
}

// CashierSummary is the reduced snapshot served to the cashier screen.
type CashierSummary struct {
	TodayApprovedCount  int64           `json:"today_approved_count"`
	TodayApprovedAmount decimal.Decimal `json:"today_approved_amount"`
	LowStock            int64           `json:"low_stock"`
	OutOfStock          int64           `json:"out_of_stock"`
	Degraded            []string        `json:"degraded,omitempty"`
	GeneratedAt         time.Time       `json:"generated_at"`
}

type Service interface {
	Overview(ctx context.Context) (Snapshot, error)
	CashierSummary(ctx context.Context) (CashierSummary, error)
}
