package service

import (
	"context"
	"time"

	approvaldomain "github.com/pharmadesk/pharmadesk/internal/approval/domain"
	branchdomain "github.com/pharmadesk/pharmadesk/internal/branch/domain"
	"github.com/pharmadesk/pharmadesk/internal/clock"
	"github.com/pharmadesk/pharmadesk/internal/config"
	"github.com/pharmadesk/pharmadesk/internal/dashboard/domain"
	inventorydomain "github.com/pharmadesk/pharmadesk/internal/inventory/domain"
	revenuedomain "github.com/pharmadesk/pharmadesk/internal/revenue/domain"
	revenueservice "github.com/pharmadesk/pharmadesk/internal/revenue/service"
	salesperfdomain "github.com/pharmadesk/pharmadesk/internal/salesperf/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Cfg       config.Config
	Revenue   revenuedomain.Service
	Approvals approvaldomain.Repository
	Medicines inventorydomain.Repository
	Branches  branchdomain.Repository
	Sales     salesperfdomain.Repository
	Clock     clock.Clock
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	cfg       config.Config
	revenue   revenuedomain.Service
	approvals approvaldomain.Repository
	medicines inventorydomain.Repository
	branches  branchdomain.Repository
	sales     salesperfdomain.Repository
	clock     clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("dashboard.service"),
		cfg:       p.Cfg,
		revenue:   p.Revenue,
		approvals: p.Approvals,
		medicines: p.Medicines,
		branches:  p.Branches,
		sales:     p.Sales,
		clock:     p.Clock,
	}
}

// Overview composes the dashboard snapshot. Each section is fetched
// independently; a failing collaborator degrades its own section and
// the snapshot still succeeds.
func (s *Service) Overview(ctx context.Context) (domain.Snapshot, error) {
	now := s.clock.Now()
	currentWindow, previousWindow := monthWindows(now)

	snapshot := domain.Snapshot{
		TopProducts:  []salesperfdomain.ProductRank{},
		TopEmployees: []approvaldomain.ApproverRank{},
		GeneratedAt:  now,
	}

	snapshot.Revenue.GrowthPercentage = "0.00"
	current, err := s.revenue.Summarize(ctx, currentWindow)
	if err != nil {
		snapshot.Degraded = append(snapshot.Degraded, "revenue")
		s.log.Warn("dashboard revenue section degraded", zap.Error(err))
	} else {
		previous, err := s.revenue.Summarize(ctx, previousWindow)
		if err != nil {
			snapshot.Degraded = append(snapshot.Degraded, "revenue")
			s.log.Warn("dashboard revenue section degraded", zap.Error(err))
		} else {
			snapshot.Revenue = domain.RevenueSection{
				CurrentMonth:       current,
				PreviousNetRevenue: previous.NetRevenue,
				GrowthPercentage:   revenueservice.Growth(current.NetRevenue, previous.NetRevenue).StringFixed(2),
			}
		}
	}

	counts, err := s.medicines.Counts(ctx, s.db, s.cfg.LowStockThreshold)
	if err != nil {
		snapshot.Degraded = append(snapshot.Degraded, "inventory")
		s.log.Warn("dashboard inventory section degraded", zap.Error(err))
	} else {
		snapshot.Inventory = counts
	}

	branchCounts, err := s.branches.Counts(ctx, s.db)
	if err != nil {
		snapshot.Degraded = append(snapshot.Degraded, "branches")
		s.log.Warn("dashboard branch section degraded", zap.Error(err))
	} else {
		snapshot.Branches = branchCounts
	}

	topN := s.cfg.DashboardTopN
	if topN <= 0 {
		topN = 5
	}

	products, err := s.sales.TopProducts(ctx, s.db, currentWindow.Start, currentWindow.End, topN)
	if err != nil {
		snapshot.Degraded = append(snapshot.Degraded, "top_products")
		s.log.Warn("dashboard product ranking degraded", zap.Error(err))
	} else if products != nil {
		snapshot.TopProducts = products
	}

	employees, err := s.approvals.TopApprovers(ctx, s.db, currentWindow.Start, currentWindow.End, topN)
	if err != nil {
		snapshot.Degraded = append(snapshot.Degraded, "top_employees")
		s.log.Warn("dashboard employee ranking degraded", zap.Error(err))
	} else if employees != nil {
		snapshot.TopEmployees = employees
	}

	return snapshot, nil
}

func (s *Service) CashierSummary(ctx context.Context) (domain.CashierSummary, error) {
	now := s.clock.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	summary := domain.CashierSummary{GeneratedAt: now}

	count, err := s.approvals.CountApproved(ctx, s.db, dayStart, now)
	if err != nil {
		summary.Degraded = append(summary.Degraded, "approvals")
		s.log.Warn("cashier approvals section degraded", zap.Error(err))
	} else {
		summary.TodayApprovedCount = count
		amount, err := s.approvals.SumApprovedAmount(ctx, s.db, dayStart, now)
		if err != nil {
			summary.Degraded = append(summary.Degraded, "approvals")
			s.log.Warn("cashier approvals section degraded", zap.Error(err))
		} else {
			summary.TodayApprovedAmount = amount
		}
	}

	counts, err := s.medicines.Counts(ctx, s.db, s.cfg.LowStockThreshold)
	if err != nil {
		summary.Degraded = append(summary.Degraded, "inventory")
		s.log.Warn("cashier inventory section degraded", zap.Error(err))
	} else {
		summary.LowStock = counts.LowStock
		summary.OutOfStock = counts.OutOfStock
	}

	return summary, nil
}

// monthWindows returns the running month up to now and the full
// previous calendar month.
func monthWindows(now time.Time) (revenuedomain.Window, revenuedomain.Window) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	prevStart := monthStart.AddDate(0, -1, 0)
	prevEnd := monthStart.Add(-time.Nanosecond)

	return revenuedomain.Window{Start: monthStart, End: now},
		revenuedomain.Window{Start: prevStart, End: prevEnd}
}
