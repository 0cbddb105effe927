package service

import (
	"context"
	"fmt"

	approvaldomain "github.com/pharmadesk/pharmadesk/internal/approval/domain"
	financedomain "github.com/pharmadesk/pharmadesk/internal/finance/domain"
	"github.com/pharmadesk/pharmadesk/internal/revenue/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var oneHundred = decimal.NewFromInt(100)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Approvals  approvaldomain.Repository
	Activities financedomain.Repository
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	approvals  approvaldomain.Repository
	activities financedomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("revenue.service"),
		approvals:  p.Approvals,
		activities: p.Activities,
	}
}

// Summarize computes the three source sums for the window. A failing
// source fails the whole summary; substituting zero would misrepresent
// revenue, so degradation is the caller's decision.
func (s *Service) Summarize(ctx context.Context, window domain.Window) (domain.Summary, error) {
	if !window.Valid() {
		return domain.Summary{}, domain.ErrInvalidWindow
	}

	payments, err := s.approvals.SumApprovedAmount(ctx, s.db, window.Start, window.End)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("%w: payment approvals: %v", domain.ErrSourceUnavailable, err)
	}

	income, err := s.activities.SumByTypeAndStatus(ctx, s.db, financedomain.TypeIncome, financedomain.StatusApproved, window.Start, window.End)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("%w: financial income: %v", domain.ErrSourceUnavailable, err)
	}

	expense, err := s.activities.SumByTypeAndStatus(ctx, s.db, financedomain.TypeExpense, financedomain.StatusApproved, window.Start, window.End)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("%w: financial expense: %v", domain.ErrSourceUnavailable, err)
	}

	return domain.Summary{
		PaymentRevenue:   payments,
		FinancialIncome:  income,
		FinancialExpense: expense,
		NetRevenue:       payments.Add(income).Sub(expense),
	}, nil
}

func (s *Service) SummarizeWithGrowth(ctx context.Context, window domain.Window) (domain.GrowthSummary, error) {
	current, err := s.Summarize(ctx, window)
	if err != nil {
		return domain.GrowthSummary{}, err
	}

	previous, err := s.Summarize(ctx, window.Previous())
	if err != nil {
		return domain.GrowthSummary{}, err
	}

	return domain.GrowthSummary{
		Summary:            current,
		PreviousNetRevenue: previous.NetRevenue,
		GrowthPercentage:   Growth(current.NetRevenue, previous.NetRevenue),
	}, nil
}

// Growth returns ((current-previous)/previous)*100, or zero when there
// is no positive baseline. The result is not rounded here.
func Growth(current, previous decimal.Decimal) decimal.Decimal {
	if !previous.IsPositive() {
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous).Mul(oneHundred)
}
