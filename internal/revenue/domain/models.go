package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Window is a closed time interval over which monetary sums are computed.
type Window struct {
	Start time.Time
	End   time.Time
}

// Previous returns the immediately preceding window of equal length.
func (w Window) Previous() Window {
	length := w.End.Sub(w.Start)
	end := w.Start.Add(-time.Nanosecond)
	return Window{Start: end.Add(-length), End: end}
}

func (w Window) Valid() bool {
	return !w.Start.IsZero() && !w.End.IsZero() && !w.End.Before(w.Start)
}

// Summary holds the period-bounded sums for one window. All values are
// exact decimals; rounding happens only at presentation time.
type Summary struct {
	PaymentRevenue   decimal.Decimal `json:"payment_revenue"`
	FinancialIncome  decimal.Decimal `json:"financial_income"`
	FinancialExpense decimal.Decimal `json:"financial_expense"`
	NetRevenue       decimal.Decimal `json:"net_revenue"`
}

// GrowthSummary extends Summary with the previous-window comparison.
// GrowthPercentage is zero when the previous window has no positive
// baseline; that is an answer, not an error.
type GrowthSummary struct {
	Summary
	PreviousNetRevenue decimal.Decimal `json:"previous_net_revenue"`
	GrowthPercentage   decimal.Decimal `json:"growth_percentage"`
}

type Service interface {
	Summarize(ctx context.Context, window Window) (Summary, error)
	SummarizeWithGrowth(ctx context.Context, window Window) (GrowthSummary, error)
}

var (
	ErrInvalidWindow     = errors.New("invalid_window")
	ErrSourceUnavailable = errors.New("source_unavailable")
)
