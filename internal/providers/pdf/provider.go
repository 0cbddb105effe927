package pdf

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

type ReceiptLine struct {
	Name      string
	Quantity  int64
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

type ReceiptData struct {
	DispenseID   string
	PharmacyName string
	BranchName   string
	ApprovedBy   string
	DispensedAt  time.Time
	Lines        []ReceiptLine
	Total        decimal.Decimal
}

type Provider interface {
	GenerateReceipt(ctx context.Context, data ReceiptData) (io.Reader, error)
}
