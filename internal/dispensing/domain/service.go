package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	inventorydomain "github.com/pharmadesk/pharmadesk/internal/inventory/domain"
)

// Line is one requested decrement: quantity units of a medicine.
type Line struct {
	MedicineID snowflake.ID `json:"medicine_id"`
	Quantity   int64        `json:"quantity"`
}

// Result reports a completed dispensing action with the stock levels
// remaining after the decrements.
type Result struct {
	DispenseID  string                       `json:"dispense_id"`
	DispensedAt time.Time                    `json:"dispensed_at"`
	Stock       []inventorydomain.StockLevel `json:"stock"`
}

// Service executes dispensing for an approved payment approval. The
// stock decrements, the dispensed_at stamp, and the completion event
// commit as one transaction.
type Service interface {
	Dispense(ctx context.Context, dispenseID string, lines []Line) (Result, error)
}

var (
	ErrNoLines           = errors.New("no_line_items")
	ErrInvalidLine       = errors.New("invalid_line_item")
	ErrNotApproved       = errors.New("approval_not_approved")
	ErrAlreadyDispensed  = errors.New("already_dispensed")
	ErrInsufficientStock = errors.New("insufficient_stock")
)
