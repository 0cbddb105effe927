package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pharmadesk/pharmadesk/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ListFilter struct {
	Status Status
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, approval *PaymentApproval) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PaymentApproval, error)
	FindByDispenseID(ctx context.Context, db *gorm.DB, dispenseID string) (*PaymentApproval, error)

	// AssignDispenseID is the corrective update for records persisted
	// without an identifier. It only touches rows whose dispense_id is
	// still empty and reports whether a row was updated.
	AssignDispenseID(ctx context.Context, db *gorm.DB, id snowflake.ID, dispenseID string, at time.Time) (bool, error)

	// TransitionStatus moves id from one status to another with a guarded
	// update; false means the record was not in the expected from status.
	TransitionStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to Status, at time.Time) (bool, error)

	// MarkDispensed stamps dispensed_at once; false means the record was
	// already dispensed.
	MarkDispensed(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) (bool, error)

	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]*PaymentApproval, int64, error)

	SumApprovedAmount(ctx context.Context, db *gorm.DB, start, end time.Time) (decimal.Decimal, error)
	CountApproved(ctx context.Context, db *gorm.DB, start, end time.Time) (int64, error)
	TopApprovers(ctx context.Context, db *gorm.DB, start, end time.Time, limit int) ([]ApproverRank, error)
}
