package domain

import (
	"context"
	"errors"

	"github.com/pharmadesk/pharmadesk/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

// IdentifierGenerator produces dispense identifiers for new approvals.
type IdentifierGenerator interface {
	Generate() string
}

type CreateApprovalRequest struct {
	ApprovedBy     string
	CreatedBy      string
	ApprovedAmount decimal.Decimal
}

type ListApprovalsRequest struct {
	Page   pagination.Pagination
	Status string
}

type ListApprovalsResponse struct {
	pagination.PageInfo
	Approvals []PaymentApproval `json:"approvals"`
}

type Service interface {
	Create(ctx context.Context, req CreateApprovalRequest) (PaymentApproval, error)
	Approve(ctx context.Context, id string) (PaymentApproval, error)
	Reject(ctx context.Context, id string) (PaymentApproval, error)
	GetByDispenseID(ctx context.Context, dispenseID string) (PaymentApproval, error)
	List(ctx context.Context, req ListApprovalsRequest) (ListApprovalsResponse, error)
}

var (
	ErrInvalidApprover        = errors.New("invalid_approved_by")
	ErrInvalidAmount          = errors.New("invalid_approved_amount")
	ErrInvalidID              = errors.New("invalid_id")
	ErrInvalidStatus          = errors.New("invalid_status")
	ErrNotFound               = errors.New("not_found")
	ErrInvalidStateTransition = errors.New("invalid_state_transition")
	ErrIdentifierGeneration   = errors.New("identifier_generation_failure")
	ErrDuplicateDispenseID    = errors.New("duplicate_dispense_id")
)
