package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/pharmadesk/pharmadesk/internal/approval/domain"
	"github.com/pharmadesk/pharmadesk/internal/clock"
	"github.com/pharmadesk/pharmadesk/internal/dispenseid"
	"github.com/pharmadesk/pharmadesk/pkg/db"
	"github.com/pharmadesk/pharmadesk/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	IDGen domain.IdentifierGenerator
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	idgen domain.IdentifierGenerator
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("approval.service"),
		genID: p.GenID,
		repo:  p.Repo,
		idgen: p.IDGen,
		clock: p.Clock,
	}
}

// Create normalizes and persists a new pending approval. The dispense
// identifier is assigned before the insert so no reader ever observes a
// record without one; the corrective update only runs when the generator
// failed and the row went in with an empty identifier.
func (s *Service) Create(ctx context.Context, req domain.CreateApprovalRequest) (domain.PaymentApproval, error) {
	approvedBy := strings.TrimSpace(req.ApprovedBy)
	if approvedBy == "" {
		return domain.PaymentApproval{}, domain.ErrInvalidApprover
	}

	createdBy := strings.TrimSpace(req.CreatedBy)
	if createdBy == "" {
		createdBy = approvedBy
	}

	if req.ApprovedAmount.IsNegative() {
		return domain.PaymentApproval{}, domain.ErrInvalidAmount
	}

	now := s.clock.Now()
	approval := domain.PaymentApproval{
		ID:             s.genID.Generate(),
		DispenseID:     s.idgen.Generate(),
		ApprovedBy:     approvedBy,
		CreatedBy:      createdBy,
		ApprovedAmount: req.ApprovedAmount,
		Status:         domain.StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Insert(ctx, s.db, &approval); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.PaymentApproval{}, domain.ErrDuplicateDispenseID
		}
		return domain.PaymentApproval{}, err
	}

	if approval.DispenseID == "" {
		if err := s.ensureDispenseID(ctx, &approval); err != nil {
			return domain.PaymentApproval{}, err
		}
	}

	s.log.Info("payment approval created",
		zap.String("id", approval.ID.String()),
		zap.String("dispense_id", approval.DispenseID),
		zap.String("approved_by", approval.ApprovedBy),
	)

	return approval, nil
}

// ensureDispenseID is the defensive second chance for stores that cannot
// guarantee the pre-commit assignment. It never runs when the primary
// path succeeded.
func (s *Service) ensureDispenseID(ctx context.Context, approval *domain.PaymentApproval) error {
	generated := s.idgen.Generate()
	if !dispenseid.Valid(generated) {
		return domain.ErrIdentifierGeneration
	}

	ok, err := s.repo.AssignDispenseID(ctx, s.db, approval.ID, generated, s.clock.Now())
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.ErrDuplicateDispenseID
		}
		return err
	}
	if !ok {
		return domain.ErrIdentifierGeneration
	}

	approval.DispenseID = generated
	s.log.Warn("dispense identifier assigned by corrective update",
		zap.String("id", approval.ID.String()),
		zap.String("dispense_id", generated),
	)
	return nil
}

func (s *Service) Approve(ctx context.Context, id string) (domain.PaymentApproval, error) {
	return s.transition(ctx, id, domain.StatusApproved)
}

func (s *Service) Reject(ctx context.Context, id string) (domain.PaymentApproval, error) {
	return s.transition(ctx, id, domain.StatusRejected)
}

func (s *Service) transition(ctx context.Context, rawID string, to domain.Status) (domain.PaymentApproval, error) {
	id, err := s.parseID(rawID)
	if err != nil {
		return domain.PaymentApproval{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.PaymentApproval{}, err
	}
	if item == nil {
		return domain.PaymentApproval{}, domain.ErrNotFound
	}
	if item.Status.Terminal() {
		return domain.PaymentApproval{}, domain.ErrInvalidStateTransition
	}
	if to == domain.StatusApproved {
		// A row stranded without an identifier must be repaired before
		// it can enter the approved aggregates.
		if item.DispenseID == "" {
			return domain.PaymentApproval{}, domain.ErrInvalidStateTransition
		}
		if !item.ApprovedAmount.IsPositive() {
			return domain.PaymentApproval{}, domain.ErrInvalidAmount
		}
	}

	now := s.clock.Now()
	ok, err := s.repo.TransitionStatus(ctx, s.db, id, domain.StatusPending, to, now)
	if err != nil {
		return domain.PaymentApproval{}, err
	}
	if !ok {
		// A concurrent transition won the guarded update.
		return domain.PaymentApproval{}, domain.ErrInvalidStateTransition
	}

	item.Status = to
	item.UpdatedAt = now

	s.log.Info("payment approval transitioned",
		zap.String("id", item.ID.String()),
		zap.String("dispense_id", item.DispenseID),
		zap.String("status", string(to)),
	)

	return *item, nil
}

func (s *Service) GetByDispenseID(ctx context.Context, dispenseID string) (domain.PaymentApproval, error) {
	dispenseID = strings.TrimSpace(dispenseID)
	if !dispenseid.Valid(dispenseID) {
		return domain.PaymentApproval{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindByDispenseID(ctx, s.db, dispenseID)
	if err != nil {
		return domain.PaymentApproval{}, err
	}
	if item == nil {
		return domain.PaymentApproval{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListApprovalsRequest) (domain.ListApprovalsResponse, error) {
	filter := domain.ListFilter{}
	if status := strings.TrimSpace(req.Status); status != "" {
		switch domain.Status(status) {
		case domain.StatusPending, domain.StatusApproved, domain.StatusRejected:
			filter.Status = domain.Status(status)
		default:
			return domain.ListApprovalsResponse{}, domain.ErrInvalidStatus
		}
	}

	page := req.Page.Normalize()
	items, total, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return domain.ListApprovalsResponse{}, err
	}

	approvals := make([]domain.PaymentApproval, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		approvals = append(approvals, *item)
	}

	return domain.ListApprovalsResponse{
		PageInfo:  pagination.BuildPageInfo(page, total),
		Approvals: approvals,
	}, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
