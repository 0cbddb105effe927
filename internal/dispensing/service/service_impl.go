package service

import (
	"context"
	"sort"
	"strings"

	"github.com/bwmarrin/snowflake"
	approvaldomain "github.com/pharmadesk/pharmadesk/internal/approval/domain"
	"github.com/pharmadesk/pharmadesk/internal/clock"
	"github.com/pharmadesk/pharmadesk/internal/dispensing/domain"
	"github.com/pharmadesk/pharmadesk/internal/events"
	inventorydomain "github.com/pharmadesk/pharmadesk/internal/inventory/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Approvals approvaldomain.Repository
	Medicines inventorydomain.Repository
	Events    events.Repository
	Clock     clock.Clock
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	approvals approvaldomain.Repository
	medicines inventorydomain.Repository
	events    events.Repository
	clock     clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("dispensing.service"),
		approvals: p.Approvals,
		medicines: p.Medicines,
		events:    p.Events,
		clock:     p.Clock,
	}
}

// Dispense decrements stock for every line and stamps the approval as
// dispensed inside one transaction. Any short line rolls back the whole
// operation, so a failed dispense never leaves a partial decrement.
func (s *Service) Dispense(ctx context.Context, dispenseID string, lines []domain.Line) (domain.Result, error) {
	dispenseID = strings.TrimSpace(dispenseID)
	if dispenseID == "" {
		return domain.Result{}, approvaldomain.ErrInvalidID
	}
	if len(lines) == 0 {
		return domain.Result{}, domain.ErrNoLines
	}
	for _, line := range lines {
		if line.MedicineID == 0 || line.Quantity <= 0 {
			return domain.Result{}, domain.ErrInvalidLine
		}
	}

	// Stable decrement order keeps concurrent dispenses of overlapping
	// orders from deadlocking on row locks.
	ordered := make([]domain.Line, len(lines))
	copy(ordered, lines)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].MedicineID < ordered[j].MedicineID
	})

	now := s.clock.Now()
	var result domain.Result

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		approval, err := s.approvals.FindByDispenseID(ctx, tx, dispenseID)
		if err != nil {
			return err
		}
		if approval == nil {
			return approvaldomain.ErrNotFound
		}
		if approval.Status != approvaldomain.StatusApproved {
			return domain.ErrNotApproved
		}
		if approval.DispensedAt != nil {
			return domain.ErrAlreadyDispensed
		}

		for _, line := range ordered {
			ok, err := s.medicines.DecrementStock(ctx, tx, line.MedicineID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				if _, err := s.medicines.GetStock(ctx, tx, line.MedicineID); err != nil {
					return err
				}
				return domain.ErrInsufficientStock
			}
		}

		// The guarded stamp is the serialization point: a concurrent
		// dispense of the same approval loses here and rolls back its
		// decrements.
		stamped, err := s.approvals.MarkDispensed(ctx, tx, approval.ID, now)
		if err != nil {
			return err
		}
		if !stamped {
			return domain.ErrAlreadyDispensed
		}

		event := events.NewDispenseCompleted(dispenseID, eventPayload(ordered), now)
		if err := s.events.Insert(ctx, tx, &event); err != nil {
			return err
		}

		stock, err := s.medicines.StockLevels(ctx, tx, medicineIDs(ordered))
		if err != nil {
			return err
		}

		result = domain.Result{
			DispenseID:  dispenseID,
			DispensedAt: now,
			Stock:       stock,
		}
		return nil
	})
	if err != nil {
		return domain.Result{}, err
	}

	s.log.Info("dispense completed",
		zap.String("dispense_id", dispenseID),
		zap.Int("lines", len(lines)),
	)

	return result, nil
}

func eventPayload(lines []domain.Line) map[string]any {
	items := make([]map[string]any, 0, len(lines))
	for _, line := range lines {
		items = append(items, map[string]any{
			"medicine_id": line.MedicineID.String(),
			"quantity":    line.Quantity,
		})
	}
	return map[string]any{"items": items}
}

func medicineIDs(lines []domain.Line) []snowflake.ID {
	ids := make([]snowflake.ID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.MedicineID)
	}
	return ids
}
