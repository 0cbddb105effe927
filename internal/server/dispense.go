package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	dispensingdomain "github.com/pharmadesk/pharmadesk/internal/dispensing/domain"
	"github.com/pharmadesk/pharmadesk/internal/events"
	inventorydomain "github.com/pharmadesk/pharmadesk/internal/inventory/domain"
	"github.com/pharmadesk/pharmadesk/internal/providers/pdf"
	"github.com/pharmadesk/pharmadesk/internal/ratelimit"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const dispenseLockTTL = 10 * time.Second

type dispenseRequest struct {
	Lines []dispensingdomain.Line `json:"lines"`
}

func (s *Server) Dispense(c *gin.Context) {
	dispenseID := c.Param("id")

	var req dispenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	// The advisory lease only absorbs rapid double submits; the guarded
	// dispensed_at stamp inside the transaction is what makes the
	// operation exactly-once.
	lockKey := fmt.Sprintf("lock:dispense:%s", dispenseID)
	lease, err := s.locker.Acquire(c.Request.Context(), lockKey, dispenseLockTTL)
	if err != nil {
		if errors.Is(err, ratelimit.ErrLockHeld) {
			AbortWithError(c, ErrDispenseInProgress)
			return
		}
		s.log.Warn("dispense lock unavailable", zap.Error(err))
	}
	defer func() {
		_ = lease.Release(c.Request.Context())
	}()

	resp, err := s.dispensingSvc.Dispense(c.Request.Context(), dispenseID, req.Lines)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, resp, "dispense completed")
}

func (s *Server) DispenseReceipt(c *gin.Context) {
	ctx := c.Request.Context()

	approval, err := s.approvalSvc.GetByDispenseID(ctx, c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if approval.DispensedAt == nil {
		AbortWithError(c, ErrReceiptNotReady)
		return
	}

	lines, total, err := s.receiptLines(c, approval.DispenseID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	reader, err := s.receipts.GenerateReceipt(ctx, pdf.ReceiptData{
		DispenseID:   approval.DispenseID,
		PharmacyName: s.cfg.AppName,
		ApprovedBy:   approval.ApprovedBy,
		DispensedAt:  *approval.DispensedAt,
		Lines:        lines,
		Total:        total,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	doc, err := io.ReadAll(reader)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", approval.DispenseID))
	c.Data(http.StatusOK, "application/pdf", doc)
}

// receiptLines rebuilds the dispensed items from the completion event
// and prices them from the current catalog.
func (s *Server) receiptLines(c *gin.Context, dispenseID string) ([]pdf.ReceiptLine, decimal.Decimal, error) {
	ctx := c.Request.Context()

	recorded, err := s.eventsRepo.ListByDispenseID(ctx, s.db, dispenseID)
	if err != nil {
		return nil, decimal.Zero, err
	}

	var completion *events.DispenseEvent
	for i := range recorded {
		if recorded[i].EventType == events.EventDispenseCompleted {
			completion = &recorded[i]
			break
		}
	}
	if completion == nil {
		return nil, decimal.Zero, ErrReceiptNotReady
	}

	items, _ := completion.Payload["items"].([]any)
	lines := make([]pdf.ReceiptLine, 0, len(items))
	total := decimal.Zero

	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		idValue, _ := item["medicine_id"].(string)
		medicineID, err := snowflake.ParseString(idValue)
		if err != nil {
			continue
		}
		quantity := castQuantity(item["quantity"])
		if quantity <= 0 {
			continue
		}

		medicine, err := s.medicines.FindByID(ctx, s.db, medicineID)
		if err != nil {
			return nil, decimal.Zero, err
		}
		if medicine == nil {
			return nil, decimal.Zero, inventorydomain.ErrNotFound
		}

		lineTotal := medicine.UnitPrice.Mul(decimal.NewFromInt(quantity))
		lines = append(lines, pdf.ReceiptLine{
			Name:      medicine.Name,
			Quantity:  quantity,
			UnitPrice: medicine.UnitPrice,
			LineTotal: lineTotal,
		})
		total = total.Add(lineTotal)
	}

	return lines, total, nil
}

func castQuantity(v any) int64 {
	switch val := v.(type) {
	case float64:
		return int64(val)
	case int64:
		return val
	case int:
		return int64(val)
	default:
		return 0
	}
}
