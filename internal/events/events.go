package events

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Event types consumed by reporting collaborators.
const (
	EventDispenseCompleted = "dispense_completed"
)

// DispenseEvent records one completed dispensing action. It is inserted
// inside the dispensing transaction so the event and the stock mutation
// commit or roll back together.
type DispenseEvent struct {
	ID         string            `gorm:"primaryKey" json:"id"`
	EventType  string            `gorm:"not null;index" json:"event_type"`
	DispenseID string            `gorm:"not null;index" json:"dispense_id"`
	Payload    datatypes.JSONMap `gorm:"not null" json:"payload"`
	OccurredAt time.Time         `gorm:"not null;index" json:"occurred_at"`
}

func (DispenseEvent) TableName() string { return "dispense_events" }

// NewDispenseCompleted builds a completion event with a fresh ULID.
func NewDispenseCompleted(dispenseID string, payload map[string]any, occurredAt time.Time) DispenseEvent {
	return DispenseEvent{
		ID:         ulid.Make().String(),
		EventType:  EventDispenseCompleted,
		DispenseID: dispenseID,
		Payload:    datatypes.JSONMap(payload),
		OccurredAt: occurredAt,
	}
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, event *DispenseEvent) error
	ListByDispenseID(ctx context.Context, db *gorm.DB, dispenseID string) ([]DispenseEvent, error)
}

type repo struct{}

func NewRepository() Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, event *DispenseEvent) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO dispense_events (id, event_type, dispense_id, payload, occurred_at)
		 VALUES (?, ?, ?, ?, ?)`,
		event.ID,
		event.EventType,
		event.DispenseID,
		event.Payload,
		event.OccurredAt,
	).Error
}

func (r *repo) ListByDispenseID(ctx context.Context, db *gorm.DB, dispenseID string) ([]DispenseEvent, error) {
	var items []DispenseEvent
	err := db.WithContext(ctx).Raw(
		`SELECT id, event_type, dispense_id, payload, occurred_at
		 FROM dispense_events
		 WHERE dispense_id = ?
		 ORDER BY occurred_at ASC, id ASC`,
		dispenseID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
