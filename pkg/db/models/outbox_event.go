package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/bizzyglass/bizzyglass-backend/pkg/enums"
)

// OutboxEvent is a lead activity record written alongside the lead mutation and
// shipped to the event bus by the outbox publisher.
type OutboxEvent struct {
	ID            uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	EventType     enums.OutboxEventType     `gorm:"column:event_type;not null"`
	AggregateType enums.OutboxAggregateType `gorm:"column:aggregate_type;not null"`
	AggregateID   string                    `gorm:"column:aggregate_id;not null;index"`
	Payload       json.RawMessage           `gorm:"column:payload;not null"`
	CreatedAt     time.Time                 `gorm:"column:created_at;autoCreateTime"`
	PublishedAt   *time.Time                `gorm:"column:published_at"`
	AttemptCount  int                       `gorm:"column:attempt_count;not null;default:0"`
	LastError     *string                   `gorm:"column:last_error"`
}

func (OutboxEvent) TableName() string { return "outbox_events" }
