package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Webhook event types accepted from the payment provider. The domain only
// mirrors these; it never advances subscription state on its own.
const (
	EventCheckoutCompleted   = "checkout.completed"
	EventSubscriptionUpdated = "subscription.updated"
	EventSubscriptionDeleted = "subscription.deleted"
	EventPaymentFailed       = "payment.failed"
)

var (
	ErrEventAlreadyProcessed = errors.New("event already processed")
	ErrInvalidEvent          = errors.New("invalid event")
	ErrUnknownSchool         = errors.New("unknown school for event")
)

// WebhookEvent is the provider-agnostic shape of an inbound billing event.
type WebhookEvent struct {
	EventID        string `json:"event_id"`
	Type           string `json:"type"`
	CustomerID     string `json:"customer_id"`
	SubscriptionID string `json:"subscription_id"`
	Status         string `json:"status"`
	TrialEndsAt    *int64 `json:"trial_ends_at,omitempty"`
}

// ProcessedEvent records a handled webhook delivery for idempotency.
type ProcessedEvent struct {
	ID          snowflake.ID      `gorm:"primaryKey"`
	Provider    string            `gorm:"type:text;not null;uniqueIndex:ux_provider_event,priority:1"`
	EventID     string            `gorm:"column:event_id;type:text;not null;uniqueIndex:ux_provider_event,priority:2"`
	EventType   string            `gorm:"column:event_type;type:text;not null"`
	Payload     datatypes.JSONMap `gorm:"type:jsonb"`
	ProcessedAt time.Time         `gorm:"column:processed_at;not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (ProcessedEvent) TableName() string { return "billing_events" }

type Service interface {
	// IngestWebhook parses and applies one provider event. Replayed
	// deliveries return ErrEventAlreadyProcessed.
	IngestWebhook(ctx context.Context, provider string, payload []byte) error

	// Check evaluates the gate for a school right now.
	Check(ctx context.Context, schoolID snowflake.ID) (Decision, error)

	// Override lets the platform admin force a subscription status.
	Override(ctx context.Context, schoolID snowflake.ID, status string) error
}

type Repository interface {
	RecordEvent(ctx context.Context, event *ProcessedEvent) error
}
