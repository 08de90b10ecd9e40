package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/orbitaagency1ia/miautoescuela/internal/clock"
	schooldomain "github.com/orbitaagency1ia/miautoescuela/internal/school/domain"
	"github.com/orbitaagency1ia/miautoescuela/internal/subscription/domain"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type service struct {
	log        *zap.Logger
	repo       domain.Repository
	schoolRepo schooldomain.Repository
	genID      *snowflake.Node
	clock      clock.Clock
}

func NewService(log *zap.Logger, repo domain.Repository, schoolRepo schooldomain.Repository, genID *snowflake.Node, clk clock.Clock) domain.Service {
	return &service{
		log:        log.Named("subscription.service"),
		repo:       repo,
		schoolRepo: schoolRepo,
		genID:      genID,
		clock:      clk,
	}
}

// IngestWebhook mirrors the provider's state onto the school row. There are
// no domain-side transitions, timers or retries; the provider is the single
// source of truth and this handler just copies it.
func (s *service) IngestWebhook(ctx context.Context, provider string, payload []byte) error {
	provider = strings.TrimSpace(provider)
	if provider == "" {
		return domain.ErrInvalidEvent
	}

	var event domain.WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return domain.ErrInvalidEvent
	}
	if event.EventID == "" || event.CustomerID == "" {
		return domain.ErrInvalidEvent
	}

	// Idempotency first: a replayed delivery must not rewrite state that a
	// later event may already have superseded.
	if err := s.repo.RecordEvent(ctx, &domain.ProcessedEvent{
		ID:          s.genID.Generate(),
		Provider:    provider,
		EventID:     event.EventID,
		EventType:   event.Type,
		Payload:     datatypes.JSONMap{"customer_id": event.CustomerID, "status": event.Status},
		ProcessedAt: s.clock.Now(),
	}); err != nil {
		return err
	}

	school, err := s.schoolRepo.FindByBillingCustomerID(ctx, event.CustomerID)
	if err != nil {
		s.log.Warn("webhook for unknown customer",
			zap.String("provider", provider),
			zap.String("customer_id", event.CustomerID),
		)
		return domain.ErrUnknownSchool
	}

	fields := map[string]any{"updated_at": s.clock.Now()}
	switch event.Type {
	case domain.EventCheckoutCompleted:
		fields["subscription_status"] = schooldomain.SubscriptionActive
		if event.SubscriptionID != "" {
			fields["billing_subscription_id"] = event.SubscriptionID
		}
	case domain.EventSubscriptionUpdated:
		status := normalizeStatus(event.Status)
		if status == "" {
			return domain.ErrInvalidEvent
		}
		fields["subscription_status"] = status
		if event.TrialEndsAt != nil {
			trialEnds := time.Unix(*event.TrialEndsAt, 0).UTC()
			fields["trial_ends_at"] = &trialEnds
		}
	case domain.EventSubscriptionDeleted:
		fields["subscription_status"] = schooldomain.SubscriptionCanceled
	case domain.EventPaymentFailed:
		fields["subscription_status"] = schooldomain.SubscriptionPastDue
	default:
		// Unknown event types are acknowledged and ignored.
		s.log.Debug("ignoring webhook event",
			zap.String("provider", provider),
			zap.String("type", event.Type),
		)
		return nil
	}

	if err := s.schoolRepo.UpdateFields(ctx, school.ID, fields); err != nil {
		return err
	}

	s.log.Info("subscription state mirrored",
		zap.String("school_id", school.ID.String()),
		zap.String("event_type", event.Type),
	)
	return nil
}

func (s *service) Check(ctx context.Context, schoolID snowflake.ID) (domain.Decision, error) {
	school, err := s.schoolRepo.FindByID(ctx, schoolID)
	if err != nil {
		return domain.Decision{}, err
	}
	return domain.Evaluate(school.SubscriptionStatus, school.TrialEndsAt, s.clock.Now()), nil
}

func (s *service) Override(ctx context.Context, schoolID snowflake.ID, status string) error {
	normalized := normalizeStatus(status)
	if normalized == "" {
		return domain.ErrInvalidEvent
	}
	return s.schoolRepo.UpdateFields(ctx, schoolID, map[string]any{
		"subscription_status": normalized,
		"updated_at":          s.clock.Now(),
	})
}

func normalizeStatus(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case schooldomain.SubscriptionTrialing:
		return schooldomain.SubscriptionTrialing
	case schooldomain.SubscriptionActive:
		return schooldomain.SubscriptionActive
	case schooldomain.SubscriptionPastDue:
		return schooldomain.SubscriptionPastDue
	case schooldomain.SubscriptionCanceled:
		return schooldomain.SubscriptionCanceled
	case schooldomain.SubscriptionIncomplete:
		return schooldomain.SubscriptionIncomplete
	default:
		return ""
	}
}
