package service

import (
	"context"
	"time"

	"bizops-assistant-be/internal/entity"
	"bizops-assistant-be/internal/pkg/logger"
	"bizops-assistant-be/pkg/events"
	"bizops-assistant-be/pkg/nats"

	"github.com/google/uuid"
)

// BillingConsumerService listens for billing state changes published by the
// external billing system and replays them onto tenant subscriptions. This
// service never initiates billing; it is strictly a consumer.
type IBillingConsumerService interface {
	Consume() error
}

type billingConsumerService struct {
	subscriber          *nats.Subscriber
	subscriptionService SubscriptionService
	planService         PlanService
	log                 logger.ILogger
}

func NewBillingConsumerService(
	subscriber *nats.Subscriber,
	subscriptionService SubscriptionService,
	planService PlanService,
	log logger.ILogger,
) IBillingConsumerService {
	return &billingConsumerService{
		subscriber:          subscriber,
		subscriptionService: subscriptionService,
		planService:         planService,
		log:                 log,
	}
}

func (s *billingConsumerService) Consume() error {
	return s.subscriber.Subscribe(events.BillingSubjectFilter, "billing-consumer", s.handle)
}

func (s *billingConsumerService) handle(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	tenantId, err := uuid.Parse(stringField(payload, "tenant_id"))
	if err != nil {
		// Malformed events are dropped, retrying cannot fix them.
		s.log.Warn("billing-consumer", "dropping event without valid tenant_id", map[string]interface{}{
			"subject": event.EventType(),
		})
		return nil
	}

	update := &BillingUpdate{
		Status: entity.SubscriptionStatus(stringField(payload, "status")),
	}
	if raw := stringField(payload, "plan_id"); raw != "" {
		if planId, err := uuid.Parse(raw); err == nil {
			update.PlanId = &planId
		}
	}
	if t, ok := timeField(payload, "period_start"); ok {
		update.PeriodStart = &t
	}
	if t, ok := timeField(payload, "period_end"); ok {
		update.PeriodEnd = &t
	}
	if t, ok := timeField(payload, "canceled_at"); ok {
		update.CanceledAt = &t
	}

	if err := s.subscriptionService.ApplyBillingUpdate(ctx, tenantId, update); err != nil {
		if err == ErrNotFound {
			s.log.Warn("billing-consumer", "billing event for unknown tenant", map[string]interface{}{
				"tenant_id": tenantId.String(),
			})
			return nil
		}
		return err
	}

	// Plan or entitlement changes invalidate the cached catalog snapshot.
	s.planService.InvalidateCatalog()

	s.log.Info("billing-consumer", "applied billing update", map[string]interface{}{
		"tenant_id": tenantId.String(),
		"status":    string(update.Status),
	})
	return nil
}

func stringField(payload map[string]interface{}, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}

func timeField(payload map[string]interface{}, key string) (time.Time, bool) {
	raw, ok := payload[key].(string)
	if !ok || raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
