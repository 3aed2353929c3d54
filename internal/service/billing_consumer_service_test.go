package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"bizops-assistant-be/internal/entity"
	"bizops-assistant-be/internal/pkg/logger"
	"bizops-assistant-be/internal/repository/unitofwork"
	"bizops-assistant-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBillingFixture(t *testing.T) (unitofwork.RepositoryFactory, *billingConsumerService, PlanService) {
	t.Helper()
	factory := unitofwork.NewRepositoryFactory(newTestDB(t))
	planService := NewPlanService(factory)
	subscriptionService := NewSubscriptionService(factory, planService)
	consumer := &billingConsumerService{
		subscriptionService: subscriptionService,
		planService:         planService,
		log:                 logger.NewIsolatedLogger(filepath.Join(t.TempDir(), "billing.log")),
	}
	return factory, consumer, planService
}

func billingEvent(data map[string]interface{}) events.Event {
	return events.BaseEvent{
		Type:       "billing.subscription.updated",
		Data:       data,
		OccurredAt: time.Now(),
	}
}

func TestBillingConsumerAppliesUpdate(t *testing.T) {
	factory, consumer, planService := newBillingFixture(t)
	ctx := context.Background()
	tenantId := uuid.New()

	seedTenantPlan(t, factory, tenantId, planSpec{
		status: entity.SubscriptionStatusTrialing,
	})

	periodStart := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	err := consumer.handle(ctx, billingEvent(map[string]interface{}{
		"tenant_id":    tenantId.String(),
		"status":       "active",
		"period_start": periodStart.Format(time.RFC3339),
		"period_end":   periodStart.AddDate(0, 1, 0).Format(time.RFC3339),
	}))
	require.NoError(t, err)

	sub, _, err := planService.GetTenantSubscription(ctx, tenantId)
	require.NoError(t, err)
	assert.Equal(t, entity.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, periodStart.Unix(), sub.CurrentPeriodStart.Unix())
}

func TestBillingConsumerDropsMalformedEvents(t *testing.T) {
	_, consumer, _ := newBillingFixture(t)
	ctx := context.Background()

	t.Run("missing tenant id", func(t *testing.T) {
		err := consumer.handle(ctx, billingEvent(map[string]interface{}{
			"status": "active",
		}))
		assert.NoError(t, err, "malformed events are dropped, not retried")
	})

	t.Run("garbled tenant id", func(t *testing.T) {
		err := consumer.handle(ctx, billingEvent(map[string]interface{}{
			"tenant_id": "not-a-uuid",
			"status":    "active",
		}))
		assert.NoError(t, err)
	})

	t.Run("unknown tenant", func(t *testing.T) {
		err := consumer.handle(ctx, billingEvent(map[string]interface{}{
			"tenant_id": uuid.NewString(),
			"status":    "active",
		}))
		assert.NoError(t, err)
	})
}
