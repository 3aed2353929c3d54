package service

import (
	"context"
	"time"

	"bizops-assistant-be/internal/entity"
	"bizops-assistant-be/internal/repository/specification"
	"bizops-assistant-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

const freeTrialDays = 14

// SubscriptionService manages the tenant-to-plan binding. Billing itself
// happens elsewhere; this service only records the resulting state and
// bootstraps the free trial for new tenants.
type SubscriptionService interface {
	CreateFreeTrial(ctx context.Context, tenantId uuid.UUID) (*entity.TenantSubscription, error)
	ApplyBillingUpdate(ctx context.Context, tenantId uuid.UUID, update *BillingUpdate) error
}

// BillingUpdate is the normalized form of an external billing event.
type BillingUpdate struct {
	Status      entity.SubscriptionStatus
	PlanId      *uuid.UUID
	PeriodStart *time.Time
	PeriodEnd   *time.Time
	CanceledAt  *time.Time
}

type subscriptionService struct {
	uowFactory  unitofwork.RepositoryFactory
	planService PlanService
}

func NewSubscriptionService(uowFactory unitofwork.RepositoryFactory, planService PlanService) SubscriptionService {
	return &subscriptionService{
		uowFactory:  uowFactory,
		planService: planService,
	}
}

// CreateFreeTrial starts a 14-day trialing subscription on the free plan.
// A tenant that already has a subscription keeps it; the call is idempotent.
func (s *subscriptionService) CreateFreeTrial(ctx context.Context, tenantId uuid.UUID) (*entity.TenantSubscription, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.SubscriptionRepository().FindOneSubscription(ctx, tenantId)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	freePlan, err := uow.SubscriptionRepository().FindOnePlan(ctx,
		specification.FilterBy{Field: "tier", Value: string(entity.PlanTierFree)},
		specification.ActivePlans{},
	)
	if err != nil {
		return nil, err
	}
	if freePlan == nil {
		return nil, ErrNotFound
	}

	now := time.Now()
	trialEnd := now.AddDate(0, 0, freeTrialDays)
	sub := entity.TenantSubscription{
		Id:                 uuid.New(),
		TenantId:           tenantId,
		PlanId:             freePlan.Id,
		Status:             entity.SubscriptionStatusTrialing,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   trialEnd,
		TrialStart:         &now,
		TrialEnd:           &trialEnd,
		CreatedAt:          now,
	}

	if err := uow.SubscriptionRepository().CreateSubscription(ctx, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// ApplyBillingUpdate writes externally observed billing state onto the
// tenant's subscription. Fields absent from the update are left as they are.
func (s *subscriptionService) ApplyBillingUpdate(ctx context.Context, tenantId uuid.UUID, update *BillingUpdate) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sub, err := uow.SubscriptionRepository().FindOneSubscription(ctx, tenantId,
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return err
	}
	if sub == nil {
		return ErrNotFound
	}

	if update.Status != "" {
		sub.Status = update.Status
	}
	if update.PlanId != nil {
		sub.PlanId = *update.PlanId
	}
	if update.PeriodStart != nil {
		sub.CurrentPeriodStart = *update.PeriodStart
	}
	if update.PeriodEnd != nil {
		sub.CurrentPeriodEnd = *update.PeriodEnd
	}
	if update.CanceledAt != nil {
		sub.CanceledAt = update.CanceledAt
	}

	return uow.SubscriptionRepository().UpdateSubscription(ctx, sub)
}
