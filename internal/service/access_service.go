package service

import (
	"context"

	"bizops-assistant-be/internal/dto"
	"bizops-assistant-be/internal/entity"

	"github.com/google/uuid"
)

// AccessService is the guard in front of every gated operation. Denial
// reasons are checked in a fixed order: subscription state first, then
// feature availability, then quota. Authorization never mutates counters;
// recording usage is the caller's follow-up step.
type AccessService interface {
	// Authorize evaluates feature plus optional quota. An empty metric makes
	// this a side-effect-free capability probe.
	Authorize(ctx context.Context, tenantId uuid.UUID, featureKey, metric string) (*dto.Decision, error)

	// Require is Authorize with the denial mapped onto the service error
	// taxonomy, for call sites that want control flow instead of a Decision.
	Require(ctx context.Context, tenantId uuid.UUID, featureKey, metric string) error
}

type accessService struct {
	planService  PlanService
	usageService UsageService
}

func NewAccessService(planService PlanService, usageService UsageService) AccessService {
	return &accessService{
		planService:  planService,
		usageService: usageService,
	}
}

func (s *accessService) Authorize(ctx context.Context, tenantId uuid.UUID, featureKey, metric string) (*dto.Decision, error) {
	sub, plan, err := s.planService.GetTenantSubscription(ctx, tenantId)
	if err != nil {
		if err == ErrNotFound {
			return &dto.Decision{Allowed: false, Reason: dto.DenialSubscriptionInactive}, nil
		}
		return nil, err
	}

	if !sub.IsBillable() {
		return &dto.Decision{Allowed: false, Reason: dto.DenialSubscriptionInactive}, nil
	}

	features := s.planService.EffectiveFeatures(sub, plan)
	if featureKey != "" && !features[featureKey] {
		return &dto.Decision{Allowed: false, Reason: dto.DenialFeatureDisabled}, nil
	}

	if metric == "" {
		return &dto.Decision{Allowed: true}, nil
	}

	limits := s.planService.EffectiveLimits(sub, plan)
	limit, known := limits.ForMetric(metric)
	if !known || limit == entity.LimitUnlimited {
		return &dto.Decision{Allowed: true, Metric: metric, Limit: limit}, nil
	}

	used, err := s.usageService.CurrentUsage(ctx, tenantId, metric)
	if err != nil {
		return nil, err
	}
	if used >= int64(limit) {
		return &dto.Decision{
			Allowed: false,
			Reason:  dto.DenialQuotaExceeded,
			Metric:  metric,
			Limit:   limit,
			Used:    used,
		}, nil
	}

	return &dto.Decision{Allowed: true, Metric: metric, Limit: limit, Used: used}, nil
}

func (s *accessService) Require(ctx context.Context, tenantId uuid.UUID, featureKey, metric string) error {
	decision, err := s.Authorize(ctx, tenantId, featureKey, metric)
	if err != nil {
		return err
	}
	if decision.Allowed {
		return nil
	}

	switch decision.Reason {
	case dto.DenialSubscriptionInactive:
		return ErrSubscriptionInactive
	case dto.DenialFeatureDisabled:
		return ErrFeatureDisabled
	case dto.DenialQuotaExceeded:
		return &QuotaExceededError{
			Metric: decision.Metric,
			Limit:  decision.Limit,
			Used:   decision.Used,
		}
	}
	return ErrSubscriptionInactive
}
