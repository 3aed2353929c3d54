package service

import (
	"context"
	"strconv"
	"time"

	"bizops-assistant-be/internal/dto"
	"bizops-assistant-be/internal/entity"
	"bizops-assistant-be/internal/repository/specification"
	"bizops-assistant-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

const (
	planCatalogCacheKey = "plan_catalog"
	planCatalogTTL      = 5 * time.Minute
)

// PlanService resolves the effective entitlements of a tenant: plan defaults
// merged with per-subscription overrides. The plan catalog is read-mostly,
// so it is served from an immutable snapshot that is swapped whole on
// refresh, never mutated in place.
type PlanService interface {
	GetAllActivePlansWithFeatures(ctx context.Context) ([]*dto.PlanWithFeaturesResponse, error)
	GetPlan(ctx context.Context, planId uuid.UUID) (*entity.SubscriptionPlan, error)
	GetTenantSubscription(ctx context.Context, tenantId uuid.UUID) (*entity.TenantSubscription, *entity.SubscriptionPlan, error)
	EffectiveLimits(sub *entity.TenantSubscription, plan *entity.SubscriptionPlan) entity.LimitSet
	EffectiveFeatures(sub *entity.TenantSubscription, plan *entity.SubscriptionPlan) map[string]bool
	InvalidateCatalog()
}

type planService struct {
	uowFactory unitofwork.RepositoryFactory
	catalog    *gocache.Cache
}

func NewPlanService(uowFactory unitofwork.RepositoryFactory) PlanService {
	return &planService{
		uowFactory: uowFactory,
		catalog:    gocache.New(planCatalogTTL, 10*time.Minute),
	}
}

// loadCatalog returns the plan snapshot, reading through to the store on a
// cache miss. The snapshot map is never mutated after insertion.
func (s *planService) loadCatalog(ctx context.Context) (map[uuid.UUID]*entity.SubscriptionPlan, error) {
	if cached, ok := s.catalog.Get(planCatalogCacheKey); ok {
		return cached.(map[uuid.UUID]*entity.SubscriptionPlan), nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	plans, err := uow.SubscriptionRepository().FindAllPlans(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := make(map[uuid.UUID]*entity.SubscriptionPlan, len(plans))
	for _, plan := range plans {
		snapshot[plan.Id] = plan
	}
	s.catalog.Set(planCatalogCacheKey, snapshot, planCatalogTTL)
	return snapshot, nil
}

func (s *planService) InvalidateCatalog() {
	s.catalog.Delete(planCatalogCacheKey)
}

func (s *planService) GetAllActivePlansWithFeatures(ctx context.Context) ([]*dto.PlanWithFeaturesResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	plans, err := uow.SubscriptionRepository().FindAllPlans(ctx,
		specification.ActivePlans{},
		specification.OrderBy{Field: "sort_order"},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.PlanWithFeaturesResponse, 0, len(plans))
	for _, plan := range plans {
		featureDTOs := make([]dto.FeatureDTO, 0, len(plan.Features))
		for _, f := range plan.Features {
			if !f.IsActive {
				continue
			}
			featureDTOs = append(featureDTOs, dto.FeatureDTO{
				Key:      f.Key,
				Name:     f.Name,
				Category: f.Category,
			})
		}

		result = append(result, &dto.PlanWithFeaturesResponse{
			Id:           plan.Id,
			Name:         plan.Name,
			Tier:         string(plan.Tier),
			Description:  plan.Description,
			MonthlyPrice: plan.MonthlyPrice,
			Limits: dto.PlanLimitsDTO{
				MaxUsers:              plan.Limits.MaxUsers,
				MaxSuppliers:          plan.Limits.MaxSuppliers,
				MaxCustomers:          plan.Limits.MaxCustomers,
				MaxOrdersPerPeriod:    plan.Limits.MaxOrdersPerPeriod,
				MaxDocumentsPerPeriod: plan.Limits.MaxDocumentsPerPeriod,
				MaxMessagesPerPeriod:  plan.Limits.MaxMessagesPerPeriod,
			},
			Features:  featureDTOs,
			SortOrder: plan.SortOrder,
		})
	}

	return result, nil
}

func (s *planService) GetPlan(ctx context.Context, planId uuid.UUID) (*entity.SubscriptionPlan, error) {
	snapshot, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	plan, ok := snapshot[planId]
	if !ok {
		return nil, ErrNotFound
	}
	return plan, nil
}

// GetTenantSubscription returns the tenant's current subscription and its
// plan. A tenant without any subscription has no entitlements.
func (s *planService) GetTenantSubscription(ctx context.Context, tenantId uuid.UUID) (*entity.TenantSubscription, *entity.SubscriptionPlan, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sub, err := uow.SubscriptionRepository().FindOneSubscription(ctx, tenantId,
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, nil, err
	}
	if sub == nil {
		return nil, nil, ErrNotFound
	}

	plan, err := s.GetPlan(ctx, sub.PlanId)
	if err != nil {
		return nil, nil, err
	}
	return sub, plan, nil
}

// EffectiveLimits merges subscription limit overrides over the plan
// defaults, field by field. Unknown override keys are ignored; only the
// metrics named here can be overridden.
func (s *planService) EffectiveLimits(sub *entity.TenantSubscription, plan *entity.SubscriptionPlan) entity.LimitSet {
	limits := plan.Limits
	if sub == nil || len(sub.LimitOverrides) == 0 {
		return limits
	}

	if v, ok := overrideInt(sub.LimitOverrides, entity.MetricUsers); ok {
		limits.MaxUsers = v
	}
	if v, ok := overrideInt(sub.LimitOverrides, entity.MetricSuppliers); ok {
		limits.MaxSuppliers = v
	}
	if v, ok := overrideInt(sub.LimitOverrides, entity.MetricCustomers); ok {
		limits.MaxCustomers = v
	}
	if v, ok := overrideInt(sub.LimitOverrides, entity.MetricOrdersPerPeriod); ok {
		limits.MaxOrdersPerPeriod = v
	}
	if v, ok := overrideInt(sub.LimitOverrides, entity.MetricDocsPerPeriod); ok {
		limits.MaxDocumentsPerPeriod = v
	}
	if v, ok := overrideInt(sub.LimitOverrides, entity.MetricMessagesPerPeriod); ok {
		limits.MaxMessagesPerPeriod = v
	}
	return limits
}

// EffectiveFeatures returns the feature keys enabled for the subscription:
// the plan's active features, with feature overrides able to switch
// individual keys on or off.
func (s *planService) EffectiveFeatures(sub *entity.TenantSubscription, plan *entity.SubscriptionPlan) map[string]bool {
	features := make(map[string]bool, len(plan.Features))
	for _, f := range plan.Features {
		if f.IsActive {
			features[f.Key] = true
		}
	}

	if sub != nil {
		for key, raw := range sub.FeatureOverrides {
			if enabled, ok := raw.(bool); ok {
				if enabled {
					features[key] = true
				} else {
					delete(features, key)
				}
			}
		}
	}
	return features
}

// overrideInt reads a numeric override. The JSON column round-trips numbers
// as float64 or, depending on the driver, as strings, so all of those are
// accepted.
func overrideInt(overrides map[string]interface{}, key string) (int, bool) {
	raw, ok := overrides[key]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n, true
		}
	}
	return 0, false
}
