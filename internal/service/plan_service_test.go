package service

import (
	"context"
	"testing"

	"bizops-assistant-be/internal/entity"
	"bizops-assistant-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveLimitsMerge(t *testing.T) {
	factory := unitofwork.NewRepositoryFactory(newTestDB(t))
	svc := NewPlanService(factory)

	plan := &entity.SubscriptionPlan{
		Limits: entity.LimitSet{
			MaxSuppliers:         5,
			MaxCustomers:         10,
			MaxMessagesPerPeriod: 100,
		},
	}

	t.Run("no overrides returns plan defaults", func(t *testing.T) {
		limits := svc.EffectiveLimits(&entity.TenantSubscription{}, plan)
		assert.Equal(t, plan.Limits, limits)
	})

	t.Run("overrides win per metric", func(t *testing.T) {
		sub := &entity.TenantSubscription{
			LimitOverrides: map[string]interface{}{
				// JSON numbers arrive as float64.
				entity.MetricSuppliers:         float64(50),
				entity.MetricMessagesPerPeriod: 0, // granted unlimited
			},
		}
		limits := svc.EffectiveLimits(sub, plan)
		assert.Equal(t, 50, limits.MaxSuppliers)
		assert.Equal(t, entity.LimitUnlimited, limits.MaxMessagesPerPeriod)
		assert.Equal(t, 10, limits.MaxCustomers)
	})

	t.Run("string-typed overrides are honored", func(t *testing.T) {
		// The JSON column can round-trip numbers as strings depending on the
		// driver; the override still has to apply.
		sub := &entity.TenantSubscription{
			LimitOverrides: map[string]interface{}{
				entity.MetricSuppliers: "50",
			},
		}
		limits := svc.EffectiveLimits(sub, plan)
		assert.Equal(t, 50, limits.MaxSuppliers)
	})

	t.Run("unknown override keys are ignored", func(t *testing.T) {
		sub := &entity.TenantSubscription{
			LimitOverrides: map[string]interface{}{
				"not_a_metric": 99,
			},
		}
		limits := svc.EffectiveLimits(sub, plan)
		assert.Equal(t, plan.Limits, limits)
	})
}

func TestEffectiveFeaturesMerge(t *testing.T) {
	factory := unitofwork.NewRepositoryFactory(newTestDB(t))
	svc := NewPlanService(factory)

	plan := &entity.SubscriptionPlan{
		Features: []entity.Feature{
			{Key: entity.FeatureChat, IsActive: true},
			{Key: entity.FeatureDocumentUpload, IsActive: true},
			{Key: entity.FeatureAPIAccess, IsActive: false},
		},
	}

	features := svc.EffectiveFeatures(&entity.TenantSubscription{
		FeatureOverrides: map[string]interface{}{
			entity.FeatureDocumentUpload:    false,
			entity.FeatureAdvancedReporting: true,
		},
	}, plan)

	assert.True(t, features[entity.FeatureChat])
	assert.False(t, features[entity.FeatureDocumentUpload], "override disables plan feature")
	assert.True(t, features[entity.FeatureAdvancedReporting], "override grants off-plan feature")
	assert.False(t, features[entity.FeatureAPIAccess], "inactive catalog entries do not count")
}

func TestGetTenantSubscription(t *testing.T) {
	factory := unitofwork.NewRepositoryFactory(newTestDB(t))
	svc := NewPlanService(factory)
	ctx := context.Background()
	tenantId := uuid.New()

	t.Run("missing subscription is ErrNotFound", func(t *testing.T) {
		_, _, err := svc.GetTenantSubscription(ctx, tenantId)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	seedTenantPlan(t, factory, tenantId, planSpec{
		limits:   entity.LimitSet{MaxSuppliers: 5},
		features: []string{entity.FeatureChat},
	})
	svc.InvalidateCatalog()

	sub, plan, err := svc.GetTenantSubscription(ctx, tenantId)
	require.NoError(t, err)
	assert.Equal(t, tenantId, sub.TenantId)
	assert.Equal(t, 5, plan.Limits.MaxSuppliers)
	assert.True(t, plan.HasFeature(entity.FeatureChat))
}

func TestPlanCatalogCacheInvalidation(t *testing.T) {
	factory := unitofwork.NewRepositoryFactory(newTestDB(t))
	svc := NewPlanService(factory)
	ctx := context.Background()
	tenantId := uuid.New()

	seedTenantPlan(t, factory, tenantId, planSpec{})

	// Warm the snapshot, then add a plan behind its back.
	_, _, err := svc.GetTenantSubscription(ctx, tenantId)
	require.NoError(t, err)

	uow := factory.NewUnitOfWork(ctx)
	newPlan := entity.SubscriptionPlan{
		Id:       uuid.New(),
		Name:     "Late Plan",
		Tier:     entity.PlanTierEnterprise,
		IsActive: true,
	}
	require.NoError(t, uow.SubscriptionRepository().CreatePlan(ctx, &newPlan))

	// The cached snapshot does not know the new plan yet.
	_, err = svc.GetPlan(ctx, newPlan.Id)
	assert.ErrorIs(t, err, ErrNotFound)

	svc.InvalidateCatalog()

	got, err := svc.GetPlan(ctx, newPlan.Id)
	require.NoError(t, err)
	assert.Equal(t, "Late Plan", got.Name)
}
