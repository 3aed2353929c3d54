package service

import (
	"context"
	"errors"
	"testing"

	"bizops-assistant-be/internal/dto"
	"bizops-assistant-be/internal/entity"
	"bizops-assistant-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccessFixture(t *testing.T) (unitofwork.RepositoryFactory, AccessService, UsageService) {
	t.Helper()
	factory := unitofwork.NewRepositoryFactory(newTestDB(t))
	planService := NewPlanService(factory)
	usageService := NewUsageService(factory, planService)
	accessService := NewAccessService(planService, usageService)
	return factory, accessService, usageService
}

func TestAuthorizeQuotaBoundary(t *testing.T) {
	factory, access, usage := newAccessFixture(t)
	ctx := context.Background()
	tenantId := uuid.New()

	seedTenantPlan(t, factory, tenantId, planSpec{
		limits:   entity.LimitSet{MaxMessagesPerPeriod: 3},
		features: []string{entity.FeatureChat},
	})

	// Below the cap every call is allowed.
	for i := 0; i < 3; i++ {
		decision, err := access.Authorize(ctx, tenantId, entity.FeatureChat, entity.MetricMessagesPerPeriod)
		require.NoError(t, err)
		assert.True(t, decision.Allowed, "call %d should be allowed", i+1)

		_, err = usage.Increment(ctx, tenantId, entity.MetricMessagesPerPeriod, 1)
		require.NoError(t, err)
	}

	// The k+1th is denied with the numbers attached.
	decision, err := access.Authorize(ctx, tenantId, entity.FeatureChat, entity.MetricMessagesPerPeriod)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, dto.DenialQuotaExceeded, decision.Reason)
	assert.Equal(t, 3, decision.Limit)
	assert.Equal(t, int64(3), decision.Used)
}

func TestAuthorizeUnlimitedMetric(t *testing.T) {
	factory, access, usage := newAccessFixture(t)
	ctx := context.Background()
	tenantId := uuid.New()

	// Zero limit means unlimited, not zero quota.
	seedTenantPlan(t, factory, tenantId, planSpec{
		limits:   entity.LimitSet{MaxMessagesPerPeriod: entity.LimitUnlimited},
		features: []string{entity.FeatureChat},
	})

	_, err := usage.Increment(ctx, tenantId, entity.MetricMessagesPerPeriod, 100000)
	require.NoError(t, err)

	decision, err := access.Authorize(ctx, tenantId, entity.FeatureChat, entity.MetricMessagesPerPeriod)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestAuthorizeDenialPrecedence(t *testing.T) {
	ctx := context.Background()

	t.Run("no subscription", func(t *testing.T) {
		_, access, _ := newAccessFixture(t)

		decision, err := access.Authorize(ctx, uuid.New(), entity.FeatureChat, entity.MetricMessagesPerPeriod)
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Equal(t, dto.DenialSubscriptionInactive, decision.Reason)
	})

	t.Run("inactive subscription wins over missing feature", func(t *testing.T) {
		factory, access, _ := newAccessFixture(t)
		tenantId := uuid.New()

		seedTenantPlan(t, factory, tenantId, planSpec{
			status: entity.SubscriptionStatusPastDue,
		})

		decision, err := access.Authorize(ctx, tenantId, entity.FeatureChat, entity.MetricMessagesPerPeriod)
		require.NoError(t, err)
		assert.Equal(t, dto.DenialSubscriptionInactive, decision.Reason)
	})

	t.Run("feature disabled wins over quota", func(t *testing.T) {
		factory, access, _ := newAccessFixture(t)
		tenantId := uuid.New()

		seedTenantPlan(t, factory, tenantId, planSpec{
			limits: entity.LimitSet{MaxMessagesPerPeriod: 1},
		})

		decision, err := access.Authorize(ctx, tenantId, entity.FeatureChat, entity.MetricMessagesPerPeriod)
		require.NoError(t, err)
		assert.Equal(t, dto.DenialFeatureDisabled, decision.Reason)
	})
}

func TestAuthorizeOverrides(t *testing.T) {
	ctx := context.Background()

	t.Run("limit override raises the cap", func(t *testing.T) {
		factory, access, usage := newAccessFixture(t)
		tenantId := uuid.New()

		seedTenantPlan(t, factory, tenantId, planSpec{
			limits:         entity.LimitSet{MaxMessagesPerPeriod: 1},
			features:       []string{entity.FeatureChat},
			limitOverrides: map[string]interface{}{entity.MetricMessagesPerPeriod: 5},
		})

		_, err := usage.Increment(ctx, tenantId, entity.MetricMessagesPerPeriod, 3)
		require.NoError(t, err)

		decision, err := access.Authorize(ctx, tenantId, entity.FeatureChat, entity.MetricMessagesPerPeriod)
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
		assert.Equal(t, 5, decision.Limit)
	})

	t.Run("feature override disables a plan feature", func(t *testing.T) {
		factory, access, _ := newAccessFixture(t)
		tenantId := uuid.New()

		seedTenantPlan(t, factory, tenantId, planSpec{
			features:         []string{entity.FeatureChat},
			featureOverrides: map[string]interface{}{entity.FeatureChat: false},
		})

		decision, err := access.Authorize(ctx, tenantId, entity.FeatureChat, "")
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Equal(t, dto.DenialFeatureDisabled, decision.Reason)
	})

	t.Run("feature override enables an off-plan feature", func(t *testing.T) {
		factory, access, _ := newAccessFixture(t)
		tenantId := uuid.New()

		seedTenantPlan(t, factory, tenantId, planSpec{
			featureOverrides: map[string]interface{}{entity.FeatureAdvancedReporting: true},
		})

		decision, err := access.Authorize(ctx, tenantId, entity.FeatureAdvancedReporting, "")
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
	})
}

func TestRequireMapsDenials(t *testing.T) {
	factory, access, usage := newAccessFixture(t)
	ctx := context.Background()
	tenantId := uuid.New()

	seedTenantPlan(t, factory, tenantId, planSpec{
		limits:   entity.LimitSet{MaxMessagesPerPeriod: 1},
		features: []string{entity.FeatureChat},
	})

	require.NoError(t, access.Require(ctx, tenantId, entity.FeatureChat, entity.MetricMessagesPerPeriod))

	_, err := usage.Increment(ctx, tenantId, entity.MetricMessagesPerPeriod, 1)
	require.NoError(t, err)

	err = access.Require(ctx, tenantId, entity.FeatureChat, entity.MetricMessagesPerPeriod)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuotaExceeded))

	var quotaErr *QuotaExceededError
	require.True(t, errors.As(err, &quotaErr))
	assert.Equal(t, entity.MetricMessagesPerPeriod, quotaErr.Metric)
	assert.Equal(t, 1, quotaErr.Limit)
	assert.Equal(t, int64(1), quotaErr.Used)

	t.Run("probe with empty metric never consumes", func(t *testing.T) {
		require.NoError(t, access.Require(ctx, tenantId, entity.FeatureChat, ""))
	})
}
