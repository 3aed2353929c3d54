package contract

import (
	"context"

	"bizops-assistant-be/internal/entity"
	"bizops-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SubscriptionRepository interface {
	// Plans (read-mostly catalog)
	CreatePlan(ctx context.Context, plan *entity.SubscriptionPlan) error
	UpdatePlan(ctx context.Context, plan *entity.SubscriptionPlan) error
	FindOnePlan(ctx context.Context, specs ...specification.Specification) (*entity.SubscriptionPlan, error)
	FindAllPlans(ctx context.Context, specs ...specification.Specification) ([]*entity.SubscriptionPlan, error)
	AddFeatureToPlan(ctx context.Context, planId uuid.UUID, featureId uuid.UUID) error

	// Tenant subscriptions
	CreateSubscription(ctx context.Context, subscription *entity.TenantSubscription) error
	UpdateSubscription(ctx context.Context, subscription *entity.TenantSubscription) error
	FindOneSubscription(ctx context.Context, tenantId uuid.UUID, specs ...specification.Specification) (*entity.TenantSubscription, error)
	FindAllSubscriptions(ctx context.Context, tenantId uuid.UUID, specs ...specification.Specification) ([]*entity.TenantSubscription, error)
}
