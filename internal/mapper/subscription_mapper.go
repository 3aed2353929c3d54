package mapper

import (
	"bizops-assistant-be/internal/entity"
	"bizops-assistant-be/internal/model"

	"gorm.io/datatypes"
)

type SubscriptionMapper struct {
	featureMapper *FeatureMapper
}

func NewSubscriptionMapper() *SubscriptionMapper {
	return &SubscriptionMapper{
		featureMapper: NewFeatureMapper(),
	}
}

func (m *SubscriptionMapper) PlanToEntity(p *model.SubscriptionPlan) *entity.SubscriptionPlan {
	if p == nil {
		return nil
	}

	features := make([]entity.Feature, 0, len(p.Features))
	for _, f := range p.Features {
		if fe := m.featureMapper.ToEntity(f); fe != nil {
			features = append(features, *fe)
		}
	}

	return &entity.SubscriptionPlan{
		Id:           p.Id,
		Name:         p.Name,
		Tier:         entity.PlanTier(p.Tier),
		Description:  p.Description,
		MonthlyPrice: p.MonthlyPrice,
		Limits: entity.LimitSet{
			MaxUsers:              p.MaxUsers,
			MaxSuppliers:          p.MaxSuppliers,
			MaxCustomers:          p.MaxCustomers,
			MaxOrdersPerPeriod:    p.MaxOrdersPerPeriod,
			MaxDocumentsPerPeriod: p.MaxDocumentsPerPeriod,
			MaxMessagesPerPeriod:  p.MaxMessagesPerPeriod,
		},
		Features:  features,
		IsActive:  p.IsActive,
		SortOrder: p.SortOrder,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (m *SubscriptionMapper) PlanToModel(p *entity.SubscriptionPlan) *model.SubscriptionPlan {
	if p == nil {
		return nil
	}

	features := make([]*model.Feature, 0, len(p.Features))
	for i := range p.Features {
		features = append(features, m.featureMapper.ToModel(&p.Features[i]))
	}

	return &model.SubscriptionPlan{
		Id:                    p.Id,
		Name:                  p.Name,
		Tier:                  string(p.Tier),
		Description:           p.Description,
		MonthlyPrice:          p.MonthlyPrice,
		MaxUsers:              p.Limits.MaxUsers,
		MaxSuppliers:          p.Limits.MaxSuppliers,
		MaxCustomers:          p.Limits.MaxCustomers,
		MaxOrdersPerPeriod:    p.Limits.MaxOrdersPerPeriod,
		MaxDocumentsPerPeriod: p.Limits.MaxDocumentsPerPeriod,
		MaxMessagesPerPeriod:  p.Limits.MaxMessagesPerPeriod,
		IsActive:              p.IsActive,
		SortOrder:             p.SortOrder,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
		Features:              features,
	}
}

func (m *SubscriptionMapper) SubscriptionToEntity(s *model.TenantSubscription) *entity.TenantSubscription {
	if s == nil {
		return nil
	}

	return &entity.TenantSubscription{
		Id:                 s.Id,
		TenantId:           s.TenantId,
		PlanId:             s.PlanId,
		Status:             entity.SubscriptionStatus(s.Status),
		CurrentPeriodStart: s.CurrentPeriodStart,
		CurrentPeriodEnd:   s.CurrentPeriodEnd,
		TrialStart:         s.TrialStart,
		TrialEnd:           s.TrialEnd,
		CanceledAt:         s.CanceledAt,
		CancelAtPeriodEnd:  s.CancelAtPeriodEnd,
		LimitOverrides:     map[string]interface{}(s.LimitOverrides),
		FeatureOverrides:   map[string]interface{}(s.FeatureOverrides),
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

func (m *SubscriptionMapper) SubscriptionToModel(s *entity.TenantSubscription) *model.TenantSubscription {
	if s == nil {
		return nil
	}

	return &model.TenantSubscription{
		Id:                 s.Id,
		TenantId:           s.TenantId,
		PlanId:             s.PlanId,
		Status:             string(s.Status),
		CurrentPeriodStart: s.CurrentPeriodStart,
		CurrentPeriodEnd:   s.CurrentPeriodEnd,
		TrialStart:         s.TrialStart,
		TrialEnd:           s.TrialEnd,
		CanceledAt:         s.CanceledAt,
		CancelAtPeriodEnd:  s.CancelAtPeriodEnd,
		LimitOverrides:     datatypes.JSONMap(s.LimitOverrides),
		FeatureOverrides:   datatypes.JSONMap(s.FeatureOverrides),
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}
