package mapper

import (
	"bizops-assistant-be/internal/entity"
	"bizops-assistant-be/internal/model"
)

type UsageMapper struct{}

func NewUsageMapper() *UsageMapper {
	return &UsageMapper{}
}

func (m *UsageMapper) ToEntity(c *model.UsageCounter) *entity.UsageCounter {
	if c == nil {
		return nil
	}
	return &entity.UsageCounter{
		Id:        c.Id,
		TenantId:  c.TenantId,
		Metric:    c.Metric,
		PeriodKey: c.PeriodKey,
		Count:     c.Count,
		UpdatedAt: c.UpdatedAt,
	}
}

func (m *UsageMapper) ToModel(c *entity.UsageCounter) *model.UsageCounter {
	if c == nil {
		return nil
	}
	return &model.UsageCounter{
		Id:        c.Id,
		TenantId:  c.TenantId,
		Metric:    c.Metric,
		PeriodKey: c.PeriodKey,
		Count:     c.Count,
		UpdatedAt: c.UpdatedAt,
	}
}
