package mapper

import (
	"bizops-assistant-be/internal/entity"
	"bizops-assistant-be/internal/model"
)

type FeatureMapper struct{}

func NewFeatureMapper() *FeatureMapper {
	return &FeatureMapper{}
}

func (m *FeatureMapper) ToEntity(f *model.Feature) *entity.Feature {
	if f == nil {
		return nil
	}
	return &entity.Feature{
		Id:          f.Id,
		Key:         f.Key,
		Name:        f.Name,
		Description: f.Description,
		Category:    f.Category,
		IsActive:    f.IsActive,
		SortOrder:   f.SortOrder,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

func (m *FeatureMapper) ToModel(f *entity.Feature) *model.Feature {
	if f == nil {
		return nil
	}
	return &model.Feature{
		Id:          f.Id,
		Key:         f.Key,
		Name:        f.Name,
		Description: f.Description,
		Category:    f.Category,
		IsActive:    f.IsActive,
		SortOrder:   f.SortOrder,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

func (m *FeatureMapper) ToEntities(models []*model.Feature) []*entity.Feature {
	entities := make([]*entity.Feature, len(models))
	for i, f := range models {
		entities[i] = m.ToEntity(f)
	}
	return entities
}
