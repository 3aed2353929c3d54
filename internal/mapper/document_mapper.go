package mapper

import (
	"time"

	"bizops-assistant-be/internal/entity"
	"bizops-assistant-be/internal/model"

	"gorm.io/datatypes"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	return &entity.Document{
		Id:            d.Id,
		TenantId:      d.TenantId,
		ChatSessionId: d.ChatSessionId,
		Filename:      d.Filename,
		SizeBytes:     d.SizeBytes,
		MimeType:      d.MimeType,
		Content:       d.Content,
		Status:        entity.DocumentStatus(d.Status),
		ExtractedText: d.ExtractedText,
		ExtractedData: map[string]interface{}(d.ExtractedData),
		FailureReason:   d.FailureReason,
		ClaimedAt:       d.ClaimedAt,
		CancelRequested: d.CancelRequested,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       updatedAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}

	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}

	return &model.Document{
		Id:            d.Id,
		TenantId:      d.TenantId,
		ChatSessionId: d.ChatSessionId,
		Filename:      d.Filename,
		SizeBytes:     d.SizeBytes,
		MimeType:      d.MimeType,
		Content:       d.Content,
		Status:        string(d.Status),
		ExtractedText: d.ExtractedText,
		ExtractedData: datatypes.JSONMap(d.ExtractedData),
		FailureReason:   d.FailureReason,
		ClaimedAt:       d.ClaimedAt,
		CancelRequested: d.CancelRequested,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       updatedAt,
	}
}

func (m *DocumentMapper) ToEntities(models []*model.Document) []*entity.Document {
	entities := make([]*entity.Document, len(models))
	for i, d := range models {
		entities[i] = m.ToEntity(d)
	}
	return entities
}
