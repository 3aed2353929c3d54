package mapper

import (
	"time"

	"bizops-assistant-be/internal/entity"
	"bizops-assistant-be/internal/model"

	"gorm.io/datatypes"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Session Mappers

func (m *ChatMapper) ChatSessionToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.ChatSession{
		Id:           s.Id,
		TenantId:     s.TenantId,
		OwnerUserId:  s.OwnerUserId,
		Status:       entity.SessionStatus(s.Status),
		Title:        s.Title,
		Context:      map[string]interface{}(s.Context),
		LastActivity: s.LastActivity,
		MessageCount: s.MessageCount,
		NextSequence: s.NextSequence,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *ChatMapper) ChatSessionToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.ChatSession{
		Id:           s.Id,
		TenantId:     s.TenantId,
		OwnerUserId:  s.OwnerUserId,
		Status:       string(s.Status),
		Title:        s.Title,
		Context:      datatypes.JSONMap(s.Context),
		LastActivity: s.LastActivity,
		MessageCount: s.MessageCount,
		NextSequence: s.NextSequence,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

// Message Mappers

func (m *ChatMapper) ChatMessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}

	return &entity.ChatMessage{
		Id:            msg.Id,
		TenantId:      msg.TenantId,
		ChatSessionId: msg.ChatSessionId,
		Sequence:      msg.Sequence,
		Type:          entity.MessageType(msg.Type),
		Content:       msg.Content,
		Metadata:      map[string]interface{}(msg.Metadata),
		IsProcessed:   msg.IsProcessed,
		CreatedAt:     msg.CreatedAt,
	}
}

func (m *ChatMapper) ChatMessageToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}

	return &model.ChatMessage{
		Id:            msg.Id,
		TenantId:      msg.TenantId,
		ChatSessionId: msg.ChatSessionId,
		Sequence:      msg.Sequence,
		Type:          string(msg.Type),
		Content:       msg.Content,
		Metadata:      datatypes.JSONMap(msg.Metadata),
		IsProcessed:   msg.IsProcessed,
		CreatedAt:     msg.CreatedAt,
	}
}

func (m *ChatMapper) ChatMessagesToEntities(models []*model.ChatMessage) []*entity.ChatMessage {
	entities := make([]*entity.ChatMessage, len(models))
	for i, msg := range models {
		entities[i] = m.ChatMessageToEntity(msg)
	}
	return entities
}
