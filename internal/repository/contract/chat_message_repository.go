package contract

import (
	"context"

	"bizops-assistant-be/internal/entity"
	"bizops-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ChatMessageRepository is an append-only store; messages are never updated
// or deleted once created.
type ChatMessageRepository interface {
	Create(ctx context.Context, message *entity.ChatMessage) error
	FindAll(ctx context.Context, tenantId uuid.UUID, specs ...specification.Specification) ([]*entity.ChatMessage, error)
	Count(ctx context.Context, tenantId uuid.UUID, specs ...specification.Specification) (int64, error)
}
