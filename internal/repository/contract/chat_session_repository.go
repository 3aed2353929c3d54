package contract

import (
	"context"

	"bizops-assistant-be/internal/entity"
	"bizops-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ChatSessionRepository persists chat sessions. Every read takes the tenant
// id as a mandatory key component; a session is never addressable without
// its tenant.
type ChatSessionRepository interface {
	Create(ctx context.Context, session *entity.ChatSession) error
	Update(ctx context.Context, session *entity.ChatSession) error
	FindOne(ctx context.Context, tenantId uuid.UUID, specs ...specification.Specification) (*entity.ChatSession, error)
	FindAll(ctx context.Context, tenantId uuid.UUID, specs ...specification.Specification) ([]*entity.ChatSession, error)
	Count(ctx context.Context, tenantId uuid.UUID, specs ...specification.Specification) (int64, error)
}
