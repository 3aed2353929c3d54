package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ChatMessage struct {
	Id            uuid.UUID         `gorm:"type:uuid;primaryKey"`
	TenantId      uuid.UUID         `gorm:"type:uuid;not null;index"`
	ChatSessionId uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_session_sequence"`
	Sequence      int64             `gorm:"not null;uniqueIndex:idx_session_sequence"`
	Type          string            `gorm:"type:varchar(20);not null"`
	Content       string            `gorm:"type:text;not null"`
	Metadata      datatypes.JSONMap `gorm:"type:jsonb"`
	IsProcessed   bool              `gorm:"default:true"`
	CreatedAt     time.Time         `gorm:"autoCreateTime"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
