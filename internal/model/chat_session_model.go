package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ChatSession struct {
	Id           uuid.UUID         `gorm:"type:uuid;primaryKey"`
	TenantId     uuid.UUID         `gorm:"type:uuid;not null;index"` // tenant ownership for data isolation
	OwnerUserId  uuid.UUID         `gorm:"type:uuid;not null;index"`
	Status       string            `gorm:"type:varchar(20);not null;default:active"`
	Title        string            `gorm:"type:varchar(200)"`
	Context      datatypes.JSONMap `gorm:"type:jsonb"`
	LastActivity time.Time         `gorm:"not null;index"`
	MessageCount int               `gorm:"not null;default:0"`
	NextSequence int64             `gorm:"not null;default:1"`
	CreatedAt    time.Time         `gorm:"autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"autoUpdateTime"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}
