package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Document struct {
	Id            uuid.UUID         `gorm:"type:uuid;primaryKey"`
	TenantId      uuid.UUID         `gorm:"type:uuid;not null;index"`
	ChatSessionId *uuid.UUID        `gorm:"type:uuid;index"`
	Filename      string            `gorm:"type:varchar(255);not null"`
	SizeBytes     int64             `gorm:"not null"`
	MimeType      string            `gorm:"type:varchar(100);not null"`
	Content       []byte            ``
	Status        string            `gorm:"type:varchar(20);not null;index"`
	ExtractedText string            `gorm:"type:text"`
	ExtractedData datatypes.JSONMap `gorm:"type:jsonb"`
	FailureReason   string          `gorm:"type:varchar(100)"`
	ClaimedAt       *time.Time      `gorm:"index"`
	CancelRequested bool            `gorm:"not null;default:false"`
	CreatedAt     time.Time         `gorm:"autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"autoUpdateTime"`
}

func (Document) TableName() string {
	return "documents"
}
