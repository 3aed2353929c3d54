package model

import (
	"time"

	"github.com/google/uuid"
)

type UsageCounter struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantId  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_tenant_metric_period"`
	Metric    string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_tenant_metric_period"`
	PeriodKey string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_tenant_metric_period"`
	Count     int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (UsageCounter) TableName() string {
	return "usage_counters"
}
