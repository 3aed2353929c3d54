package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SubscriptionPlan struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Tier         string    `gorm:"type:varchar(20);not null"`
	Description  string    `gorm:"type:text"`
	MonthlyPrice float64   `gorm:"type:decimal(10,2);not null"`
	// Per-metric limits, 0 = unlimited
	MaxUsers              int `gorm:"default:0"`
	MaxSuppliers          int `gorm:"default:0"`
	MaxCustomers          int `gorm:"default:0"`
	MaxOrdersPerPeriod    int `gorm:"default:0"`
	MaxDocumentsPerPeriod int `gorm:"default:0"`
	MaxMessagesPerPeriod  int `gorm:"default:0"`
	IsActive              bool `gorm:"default:true"`
	SortOrder             int  `gorm:"default:0"`
	CreatedAt             time.Time `gorm:"autoCreateTime"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime"`

	// Relations
	Features []*Feature `gorm:"many2many:subscription_plan_features;joinForeignKey:plan_id;joinReferences:feature_id"`
}

func (SubscriptionPlan) TableName() string {
	return "subscription_plans"
}

type TenantSubscription struct {
	Id                 uuid.UUID         `gorm:"type:uuid;primaryKey"`
	TenantId           uuid.UUID         `gorm:"type:uuid;not null;index"`
	PlanId             uuid.UUID         `gorm:"type:uuid;not null;index"`
	Status             string            `gorm:"type:varchar(20);not null"`
	CurrentPeriodStart time.Time         `gorm:"not null"`
	CurrentPeriodEnd   time.Time         `gorm:"not null"`
	TrialStart         *time.Time        ``
	TrialEnd           *time.Time        ``
	CanceledAt         *time.Time        ``
	CancelAtPeriodEnd  bool              `gorm:"default:false"`
	LimitOverrides     datatypes.JSONMap `gorm:"type:jsonb"`
	FeatureOverrides   datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt          time.Time         `gorm:"autoCreateTime"`
	UpdatedAt          time.Time         `gorm:"autoUpdateTime"`
}

func (TenantSubscription) TableName() string {
	return "tenant_subscriptions"
}
