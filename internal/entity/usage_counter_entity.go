package entity

import (
	"time"

	"github.com/google/uuid"
)

// UsageCounter is a per-tenant, per-metric, per-period atomic count.
// Counters never go negative; downward moves happen only through explicit
// correction. A counter for a new period is created lazily on first
// increment, reads of an absent period return zero.
type UsageCounter struct {
	Id        uuid.UUID
	TenantId  uuid.UUID
	Metric    string
	PeriodKey string
	Count     int64
	UpdatedAt time.Time
}
