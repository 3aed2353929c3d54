package dto

import (
	"time"

	"github.com/google/uuid"
)

// UsageMetricStatus is one row of the usage report: observed count against
// the effective limit. Limit 0 means unlimited.
type UsageMetricStatus struct {
	Metric    string `json:"metric"`
	Used      int64  `json:"used"`
	Limit     int    `json:"limit"`
	Unlimited bool   `json:"unlimited"`
	Exceeded  bool   `json:"exceeded"`
}

type UsageStatusResponse struct {
	Plan      PlanInfo            `json:"plan"`
	Status    string              `json:"subscription_status"`
	PeriodKey string              `json:"period_key"`
	PeriodEnd *time.Time          `json:"period_end,omitempty"`
	Metrics   []UsageMetricStatus `json:"metrics"`
}

type PlanInfo struct {
	Id   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Tier string    `json:"tier"`
}
