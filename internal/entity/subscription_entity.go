package entity

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string
type PlanTier string

const (
	SubscriptionStatusTrialing SubscriptionStatus = "trialing"
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"

	PlanTierFree         PlanTier = "free"
	PlanTierBasic        PlanTier = "basic"
	PlanTierProfessional PlanTier = "professional"
	PlanTierEnterprise   PlanTier = "enterprise"
)

// Usage metrics gated by plan limits.
const (
	MetricUsers             = "users"
	MetricSuppliers         = "suppliers"
	MetricCustomers         = "customers"
	MetricOrdersPerPeriod   = "orders_per_period"
	MetricDocsPerPeriod     = "documents_per_period"
	MetricMessagesPerPeriod = "chat_messages_per_period"
)

// LimitSet holds the effective per-metric limits for a tenant.
// A limit of 0 means unlimited; the sentinel is deliberate and tested.
type LimitSet struct {
	MaxUsers              int
	MaxSuppliers          int
	MaxCustomers          int
	MaxOrdersPerPeriod    int
	MaxDocumentsPerPeriod int
	MaxMessagesPerPeriod  int
}

const LimitUnlimited = 0

// ForMetric returns the limit bound to a usage metric name.
func (l LimitSet) ForMetric(metric string) (int, bool) {
	switch metric {
	case MetricUsers:
		return l.MaxUsers, true
	case MetricSuppliers:
		return l.MaxSuppliers, true
	case MetricCustomers:
		return l.MaxCustomers, true
	case MetricOrdersPerPeriod:
		return l.MaxOrdersPerPeriod, true
	case MetricDocsPerPeriod:
		return l.MaxDocumentsPerPeriod, true
	case MetricMessagesPerPeriod:
		return l.MaxMessagesPerPeriod, true
	}
	return 0, false
}

// SubscriptionPlan is an immutable catalog entry. The running process never
// mutates plans field-by-field; the whole catalog is swapped as a snapshot.
type SubscriptionPlan struct {
	Id           uuid.UUID
	Name         string
	Tier         PlanTier
	Description  string
	MonthlyPrice float64
	Limits       LimitSet
	Features     []Feature
	IsActive     bool
	SortOrder    int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasFeature reports whether the plan carries the feature key.
func (p *SubscriptionPlan) HasFeature(key string) bool {
	for _, f := range p.Features {
		if f.Key == key && f.IsActive {
			return true
		}
	}
	return false
}

// TenantSubscription binds a tenant to a plan plus billing state. Transitions
// are driven by external billing events and consumed here as input state.
// Overrides are partial maps merged over plan defaults by the plan resolver.
type TenantSubscription struct {
	Id                 uuid.UUID
	TenantId           uuid.UUID
	PlanId             uuid.UUID
	Status             SubscriptionStatus
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	TrialStart         *time.Time
	TrialEnd           *time.Time
	CanceledAt         *time.Time
	CancelAtPeriodEnd  bool
	LimitOverrides     map[string]interface{}
	FeatureOverrides   map[string]interface{}
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsBillable reports whether the subscription entitles the tenant to
// features that require active billing.
func (s *TenantSubscription) IsBillable() bool {
	return s.Status == SubscriptionStatusActive || s.Status == SubscriptionStatusTrialing
}
