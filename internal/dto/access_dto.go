package dto

// Denial reasons returned by the access guard, in precedence order.
const (
	DenialSubscriptionInactive = "subscription_inactive"
	DenialFeatureDisabled      = "feature_disabled"
	DenialQuotaExceeded        = "quota_exceeded"
)

// Decision is the outcome of an authorization check. A denied decision
// carries exactly one reason; quota denials also carry the numbers.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
	Metric  string `json:"metric,omitempty"`
	Limit   int    `json:"limit,omitempty"`
	Used    int64  `json:"used,omitempty"`
}

type FeatureCheckResponse struct {
	FeatureKey string `json:"feature_key"`
	Allowed    bool   `json:"allowed"`
	Reason     string `json:"reason,omitempty"`
}
