package dto

import "github.com/google/uuid"

// PlanWithFeaturesResponse is returned by GET /api/plans (public pricing).
type PlanWithFeaturesResponse struct {
	Id           uuid.UUID     `json:"id"`
	Name         string        `json:"name"`
	Tier         string        `json:"tier"`
	Description  string        `json:"description"`
	MonthlyPrice float64       `json:"monthly_price"`
	Limits       PlanLimitsDTO `json:"limits"`
	Features     []FeatureDTO  `json:"features"`
	SortOrder    int           `json:"sort_order"`
}

type PlanLimitsDTO struct {
	MaxUsers              int `json:"max_users"`
	MaxSuppliers          int `json:"max_suppliers"`
	MaxCustomers          int `json:"max_customers"`
	MaxOrdersPerPeriod    int `json:"max_orders_per_period"`
	MaxDocumentsPerPeriod int `json:"max_documents_per_period"`
	MaxMessagesPerPeriod  int `json:"max_messages_per_period"`
}

type FeatureDTO struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Category string `json:"category"`
}
