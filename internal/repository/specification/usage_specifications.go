package specification

import "gorm.io/gorm"

// ByPeriodKey scopes usage counters to a single billing period bucket.
type ByPeriodKey struct {
	PeriodKey string
}

func (s ByPeriodKey) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("period_key = ?", s.PeriodKey)
}
