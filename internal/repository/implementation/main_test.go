package implementation

import (
	"path/filepath"
	"testing"

	"bizops-assistant-be/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a throwaway sqlite database with the full schema. A single
// connection keeps concurrent test writers serialized the way the pooled
// postgres connection does in production.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.Tenant{},
		&model.Feature{},
		&model.SubscriptionPlan{},
		&model.SubscriptionPlanFeature{},
		&model.TenantSubscription{},
		&model.UsageCounter{},
		&model.ChatSession{},
		&model.ChatMessage{},
		&model.Document{},
	))
	return db
}
