package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"bizops-assistant-be/internal/dto"
	"bizops-assistant-be/internal/entity"
	"bizops-assistant-be/internal/model"
	"bizops-assistant-be/internal/repository/unitofwork"
	"bizops-assistant-be/pkg/llm"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

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

// planSpec describes the entitlements a test tenant should start with.
type planSpec struct {
	tier             entity.PlanTier
	status           entity.SubscriptionStatus
	limits           entity.LimitSet
	features         []string
	limitOverrides   map[string]interface{}
	featureOverrides map[string]interface{}
}

// seedTenantPlan creates a plan with the given features and binds the tenant
// to it. Feature catalog entries are shared across calls within one test DB.
func seedTenantPlan(t *testing.T, factory unitofwork.RepositoryFactory, tenantId uuid.UUID, spec planSpec) {
	t.Helper()
	ctx := context.Background()
	uow := factory.NewUnitOfWork(ctx)

	tier := spec.tier
	if tier == "" {
		tier = entity.PlanTierBasic
	}

	plan := entity.SubscriptionPlan{
		Id:       uuid.New(),
		Name:     "Test Plan " + uuid.NewString()[:8],
		Tier:     tier,
		Limits:   spec.limits,
		IsActive: true,
	}
	require.NoError(t, uow.SubscriptionRepository().CreatePlan(ctx, &plan))

	for i, key := range spec.features {
		feature, err := uow.FeatureRepository().FindByKey(ctx, key)
		require.NoError(t, err)
		if feature == nil {
			feature = &entity.Feature{
				Id:        uuid.New(),
				Key:       key,
				Name:      key,
				IsActive:  true,
				SortOrder: i,
			}
			require.NoError(t, uow.FeatureRepository().Create(ctx, feature))
		}
		require.NoError(t, uow.SubscriptionRepository().AddFeatureToPlan(ctx, plan.Id, feature.Id))
	}

	status := spec.status
	if status == "" {
		status = entity.SubscriptionStatusActive
	}

	now := time.Now()
	sub := entity.TenantSubscription{
		Id:                 uuid.New(),
		TenantId:           tenantId,
		PlanId:             plan.Id,
		Status:             status,
		CurrentPeriodStart: now.AddDate(0, 0, -1),
		CurrentPeriodEnd:   now.AddDate(0, 0, 29),
		LimitOverrides:     spec.limitOverrides,
		FeatureOverrides:   spec.featureOverrides,
		CreatedAt:          now,
	}
	require.NoError(t, uow.SubscriptionRepository().CreateSubscription(ctx, &sub))
}

// stubReplyProvider is a canned llm.ReplyProvider for session tests.
type stubReplyProvider struct {
	reply string
	err   error
}

func (p *stubReplyProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return p.reply, nil
}

func (p *stubReplyProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

// capturingPublisher records published document jobs instead of queueing.
type capturingPublisher struct {
	jobs []*dto.DocumentJobMessage
}

func (p *capturingPublisher) PublishDocumentJob(ctx context.Context, job *dto.DocumentJobMessage) error {
	p.jobs = append(p.jobs, job)
	return nil
}
