package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"bizops-assistant-be/internal/dto"
	"bizops-assistant-be/internal/entity"
	"bizops-assistant-be/internal/model"
	"bizops-assistant-be/internal/pkg/logger"
	"bizops-assistant-be/internal/repository/specification"
	"bizops-assistant-be/internal/repository/unitofwork"
	"bizops-assistant-be/internal/service"
	"bizops-assistant-be/pkg/extract"
	"bizops-assistant-be/pkg/llm"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testTopic = "document.jobs.test"

type stubProvider struct{}

func (stubProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return "ok", nil
}

func (stubProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return "ok", nil
}

// flakyExtractor always fails with a transient error.
type flakyExtractor struct{}

func (flakyExtractor) Supports(string) bool { return true }

func (flakyExtractor) Extract(ctx context.Context, mimeType string, content []byte) (*extract.Result, error) {
	return nil, errors.New("transient extraction failure")
}

// blockingExtractor announces each attempt and holds it until released, then
// fails transiently so the worker has to pass another attempt boundary.
type blockingExtractor struct {
	started chan struct{}
	release chan struct{}
}

func (blockingExtractor) Supports(string) bool { return true }

func (e blockingExtractor) Extract(ctx context.Context, mimeType string, content []byte) (*extract.Result, error) {
	e.started <- struct{}{}
	<-e.release
	return nil, errors.New("interrupted mid-extraction")
}

type workerFixture struct {
	factory unitofwork.RepositoryFactory
	session service.SessionService
	pubSub  *gochannel.GoChannel
	worker  *Worker
}

func newWorkerFixture(t *testing.T, registry *extract.Registry) *workerFixture {
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

	factory := unitofwork.NewRepositoryFactory(db)
	planService := service.NewPlanService(factory)
	usageService := service.NewUsageService(factory, planService)
	accessService := service.NewAccessService(planService, usageService)
	sessionService := service.NewSessionService(factory, accessService, usageService, stubProvider{})

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	log := logger.NewIsolatedLogger(filepath.Join(t.TempDir(), "worker.log"))

	worker := NewWorker(pubSub, testTopic, factory, sessionService, registry, nil, nil, log)

	return &workerFixture{
		factory: factory,
		session: sessionService,
		pubSub:  pubSub,
		worker:  worker,
	}
}

// seedChatTenant binds the tenant to an active plan carrying the chat feature
// with unlimited messages, so user appends pass the access guard.
func seedChatTenant(t *testing.T, factory unitofwork.RepositoryFactory, tenantId uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	uow := factory.NewUnitOfWork(ctx)

	plan := entity.SubscriptionPlan{
		Id:       uuid.New(),
		Name:     "Worker Plan " + uuid.NewString()[:8],
		Tier:     entity.PlanTierBasic,
		IsActive: true,
	}
	require.NoError(t, uow.SubscriptionRepository().CreatePlan(ctx, &plan))

	feature := &entity.Feature{
		Id:       uuid.New(),
		Key:      entity.FeatureChat,
		Name:     entity.FeatureChat,
		IsActive: true,
	}
	require.NoError(t, uow.FeatureRepository().Create(ctx, feature))
	require.NoError(t, uow.SubscriptionRepository().AddFeatureToPlan(ctx, plan.Id, feature.Id))

	now := time.Now()
	require.NoError(t, uow.SubscriptionRepository().CreateSubscription(ctx, &entity.TenantSubscription{
		Id:                 uuid.New(),
		TenantId:           tenantId,
		PlanId:             plan.Id,
		Status:             entity.SubscriptionStatusActive,
		CurrentPeriodStart: now.AddDate(0, 0, -1),
		CurrentPeriodEnd:   now.AddDate(0, 0, 29),
		CreatedAt:          now,
	}))
}

func (f *workerFixture) createDocument(t *testing.T, tenantId uuid.UUID, sessionId *uuid.UUID, mimeType string, content []byte) *entity.Document {
	t.Helper()
	doc := &entity.Document{
		Id:            uuid.New(),
		TenantId:      tenantId,
		ChatSessionId: sessionId,
		Filename:      "report.txt",
		SizeBytes:     int64(len(content)),
		MimeType:      mimeType,
		Content:       content,
		Status:        entity.DocumentStatusPending,
		CreatedAt:     time.Now(),
	}
	uow := f.factory.NewUnitOfWork(context.Background())
	require.NoError(t, uow.DocumentRepository().Create(context.Background(), doc))
	return doc
}

func (f *workerFixture) publishJob(t *testing.T, tenantId, documentId uuid.UUID) {
	t.Helper()
	payload, err := json.Marshal(dto.DocumentJobMessage{DocumentId: documentId, TenantId: tenantId})
	require.NoError(t, err)
	require.NoError(t, f.pubSub.Publish(testTopic, message.NewMessage(watermill.NewUUID(), payload)))
}

func (f *workerFixture) waitForStatus(t *testing.T, tenantId, documentId uuid.UUID, want entity.DocumentStatus) *entity.Document {
	t.Helper()
	var doc *entity.Document
	require.Eventually(t, func() bool {
		uow := f.factory.NewUnitOfWork(context.Background())
		got, err := uow.DocumentRepository().FindOne(context.Background(), tenantId,
			specification.ByID{ID: documentId},
		)
		if err != nil || got == nil {
			return false
		}
		doc = got
		return got.Status == want
	}, 10*time.Second, 50*time.Millisecond)
	return doc
}

func TestWorkerCompletesDocument(t *testing.T) {
	fixture := newWorkerFixture(t, extract.NewRegistry(extract.NewTextExtractor()))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, fixture.worker.Run(ctx))

	tenantId, userId := uuid.New(), uuid.New()
	seedChatTenant(t, fixture.factory, tenantId)
	session, err := fixture.session.StartOrContinue(ctx, tenantId, userId, &dto.StartSessionRequest{})
	require.NoError(t, err)

	_, err = fixture.session.AppendMessage(ctx, tenantId, session.Id, entity.MessageTypeUser, "please process my upload", nil)
	require.NoError(t, err)

	doc := fixture.createDocument(t, tenantId, &session.Id, "text/plain", []byte("quarterly numbers\nrevenue up\n"))
	fixture.publishJob(t, tenantId, doc.Id)

	completed := fixture.waitForStatus(t, tenantId, doc.Id, entity.DocumentStatusCompleted)
	assert.Equal(t, "quarterly numbers\nrevenue up\n", completed.ExtractedText)
	assert.NotNil(t, completed.ClaimedAt)

	// The completion notice lands in the session log after the chat message.
	list, err := fixture.session.ListMessages(ctx, tenantId, &dto.ListMessagesRequest{ChatSessionId: session.Id})
	require.NoError(t, err)
	require.Len(t, list.Messages, 2)
	notice := list.Messages[1]
	assert.Equal(t, int64(2), notice.Sequence)
	assert.Equal(t, string(entity.MessageTypeSystem), notice.Type)
	assert.Equal(t, doc.Id.String(), notice.Metadata["document_id"])
}

func TestWorkerFailsUnsupportedType(t *testing.T) {
	fixture := newWorkerFixture(t, extract.NewRegistry(extract.NewTextExtractor()))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, fixture.worker.Run(ctx))

	tenantId := uuid.New()
	// Written straight to the store, as if the registry shrank after the
	// document was accepted.
	doc := fixture.createDocument(t, tenantId, nil, "application/pdf", []byte("%PDF-1.7"))
	fixture.publishJob(t, tenantId, doc.Id)

	failed := fixture.waitForStatus(t, tenantId, doc.Id, entity.DocumentStatusFailed)
	assert.Equal(t, entity.FailureReasonUnsupportedType, failed.FailureReason)
}

func TestWorkerRetriesThenFails(t *testing.T) {
	fixture := newWorkerFixture(t, extract.NewRegistry(flakyExtractor{}))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, fixture.worker.Run(ctx))

	tenantId := uuid.New()
	doc := fixture.createDocument(t, tenantId, nil, "text/plain", []byte("unlucky"))
	fixture.publishJob(t, tenantId, doc.Id)

	failed := fixture.waitForStatus(t, tenantId, doc.Id, entity.DocumentStatusFailed)
	assert.Equal(t, entity.FailureReasonExtraction, failed.FailureReason)
}

func TestWorkerSkipsCanceledDocument(t *testing.T) {
	fixture := newWorkerFixture(t, extract.NewRegistry(extract.NewTextExtractor()))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, fixture.worker.Run(ctx))

	tenantId := uuid.New()
	doc := fixture.createDocument(t, tenantId, nil, "text/plain", []byte("never processed"))

	uow := fixture.factory.NewUnitOfWork(ctx)
	canceled, err := uow.DocumentRepository().CancelPending(ctx, tenantId, doc.Id)
	require.NoError(t, err)
	require.True(t, canceled)

	fixture.publishJob(t, tenantId, doc.Id)

	// The claim loses against the cancellation and the document stays failed.
	time.Sleep(300 * time.Millisecond)
	got, err := uow.DocumentRepository().FindOne(ctx, tenantId, specification.ByID{ID: doc.Id})
	require.NoError(t, err)
	assert.Equal(t, entity.DocumentStatusFailed, got.Status)
	assert.Equal(t, entity.FailureReasonCanceled, got.FailureReason)
}

func TestWorkerHonorsCancelRequest(t *testing.T) {
	ext := blockingExtractor{
		started: make(chan struct{}, maxExtractAttempts),
		release: make(chan struct{}),
	}
	fixture := newWorkerFixture(t, extract.NewRegistry(ext))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, fixture.worker.Run(ctx))

	tenantId := uuid.New()
	doc := fixture.createDocument(t, tenantId, nil, "text/plain", []byte("slow going"))
	fixture.publishJob(t, tenantId, doc.Id)

	// Wait until the worker is inside an extraction attempt, then record the
	// cancel the way the service does once the claim is already taken.
	select {
	case <-ext.started:
	case <-time.After(10 * time.Second):
		t.Fatal("extraction never started")
	}

	uow := fixture.factory.NewUnitOfWork(ctx)
	requested, err := uow.DocumentRepository().RequestCancel(ctx, tenantId, doc.Id)
	require.NoError(t, err)
	require.True(t, requested)

	close(ext.release)

	// The worker notices the flag at the next attempt boundary and finalizes.
	failed := fixture.waitForStatus(t, tenantId, doc.Id, entity.DocumentStatusFailed)
	assert.Equal(t, entity.FailureReasonCanceled, failed.FailureReason)
}

func TestWorkerCompletionSurvivesArchivedSession(t *testing.T) {
	fixture := newWorkerFixture(t, extract.NewRegistry(extract.NewTextExtractor()))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, fixture.worker.Run(ctx))

	tenantId, userId := uuid.New(), uuid.New()
	session, err := fixture.session.StartOrContinue(ctx, tenantId, userId, &dto.StartSessionRequest{})
	require.NoError(t, err)
	require.NoError(t, fixture.session.ArchiveSession(ctx, tenantId, session.Id))

	doc := fixture.createDocument(t, tenantId, &session.Id, "text/plain", []byte("late delivery"))
	fixture.publishJob(t, tenantId, doc.Id)

	// Document still completes; only the session notice is dropped.
	fixture.waitForStatus(t, tenantId, doc.Id, entity.DocumentStatusCompleted)

	uow := fixture.factory.NewUnitOfWork(ctx)
	count, err := uow.ChatMessageRepository().Count(ctx, tenantId)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
