package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"bizops-assistant-be/internal/constant"
	"bizops-assistant-be/internal/dto"
	"bizops-assistant-be/internal/entity"
	"bizops-assistant-be/internal/repository/unitofwork"
	"bizops-assistant-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionFixture(t *testing.T, provider llm.ReplyProvider) (unitofwork.RepositoryFactory, SessionService) {
	t.Helper()
	factory := unitofwork.NewRepositoryFactory(newTestDB(t))
	planService := NewPlanService(factory)
	usageService := NewUsageService(factory, planService)
	accessService := NewAccessService(planService, usageService)
	sessionService := NewSessionService(factory, accessService, usageService, provider)
	return factory, sessionService
}

func chatPlan() planSpec {
	return planSpec{
		limits:   entity.LimitSet{MaxMessagesPerPeriod: entity.LimitUnlimited},
		features: []string{entity.FeatureChat},
	}
}

func startSession(t *testing.T, svc SessionService, tenantId, userId uuid.UUID) *dto.SessionResponse {
	t.Helper()
	session, err := svc.StartOrContinue(context.Background(), tenantId, userId, &dto.StartSessionRequest{})
	require.NoError(t, err)
	return session
}

func TestAppendMessageOrdering(t *testing.T) {
	factory, svc := newSessionFixture(t, &stubReplyProvider{})
	ctx := context.Background()
	tenantId, userId := uuid.New(), uuid.New()
	seedTenantPlan(t, factory, tenantId, chatPlan())
	session := startSession(t, svc, tenantId, userId)

	for i := 1; i <= 5; i++ {
		msg, err := svc.AppendMessage(ctx, tenantId, session.Id, entity.MessageTypeUser, fmt.Sprintf("message %d", i), nil)
		require.NoError(t, err)
		assert.Equal(t, int64(i), msg.Sequence)
	}

	list, err := svc.ListMessages(ctx, tenantId, &dto.ListMessagesRequest{ChatSessionId: session.Id})
	require.NoError(t, err)
	require.Len(t, list.Messages, 5)
	for i, msg := range list.Messages {
		assert.Equal(t, int64(i+1), msg.Sequence)
	}
}

func TestAppendMessageConcurrent(t *testing.T) {
	factory, svc := newSessionFixture(t, &stubReplyProvider{})
	ctx := context.Background()
	tenantId, userId := uuid.New(), uuid.New()
	seedTenantPlan(t, factory, tenantId, chatPlan())
	session := startSession(t, svc, tenantId, userId)

	const writers = 10
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(n int) {
			defer wg.Done()
			_, err := svc.AppendMessage(ctx, tenantId, session.Id, entity.MessageTypeUser, fmt.Sprintf("concurrent %d", n), nil)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// The log must be dense 1..N regardless of interleaving.
	list, err := svc.ListMessages(ctx, tenantId, &dto.ListMessagesRequest{ChatSessionId: session.Id})
	require.NoError(t, err)
	require.Len(t, list.Messages, writers)
	for i, msg := range list.Messages {
		assert.Equal(t, int64(i+1), msg.Sequence)
	}
}

func TestAppendMessageArchivedSession(t *testing.T) {
	factory, svc := newSessionFixture(t, &stubReplyProvider{})
	ctx := context.Background()
	tenantId, userId := uuid.New(), uuid.New()
	seedTenantPlan(t, factory, tenantId, chatPlan())
	session := startSession(t, svc, tenantId, userId)

	_, err := svc.AppendMessage(ctx, tenantId, session.Id, entity.MessageTypeUser, "before archive", nil)
	require.NoError(t, err)

	require.NoError(t, svc.ArchiveSession(ctx, tenantId, session.Id))

	_, err = svc.AppendMessage(ctx, tenantId, session.Id, entity.MessageTypeUser, "after archive", nil)
	assert.True(t, errors.Is(err, ErrSessionArchived))

	// The rejected append must not consume a sequence number.
	list, err := svc.ListMessages(ctx, tenantId, &dto.ListMessagesRequest{ChatSessionId: session.Id})
	require.NoError(t, err)
	assert.Len(t, list.Messages, 1)
}

func TestAppendMessageGuarded(t *testing.T) {
	ctx := context.Background()

	t.Run("no subscription is denied", func(t *testing.T) {
		_, svc := newSessionFixture(t, &stubReplyProvider{})
		tenantId, userId := uuid.New(), uuid.New()
		session := startSession(t, svc, tenantId, userId)

		_, err := svc.AppendMessage(ctx, tenantId, session.Id, entity.MessageTypeUser, "hello", nil)
		assert.True(t, errors.Is(err, ErrSubscriptionInactive))

		list, err := svc.ListMessages(ctx, tenantId, &dto.ListMessagesRequest{ChatSessionId: session.Id})
		require.NoError(t, err)
		assert.Empty(t, list.Messages)
	})

	t.Run("quota applies to direct appends", func(t *testing.T) {
		factory := unitofwork.NewRepositoryFactory(newTestDB(t))
		planService := NewPlanService(factory)
		usageService := NewUsageService(factory, planService)
		accessService := NewAccessService(planService, usageService)
		svc := NewSessionService(factory, accessService, usageService, &stubReplyProvider{})

		tenantId, userId := uuid.New(), uuid.New()
		seedTenantPlan(t, factory, tenantId, planSpec{
			limits:   entity.LimitSet{MaxMessagesPerPeriod: 2},
			features: []string{entity.FeatureChat},
		})
		session := startSession(t, svc, tenantId, userId)

		for i := 1; i <= 2; i++ {
			_, err := svc.AppendMessage(ctx, tenantId, session.Id, entity.MessageTypeUser, "within quota", nil)
			require.NoError(t, err)
		}

		_, err := svc.AppendMessage(ctx, tenantId, session.Id, entity.MessageTypeUser, "over quota", nil)
		assert.True(t, errors.Is(err, ErrQuotaExceeded))

		// Each accepted append landed in the ledger.
		used, err := usageService.CurrentUsage(ctx, tenantId, entity.MetricMessagesPerPeriod)
		require.NoError(t, err)
		assert.Equal(t, int64(2), used)

		list, err := svc.ListMessages(ctx, tenantId, &dto.ListMessagesRequest{ChatSessionId: session.Id})
		require.NoError(t, err)
		assert.Len(t, list.Messages, 2)
	})

	t.Run("chat feature missing denies user messages only", func(t *testing.T) {
		factory, svc := newSessionFixture(t, &stubReplyProvider{})
		tenantId, userId := uuid.New(), uuid.New()
		seedTenantPlan(t, factory, tenantId, planSpec{})
		session := startSession(t, svc, tenantId, userId)

		_, err := svc.AppendMessage(ctx, tenantId, session.Id, entity.MessageTypeUser, "hi", nil)
		assert.True(t, errors.Is(err, ErrFeatureDisabled))

		// Engine-produced entries are not gated on the chat feature.
		_, err = svc.AppendMessage(ctx, tenantId, session.Id, entity.MessageTypeSystem, "notice", nil)
		require.NoError(t, err)
	})
}

func TestSessionTransitions(t *testing.T) {
	_, svc := newSessionFixture(t, &stubReplyProvider{})
	ctx := context.Background()
	tenantId, userId := uuid.New(), uuid.New()

	t.Run("archive is idempotent", func(t *testing.T) {
		session := startSession(t, svc, tenantId, userId)
		require.NoError(t, svc.ArchiveSession(ctx, tenantId, session.Id))
		require.NoError(t, svc.ArchiveSession(ctx, tenantId, session.Id))
	})

	t.Run("archived cannot be reopened", func(t *testing.T) {
		session := startSession(t, svc, tenantId, userId)
		require.NoError(t, svc.ArchiveSession(ctx, tenantId, session.Id))

		err := svc.CloseSession(ctx, tenantId, session.Id)
		assert.True(t, errors.Is(err, ErrSessionArchived))

		_, err = svc.StartOrContinue(ctx, tenantId, userId, &dto.StartSessionRequest{ChatSessionId: &session.Id})
		assert.True(t, errors.Is(err, ErrSessionArchived))
	})

	t.Run("closed session still accepts messages", func(t *testing.T) {
		session := startSession(t, svc, tenantId, userId)
		require.NoError(t, svc.CloseSession(ctx, tenantId, session.Id))

		_, err := svc.AppendMessage(ctx, tenantId, session.Id, entity.MessageTypeSystem, "late arrival", nil)
		require.NoError(t, err)
	})
}

func TestSessionTenantIsolation(t *testing.T) {
	factory, svc := newSessionFixture(t, &stubReplyProvider{})
	ctx := context.Background()
	tenantId, userId := uuid.New(), uuid.New()
	seedTenantPlan(t, factory, tenantId, chatPlan())
	session := startSession(t, svc, tenantId, userId)

	// The other tenant is fully entitled; isolation alone must deny it.
	otherTenant := uuid.New()
	seedTenantPlan(t, factory, otherTenant, chatPlan())

	_, err := svc.ListMessages(ctx, otherTenant, &dto.ListMessagesRequest{ChatSessionId: session.Id})
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = svc.AppendMessage(ctx, otherTenant, session.Id, entity.MessageTypeUser, "cross-tenant", nil)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListMessagesPagination(t *testing.T) {
	factory, svc := newSessionFixture(t, &stubReplyProvider{})
	ctx := context.Background()
	tenantId, userId := uuid.New(), uuid.New()
	seedTenantPlan(t, factory, tenantId, chatPlan())
	session := startSession(t, svc, tenantId, userId)

	for i := 1; i <= 7; i++ {
		_, err := svc.AppendMessage(ctx, tenantId, session.Id, entity.MessageTypeUser, fmt.Sprintf("message %d", i), nil)
		require.NoError(t, err)
	}

	page1, err := svc.ListMessages(ctx, tenantId, &dto.ListMessagesRequest{ChatSessionId: session.Id, Limit: 3})
	require.NoError(t, err)
	require.Len(t, page1.Messages, 3)
	assert.True(t, page1.HasMore)
	assert.Equal(t, int64(3), page1.NextCursor)

	page2, err := svc.ListMessages(ctx, tenantId, &dto.ListMessagesRequest{
		ChatSessionId: session.Id,
		AfterSequence: page1.NextCursor,
		Limit:         3,
	})
	require.NoError(t, err)
	require.Len(t, page2.Messages, 3)
	assert.Equal(t, int64(4), page2.Messages[0].Sequence)

	page3, err := svc.ListMessages(ctx, tenantId, &dto.ListMessagesRequest{
		ChatSessionId: session.Id,
		AfterSequence: page2.NextCursor,
		Limit:         3,
	})
	require.NoError(t, err)
	require.Len(t, page3.Messages, 1)
	assert.False(t, page3.HasMore)
}

func TestSessionAutoTitle(t *testing.T) {
	factory, svc := newSessionFixture(t, &stubReplyProvider{})
	ctx := context.Background()
	tenantId, userId := uuid.New(), uuid.New()
	seedTenantPlan(t, factory, tenantId, chatPlan())
	session := startSession(t, svc, tenantId, userId)
	assert.Equal(t, constant.ChatSessionUntitled, session.Title)

	_, err := svc.AppendMessage(ctx, tenantId, session.Id, entity.MessageTypeUser, "hello", nil)
	require.NoError(t, err)

	updated, err := svc.StartOrContinue(ctx, tenantId, userId, &dto.StartSessionRequest{ChatSessionId: &session.Id})
	require.NoError(t, err)
	assert.NotEqual(t, constant.ChatSessionUntitled, updated.Title)
	assert.Contains(t, updated.Title, constant.ChatSessionTitlePrefix)
}

func TestSendChat(t *testing.T) {
	ctx := context.Background()

	t.Run("success appends user then assistant", func(t *testing.T) {
		factory, svc := newSessionFixture(t, &stubReplyProvider{reply: "the answer"})
		tenantId, userId := uuid.New(), uuid.New()
		seedTenantPlan(t, factory, tenantId, chatPlan())
		session := startSession(t, svc, tenantId, userId)

		res, err := svc.SendChat(ctx, tenantId, userId, &dto.SendChatRequest{
			ChatSessionId: session.Id,
			Message:       "what is the status of order 42?",
		})
		require.NoError(t, err)
		require.NotNil(t, res.UserMessage)
		require.NotNil(t, res.AssistantMessage)
		assert.Nil(t, res.SystemMessage)
		assert.Equal(t, int64(1), res.UserMessage.Sequence)
		assert.Equal(t, int64(2), res.AssistantMessage.Sequence)
		assert.Equal(t, "the answer", res.AssistantMessage.Content)
	})

	t.Run("upstream outage records system message", func(t *testing.T) {
		factory, svc := newSessionFixture(t, &stubReplyProvider{err: llm.ErrUnavailable})
		tenantId, userId := uuid.New(), uuid.New()
		seedTenantPlan(t, factory, tenantId, chatPlan())
		session := startSession(t, svc, tenantId, userId)

		res, err := svc.SendChat(ctx, tenantId, userId, &dto.SendChatRequest{
			ChatSessionId: session.Id,
			Message:       "hello?",
		})
		require.NoError(t, err)
		require.NotNil(t, res.UserMessage)
		assert.Nil(t, res.AssistantMessage)
		require.NotNil(t, res.SystemMessage)
		assert.Equal(t, constant.ChatUpstreamFailureMessage, res.SystemMessage.Content)
		assert.Equal(t, int64(2), res.SystemMessage.Sequence)
	})

	t.Run("quota denial leaves the log untouched", func(t *testing.T) {
		factory, svc := newSessionFixture(t, &stubReplyProvider{reply: "ok"})
		tenantId, userId := uuid.New(), uuid.New()
		seedTenantPlan(t, factory, tenantId, planSpec{
			limits:   entity.LimitSet{MaxMessagesPerPeriod: 1},
			features: []string{entity.FeatureChat},
		})
		session := startSession(t, svc, tenantId, userId)

		_, err := svc.SendChat(ctx, tenantId, userId, &dto.SendChatRequest{
			ChatSessionId: session.Id,
			Message:       "first",
		})
		require.NoError(t, err)

		_, err = svc.SendChat(ctx, tenantId, userId, &dto.SendChatRequest{
			ChatSessionId: session.Id,
			Message:       "second",
		})
		assert.True(t, errors.Is(err, ErrQuotaExceeded))

		list, err := svc.ListMessages(ctx, tenantId, &dto.ListMessagesRequest{ChatSessionId: session.Id})
		require.NoError(t, err)
		assert.Len(t, list.Messages, 2) // first user message plus its reply
	})

	t.Run("chat feature missing is denied", func(t *testing.T) {
		factory, svc := newSessionFixture(t, &stubReplyProvider{reply: "ok"})
		tenantId, userId := uuid.New(), uuid.New()
		seedTenantPlan(t, factory, tenantId, planSpec{})
		session := startSession(t, svc, tenantId, userId)

		_, err := svc.SendChat(ctx, tenantId, userId, &dto.SendChatRequest{
			ChatSessionId: session.Id,
			Message:       "hi",
		})
		assert.True(t, errors.Is(err, ErrFeatureDisabled))
	})
}
