package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"bizops-assistant-be/internal/constant"
	"bizops-assistant-be/internal/dto"
	"bizops-assistant-be/internal/entity"
	"bizops-assistant-be/internal/repository/specification"
	"bizops-assistant-be/internal/repository/unitofwork"
	"bizops-assistant-be/pkg/llm"

	"github.com/google/uuid"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200

	// How many trailing messages are replayed to the model on SendChat.
	replyHistoryWindow = 20
)

// SessionService owns chat sessions and their append-only message logs.
// Sequence numbers are dense per session and assigned inside the append
// transaction while the session's append lock is held, so readers observe
// one total order with no gaps.
type SessionService interface {
	StartOrContinue(ctx context.Context, tenantId, userId uuid.UUID, req *dto.StartSessionRequest) (*dto.SessionResponse, error)
	ListSessions(ctx context.Context, tenantId, userId uuid.UUID) ([]*dto.SessionResponse, error)
	AppendMessage(ctx context.Context, tenantId, sessionId uuid.UUID, msgType entity.MessageType, content string, metadata map[string]interface{}) (*dto.ChatMessageResponse, error)
	ListMessages(ctx context.Context, tenantId uuid.UUID, req *dto.ListMessagesRequest) (*dto.ListMessagesResponse, error)
	CloseSession(ctx context.Context, tenantId, sessionId uuid.UUID) error
	ArchiveSession(ctx context.Context, tenantId, sessionId uuid.UUID) error
	SendChat(ctx context.Context, tenantId, userId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
}

type sessionService struct {
	uowFactory    unitofwork.RepositoryFactory
	accessService AccessService
	usageService  UsageService
	replyProvider llm.ReplyProvider

	// Per-session append locks. Entries are tiny and sessions are bounded,
	// so the registry is never purged.
	appendLocks sync.Map
}

func NewSessionService(
	uowFactory unitofwork.RepositoryFactory,
	accessService AccessService,
	usageService UsageService,
	replyProvider llm.ReplyProvider,
) SessionService {
	return &sessionService{
		uowFactory:    uowFactory,
		accessService: accessService,
		usageService:  usageService,
		replyProvider: replyProvider,
	}
}

func (s *sessionService) lockFor(sessionId uuid.UUID) *sync.Mutex {
	v, _ := s.appendLocks.LoadOrStore(sessionId, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func (s *sessionService) StartOrContinue(ctx context.Context, tenantId, userId uuid.UUID, req *dto.StartSessionRequest) (*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if req != nil && req.ChatSessionId != nil {
		session, err := uow.ChatSessionRepository().FindOne(ctx, tenantId,
			specification.ByID{ID: *req.ChatSessionId},
		)
		if err != nil {
			return nil, err
		}
		if session == nil {
			return nil, ErrNotFound
		}
		if session.IsArchived() {
			return nil, ErrSessionArchived
		}
		return sessionToResponse(session), nil
	}

	title := constant.ChatSessionUntitled
	var sessionContext map[string]interface{}
	if req != nil {
		if req.Title != "" {
			title = req.Title
		}
		sessionContext = req.Context
	}

	now := time.Now()
	session := entity.ChatSession{
		Id:           uuid.New(),
		TenantId:     tenantId,
		OwnerUserId:  userId,
		Status:       entity.SessionStatusActive,
		Title:        title,
		Context:      sessionContext,
		LastActivity: now,
		NextSequence: 1,
		CreatedAt:    now,
	}

	if err := uow.ChatSessionRepository().Create(ctx, &session); err != nil {
		return nil, err
	}
	return sessionToResponse(&session), nil
}

func (s *sessionService) ListSessions(ctx context.Context, tenantId, userId uuid.UUID) ([]*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.ChatSessionRepository().FindAll(ctx, tenantId,
		specification.OwnedByUser{UserID: userId},
		specification.OrderBy{Field: "last_activity", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		result = append(result, sessionToResponse(session))
	}
	return result, nil
}

// AppendMessage commits one message at the session's next sequence number.
// The lock covers read-assign-write of NextSequence; the transaction makes
// the message row and the session bookkeeping atomic. A rejected append
// (archived session) leaves both untouched.
//
// User-typed messages pass the access guard and count against the message
// quota; system, assistant, and document entries are produced by the engine
// itself and bypass both.
func (s *sessionService) AppendMessage(ctx context.Context, tenantId, sessionId uuid.UUID, msgType entity.MessageType, content string, metadata map[string]interface{}) (*dto.ChatMessageResponse, error) {
	if msgType == entity.MessageTypeUser {
		if err := s.accessService.Require(ctx, tenantId, entity.FeatureChat, entity.MetricMessagesPerPeriod); err != nil {
			return nil, err
		}
	}

	msg, err := s.append(ctx, tenantId, sessionId, msgType, content, metadata)
	if err != nil {
		return nil, err
	}

	if msgType == entity.MessageTypeUser {
		if _, err := s.usageService.Increment(ctx, tenantId, entity.MetricMessagesPerPeriod, 1); err != nil {
			return nil, err
		}
	}
	return messageToResponse(msg), nil
}

func (s *sessionService) append(ctx context.Context, tenantId, sessionId uuid.UUID, msgType entity.MessageType, content string, metadata map[string]interface{}) (*entity.ChatMessage, error) {
	lock := s.lockFor(sessionId)
	lock.Lock()
	defer lock.Unlock()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	session, err := uow.ChatSessionRepository().FindOne(ctx, tenantId,
		specification.ByID{ID: sessionId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNotFound
	}
	if session.IsArchived() {
		return nil, ErrSessionArchived
	}

	now := time.Now()
	msg := entity.ChatMessage{
		Id:            uuid.New(),
		TenantId:      tenantId,
		ChatSessionId: sessionId,
		Sequence:      session.NextSequence,
		Type:          msgType,
		Content:       content,
		Metadata:      metadata,
		CreatedAt:     now,
	}

	if err := uow.ChatMessageRepository().Create(ctx, &msg); err != nil {
		return nil, err
	}

	session.NextSequence++
	session.MessageCount++
	session.LastActivity = now
	if msgType == entity.MessageTypeUser && session.Title == constant.ChatSessionUntitled {
		session.Title = constant.ChatSessionTitlePrefix + now.Format(constant.ChatSessionTitleTimeLayout)
	}

	if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *sessionService) ListMessages(ctx context.Context, tenantId uuid.UUID, req *dto.ListMessagesRequest) (*dto.ListMessagesResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, tenantId,
		specification.ByID{ID: req.ChatSessionId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNotFound
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	// Fetch one extra row to learn whether the log continues.
	messages, err := uow.ChatMessageRepository().FindAll(ctx, tenantId,
		specification.ByChatSessionID{ChatSessionID: req.ChatSessionId},
		specification.AfterSequence{Sequence: req.AfterSequence},
		specification.OrderBy{Field: "sequence"},
		specification.Pagination{Limit: limit + 1},
	)
	if err != nil {
		return nil, err
	}

	hasMore := len(messages) > limit
	if hasMore {
		messages = messages[:limit]
	}

	result := make([]*dto.ChatMessageResponse, 0, len(messages))
	nextCursor := req.AfterSequence
	for _, msg := range messages {
		result = append(result, messageToResponse(msg))
		nextCursor = msg.Sequence
	}

	return &dto.ListMessagesResponse{
		Messages:   result,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func (s *sessionService) CloseSession(ctx context.Context, tenantId, sessionId uuid.UUID) error {
	return s.transition(ctx, tenantId, sessionId, entity.SessionStatusCompleted)
}

// ArchiveSession is idempotent; archiving an archived session is a no-op.
func (s *sessionService) ArchiveSession(ctx context.Context, tenantId, sessionId uuid.UUID) error {
	return s.transition(ctx, tenantId, sessionId, entity.SessionStatusArchived)
}

func (s *sessionService) transition(ctx context.Context, tenantId, sessionId uuid.UUID, target entity.SessionStatus) error {
	lock := s.lockFor(sessionId)
	lock.Lock()
	defer lock.Unlock()

	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, tenantId,
		specification.ByID{ID: sessionId},
	)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrNotFound
	}
	if session.Status == target {
		return nil
	}
	if session.IsArchived() {
		// Archived is terminal for every other transition.
		return ErrSessionArchived
	}

	session.Status = target
	return uow.ChatSessionRepository().Update(ctx, session)
}

// SendChat runs the guarded user-append -> reply -> assistant-append flow.
// The user message commits before reply generation starts; if the upstream
// fails, the failure is recorded as a system message in the same log and no
// assistant message appears.
func (s *sessionService) SendChat(ctx context.Context, tenantId, userId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	if err := s.accessService.Require(ctx, tenantId, entity.FeatureChat, entity.MetricMessagesPerPeriod); err != nil {
		return nil, err
	}

	userMsg, err := s.append(ctx, tenantId, req.ChatSessionId, entity.MessageTypeUser, req.Message, nil)
	if err != nil {
		return nil, err
	}

	if _, err := s.usageService.Increment(ctx, tenantId, entity.MetricMessagesPerPeriod, 1); err != nil {
		return nil, err
	}

	response := &dto.SendChatResponse{
		ChatSessionId: req.ChatSessionId,
		UserMessage:   messageToResponse(userMsg),
	}

	history, err := s.replyHistory(ctx, tenantId, req.ChatSessionId)
	if err != nil {
		return nil, err
	}

	reply, err := s.replyProvider.Chat(ctx, history)
	if err != nil {
		if errors.Is(err, llm.ErrUnavailable) || errors.Is(err, llm.ErrRateLimited) {
			systemMsg, appendErr := s.append(ctx, tenantId, req.ChatSessionId, entity.MessageTypeSystem,
				constant.ChatUpstreamFailureMessage, map[string]interface{}{"cause": err.Error()})
			if appendErr != nil {
				return nil, appendErr
			}
			response.SystemMessage = messageToResponse(systemMsg)
			return response, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	assistantMsg, err := s.append(ctx, tenantId, req.ChatSessionId, entity.MessageTypeAssistant, reply, nil)
	if err != nil {
		return nil, err
	}
	response.AssistantMessage = messageToResponse(assistantMsg)
	return response, nil
}

// replyHistory loads the trailing window of the log in sequence order for
// the model. Document and system entries ride along as system turns.
func (s *sessionService) replyHistory(ctx context.Context, tenantId, sessionId uuid.UUID) ([]llm.Message, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	messages, err := uow.ChatMessageRepository().FindAll(ctx, tenantId,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "sequence", Desc: true},
		specification.Pagination{Limit: replyHistoryWindow},
	)
	if err != nil {
		return nil, err
	}

	history := make([]llm.Message, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		role := "system"
		switch msg.Type {
		case entity.MessageTypeUser:
			role = "user"
		case entity.MessageTypeAssistant:
			role = "assistant"
		}
		history = append(history, llm.Message{Role: role, Content: msg.Content})
	}
	return history, nil
}

func sessionToResponse(session *entity.ChatSession) *dto.SessionResponse {
	return &dto.SessionResponse{
		Id:           session.Id,
		Status:       string(session.Status),
		Title:        session.Title,
		MessageCount: session.MessageCount,
		LastActivity: session.LastActivity,
		CreatedAt:    session.CreatedAt,
		UpdatedAt:    session.UpdatedAt,
	}
}

func messageToResponse(msg *entity.ChatMessage) *dto.ChatMessageResponse {
	return &dto.ChatMessageResponse{
		Id:          msg.Id,
		Sequence:    msg.Sequence,
		Type:        string(msg.Type),
		Content:     msg.Content,
		Metadata:    msg.Metadata,
		IsProcessed: msg.IsProcessed,
		CreatedAt:   msg.CreatedAt,
	}
}
