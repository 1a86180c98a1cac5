package service

import (
	"context"
	"errors"
	"time"

	"ai-shopassist-be/internal/dto"
	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/internal/pkg/logger"
	"ai-shopassist-be/internal/repository/memory"
	"ai-shopassist-be/internal/repository/specification"
	"ai-shopassist-be/internal/repository/unitofwork"
	"ai-shopassist-be/pkg/agent"
	"ai-shopassist-be/pkg/agent/tools"
	"ai-shopassist-be/pkg/events"
	pktNats "ai-shopassist-be/pkg/nats"

	"github.com/google/uuid"
)

const sessionTitleMaxLen = 50

var ErrSessionNotFound = errors.New("chat session not found")

type IChatService interface {
	SendChat(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
	GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error)
	GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
	DeleteSession(ctx context.Context, userId uuid.UUID, req *dto.DeleteSessionRequest) (*dto.DeleteSessionResponse, error)
}

// chatService owns the conversation lifecycle: resolving sessions,
// driving the agent, persisting both sides of the exchange and fanning
// out product/analytics events.
type chatService struct {
	uowFactory       unitofwork.RepositoryFactory
	agentRepo        *memory.AgentRepository
	newAgent         func() *agent.Orchestrator
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	logger           logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	agentRepo *memory.AgentRepository,
	newAgent func() *agent.Orchestrator,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	logger logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:       uowFactory,
		agentRepo:        agentRepo,
		newAgent:         newAgent,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           logger,
	}
}

func (cs *chatService) SendChat(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	messageType := req.MessageType
	if messageType == "" {
		messageType = entity.ChatMessageTypeText
	}

	session, err := cs.resolveSession(ctx, userId, req)
	if err != nil {
		return nil, err
	}

	// Orchestrators are stateful: serialize processing per session so
	// two in-flight messages cannot interleave conversation memory.
	unlock := cs.agentRepo.Lock(session.Id.String())
	defer unlock()

	// Image payloads arrive in the request metadata; for text the
	// message itself is the agent input.
	agentInput := req.Message
	if messageType == entity.ChatMessageTypeImage && req.Metadata != nil && req.Metadata.ImageData != "" {
		agentInput = req.Metadata.ImageData
	}

	orchestrator := cs.agentRepo.GetOrCreate(session.Id.String(), cs.newAgent)
	reply := orchestrator.ProcessMessage(ctx, agentInput, messageType)

	now := time.Now()
	userMessage := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: session.Id,
		Role:          entity.ChatMessageRoleUser,
		Content:       req.Message,
		MessageType:   messageType,
		CreatedAt:     now,
	}
	assistantMessage := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: session.Id,
		Role:          entity.ChatMessageRoleAssistant,
		Content:       reply.Message,
		MessageType:   reply.MessageType,
		ExtraData:     reply.Metadata,
		CreatedAt:     now.Add(1 * time.Millisecond),
	}

	// Both turns land atomically; history never shows a question
	// without its answer.
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().Create(ctx, userMessage); err != nil {
		return nil, err
	}
	if err := uow.ChatMessageRepository().Create(ctx, assistantMessage); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	cs.publishProducts(reply)
	cs.publishEvent(ctx, events.NewChatMessageProcessedEvent(
		userId.String(), session.Id.String(), messageType, reply.MessageType))

	return &dto.SendChatResponse{
		ChatSessionId:    session.Id,
		ChatSessionTitle: session.Title,
		Sent:             messageToDTO(userMessage),
		Reply:            messageToDTO(assistantMessage),
	}, nil
}

// resolveSession loads the caller's active session or starts a new one
// titled after the opening message.
func (cs *chatService) resolveSession(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest) (*entity.ChatSession, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if req.ChatSessionId != nil {
		session, err := uow.ChatSessionRepository().FindOne(ctx,
			specification.ByID{ID: *req.ChatSessionId},
			specification.UserOwnedBy{UserID: userId},
			specification.ActiveSessions{},
		)
		if err != nil {
			return nil, err
		}
		if session != nil {
			return session, nil
		}
		// Unknown, foreign or closed ids fall through to a fresh
		// session, so a caller cannot probe whether an id exists.
	}

	title := req.Message
	if req.MessageType == entity.ChatMessageTypeImage {
		title = "Image search"
	}
	if len(title) > sessionTitleMaxLen {
		title = title[:sessionTitleMaxLen]
	}

	session := &entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     title,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}

	cs.logger.Info("chat", "Session created", map[string]interface{}{
		"session_id": session.Id.String(),
		"user_id":    userId.String(),
	})
	return session, nil
}

func (cs *chatService) GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.ActiveSessions{},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetAllSessionsResponse, 0, len(sessions))
	for _, s := range sessions {
		response = append(response, &dto.GetAllSessionsResponse{
			Id:        s.Id,
			Title:     s.Title,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		})
	}
	return response, nil
}

func (cs *chatService) GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetChatHistoryResponse, 0, len(messages))
	for _, m := range messages {
		response = append(response, &dto.GetChatHistoryResponse{
			Id:          m.Id,
			Role:        m.Role,
			Content:     m.Content,
			MessageType: m.MessageType,
			ExtraData:   m.ExtraData,
			CreatedAt:   m.CreatedAt,
		})
	}
	return response, nil
}

func (cs *chatService) DeleteSession(ctx context.Context, userId uuid.UUID, req *dto.DeleteSessionRequest) (*dto.DeleteSessionResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: req.ChatSessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	// Closing an already closed session is a no-op the caller should
	// hear about; purging it is still allowed.
	if !req.Hard && !session.IsActive {
		return nil, ErrSessionNotFound
	}

	if req.Hard {
		if err := uow.Begin(ctx); err != nil {
			return nil, err
		}
		defer uow.Rollback()

		if err := uow.ChatMessageRepository().DeleteBySessionIdUnscoped(ctx, session.Id); err != nil {
			return nil, err
		}
		if err := uow.ChatSessionRepository().DeleteUnscoped(ctx, session.Id); err != nil {
			return nil, err
		}
		if err := uow.Commit(); err != nil {
			return nil, err
		}
	} else {
		session.IsActive = false
		if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
			return nil, err
		}
	}

	// Drop the in-memory orchestrator either way; the conversation is
	// over from the agent's point of view.
	cs.agentRepo.Delete(session.Id.String())

	cs.logger.Info("chat", "Session deleted", map[string]interface{}{
		"session_id": session.Id.String(),
		"hard":       req.Hard,
	})

	cs.publishEvent(ctx, events.NewSessionDeletedEvent(userId.String(), session.Id.String(), req.Hard))

	return &dto.DeleteSessionResponse{
		ChatSessionId: session.Id,
		Hard:          req.Hard,
	}, nil
}

// publishProducts forwards listings the agent surfaced to the cache
// consumer. Best effort only.
func (cs *chatService) publishProducts(reply *agent.Response) {
	if cs.publisherService == nil || reply.MessageType != entity.ChatMessageTypeProducts {
		return
	}

	records, ok := reply.Metadata["products"].([]tools.Record)
	if !ok {
		return
	}

	msg := &dto.PublishProductsObservedMessage{Source: "chat"}
	for _, rec := range records {
		msg.Products = append(msg.Products, recordToProductDTO(rec))
	}

	if err := cs.publisherService.PublishProductsObserved(msg); err != nil {
		cs.logger.Warn("chat", "Failed to publish products-observed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (cs *chatService) publishEvent(ctx context.Context, event events.Event) {
	if cs.eventPublisher == nil {
		return
	}
	if err := cs.eventPublisher.Publish(ctx, event); err != nil {
		cs.logger.Warn("chat", "Failed to publish event", map[string]interface{}{
			"event": event.EventType(),
			"error": err.Error(),
		})
	}
}

func messageToDTO(m *entity.ChatMessage) *dto.SendChatResponseChat {
	return &dto.SendChatResponseChat{
		Id:          m.Id,
		Role:        m.Role,
		Content:     m.Content,
		MessageType: m.MessageType,
		ExtraData:   m.ExtraData,
		CreatedAt:   m.CreatedAt,
	}
}

func recordToProductDTO(rec tools.Record) dto.ProductResponse {
	str := func(key string) string {
		if v, ok := rec[key].(string); ok {
			return v
		}
		return ""
	}
	return dto.ProductResponse{
		ItemID:        str("item_id"),
		Title:         str("title"),
		Price:         str("price"),
		OriginalPrice: str("original_price"),
		ImageURL:      str("image_url"),
		DetailURL:     str("detail_url"),
		Category:      str("category"),
		ShopName:      str("shop_name"),
		Rating:        str("rating"),
		Sales:         str("sales"),
	}
}
