package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ai-shopassist-be/internal/dto"
	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/internal/repository/memory"
	"ai-shopassist-be/pkg/agent"
	"ai-shopassist-be/pkg/agent/tools"
	"ai-shopassist-be/pkg/llm"
	"ai-shopassist-be/pkg/taobao"
)

type scriptedLLM struct {
	completions []string
	calls       int
}

func (s *scriptedLLM) Chat(ctx context.Context, history []llm.Message) (string, error) {
	if s.calls >= len(s.completions) {
		return "", errors.New("no scripted completion left")
	}
	c := s.completions[s.calls]
	s.calls++
	return c, nil
}

func newChatServiceForTest(provider llm.LLMProvider, gw tools.Gateway, factory *fakeUowFactory, pub *fakePublisher) IChatService {
	newAgent := func() *agent.Orchestrator {
		return agent.NewOrchestrator(provider, tools.NewRegistry(gw), zap.NewNop())
	}
	return NewChatService(factory, memory.NewAgentRepository(), newAgent, pub, nil, nopLogger{})
}

func TestSendChatCreatesSessionAndPersistsBothTurns(t *testing.T) {
	factory := newFakeUowFactory()
	pub := &fakePublisher{}
	provider := &scriptedLLM{completions: []string{
		"Thought: no tool needed\nFinal Answer: Hi! What are you shopping for?",
	}}
	svc := newChatServiceForTest(provider, &fakeShopGateway{}, factory, pub)
	userId := uuid.New()

	resp, err := svc.SendChat(context.Background(), userId, &dto.SendChatRequest{
		Message: "hello there",
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, resp.ChatSessionId)
	assert.Equal(t, "hello there", resp.ChatSessionTitle)
	assert.Equal(t, entity.ChatMessageRoleUser, resp.Sent.Role)
	assert.Equal(t, entity.ChatMessageRoleAssistant, resp.Reply.Role)
	assert.Equal(t, "Hi! What are you shopping for?", resp.Reply.Content)

	history, err := svc.GetChatHistory(context.Background(), userId, resp.ChatSessionId)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, entity.ChatMessageRoleUser, history[0].Role)
	assert.Equal(t, entity.ChatMessageRoleAssistant, history[1].Role)
}

func TestSendChatReusesExistingSession(t *testing.T) {
	factory := newFakeUowFactory()
	provider := &scriptedLLM{completions: []string{
		"Final Answer: first reply",
		"Final Answer: second reply",
	}}
	svc := newChatServiceForTest(provider, &fakeShopGateway{}, factory, &fakePublisher{})
	userId := uuid.New()

	first, err := svc.SendChat(context.Background(), userId, &dto.SendChatRequest{Message: "one"})
	require.NoError(t, err)

	second, err := svc.SendChat(context.Background(), userId, &dto.SendChatRequest{
		ChatSessionId: &first.ChatSessionId,
		Message:       "two",
	})
	require.NoError(t, err)

	assert.Equal(t, first.ChatSessionId, second.ChatSessionId)

	history, err := svc.GetChatHistory(context.Background(), userId, first.ChatSessionId)
	require.NoError(t, err)
	assert.Len(t, history, 4)
}

func TestSendChatForeignSessionIdStartsOwnSession(t *testing.T) {
	factory := newFakeUowFactory()
	provider := &scriptedLLM{completions: []string{
		"Final Answer: mine",
		"Final Answer: yours",
	}}
	svc := newChatServiceForTest(provider, &fakeShopGateway{}, factory, &fakePublisher{})

	owner := uuid.New()
	resp, err := svc.SendChat(context.Background(), owner, &dto.SendChatRequest{Message: "hi"})
	require.NoError(t, err)

	// Someone else's session id behaves as if it does not exist: the
	// caller silently gets a session of their own.
	intruder := uuid.New()
	hijack, err := svc.SendChat(context.Background(), intruder, &dto.SendChatRequest{
		ChatSessionId: &resp.ChatSessionId,
		Message:       "let me in",
	})

	require.NoError(t, err)
	assert.NotEqual(t, resp.ChatSessionId, hijack.ChatSessionId)

	// The owner's conversation is untouched.
	history, err := svc.GetChatHistory(context.Background(), owner, resp.ChatSessionId)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestSendChatUnknownSessionIdStartsNewSession(t *testing.T) {
	factory := newFakeUowFactory()
	provider := &scriptedLLM{completions: []string{"Final Answer: hello"}}
	svc := newChatServiceForTest(provider, &fakeShopGateway{}, factory, &fakePublisher{})

	ghost := uuid.New()
	resp, err := svc.SendChat(context.Background(), uuid.New(), &dto.SendChatRequest{
		ChatSessionId: &ghost,
		Message:       "hi",
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, resp.ChatSessionId)
	assert.NotEqual(t, ghost, resp.ChatSessionId)
}

func TestSendChatPublishesObservedProducts(t *testing.T) {
	factory := newFakeUowFactory()
	pub := &fakePublisher{}
	provider := &scriptedLLM{completions: []string{
		"Action: product_search\nAction Input: earbuds",
		"Final Answer: found some",
	}}
	gw := &fakeShopGateway{searchProducts: []taobao.Product{
		{ItemID: "6001", Title: "Earbuds", Price: "79.00"},
	}}
	svc := newChatServiceForTest(provider, gw, factory, pub)

	resp, err := svc.SendChat(context.Background(), uuid.New(), &dto.SendChatRequest{Message: "find earbuds"})

	require.NoError(t, err)
	assert.Equal(t, entity.ChatMessageTypeProducts, resp.Reply.MessageType)
	require.Len(t, pub.messages, 1)
	assert.Equal(t, "chat", pub.messages[0].Source)
	require.Len(t, pub.messages[0].Products, 1)
	assert.Equal(t, "6001", pub.messages[0].Products[0].ItemID)
}

func TestGetAllSessionsNewestFirstActiveOnly(t *testing.T) {
	factory := newFakeUowFactory()
	provider := &scriptedLLM{completions: []string{
		"Final Answer: a", "Final Answer: b", "Final Answer: c",
	}}
	svc := newChatServiceForTest(provider, &fakeShopGateway{}, factory, &fakePublisher{})
	userId := uuid.New()

	first, _ := svc.SendChat(context.Background(), userId, &dto.SendChatRequest{Message: "first"})
	second, _ := svc.SendChat(context.Background(), userId, &dto.SendChatRequest{Message: "second"})

	_, err := svc.DeleteSession(context.Background(), userId, &dto.DeleteSessionRequest{
		ChatSessionId: first.ChatSessionId,
	})
	require.NoError(t, err)

	sessions, err := svc.GetAllSessions(context.Background(), userId)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, second.ChatSessionId, sessions[0].Id)
}

func TestDeleteSessionSoftKeepsHistory(t *testing.T) {
	factory := newFakeUowFactory()
	provider := &scriptedLLM{completions: []string{
		"Final Answer: hello",
		"Final Answer: hello again",
	}}
	svc := newChatServiceForTest(provider, &fakeShopGateway{}, factory, &fakePublisher{})
	userId := uuid.New()

	resp, err := svc.SendChat(context.Background(), userId, &dto.SendChatRequest{Message: "hi"})
	require.NoError(t, err)

	_, err = svc.DeleteSession(context.Background(), userId, &dto.DeleteSessionRequest{
		ChatSessionId: resp.ChatSessionId,
	})
	require.NoError(t, err)

	// History stays readable after a soft close.
	history, err := svc.GetChatHistory(context.Background(), userId, resp.ChatSessionId)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	// A follow-up message does not revive the closed session; it
	// lands in a fresh one.
	followUp, err := svc.SendChat(context.Background(), userId, &dto.SendChatRequest{
		ChatSessionId: &resp.ChatSessionId,
		Message:       "still there?",
	})
	require.NoError(t, err)
	assert.NotEqual(t, resp.ChatSessionId, followUp.ChatSessionId)
}

func TestDeleteSessionHardPurgesEverything(t *testing.T) {
	factory := newFakeUowFactory()
	provider := &scriptedLLM{completions: []string{"Final Answer: hello"}}
	svc := newChatServiceForTest(provider, &fakeShopGateway{}, factory, &fakePublisher{})
	userId := uuid.New()

	resp, err := svc.SendChat(context.Background(), userId, &dto.SendChatRequest{Message: "hi"})
	require.NoError(t, err)

	out, err := svc.DeleteSession(context.Background(), userId, &dto.DeleteSessionRequest{
		ChatSessionId: resp.ChatSessionId,
		Hard:          true,
	})
	require.NoError(t, err)
	assert.True(t, out.Hard)

	_, err = svc.GetChatHistory(context.Background(), userId, resp.ChatSessionId)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Empty(t, factory.uow.messages.messages)
}

func TestDeleteSessionRejectsForeignOwner(t *testing.T) {
	factory := newFakeUowFactory()
	provider := &scriptedLLM{completions: []string{"Final Answer: hello"}}
	svc := newChatServiceForTest(provider, &fakeShopGateway{}, factory, &fakePublisher{})

	owner := uuid.New()
	resp, err := svc.SendChat(context.Background(), owner, &dto.SendChatRequest{Message: "hi"})
	require.NoError(t, err)

	_, err = svc.DeleteSession(context.Background(), uuid.New(), &dto.DeleteSessionRequest{
		ChatSessionId: resp.ChatSessionId,
		Hard:          true,
	})

	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDeleteSessionSoftTwiceRejected(t *testing.T) {
	factory := newFakeUowFactory()
	provider := &scriptedLLM{completions: []string{"Final Answer: hello"}}
	svc := newChatServiceForTest(provider, &fakeShopGateway{}, factory, &fakePublisher{})
	userId := uuid.New()

	resp, err := svc.SendChat(context.Background(), userId, &dto.SendChatRequest{Message: "hi"})
	require.NoError(t, err)

	_, err = svc.DeleteSession(context.Background(), userId, &dto.DeleteSessionRequest{
		ChatSessionId: resp.ChatSessionId,
	})
	require.NoError(t, err)

	_, err = svc.DeleteSession(context.Background(), userId, &dto.DeleteSessionRequest{
		ChatSessionId: resp.ChatSessionId,
	})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSendChatImagePayloadViaMetadata(t *testing.T) {
	factory := newFakeUowFactory()
	provider := &scriptedLLM{}
	gw := &fakeShopGateway{imageProducts: []taobao.Product{
		{ItemID: "8001", Title: "Red Sneakers", Price: "329.00"},
	}}
	svc := newChatServiceForTest(provider, gw, factory, &fakePublisher{})

	resp, err := svc.SendChat(context.Background(), uuid.New(), &dto.SendChatRequest{
		Message:     "what shoes are these?",
		MessageType: entity.ChatMessageTypeImage,
		Metadata:    &dto.SendChatMetadata{ImageData: "aGVsbG8="},
	})

	require.NoError(t, err)
	assert.Equal(t, entity.ChatMessageTypeProducts, resp.Reply.MessageType)
	assert.Equal(t, "what shoes are these?", resp.Sent.Content)
	assert.Zero(t, provider.calls)
}

func TestSendChatImageTitlesSession(t *testing.T) {
	factory := newFakeUowFactory()
	provider := &scriptedLLM{}
	svc := newChatServiceForTest(provider, &fakeShopGateway{}, factory, &fakePublisher{})

	resp, err := svc.SendChat(context.Background(), uuid.New(), &dto.SendChatRequest{
		Message:     "aGVsbG8=",
		MessageType: entity.ChatMessageTypeImage,
	})

	require.NoError(t, err)
	assert.Equal(t, "Image search", resp.ChatSessionTitle)
	assert.Equal(t, entity.ChatMessageTypeImage, resp.Sent.MessageType)
	assert.Zero(t, provider.calls)
}
