package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voyagent/voyagent/internal/ai"
	"github.com/voyagent/voyagent/internal/chat"
	"github.com/voyagent/voyagent/internal/config"
	"github.com/voyagent/voyagent/internal/model"
	appErr "github.com/voyagent/voyagent/internal/pkg/errors"
	"github.com/voyagent/voyagent/internal/pkg/timeutil"
)

type fakeChatProvider struct {
	reply      string
	err        error
	calls      int
	lastSystem string
	lastMsgs   []ai.Message
	block      bool
}

func (f *fakeChatProvider) Name() string { return "fake" }

func (f *fakeChatProvider) Chat(ctx context.Context, system string, messages []ai.Message, opts ai.ChatOptions) (string, error) {
	f.calls++
	f.lastSystem = system
	f.lastMsgs = messages
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeHistory struct {
	messages  []model.ChatMessage
	insertErr error
	listErr   error
}

func (f *fakeHistory) Insert(ctx context.Context, msg *model.ChatMessage) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.messages = append(f.messages, *msg)
	return nil
}

func (f *fakeHistory) ListBySession(ctx context.Context, sessionID string, limit int) ([]model.ChatMessage, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.ChatMessage
	for _, msg := range f.messages {
		if msg.SessionID == sessionID {
			out = append(out, msg)
		}
	}
	return out, nil
}

type fakeRetriever struct {
	docs      []model.RetrievedDocument
	lastQuery string
	lastLimit int
	calls     int
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query string, limit int) []model.RetrievedDocument {
	f.calls++
	f.lastQuery = query
	f.lastLimit = limit
	return f.docs
}

func testChatConfig() config.ChatConfig {
	return config.ChatConfig{
		RetrieveLimit:         5,
		FollowUpRetrieveLimit: 3,
		SimilarityThreshold:   0.5,
		HistoryLimit:          50,
		ContextBudgetBytes:    24 * 1024,
		FollowUpWindowMinutes: 30,
	}
}

func newTestChatService(provider *fakeChatProvider, history *fakeHistory, retrieval *fakeRetriever) *ChatService {
	return NewChatService(provider, history, retrieval, config.AIConfig{
		Model:          "test-model",
		TimeoutSeconds: 20,
		MaxTokens:      512,
	}, testChatConfig())
}

func TestHandleTurn_EmptyMessage(t *testing.T) {
	s := newTestChatService(&fakeChatProvider{}, &fakeHistory{}, &fakeRetriever{})
	_, err := s.HandleTurn(context.Background(), ChatTurnInput{Message: "   "})
	require.ErrorIs(t, err, appErr.ErrInvalid)
}

func TestHandleTurn_OffTopicNeverCallsUpstream(t *testing.T) {
	provider := &fakeChatProvider{reply: "should not be used"}
	history := &fakeHistory{}
	retrieval := &fakeRetriever{}
	s := newTestChatService(provider, history, retrieval)

	result, err := s.HandleTurn(context.Background(), ChatTurnInput{
		Message: "How do I center a div in CSS?",
	})
	require.NoError(t, err)
	require.True(t, result.IsOffTopic)
	require.Equal(t, chat.Deflection, result.Response)
	require.NotEmpty(t, result.SessionID)
	require.Zero(t, provider.calls)
	require.Zero(t, retrieval.calls)

	// Both the question and the deflection are persisted.
	require.Len(t, history.messages, 2)
	require.Equal(t, model.RoleUser, history.messages[0].Role)
	require.Equal(t, model.RoleAssistant, history.messages[1].Role)
	require.Equal(t, chat.Deflection, history.messages[1].Content)
}

func TestHandleTurn_AnswersWithSources(t *testing.T) {
	provider := &fakeChatProvider{reply: "Lisbon fits perfectly."}
	history := &fakeHistory{}
	retrieval := &fakeRetriever{docs: []model.RetrievedDocument{
		{DestinationName: "Lisbon", Content: "Coastal capital.", Similarity: 0.92},
		{DestinationName: "Porto", Content: "Port wine city.", Similarity: 0.81},
	}}
	s := newTestChatService(provider, history, retrieval)

	result, err := s.HandleTurn(context.Background(), ChatTurnInput{
		Message:   "What's a good beach destination on a budget?",
		SessionID: "sess-1",
	})
	require.NoError(t, err)
	require.False(t, result.IsOffTopic)
	require.Equal(t, "Lisbon fits perfectly.", result.Response)
	require.Equal(t, "sess-1", result.SessionID)
	require.Equal(t, []Source{
		{Name: "Lisbon", Similarity: 0.92},
		{Name: "Porto", Similarity: 0.81},
	}, result.Sources)

	require.Equal(t, 1, provider.calls)
	require.Contains(t, provider.lastSystem, "[Destination 1: Lisbon]")
	require.Contains(t, provider.lastSystem, "- Budget: low")
	require.Equal(t, 5, retrieval.lastLimit)
	require.Equal(t, "What's a good beach destination on a budget?", retrieval.lastQuery)

	// User turn then assistant reply in order.
	require.Len(t, history.messages, 2)
	require.Equal(t, "Lisbon fits perfectly.", history.messages[1].Content)
}

func TestHandleTurn_FollowUpExpandsQueryAndLowersLimit(t *testing.T) {
	now := timeutil.NowUnix()
	provider := &fakeChatProvider{reply: "Plenty of seafood."}
	history := &fakeHistory{messages: []model.ChatMessage{
		{SessionID: "sess-2", Role: model.RoleUser, Content: "Tell me about a trip to Lisbon", CreatedAt: now - 60},
		{SessionID: "sess-2", Role: model.RoleAssistant, Content: "Lisbon is lovely.", CreatedAt: now - 55},
	}}
	retrieval := &fakeRetriever{}
	s := newTestChatService(provider, history, retrieval)

	result, err := s.HandleTurn(context.Background(), ChatTurnInput{
		Message:   "What is the street food like there?",
		SessionID: "sess-2",
	})
	require.NoError(t, err)
	require.Equal(t, "Plenty of seafood.", result.Response)
	require.Equal(t, 3, retrieval.lastLimit)
	require.Equal(t, "Tell me about a trip to Lisbon\nWhat is the street food like there?", retrieval.lastQuery)
	require.Contains(t, provider.lastSystem, "continuing an earlier topic")
}

func TestHandleTurn_UpstreamFailureKeepsUserTurn(t *testing.T) {
	upstream := errors.New("upstream exploded")
	provider := &fakeChatProvider{err: upstream}
	history := &fakeHistory{}
	s := newTestChatService(provider, history, &fakeRetriever{})

	_, err := s.HandleTurn(context.Background(), ChatTurnInput{
		Message:   "Plan me a vacation",
		SessionID: "sess-3",
	})
	require.ErrorIs(t, err, upstream)

	// The question survives the failed call; no assistant row is written.
	require.Len(t, history.messages, 1)
	require.Equal(t, model.RoleUser, history.messages[0].Role)
	require.Equal(t, "Plan me a vacation", history.messages[0].Content)
}

func TestHandleTurn_TimesOut(t *testing.T) {
	provider := &fakeChatProvider{block: true}
	history := &fakeHistory{}
	s := NewChatService(provider, history, &fakeRetriever{}, config.AIConfig{
		Model:          "test-model",
		TimeoutSeconds: 1,
	}, testChatConfig())

	_, err := s.HandleTurn(context.Background(), ChatTurnInput{
		Message:   "Plan me a vacation",
		SessionID: "sess-4",
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Len(t, history.messages, 1)
}

func TestHandleTurn_PersistenceFailureStillAnswers(t *testing.T) {
	provider := &fakeChatProvider{reply: "Go to Bali."}
	history := &fakeHistory{insertErr: errors.New("db down"), listErr: errors.New("db down")}
	s := newTestChatService(provider, history, &fakeRetriever{})

	result, err := s.HandleTurn(context.Background(), ChatTurnInput{
		Message:   "Where should I go for a beach holiday?",
		SessionID: "sess-5",
	})
	require.NoError(t, err)
	require.Equal(t, "Go to Bali.", result.Response)
	require.Equal(t, 1, provider.calls)
	// The degraded history still carries the current question.
	require.NotEmpty(t, provider.lastMsgs)
	require.Equal(t, "Where should I go for a beach holiday?", provider.lastMsgs[len(provider.lastMsgs)-1].Content)
}

func TestHistory_RequiresSessionID(t *testing.T) {
	s := newTestChatService(&fakeChatProvider{}, &fakeHistory{}, &fakeRetriever{})
	_, err := s.History(context.Background(), " ")
	require.ErrorIs(t, err, appErr.ErrInvalid)
}

func TestBuildLLMMessages_EnsuresCurrentIsLast(t *testing.T) {
	history := []model.ChatMessage{
		{Role: model.RoleUser, Content: "first"},
		{Role: model.RoleAssistant, Content: "answer"},
		{Role: model.RoleSystem, Content: "internal note"},
	}
	messages := buildLLMMessages(history, "second")
	require.Len(t, messages, 3)
	require.Equal(t, model.RoleUser, messages[len(messages)-1].Role)
	require.Equal(t, "second", messages[len(messages)-1].Content)

	// Already present as the final user entry: not duplicated.
	history = append(history, model.ChatMessage{Role: model.RoleUser, Content: "second"})
	messages = buildLLMMessages(history, "second")
	require.Len(t, messages, 3)
}
