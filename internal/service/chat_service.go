package service

import (
	"context"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/voyagent/voyagent/internal/ai"
	"github.com/voyagent/voyagent/internal/chat"
	"github.com/voyagent/voyagent/internal/config"
	"github.com/voyagent/voyagent/internal/model"
	appErr "github.com/voyagent/voyagent/internal/pkg/errors"
	"github.com/voyagent/voyagent/internal/pkg/timeutil"
)

// FallbackResponse is the only text an end user ever sees when the LLM call
// fails or times out. The real cause goes to the server logs.
const FallbackResponse = "Sorry, I'm having trouble connecting right now. Please try again in a moment."

type historyStore interface {
	Insert(ctx context.Context, msg *model.ChatMessage) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]model.ChatMessage, error)
}

type retriever interface {
	Retrieve(ctx context.Context, query string, limit int) []model.RetrievedDocument
}

type ChatService struct {
	provider  ai.IChatProvider
	history   historyStore
	retrieval retriever
	aiCfg     config.AIConfig
	chatCfg   config.ChatConfig
}

func NewChatService(provider ai.IChatProvider, history historyStore, retrieval retriever, aiCfg config.AIConfig, chatCfg config.ChatConfig) *ChatService {
	return &ChatService{
		provider:  provider,
		history:   history,
		retrieval: retrieval,
		aiCfg:     aiCfg,
		chatCfg:   chatCfg,
	}
}

type ChatTurnInput struct {
	Message   string
	SessionID string
	UserID    string
}

type Source struct {
	Name       string  `json:"name"`
	Similarity float64 `json:"similarity"`
}

type ChatTurnResult struct {
	Response   string
	SessionID  string
	Sources    []Source
	IsOffTopic bool
}

// HandleTurn runs one request through the full pipeline: classify, persist
// the user turn, load history, retrieve context, call the LLM, persist the
// reply. History writes are logged and swallowed; a turn can be answered even
// when it fails to be saved.
func (s *ChatService) HandleTurn(ctx context.Context, in ChatTurnInput) (*ChatTurnResult, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return nil, appErr.ErrInvalid
	}
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		sessionID = newID()
	}
	logger := logutil.GetLogger(ctx).With(zap.String("session_id", sessionID))

	cls := chat.Classify(message)
	if !cls.IsTravelRelated {
		logger.Info("off-topic message deflected", zap.Float64("confidence", cls.Confidence))
		s.persistTurn(ctx, sessionID, in.UserID, model.RoleUser, message)
		s.persistTurn(ctx, sessionID, "", model.RoleAssistant, chat.Deflection)
		return &ChatTurnResult{
			Response:   chat.Deflection,
			SessionID:  sessionID,
			IsOffTopic: true,
		}, nil
	}

	// Stored before the LLM call so the turn survives an upstream failure.
	s.persistTurn(ctx, sessionID, in.UserID, model.RoleUser, message)

	history, err := s.history.ListBySession(ctx, sessionID, s.chatCfg.HistoryLimit)
	if err != nil {
		logger.Warn("load history failed, answering without context", zap.Error(err))
		history = []model.ChatMessage{{SessionID: sessionID, Role: model.RoleUser, Content: message, CreatedAt: timeutil.NowUnix()}}
	}

	prefs := chat.ExtractPreferences(history)
	followUp := chat.IsFollowUp(history, timeutil.NowUnix(), time.Duration(s.chatCfg.FollowUpWindowMinutes)*time.Minute)

	query := message
	limit := s.chatCfg.RetrieveLimit
	if followUp {
		// A follow-up needs less new grounding but more query context.
		query = chat.FollowUpQuery(history, message, 3)
		limit = s.chatCfg.FollowUpRetrieveLimit
	}
	docs := s.retrieval.Retrieve(ctx, query, limit)
	docs = chat.TrimDocsToBudget(docs, s.chatCfg.ContextBudgetBytes)

	systemPrompt := chat.BuildSystemPrompt(docs, prefs, followUp)
	messages := buildLLMMessages(history, message)

	llmCtx, cancel := context.WithTimeout(ctx, time.Duration(s.aiCfg.TimeoutSeconds)*time.Second)
	defer cancel()
	reply, err := s.provider.Chat(llmCtx, systemPrompt, messages, ai.ChatOptions{
		Model:       s.aiCfg.Model,
		MaxTokens:   s.aiCfg.MaxTokens,
		Temperature: s.aiCfg.Temperature,
	})
	if err != nil {
		logger.Error("llm call failed",
			zap.Bool("follow_up", followUp),
			zap.Int("docs", len(docs)),
			zap.Error(err),
		)
		return nil, err
	}

	s.persistTurn(ctx, sessionID, "", model.RoleAssistant, reply)

	sources := make([]Source, 0, len(docs))
	for _, doc := range docs {
		sources = append(sources, Source{Name: doc.DestinationName, Similarity: doc.Similarity})
	}
	logger.Info("chat turn answered",
		zap.Bool("follow_up", followUp),
		zap.Int("sources", len(sources)),
	)
	return &ChatTurnResult{
		Response:  reply,
		SessionID: sessionID,
		Sources:   sources,
	}, nil
}

// History returns the ordered transcript of a session.
func (s *ChatService) History(ctx context.Context, sessionID string) ([]model.ChatMessage, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, appErr.ErrInvalid
	}
	return s.history.ListBySession(ctx, sessionID, s.chatCfg.HistoryLimit)
}

func (s *ChatService) persistTurn(ctx context.Context, sessionID, userID, role, content string) {
	err := s.history.Insert(ctx, &model.ChatMessage{
		ID:        newID(),
		SessionID: sessionID,
		UserID:    userID,
		Role:      role,
		Content:   content,
		CreatedAt: timeutil.NowUnix(),
	})
	if err != nil {
		// Log and continue: losing a history row must not lose the answer.
		logutil.GetLogger(ctx).Warn("persist chat turn failed",
			zap.String("session_id", sessionID),
			zap.String("role", role),
			zap.Error(err),
		)
	}
}

func buildLLMMessages(history []model.ChatMessage, current string) []ai.Message {
	messages := make([]ai.Message, 0, len(history)+1)
	for _, msg := range history {
		if msg.Role != model.RoleUser && msg.Role != model.RoleAssistant {
			continue
		}
		messages = append(messages, ai.Message{Role: msg.Role, Content: msg.Content})
	}
	// History loads can race the write of the current turn; make sure the
	// message being answered is always the final user entry.
	if len(messages) == 0 || messages[len(messages)-1].Role != model.RoleUser || messages[len(messages)-1].Content != current {
		messages = append(messages, ai.Message{Role: model.RoleUser, Content: current})
	}
	return messages
}
