package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/voyagent/voyagent/internal/config"
	"github.com/voyagent/voyagent/internal/model"
	appErr "github.com/voyagent/voyagent/internal/pkg/errors"
	"github.com/voyagent/voyagent/internal/service"
)

// AssistantHandler serves the single multiplexed assistant endpoint. Request
// bodies are dispatched on the "action" field; anything without a recognized
// action is a chat turn. Response shapes here are part of the public client
// contract and bypass the standard envelope on purpose.
type AssistantHandler struct {
	cfg        *config.Config
	chats      *service.ChatService
	embeddings *service.EmbeddingService
}

func NewAssistantHandler(cfg *config.Config, chats *service.ChatService, embeddings *service.EmbeddingService) *AssistantHandler {
	return &AssistantHandler{cfg: cfg, chats: chats, embeddings: embeddings}
}

const (
	actionCheckConfig = "check_api_config"
	actionEmbed       = "generate_embedding"
	actionBatchEmbed  = "batch_generate_embeddings"
)

type assistantRequest struct {
	Action string `json:"action"`

	// chat turn
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`

	// embedding actions
	DocumentID  string   `json:"document_id"`
	Content     string   `json:"content"`
	DocumentIDs []string `json:"document_ids"`
}

func (h *AssistantHandler) Handle(c *gin.Context) {
	var req assistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	missing := h.cfg.MissingSecrets()
	if req.Action == actionCheckConfig {
		if len(missing) > 0 {
			c.JSON(http.StatusOK, gin.H{"error": missingSecretsMessage(missing)})
			return
		}
		c.JSON(http.StatusOK, gin.H{"configured": true})
		return
	}
	if len(missing) > 0 {
		c.JSON(http.StatusInternalServerError, gin.H{"error": missingSecretsMessage(missing)})
		return
	}

	switch req.Action {
	case actionEmbed:
		h.generateEmbedding(c, req)
	case actionBatchEmbed:
		h.batchGenerateEmbeddings(c, req)
	default:
		h.chatTurn(c, req)
	}
}

func (h *AssistantHandler) generateEmbedding(c *gin.Context, req assistantRequest) {
	if strings.TrimSpace(req.DocumentID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "document_id is required"})
		return
	}
	if err := h.embeddings.EmbedDocument(c.Request.Context(), req.DocumentID, req.Content); err != nil {
		status := http.StatusInternalServerError
		if err == appErr.ErrInvalid {
			status = http.StatusBadRequest
		} else if appErr.IsNotFound(err) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AssistantHandler) batchGenerateEmbeddings(c *gin.Context, req assistantRequest) {
	if len(req.DocumentIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document_ids is required"})
		return
	}
	results := h.embeddings.BatchEmbed(c.Request.Context(), req.DocumentIDs)
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *AssistantHandler) chatTurn(c *gin.Context, req assistantRequest) {
	userID := req.UserID
	if authed := getUserID(c); authed != "" {
		userID = authed
	}
	result, err := h.chats.HandleTurn(c.Request.Context(), service.ChatTurnInput{
		Message:   req.Message,
		SessionID: req.SessionID,
		UserID:    userID,
	})
	if err != nil {
		if err == appErr.ErrInvalid {
			c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
			return
		}
		// Upstream detail stays in the logs; the user gets one generic line.
		logutil.GetLogger(c.Request.Context()).Error("chat turn failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":    "assistant temporarily unavailable",
			"response": service.FallbackResponse,
		})
		return
	}

	body := gin.H{
		"response":  result.Response,
		"sessionId": result.SessionID,
	}
	if len(result.Sources) > 0 {
		body["sources"] = result.Sources
	}
	if result.IsOffTopic {
		body["isOffTopic"] = true
	}
	c.JSON(http.StatusOK, body)
}

// History returns the ordered transcript for a session.
func (h *AssistantHandler) History(c *gin.Context) {
	sessionID := c.Query("session_id")
	messages, err := h.chats.History(c.Request.Context(), sessionID)
	if err != nil {
		handleError(c, err)
		return
	}
	if messages == nil {
		messages = []model.ChatMessage{}
	}
	c.JSON(http.StatusOK, gin.H{"sessionId": sessionID, "messages": messages})
}

func missingSecretsMessage(missing []string) string {
	return fmt.Sprintf("Missing required environment variables: %s", strings.Join(missing, ", "))
}
