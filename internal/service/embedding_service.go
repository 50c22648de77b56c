package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/voyagent/voyagent/internal/ai"
	"github.com/voyagent/voyagent/internal/config"
	"github.com/voyagent/voyagent/internal/model"
	appErr "github.com/voyagent/voyagent/internal/pkg/errors"
	"github.com/voyagent/voyagent/internal/pkg/timeutil"
)

type embedDocStore interface {
	GetByID(ctx context.Context, id string) (*model.TravelDocument, error)
	UpdateEmbedding(ctx context.Context, id string, embedding []float32, mtime int64) error
}

type EmbeddingService struct {
	provider ai.IEmbedProvider
	model    string
	dims     int
	docs     embedDocStore
	cache    *expirable.LRU[string, []float32]
	pause    time.Duration
}

func NewEmbeddingService(provider ai.IEmbedProvider, aiCfg config.AIConfig, chatCfg config.ChatConfig, docs embedDocStore) *EmbeddingService {
	cache := expirable.NewLRU[string, []float32](
		chatCfg.EmbedCacheSize,
		nil,
		time.Duration(chatCfg.EmbedCacheTTLMinutes)*time.Minute,
	)
	return &EmbeddingService{
		provider: provider,
		model:    aiCfg.EmbedModel,
		dims:     aiCfg.EmbedDims,
		docs:     docs,
		cache:    cache,
		pause:    time.Duration(chatCfg.BatchEmbedPauseMillis) * time.Millisecond,
	}
}

// Embed converts free text into a fixed-length vector. Blank input is an
// invalid-input error, not an upstream call.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, appErr.ErrInvalid
	}
	key := cacheKey(trimmed)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}
	vec, err := s.provider.Embed(ctx, s.model, trimmed, s.dims)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, vec)
	return vec, nil
}

// EmbedDocument embeds content and persists the vector onto the matching
// document row. When content is blank the stored content is used. An update
// that touches no row reports not-found.
func (s *EmbeddingService) EmbedDocument(ctx context.Context, id, content string) error {
	if strings.TrimSpace(id) == "" {
		return appErr.ErrInvalid
	}
	if strings.TrimSpace(content) == "" {
		doc, err := s.docs.GetByID(ctx, id)
		if err != nil {
			return err
		}
		content = doc.Content
	}
	vec, err := s.Embed(ctx, content)
	if err != nil {
		return err
	}
	return s.docs.UpdateEmbedding(ctx, id, vec, timeutil.NowUnix())
}

type BatchEmbedResult struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BatchEmbed processes ids one at a time with a brief pause between calls to
// stay inside the embedding endpoint's rate limits. A failing id never aborts
// the batch: every input id gets exactly one result entry.
func (s *EmbeddingService) BatchEmbed(ctx context.Context, ids []string) []BatchEmbedResult {
	logger := logutil.GetLogger(ctx)
	results := make([]BatchEmbedResult, 0, len(ids))
	for i, id := range ids {
		if i > 0 && s.pause > 0 {
			time.Sleep(s.pause)
		}
		if err := s.EmbedDocument(ctx, id, ""); err != nil {
			logger.Warn("batch embed item failed", zap.String("doc_id", id), zap.Error(err))
			results = append(results, BatchEmbedResult{ID: id, Success: false, Error: err.Error()})
			continue
		}
		results = append(results, BatchEmbedResult{ID: id, Success: true})
	}
	return results
}

func cacheKey(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:])
}
