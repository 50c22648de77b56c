package service

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/voyagent/voyagent/internal/model"
)

type documentSearcher interface {
	Search(ctx context.Context, queryEmbedding []float32, threshold float64, limit int) ([]model.RetrievedDocument, error)
}

type RetrievalService struct {
	embeddings *EmbeddingService
	docs       documentSearcher
	threshold  float64
}

func NewRetrievalService(embeddings *EmbeddingService, docs documentSearcher, threshold float64) *RetrievalService {
	return &RetrievalService{embeddings: embeddings, docs: docs, threshold: threshold}
}

// Retrieve returns the stored documents most similar to the query, ranked by
// similarity descending. Retrieval failure degrades to zero documents rather
// than failing the chat turn: the caller always gets a usable (possibly
// empty) slice.
func (s *RetrievalService) Retrieve(ctx context.Context, query string, limit int) []model.RetrievedDocument {
	logger := logutil.GetLogger(ctx)
	vec, err := s.embeddings.Embed(ctx, query)
	if err != nil {
		logger.Warn("query embedding failed, continuing without context", zap.Error(err))
		return nil
	}
	docs, err := s.docs.Search(ctx, vec, s.threshold, limit)
	if err != nil {
		logger.Warn("similarity search failed, continuing without context", zap.Error(err))
		return nil
	}
	return docs
}
