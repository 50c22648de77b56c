package service

import (
	"context"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/voyagent/voyagent/internal/model"
	appErr "github.com/voyagent/voyagent/internal/pkg/errors"
	"github.com/voyagent/voyagent/internal/pkg/timeutil"
	"github.com/voyagent/voyagent/internal/repo"
)

type DocumentService struct {
	docs       *repo.DocumentRepo
	embeddings *EmbeddingService
}

func NewDocumentService(docs *repo.DocumentRepo, embeddings *EmbeddingService) *DocumentService {
	return &DocumentService{docs: docs, embeddings: embeddings}
}

type DocumentCreateInput struct {
	DestinationID   string `json:"destination_id"`
	DestinationName string `json:"destination_name"`
	Content         string `json:"content"`
	Embed           bool   `json:"embed"`
}

func (s *DocumentService) Create(ctx context.Context, in DocumentCreateInput) (*model.TravelDocument, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, appErr.ErrInvalid
	}
	now := timeutil.NowUnix()
	doc := &model.TravelDocument{
		ID:              newID(),
		DestinationID:   in.DestinationID,
		DestinationName: in.DestinationName,
		Content:         in.Content,
		Ctime:           now,
		Mtime:           now,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, err
	}
	if in.Embed {
		// Embedding failure leaves the row pending; the backfill job will
		// pick it up later.
		if err := s.embeddings.EmbedDocument(ctx, doc.ID, doc.Content); err != nil {
			logutil.GetLogger(ctx).Warn("inline embed failed, document left pending",
				zap.String("doc_id", doc.ID), zap.Error(err))
		} else {
			doc.HasEmbedding = true
		}
	}
	return doc, nil
}

func (s *DocumentService) Get(ctx context.Context, id string) (*model.TravelDocument, error) {
	if strings.TrimSpace(id) == "" {
		return nil, appErr.ErrInvalid
	}
	return s.docs.GetByID(ctx, id)
}

func (s *DocumentService) List(ctx context.Context, limit, offset int) ([]model.TravelDocument, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.docs.List(ctx, limit, offset)
}

// BulkDelete is the only way documents leave the corpus.
func (s *DocumentService) BulkDelete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, appErr.ErrInvalid
	}
	return s.docs.Delete(ctx, ids)
}
