package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/voyagent/voyagent/internal/repo"
	"github.com/voyagent/voyagent/internal/service"
)

// EmbeddingBackfillJob embeds documents that were stored without a vector,
// usually because the embedding provider was down at insert time.
type EmbeddingBackfillJob struct {
	embeddings *service.EmbeddingService
	docs       *repo.DocumentRepo
	batchSize  int
	pause      time.Duration
}

func NewEmbeddingBackfillJob(embeddings *service.EmbeddingService, docs *repo.DocumentRepo, batchSize int, pause time.Duration) *EmbeddingBackfillJob {
	if batchSize <= 0 {
		batchSize = 20
	}
	return &EmbeddingBackfillJob{
		embeddings: embeddings,
		docs:       docs,
		batchSize:  batchSize,
		pause:      pause,
	}
}

func (j *EmbeddingBackfillJob) Name() string {
	return "embedding_backfill"
}

func (j *EmbeddingBackfillJob) Run(ctx context.Context) error {
	if j.embeddings == nil {
		return nil
	}
	pending, err := j.docs.ListMissingEmbedding(ctx, j.batchSize)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}
	logger := logutil.GetLogger(ctx)
	var failed int
	for i, doc := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := j.embeddings.EmbedDocument(ctx, doc.ID, doc.Content); err != nil {
			failed++
			logger.Error("backfill embedding failed", zap.String("document_id", doc.ID), zap.Error(err))
		}
		if j.pause > 0 && i < len(pending)-1 {
			time.Sleep(j.pause)
		}
	}
	logger.Info("embedding backfill batch done",
		zap.Int("processed", len(pending)),
		zap.Int("failed", failed),
	)
	return nil
}
