package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voyagent/voyagent/internal/model"
)

type fakeSearcher struct {
	docs          []model.RetrievedDocument
	err           error
	lastThreshold float64
	lastLimit     int
}

func (f *fakeSearcher) Search(ctx context.Context, queryEmbedding []float32, threshold float64, limit int) ([]model.RetrievedDocument, error) {
	f.lastThreshold = threshold
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

func TestRetrieve_PassesThresholdAndLimit(t *testing.T) {
	searcher := &fakeSearcher{docs: []model.RetrievedDocument{
		{DestinationName: "Lisbon", Similarity: 0.9},
	}}
	embeddings := newTestEmbeddingService(&fakeEmbedProvider{}, &fakeDocStore{})
	s := NewRetrievalService(embeddings, searcher, 0.5)

	docs := s.Retrieve(context.Background(), "beach holiday", 5)
	require.Len(t, docs, 1)
	require.Equal(t, 0.5, searcher.lastThreshold)
	require.Equal(t, 5, searcher.lastLimit)
}

func TestRetrieve_DegradesOnEmbedFailure(t *testing.T) {
	provider := &fakeEmbedProvider{failOn: map[string]error{"beach holiday": errors.New("down")}}
	embeddings := newTestEmbeddingService(provider, &fakeDocStore{})
	s := NewRetrievalService(embeddings, &fakeSearcher{}, 0.5)

	docs := s.Retrieve(context.Background(), "beach holiday", 5)
	require.Empty(t, docs)
}

func TestRetrieve_DegradesOnSearchFailure(t *testing.T) {
	embeddings := newTestEmbeddingService(&fakeEmbedProvider{}, &fakeDocStore{})
	s := NewRetrievalService(embeddings, &fakeSearcher{err: errors.New("db down")}, 0.5)

	docs := s.Retrieve(context.Background(), "beach holiday", 5)
	require.Empty(t, docs)
}
