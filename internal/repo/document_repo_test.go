package repo_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voyagent/voyagent/internal/model"
	appErr "github.com/voyagent/voyagent/internal/pkg/errors"
	"github.com/voyagent/voyagent/internal/pkg/timeutil"
	"github.com/voyagent/voyagent/internal/repo"
	"github.com/voyagent/voyagent/internal/testutil"
)

func unitVector(axis int) []float32 {
	vec := make([]float32, 1536)
	vec[axis] = 1
	return vec
}

func TestDocumentRepoEmbeddingLifecycle(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	docs := repo.NewDocumentRepo(db)
	id := fmt.Sprintf("doc-%d", timeutil.NowMillis())
	defer func() {
		_, _ = docs.Delete(context.Background(), []string{id})
	}()

	now := timeutil.NowUnix()
	require.NoError(t, docs.Create(context.Background(), &model.TravelDocument{
		ID:              id,
		DestinationName: "Lisbon",
		Content:         "Hilly coastal capital.",
		Ctime:           now,
		Mtime:           now,
	}))

	fetched, err := docs.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.False(t, fetched.HasEmbedding)

	pending, err := docs.ListMissingEmbedding(context.Background(), 1000)
	require.NoError(t, err)
	require.True(t, containsDoc(pending, id))

	require.NoError(t, docs.UpdateEmbedding(context.Background(), id, unitVector(0), timeutil.NowUnix()))

	fetched, err = docs.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.True(t, fetched.HasEmbedding)

	pending, err = docs.ListMissingEmbedding(context.Background(), 1000)
	require.NoError(t, err)
	require.False(t, containsDoc(pending, id))

	require.ErrorIs(t, docs.UpdateEmbedding(context.Background(), id+"-missing", unitVector(0), timeutil.NowUnix()), appErr.ErrNotFound)
}

func TestDocumentRepoSearchSkipsUnembeddedDocs(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	docs := repo.NewDocumentRepo(db)
	prefix := fmt.Sprintf("search-%d", timeutil.NowMillis())
	embedded := prefix + "-embedded"
	pending := prefix + "-pending"
	defer func() {
		_, _ = docs.Delete(context.Background(), []string{embedded, pending})
	}()

	now := timeutil.NowUnix()
	require.NoError(t, docs.Create(context.Background(), &model.TravelDocument{
		ID: embedded, DestinationName: "Lisbon", Content: "Coastal capital.", Ctime: now, Mtime: now,
	}))
	require.NoError(t, docs.Create(context.Background(), &model.TravelDocument{
		ID: pending, DestinationName: "Porto", Content: "Port wine city.", Ctime: now, Mtime: now,
	}))
	require.NoError(t, docs.UpdateEmbedding(context.Background(), embedded, unitVector(1), timeutil.NowUnix()))

	// Identical query vector: similarity 1 for the embedded doc. The pending
	// doc must never surface, whatever the threshold.
	results, err := docs.Search(context.Background(), unitVector(1), 0.5, 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, doc := range results {
		require.NotEqual(t, "Port wine city.", doc.Content)
	}
	require.Equal(t, "Lisbon", results[0].DestinationName)
	require.InDelta(t, 1.0, results[0].Similarity, 0.001)

	// Orthogonal query vector: similarity 0, below any positive threshold.
	results, err = docs.Search(context.Background(), unitVector(2), 0.5, 10)
	require.NoError(t, err)
	for _, doc := range results {
		require.NotEqual(t, "Coastal capital.", doc.Content)
	}
}

func containsDoc(docs []model.TravelDocument, id string) bool {
	for _, doc := range docs {
		if doc.ID == id {
			return true
		}
	}
	return false
}
