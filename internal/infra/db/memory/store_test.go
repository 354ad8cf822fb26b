package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/docmind/internal/domain/ai"
	"github.com/bryanwahyu/docmind/internal/domain/documents"
	"github.com/bryanwahyu/docmind/internal/domain/results"
)

func TestStore_ResultsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Documents().Save(ctx, &documents.Document{ID: "d1", UserID: "u"}))
	require.NoError(t, s.Documents().Save(ctx, &documents.Document{ID: "d2", UserID: "u"}))

	require.NoError(t, s.Results().Create(ctx, &results.Result{ID: "a", DocumentID: "d1", CreatedAt: t0}))
	require.NoError(t, s.Results().Create(ctx, &results.Result{ID: "b", DocumentID: "d1", CreatedAt: t0.Add(time.Second)}))
	require.NoError(t, s.Results().Create(ctx, &results.Result{ID: "c", DocumentID: "d1", CreatedAt: t0.Add(time.Second)}))
	require.NoError(t, s.Results().Create(ctx, &results.Result{ID: "x", DocumentID: "d2", CreatedAt: t0}))

	list, err := s.Results().ListByDocument(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, results.ResultID("c"), list[0].ID)
	assert.Equal(t, results.ResultID("b"), list[1].ID)
	assert.Equal(t, results.ResultID("a"), list[2].ID)
}

func TestStore_ResultForUnknownDocumentRejected(t *testing.T) {
	ctx := context.Background()
	s := New()

	err := s.Results().Create(ctx, &results.Result{ID: "a", DocumentID: "ghost"})
	require.ErrorIs(t, err, ai.ErrDocumentNotFound)

	list, err := s.Results().ListByDocument(ctx, "ghost")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStore_DeleteDocumentCascades(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Documents().Save(ctx, &documents.Document{ID: "d1", UserID: "u"}))
	require.NoError(t, s.Results().Create(ctx, &results.Result{ID: "a", DocumentID: "d1"}))

	require.NoError(t, s.Documents().Delete(ctx, "d1"))

	d, err := s.Documents().Get(ctx, "d1")
	require.NoError(t, err)
	assert.Nil(t, d)
	list, err := s.Results().ListByDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStore_ListByUserLimit(t *testing.T) {
	ctx := context.Background()
	s := New()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []documents.DocumentID{"a", "b", "c"} {
		require.NoError(t, s.Documents().Save(ctx, &documents.Document{ID: id, UserID: "u", CreatedAt: t0.Add(time.Duration(i) * time.Minute)}))
	}
	require.NoError(t, s.Documents().Save(ctx, &documents.Document{ID: "z", UserID: "other"}))

	list, err := s.Documents().ListByUser(ctx, "u", 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, documents.DocumentID("c"), list[0].ID)
	assert.Equal(t, documents.DocumentID("b"), list[1].ID)
}
