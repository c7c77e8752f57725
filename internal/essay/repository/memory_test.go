package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/essaypilot/essaypilot/internal/essay"
)

func TestMemoryRepo_CRUD(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	id, err := repo.CreateEssay(ctx, &essay.Essay{UserID: "u1", Title: "First", Content: "a"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := repo.GetEssay(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "First", got.Title)
	require.False(t, got.CreatedAt.IsZero())

	_, err = repo.GetEssay(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	got.Content = "b"
	require.NoError(t, repo.UpdateEssay(ctx, got))
	again, err := repo.GetEssay(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "b", again.Content)

	require.NoError(t, repo.DeleteEssay(ctx, id))
	require.ErrorIs(t, repo.DeleteEssay(ctx, id), ErrNotFound)
}

func TestMemoryRepo_ListNewestFirst(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	first, err := repo.CreateEssay(ctx, &essay.Essay{UserID: "u1", Title: "old"})
	require.NoError(t, err)
	_, err = repo.CreateEssay(ctx, &essay.Essay{UserID: "u1", Title: "new"})
	require.NoError(t, err)
	_, err = repo.CreateEssay(ctx, &essay.Essay{UserID: "u2", Title: "other"})
	require.NoError(t, err)

	// touch the first essay so it becomes the most recently updated
	time.Sleep(2 * time.Millisecond)
	e, err := repo.GetEssay(ctx, first)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateEssay(ctx, e))

	list, err := repo.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "old", list[0].Title)
}

func TestMemoryRepo_AnalysesNewestFirst(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	id, err := repo.CreateEssay(ctx, &essay.Essay{UserID: "u1", Title: "t"})
	require.NoError(t, err)

	latest, err := repo.LatestAnalysis(ctx, id)
	require.NoError(t, err)
	require.Nil(t, latest)

	_, err = repo.InsertAnalysis(ctx, &essay.Analysis{EssayID: id, FeedbackSummary: "first"})
	require.NoError(t, err)
	_, err = repo.InsertAnalysis(ctx, &essay.Analysis{EssayID: id, FeedbackSummary: "second"})
	require.NoError(t, err)

	latest, err = repo.LatestAnalysis(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "second", latest.FeedbackSummary)
	require.NotNil(t, latest.Suggestions)
}
