//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doclens/doclens/internal/domain"
	"github.com/doclens/doclens/internal/testutil"
)

func makeAnalysis(documentID string, summary string, createdAt time.Time) *domain.DocumentAnalysis {
	prompt := 42
	completion := 17
	return &domain.DocumentAnalysis{
		ID:                uuid.NewString(),
		DocumentID:        documentID,
		Summary:           summary,
		WordCount:         1200,
		PageCount:         4,
		ReadingTime:       "5-10 minutes",
		Readability:       70,
		Language:          "English",
		SentimentPositive: 65,
		SentimentNeutral:  25,
		SentimentNegative: 10,
		KeyTopics:         []string{"Placeholder Topic A", "Placeholder Topic B"},
		Entities:          []string{"Placeholder Entity A", "Placeholder Entity B"},
		AnalysisModel:     "gpt-4.1-mini",
		EmbeddingModel:    "text-embedding-3-small",
		PromptTokens:      &prompt,
		CompletionTokens:  &completion,
		VectorID:          documentID + "-0",
		CreatedAt:         createdAt.UTC().Truncate(time.Microsecond),
	}
}

func TestAnalysisRepositoryIntegration_CreateAndGetLatest(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	docRepo := NewDocumentRepository(pool)
	analysisRepo := NewAnalysisRepository(pool)
	doc := newTestDocument(ctx, t, docRepo, time.Now())

	older := makeAnalysis(doc.ID, "first pass", time.Now().Add(-time.Hour))
	newer := makeAnalysis(doc.ID, "second pass", time.Now())
	require.NoError(t, analysisRepo.Create(ctx, older))
	require.NoError(t, analysisRepo.Create(ctx, newer))

	got, err := analysisRepo.GetLatestByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.ID)
	assert.Equal(t, "second pass", got.Summary)
	assert.Equal(t, []string{"Placeholder Topic A", "Placeholder Topic B"}, got.KeyTopics)
	assert.Equal(t, []string{"Placeholder Entity A", "Placeholder Entity B"}, got.Entities)
	require.NotNil(t, got.PromptTokens)
	assert.Equal(t, 42, *got.PromptTokens)
	assert.Equal(t, doc.ID+"-0", got.VectorID)
}

func TestAnalysisRepositoryIntegration_GetLatestNotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	analysisRepo := NewAnalysisRepository(pool)

	_, err := analysisRepo.GetLatestByDocument(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrAnalysisNotFound)
}

func TestAnalysisRepositoryIntegration_ListByDocument(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	docRepo := NewDocumentRepository(pool)
	analysisRepo := NewAnalysisRepository(pool)
	doc := newTestDocument(ctx, t, docRepo, time.Now())

	for i, summary := range []string{"first", "second", "third"} {
		a := makeAnalysis(doc.ID, summary, time.Now().Add(time.Duration(i)*time.Minute))
		require.NoError(t, analysisRepo.Create(ctx, a))
	}

	history, err := analysisRepo.ListByDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "third", history[0].Summary)
	assert.Equal(t, "first", history[2].Summary)
}

func TestAnalysisRepositoryIntegration_CascadeDelete(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	docRepo := NewDocumentRepository(pool)
	analysisRepo := NewAnalysisRepository(pool)
	doc := newTestDocument(ctx, t, docRepo, time.Now())

	require.NoError(t, analysisRepo.Create(ctx, makeAnalysis(doc.ID, "summary", time.Now())))
	require.NoError(t, docRepo.Delete(ctx, doc.ID))

	_, err := analysisRepo.GetLatestByDocument(ctx, doc.ID)
	assert.ErrorIs(t, err, domain.ErrAnalysisNotFound)
}
