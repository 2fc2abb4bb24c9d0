package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/doclens/doclens/internal/domain"
)

type AnalysisRepository struct {
	db dbtx
}

func NewAnalysisRepository(pool *pgxpool.Pool) *AnalysisRepository {
	return &AnalysisRepository{db: pool}
}

func NewAnalysisRepositoryWithTx(tx pgx.Tx) *AnalysisRepository {
	return &AnalysisRepository{db: tx}
}

func (r *AnalysisRepository) Create(ctx context.Context, a *domain.DocumentAnalysis) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO document_analyses
			(id, document_id, summary, word_count, page_count, reading_time, readability, language,
			 sentiment_positive, sentiment_neutral, sentiment_negative, key_topics, entities,
			 analysis_model, embedding_model, prompt_tokens, completion_tokens, vector_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		a.ID, a.DocumentID, a.Summary, a.WordCount, a.PageCount, a.ReadingTime, a.Readability, a.Language,
		a.SentimentPositive, a.SentimentNeutral, a.SentimentNegative, a.KeyTopics, a.Entities,
		a.AnalysisModel, a.EmbeddingModel, a.PromptTokens, a.CompletionTokens, nullableString(a.VectorID), a.CreatedAt,
	)
	return err
}

// GetLatestByDocument returns the most recent analysis for a document.
func (r *AnalysisRepository) GetLatestByDocument(ctx context.Context, documentID string) (*domain.DocumentAnalysis, error) {
	var a domain.DocumentAnalysis
	var vectorID *string
	err := r.db.QueryRow(ctx,
		`SELECT id, document_id, summary, word_count, page_count, reading_time, readability, language,
		        sentiment_positive, sentiment_neutral, sentiment_negative, key_topics, entities,
		        analysis_model, embedding_model, prompt_tokens, completion_tokens, vector_id, created_at
		 FROM document_analyses WHERE document_id = $1 ORDER BY created_at DESC LIMIT 1`,
		documentID,
	).Scan(&a.ID, &a.DocumentID, &a.Summary, &a.WordCount, &a.PageCount, &a.ReadingTime, &a.Readability, &a.Language,
		&a.SentimentPositive, &a.SentimentNeutral, &a.SentimentNegative, &a.KeyTopics, &a.Entities,
		&a.AnalysisModel, &a.EmbeddingModel, &a.PromptTokens, &a.CompletionTokens, &vectorID, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAnalysisNotFound
		}
		return nil, err
	}
	if vectorID != nil {
		a.VectorID = *vectorID
	}
	return &a, nil
}

// ListByDocument returns the full analysis history, newest first.
func (r *AnalysisRepository) ListByDocument(ctx context.Context, documentID string) ([]*domain.DocumentAnalysis, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, document_id, summary, word_count, page_count, reading_time, readability, language,
		        sentiment_positive, sentiment_neutral, sentiment_negative, key_topics, entities,
		        analysis_model, embedding_model, prompt_tokens, completion_tokens, vector_id, created_at
		 FROM document_analyses WHERE document_id = $1 ORDER BY created_at DESC`,
		documentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.DocumentAnalysis
	for rows.Next() {
		var a domain.DocumentAnalysis
		var vectorID *string
		if err := rows.Scan(&a.ID, &a.DocumentID, &a.Summary, &a.WordCount, &a.PageCount, &a.ReadingTime, &a.Readability, &a.Language,
			&a.SentimentPositive, &a.SentimentNeutral, &a.SentimentNegative, &a.KeyTopics, &a.Entities,
			&a.AnalysisModel, &a.EmbeddingModel, &a.PromptTokens, &a.CompletionTokens, &vectorID, &a.CreatedAt); err != nil {
			return nil, err
		}
		if vectorID != nil {
			a.VectorID = *vectorID
		}
		results = append(results, &a)
	}
	return results, rows.Err()
}
