// Package vectorstore persists and queries chunk embeddings in a
// pgvector-backed table. It is the only writer of document_vectors.
package vectorstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// VectorMetadata describes the chunk an indexed vector belongs to
type VectorMetadata struct {
	DocumentID string
	ChunkIndex int
	Text       string
}

// VectorItem is one entry to upsert. ID is deterministic
// ("<documentID>-<chunkIndex>") so re-analysis overwrites prior entries.
type VectorItem struct {
	ID       string
	Vector   []float32
	Metadata VectorMetadata
}

// VectorMatch is one similarity-search hit
type VectorMatch struct {
	Score    float32
	Metadata VectorMetadata
}

// Store implements the vector index over Postgres with pgvector
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Upsert writes vectors for a document. Idempotent by item ID.
func (s *Store) Upsert(ctx context.Context, documentID string, items []VectorItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, item := range items {
		_, err := tx.Exec(ctx,
			`INSERT INTO document_vectors (id, document_id, chunk_index, content, embedding)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (id) DO UPDATE SET
				document_id = EXCLUDED.document_id,
				chunk_index = EXCLUDED.chunk_index,
				content = EXCLUDED.content,
				embedding = EXCLUDED.embedding`,
			item.ID,
			item.Metadata.DocumentID,
			item.Metadata.ChunkIndex,
			item.Metadata.Text,
			pgvector.NewVector(item.Vector),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert vector %s: %w", item.ID, err)
		}
	}

	return tx.Commit(ctx)
}

// Query returns the topK nearest vectors for the document, best first.
// Results are always restricted to the given document; entries from
// other documents never leak into a match set.
func (s *Store) Query(ctx context.Context, documentID string, queryVector []float32, topK int) ([]VectorMatch, error) {
	if topK <= 0 {
		topK = 5
	}

	rows, err := s.pool.Query(ctx,
		`SELECT document_id, chunk_index, content,
		        1.0 / (1.0 + (embedding <=> $1)) AS score
		 FROM document_vectors
		 WHERE document_id = $2
		 ORDER BY embedding <=> $1
		 LIMIT $3`,
		pgvector.NewVector(queryVector), documentID, topK,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query vectors: %w", err)
	}
	defer rows.Close()

	var matches []VectorMatch
	for rows.Next() {
		var m VectorMatch
		if err := rows.Scan(&m.Metadata.DocumentID, &m.Metadata.ChunkIndex, &m.Metadata.Text, &m.Score); err != nil {
			return nil, fmt.Errorf("failed to scan vector match: %w", err)
		}
		matches = append(matches, m)
	}

	return matches, rows.Err()
}

// DeleteByDocument removes all vectors for a document
func (s *Store) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM document_vectors WHERE document_id = $1`, documentID)
	if err != nil {
		return fmt.Errorf("failed to delete vectors: %w", err)
	}
	return nil
}
