package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/doclens/doclens/internal/domain"
)

// ChunkRepository handles persistence of a document's current chunk set.
type ChunkRepository struct {
	db dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool}
}

func NewChunkRepositoryWithTx(tx dbtx) *ChunkRepository {
	return &ChunkRepository{db: tx}
}

// ReplaceChunks deletes existing chunks for a document and inserts new
// ones. A document never keeps chunks from two analysis passes at once.
func (r *ChunkRepository) ReplaceChunks(ctx context.Context, documentID string, chunks []domain.DocumentChunk) error {
	_, err := r.db.Exec(ctx, `DELETE FROM document_chunks WHERE document_id = $1`, documentID)
	if err != nil {
		return err
	}

	if len(chunks) == 0 {
		return nil
	}

	for _, c := range chunks {
		createdAt := c.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		_, err := r.db.Exec(ctx,
			`INSERT INTO document_chunks (id, document_id, chunk_index, content, vector_id, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			c.ID,
			c.DocumentID,
			c.ChunkIndex,
			c.Content,
			nullableString(c.VectorID),
			createdAt,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// ListByDocument returns up to limit chunks in ascending index order.
// A limit of 0 returns all chunks.
func (r *ChunkRepository) ListByDocument(ctx context.Context, documentID string, limit int) ([]domain.DocumentChunk, error) {
	query := `SELECT id, document_id, chunk_index, content, vector_id, created_at
		 FROM document_chunks WHERE document_id = $1 ORDER BY chunk_index ASC`
	args := []any{documentID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []domain.DocumentChunk
	for rows.Next() {
		var c domain.DocumentChunk
		var vectorID *string
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.ChunkIndex, &c.Content, &vectorID, &c.CreatedAt); err != nil {
			return nil, err
		}
		if vectorID != nil {
			c.VectorID = *vectorID
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}
