package domain

import "time"

// DocumentChunk represents one contiguous slice of a document's text.
// Chunk indices are dense from 0 and belong to exactly one analysis pass;
// re-analysis replaces the whole set.
type DocumentChunk struct {
	ID         string
	DocumentID string
	ChunkIndex int
	Content    string
	VectorID   string // external vector index entry, "<documentID>-<chunkIndex>"
	CreatedAt  time.Time
}
