package service

import (
	"context"
	"log"
	"strings"

	"github.com/doclens/doclens/internal/domain"
)

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorIndexItem is one entry to upsert into the vector index
type VectorIndexItem struct {
	ID         string
	Vector     []float32
	DocumentID string
	ChunkIndex int
	Text       string
}

// VectorIndexMatch is one similarity-search hit from the vector index
type VectorIndexMatch struct {
	Score      float32
	ChunkIndex int
	Text       string
}

// VectorIndex defines the collaborator interface for the external
// similarity-search store
type VectorIndex interface {
	Upsert(ctx context.Context, documentID string, items []VectorIndexItem) error
	Query(ctx context.Context, documentID string, queryVector []float32, topK int) ([]VectorIndexMatch, error)
	DeleteByDocument(ctx context.Context, documentID string) error
}

// RetrievalChunkRepository is the chunk read access retrieval needs for
// fallback
type RetrievalChunkRepository interface {
	ListByDocument(ctx context.Context, documentID string, limit int) ([]domain.DocumentChunk, error)
}

const (
	// DefaultRetrievalTopK is how many index matches a query requests
	DefaultRetrievalTopK = 5
	// DefaultFallbackChunks is how many stored chunks back an empty query result
	DefaultFallbackChunks = 3
)

// RetrievalEngine fetches grounding chunks for a query. Index failures
// and empty result sets degrade to the earliest persisted chunks so chat
// keeps working when the index is cold, unconfigured, or erroring.
type RetrievalEngine struct {
	embedder  EmbeddingClient
	index     VectorIndex
	chunkRepo RetrievalChunkRepository
	topK      int
	fallbackN int
}

func NewRetrievalEngine(embedder EmbeddingClient, index VectorIndex, chunkRepo RetrievalChunkRepository) *RetrievalEngine {
	return NewRetrievalEngineWithLimits(embedder, index, chunkRepo, DefaultRetrievalTopK, DefaultFallbackChunks)
}

func NewRetrievalEngineWithLimits(embedder EmbeddingClient, index VectorIndex, chunkRepo RetrievalChunkRepository, topK, fallbackN int) *RetrievalEngine {
	if topK <= 0 {
		topK = DefaultRetrievalTopK
	}
	if fallbackN <= 0 {
		fallbackN = DefaultFallbackChunks
	}
	return &RetrievalEngine{
		embedder:  embedder,
		index:     index,
		chunkRepo: chunkRepo,
		topK:      topK,
		fallbackN: fallbackN,
	}
}

// Retrieve returns grounding sources for the query, ordered by descending
// relevance when the vector index answered, or by ascending chunk index
// when sourced from fallback. Embedding failures propagate to the caller.
func (e *RetrievalEngine) Retrieve(ctx context.Context, documentID, query string) ([]domain.RetrievedSource, error) {
	vectors, err := e.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, err
	}

	var matches []VectorIndexMatch
	if e.index != nil {
		matches, err = e.index.Query(ctx, documentID, vectors[0], e.topK)
		if err != nil {
			// Index outages degrade to fallback retrieval, never abort chat.
			log.Printf("retrieval: vector index query failed for document %s: %v", documentID, err)
			matches = nil
		}
	}

	sources := normalizeMatches(matches)
	if len(sources) > 0 {
		return sources, nil
	}

	chunks, err := e.chunkRepo.ListByDocument(ctx, documentID, e.fallbackN)
	if err != nil {
		return nil, err
	}

	sources = make([]domain.RetrievedSource, 0, len(chunks))
	for _, c := range chunks {
		sources = append(sources, domain.RetrievedSource{
			ChunkIndex: c.ChunkIndex,
			Text:       c.Content,
			Score:      nil,
		})
	}
	return sources, nil
}

// normalizeMatches drops matches without usable text
func normalizeMatches(matches []VectorIndexMatch) []domain.RetrievedSource {
	sources := make([]domain.RetrievedSource, 0, len(matches))
	for _, m := range matches {
		if strings.TrimSpace(m.Text) == "" {
			continue
		}
		score := m.Score
		sources = append(sources, domain.RetrievedSource{
			ChunkIndex: m.ChunkIndex,
			Text:       m.Text,
			Score:      &score,
		})
	}
	return sources
}
