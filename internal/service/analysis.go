package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/doclens/doclens/internal/domain"
	"github.com/doclens/doclens/internal/telemetry"
)

// CompletionClient defines the interface for generating completions
type CompletionClient interface {
	Complete(ctx context.Context, messages []domain.ChatMessage, systemBlocks []string) (string, domain.TokenUsage, error)
}

// Placeholder analysis metadata used until the completion service reports
// real values. Deterministic on purpose; these fields are best-effort.
const (
	placeholderReadingTime = "5-10 minutes"
	placeholderReadability = 70
	placeholderLanguage    = "English"
	analysisFallbackText   = "Analysis pending real document ingestion."
	wordsPerPage           = 350
)

var (
	placeholderTopics   = []string{"Placeholder Topic A", "Placeholder Topic B"}
	placeholderEntities = []string{"Placeholder Entity A", "Placeholder Entity B"}
)

const analysisSystemPrompt = "You are an AI that summarizes documents and extracts structured metadata " +
	"(word count, reading time, readability, language, sentiment percentages, key topics, and named entities)."

// AnalysisService drives a document through the analysis lifecycle:
// UPLOADED -> ANALYZING -> {ANALYZED, FAILED}. A failed document can be
// re-submitted; the run restarts from ANALYZING.
type AnalysisService struct {
	documentRepo    DocumentRepositoryInterface
	chunkRepo       ChunkRepositoryInterface
	analysisRepo    AnalysisRepositoryInterface
	txRunner        TxRunner
	embedder        EmbeddingClient
	index           VectorIndex
	completer       CompletionClient
	blobs           BlobStore // optional
	uuidGen         UUIDGenerator
	chunkSize       int
	chunkOverlap    int
	analysisModel   string
	embeddingModel  string
}

type AnalysisServiceConfig struct {
	ChunkSize      int
	ChunkOverlap   int
	AnalysisModel  string
	EmbeddingModel string
}

func NewAnalysisService(
	documentRepo DocumentRepositoryInterface,
	chunkRepo ChunkRepositoryInterface,
	analysisRepo AnalysisRepositoryInterface,
	txRunner TxRunner,
	embedder EmbeddingClient,
	index VectorIndex,
	completer CompletionClient,
	blobs BlobStore,
	cfg AnalysisServiceConfig,
) *AnalysisService {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.ChunkOverlap <= 0 {
		cfg.ChunkOverlap = DefaultChunkOverlap
	}
	return &AnalysisService{
		documentRepo:   documentRepo,
		chunkRepo:      chunkRepo,
		analysisRepo:   analysisRepo,
		txRunner:       txRunner,
		embedder:       embedder,
		index:          index,
		completer:      completer,
		blobs:          blobs,
		uuidGen:        &DefaultUUIDGenerator{},
		chunkSize:      cfg.ChunkSize,
		chunkOverlap:   cfg.ChunkOverlap,
		analysisModel:  cfg.AnalysisModel,
		embeddingModel: cfg.EmbeddingModel,
	}
}

// WithUUIDGen overrides ID generation (for testing)
func (s *AnalysisService) WithUUIDGen(gen UUIDGenerator) *AnalysisService {
	s.uuidGen = gen
	return s
}

// Analyze runs the full ingestion pipeline for a document: chunk, embed,
// index, persist chunks, generate the analysis artifact. The document is
// never left in ANALYZING: any failure after the initial transition marks
// it FAILED and re-raises the original error.
func (s *AnalysisService) Analyze(ctx context.Context, documentID string) (*domain.DocumentAnalysis, error) {
	ctx, span := telemetry.StartSpan(ctx, "AnalysisService.Analyze", telemetry.SpanAttributes{
		DocumentID: documentID,
		Operation:  "analyze",
	})
	defer span.End()

	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if err := s.documentRepo.UpdateStatus(ctx, documentID, domain.DocumentStatusAnalyzing); err != nil {
		return nil, err
	}

	analysis, err := s.runAnalysis(ctx, doc)
	if err == nil {
		err = s.documentRepo.UpdateStatus(ctx, documentID, domain.DocumentStatusAnalyzed)
	}
	if err != nil {
		span.SetError(err)
		telemetry.CaptureError(ctx, err)
		if statusErr := s.documentRepo.UpdateStatus(ctx, documentID, domain.DocumentStatusFailed); statusErr != nil {
			log.Printf("analysis: failed to mark document %s as FAILED: %v", documentID, statusErr)
		}
		return nil, err
	}

	return analysis, nil
}

func (s *AnalysisService) runAnalysis(ctx context.Context, doc *domain.Document) (*domain.DocumentAnalysis, error) {
	sourceText := s.sourceText(ctx, doc)

	pieces, err := ChunkText(sourceText, s.chunkSize, s.chunkOverlap)
	if err != nil {
		return nil, err
	}

	vectorIDs, firstVectorID, err := s.embedAndIndex(ctx, doc.ID, pieces)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	chunks := make([]domain.DocumentChunk, 0, len(pieces))
	for i, piece := range pieces {
		chunks = append(chunks, domain.DocumentChunk{
			ID:         s.uuidGen.NewString(),
			DocumentID: doc.ID,
			ChunkIndex: i,
			Content:    piece,
			VectorID:   vectorIDs[i],
			CreatedAt:  now,
		})
	}

	// Chunk replacement is a single transaction so indices always reflect
	// exactly one analysis pass.
	err = s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		return repos.Chunks().ReplaceChunks(ctx, doc.ID, chunks)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to replace document chunks: %w", err)
	}

	summary, usage, err := s.generateSummary(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAnalysisGenerationFailed, err)
	}

	wordCount := len(strings.Fields(sourceText))
	analysis := &domain.DocumentAnalysis{
		ID:                s.uuidGen.NewString(),
		DocumentID:        doc.ID,
		Summary:           summary,
		WordCount:         wordCount,
		PageCount:         wordCount/wordsPerPage + 1,
		ReadingTime:       placeholderReadingTime,
		Readability:       placeholderReadability,
		Language:          placeholderLanguage,
		SentimentPositive: 65,
		SentimentNeutral:  25,
		SentimentNegative: 10,
		KeyTopics:         placeholderTopics,
		Entities:          placeholderEntities,
		AnalysisModel:     s.analysisModel,
		EmbeddingModel:    s.embeddingModel,
		PromptTokens:      usage.PromptTokens,
		CompletionTokens:  usage.CompletionTokens,
		VectorID:          firstVectorID,
		CreatedAt:         time.Now().UTC(),
	}

	if err := domain.ValidateAnalysis(analysis); err != nil {
		return nil, err
	}

	if err := s.analysisRepo.Create(ctx, analysis); err != nil {
		return nil, fmt.Errorf("failed to persist analysis: %w", err)
	}

	return analysis, nil
}

// sourceText resolves the raw document text: inline content first, then
// the blob store, then a placeholder. Missing content is tolerated so the
// pipeline works before a real extraction step exists upstream.
func (s *AnalysisService) sourceText(ctx context.Context, doc *domain.Document) string {
	if doc.Content != "" {
		return doc.Content
	}

	if doc.StorageKey != "" && s.blobs != nil {
		data, err := s.blobs.GetObject(ctx, doc.StorageKey)
		if err != nil {
			log.Printf("analysis: failed to fetch stored text for document %s (key %s): %v", doc.ID, doc.StorageKey, err)
		} else if len(data) > 0 {
			return string(data)
		}
	}

	log.Printf("analysis: document %s has no retrievable content, using placeholder", doc.ID)
	return fmt.Sprintf("Placeholder content for %s. Replace with real file retrieval using storage key: %s", doc.Filename, doc.StorageKey)
}

// embedAndIndex embeds all pieces in one batch and upserts them into the
// vector index under deterministic ids, so re-analysis overwrites prior
// entries. Returns the per-chunk vector ids.
func (s *AnalysisService) embedAndIndex(ctx context.Context, documentID string, pieces []string) ([]string, string, error) {
	vectorIDs := make([]string, len(pieces))
	if len(pieces) == 0 {
		return vectorIDs, "", nil
	}

	vectors, err := s.embedder.EmbedTexts(ctx, pieces)
	if err != nil {
		return nil, "", err
	}

	items := make([]VectorIndexItem, 0, len(pieces))
	for i, piece := range pieces {
		id := fmt.Sprintf("%s-%d", documentID, i)
		vectorIDs[i] = id
		items = append(items, VectorIndexItem{
			ID:         id,
			Vector:     vectors[i],
			DocumentID: documentID,
			ChunkIndex: i,
			Text:       piece,
		})
	}

	if err := s.index.Upsert(ctx, documentID, items); err != nil {
		return nil, "", fmt.Errorf("failed to upsert vectors: %w", err)
	}

	return vectorIDs, vectorIDs[0], nil
}

func (s *AnalysisService) generateSummary(ctx context.Context, doc *domain.Document) (string, domain.TokenUsage, error) {
	messages := []domain.ChatMessage{
		{
			Role: domain.ChatRoleUser,
			Content: fmt.Sprintf(
				"Summarize the document titled %q. If the original text is unavailable, produce placeholder insights indicating the analysis is pending real content.",
				doc.Filename,
			),
		},
	}

	text, usage, err := s.completer.Complete(ctx, messages, []string{analysisSystemPrompt})
	if err != nil {
		return "", domain.TokenUsage{}, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		text = analysisFallbackText
	}

	return text, usage, nil
}
