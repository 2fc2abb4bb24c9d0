//go:build e2e

package e2e

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/doclens/doclens/internal/domain"
	"github.com/doclens/doclens/internal/repository"
	"github.com/doclens/doclens/internal/service"
	"github.com/doclens/doclens/internal/testutil"
	"github.com/doclens/doclens/internal/vectorstore"
)

const embeddingDimensions = 1536

// PipelineEnv holds the wired services for end-to-end pipeline tests,
// backed by a real database and deterministic fake AI clients.
type PipelineEnv struct {
	T         *testing.T
	Ctx       context.Context
	PostgresC *testutil.PostgresContainer
	Pool      *pgxpool.Pool

	Documents *service.DocumentService
	Analyses  *service.AnalysisService
	Chats     *service.ChatService
	Chunks    *repository.ChunkRepository

	Completer *fakeCompleter
}

// SetupPipelineEnv starts a database container and wires the service graph
func SetupPipelineEnv(t *testing.T) *PipelineEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	documentRepo := repository.NewDocumentRepository(pool)
	chunkRepo := repository.NewChunkRepository(pool)
	analysisRepo := repository.NewAnalysisRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	embedder := &fakeEmbedder{}
	completer := &fakeCompleter{}
	index := &storeAdapter{store: vectorstore.NewStore(pool)}

	documents := service.NewDocumentService(documentRepo, analysisRepo, index, nil)
	analyses := service.NewAnalysisService(
		documentRepo, chunkRepo, analysisRepo, txRunner,
		embedder, index, completer, nil,
		service.AnalysisServiceConfig{
			ChunkSize:      800,
			ChunkOverlap:   80,
			AnalysisModel:  "gpt-4.1-mini",
			EmbeddingModel: "text-embedding-3-small",
		},
	)
	retriever := service.NewRetrievalEngine(embedder, index, chunkRepo)
	chats := service.NewChatService(documentRepo, analysisRepo, retriever, completer)

	return &PipelineEnv{
		T:         t,
		Ctx:       ctx,
		PostgresC: pgC,
		Pool:      pool,
		Documents: documents,
		Analyses:  analyses,
		Chats:     chats,
		Chunks:    chunkRepo,
		Completer: completer,
	}
}

// Cleanup releases the pool and container
func (env *PipelineEnv) Cleanup() {
	env.Pool.Close()
	_ = env.PostgresC.Terminate(env.Ctx)
}

// fakeEmbedder produces deterministic unit-ish vectors from a text hash,
// so equal texts land on identical vectors and similar queries rank their
// own chunk first.
type fakeEmbedder struct{}

func (f *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errors.New("texts cannot be empty")
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, embeddingDimensions)
		sum := sha256.Sum256([]byte(text))
		for j, b := range sum {
			v[(int(b)+j*7)%embeddingDimensions] += 1.0
		}
		vectors[i] = v
	}
	return vectors, nil
}

// fakeCompleter returns canned responses and can be switched into a
// failure mode to exercise the FAILED lifecycle path.
type fakeCompleter struct {
	Fail     bool
	Response string
	Calls    int
}

func (f *fakeCompleter) Complete(ctx context.Context, messages []domain.ChatMessage, systemBlocks []string) (string, domain.TokenUsage, error) {
	f.Calls++
	if f.Fail {
		return "", domain.TokenUsage{}, errors.New("completion service unavailable")
	}

	response := f.Response
	if response == "" {
		response = fmt.Sprintf("Generated response #%d.", f.Calls)
	}

	prompt := 0
	for _, block := range systemBlocks {
		prompt += len(strings.Fields(block))
	}
	completion := len(strings.Fields(response))
	return response, domain.TokenUsage{PromptTokens: &prompt, CompletionTokens: &completion}, nil
}

// storeAdapter bridges the pgvector store to the service vector index
type storeAdapter struct {
	store *vectorstore.Store
}

func (a *storeAdapter) Upsert(ctx context.Context, documentID string, items []service.VectorIndexItem) error {
	storeItems := make([]vectorstore.VectorItem, 0, len(items))
	for _, item := range items {
		storeItems = append(storeItems, vectorstore.VectorItem{
			ID:     item.ID,
			Vector: item.Vector,
			Metadata: vectorstore.VectorMetadata{
				DocumentID: item.DocumentID,
				ChunkIndex: item.ChunkIndex,
				Text:       item.Text,
			},
		})
	}
	return a.store.Upsert(ctx, documentID, storeItems)
}

func (a *storeAdapter) Query(ctx context.Context, documentID string, queryVector []float32, topK int) ([]service.VectorIndexMatch, error) {
	matches, err := a.store.Query(ctx, documentID, queryVector, topK)
	if err != nil {
		return nil, err
	}

	out := make([]service.VectorIndexMatch, 0, len(matches))
	for _, m := range matches {
		out = append(out, service.VectorIndexMatch{
			Score:      m.Score,
			ChunkIndex: m.Metadata.ChunkIndex,
			Text:       m.Metadata.Text,
		})
	}
	return out, nil
}

func (a *storeAdapter) DeleteByDocument(ctx context.Context, documentID string) error {
	return a.store.DeleteByDocument(ctx, documentID)
}
