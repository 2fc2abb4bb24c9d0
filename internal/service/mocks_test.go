package service

import (
	"context"
	"fmt"

	"github.com/stretchr/testify/mock"

	"github.com/doclens/doclens/internal/domain"
	"github.com/doclens/doclens/internal/pagination"
)

// MockDocumentRepository is a mock implementation of DocumentRepositoryInterface
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*DocumentPageResult, error) {
	args := m.Called(ctx, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*DocumentPageResult), args.Error(1)
}

func (m *MockDocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockChunkRepository is a mock implementation of ChunkRepositoryInterface
type MockChunkRepository struct {
	mock.Mock
}

func (m *MockChunkRepository) ReplaceChunks(ctx context.Context, documentID string, chunks []domain.DocumentChunk) error {
	args := m.Called(ctx, documentID, chunks)
	return args.Error(0)
}

func (m *MockChunkRepository) ListByDocument(ctx context.Context, documentID string, limit int) ([]domain.DocumentChunk, error) {
	args := m.Called(ctx, documentID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DocumentChunk), args.Error(1)
}

// MockAnalysisRepository is a mock implementation of AnalysisRepositoryInterface
type MockAnalysisRepository struct {
	mock.Mock
}

func (m *MockAnalysisRepository) Create(ctx context.Context, a *domain.DocumentAnalysis) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAnalysisRepository) GetLatestByDocument(ctx context.Context, documentID string) (*domain.DocumentAnalysis, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DocumentAnalysis), args.Error(1)
}

// MockEmbeddingClient is a mock implementation of EmbeddingClient
type MockEmbeddingClient struct {
	mock.Mock
}

func (m *MockEmbeddingClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

// MockVectorIndex is a mock implementation of VectorIndex
type MockVectorIndex struct {
	mock.Mock
}

func (m *MockVectorIndex) Upsert(ctx context.Context, documentID string, items []VectorIndexItem) error {
	args := m.Called(ctx, documentID, items)
	return args.Error(0)
}

func (m *MockVectorIndex) Query(ctx context.Context, documentID string, queryVector []float32, topK int) ([]VectorIndexMatch, error) {
	args := m.Called(ctx, documentID, queryVector, topK)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]VectorIndexMatch), args.Error(1)
}

func (m *MockVectorIndex) DeleteByDocument(ctx context.Context, documentID string) error {
	args := m.Called(ctx, documentID)
	return args.Error(0)
}

// MockCompletionClient is a mock implementation of CompletionClient
type MockCompletionClient struct {
	mock.Mock
}

func (m *MockCompletionClient) Complete(ctx context.Context, messages []domain.ChatMessage, systemBlocks []string) (string, domain.TokenUsage, error) {
	args := m.Called(ctx, messages, systemBlocks)
	return args.String(0), args.Get(1).(domain.TokenUsage), args.Error(2)
}

// MockBlobStore is a mock implementation of BlobStore
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) PutObject(ctx context.Context, key, contentType string, body []byte) error {
	args := m.Called(ctx, key, contentType, body)
	return args.Error(0)
}

func (m *MockBlobStore) GetObject(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockBlobStore) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockRetriever is a mock implementation of Retriever
type MockRetriever struct {
	mock.Mock
}

func (m *MockRetriever) Retrieve(ctx context.Context, documentID, query string) ([]domain.RetrievedSource, error) {
	args := m.Called(ctx, documentID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RetrievedSource), args.Error(1)
}

// fakeTxRunner invokes the callback directly with the supplied repositories
type fakeTxRunner struct {
	repos fakeTxRepos
}

func (r *fakeTxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	return fn(&r.repos)
}

type fakeTxRepos struct {
	documents DocumentRepositoryInterface
	chunks    ChunkRepositoryInterface
	analyses  AnalysisRepositoryInterface
}

func (r *fakeTxRepos) Documents() DocumentRepositoryInterface { return r.documents }
func (r *fakeTxRepos) Chunks() ChunkRepositoryInterface       { return r.chunks }
func (r *fakeTxRepos) Analyses() AnalysisRepositoryInterface  { return r.analyses }

// seqUUIDGen hands out predictable IDs for assertions
type seqUUIDGen struct {
	prefix string
	n      int
}

func (g *seqUUIDGen) NewString() string {
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
