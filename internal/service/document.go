package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/doclens/doclens/internal/domain"
	"github.com/doclens/doclens/internal/pagination"
)

// DocumentRepositoryInterface defines the repository interface for document persistence
type DocumentRepositoryInterface interface {
	Create(ctx context.Context, d *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*DocumentPageResult, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus) error
	Delete(ctx context.Context, id string) error
}

// ChunkRepositoryInterface defines the repository interface for chunk persistence
type ChunkRepositoryInterface interface {
	ReplaceChunks(ctx context.Context, documentID string, chunks []domain.DocumentChunk) error
	ListByDocument(ctx context.Context, documentID string, limit int) ([]domain.DocumentChunk, error)
}

// AnalysisRepositoryInterface defines the repository interface for analysis persistence
type AnalysisRepositoryInterface interface {
	Create(ctx context.Context, a *domain.DocumentAnalysis) error
	GetLatestByDocument(ctx context.Context, documentID string) (*domain.DocumentAnalysis, error)
}

// BlobStore stores and retrieves raw document text in object storage
type BlobStore interface {
	PutObject(ctx context.Context, key, contentType string, body []byte) error
	GetObject(ctx context.Context, key string) ([]byte, error)
	DeleteObject(ctx context.Context, key string) error
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

type DocumentPageResult struct {
	Items      []*domain.Document
	NextCursor string
	HasMore    bool
}

// DocumentListItem pairs a document with its most recent analysis, if any
type DocumentListItem struct {
	Document       *domain.Document
	LatestAnalysis *domain.DocumentAnalysis
}

// DocumentService handles document upload, listing, and removal
type DocumentService struct {
	documentRepo DocumentRepositoryInterface
	analysisRepo AnalysisRepositoryInterface
	index        VectorIndex // optional
	blobs        BlobStore   // optional
	uuidGen      UUIDGenerator
}

func NewDocumentService(documentRepo DocumentRepositoryInterface, analysisRepo AnalysisRepositoryInterface, index VectorIndex, blobs BlobStore) *DocumentService {
	return NewDocumentServiceWithUUIDGen(documentRepo, analysisRepo, index, blobs, &DefaultUUIDGenerator{})
}

func NewDocumentServiceWithUUIDGen(documentRepo DocumentRepositoryInterface, analysisRepo AnalysisRepositoryInterface, index VectorIndex, blobs BlobStore, uuidGen UUIDGenerator) *DocumentService {
	return &DocumentService{
		documentRepo: documentRepo,
		analysisRepo: analysisRepo,
		index:        index,
		blobs:        blobs,
		uuidGen:      uuidGen,
	}
}

// UploadInput represents the input for registering an uploaded document.
// Content is already-extracted plain text; format parsing happens upstream.
type UploadInput struct {
	Filename  string
	MimeType  string
	SizeBytes int64
	Content   string
}

// Upload registers a document in the UPLOADED state. When a blob store is
// configured the raw text is written there and the document carries only
// the storage key; otherwise the text is stored inline.
func (s *DocumentService) Upload(ctx context.Context, input UploadInput) (*domain.Document, error) {
	now := time.Now().UTC()
	id := s.uuidGen.NewString()

	storageKey := ""
	content := input.Content
	if s.blobs != nil && input.Content != "" {
		storageKey = fmt.Sprintf("documents/%s.txt", id)
		if err := s.blobs.PutObject(ctx, storageKey, "text/plain", []byte(input.Content)); err != nil {
			return nil, fmt.Errorf("failed to store document text: %w", err)
		}
		content = ""
	}

	doc := domain.NewDocument(id, input.Filename, input.MimeType, input.SizeBytes, storageKey, content, now)

	if err := domain.ValidateDocument(doc); err != nil {
		return nil, err
	}

	if err := s.documentRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	return doc, nil
}

type ListDocumentsInput struct {
	Cursor string
	Limit  int
}

type ListDocumentsOutput struct {
	Items   []DocumentListItem
	Cursor  string
	HasMore bool
}

// List returns documents newest first, each with its latest analysis
func (s *DocumentService) List(ctx context.Context, input ListDocumentsInput) (*ListDocumentsOutput, error) {
	cursor, err := pagination.Decode(input.Cursor)
	if err != nil {
		return nil, err
	}

	page, err := s.documentRepo.ListWithCursor(ctx, cursor, input.Limit)
	if err != nil {
		return nil, err
	}

	items := make([]DocumentListItem, 0, len(page.Items))
	for _, doc := range page.Items {
		item := DocumentListItem{Document: doc}
		analysis, err := s.analysisRepo.GetLatestByDocument(ctx, doc.ID)
		if err != nil && !errors.Is(err, domain.ErrAnalysisNotFound) {
			return nil, err
		}
		item.LatestAnalysis = analysis
		items = append(items, item)
	}

	return &ListDocumentsOutput{
		Items:   items,
		Cursor:  page.NextCursor,
		HasMore: page.HasMore,
	}, nil
}

// Get returns a single document by ID
func (s *DocumentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	return s.documentRepo.GetByID(ctx, id)
}

// Delete removes a document with its chunks and analyses, then cleans up
// indexed vectors and stored text. The row delete is authoritative;
// collaborator cleanup failures are logged and the delete still succeeds.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	doc, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.documentRepo.Delete(ctx, id); err != nil {
		return err
	}

	if s.index != nil {
		if err := s.index.DeleteByDocument(ctx, id); err != nil {
			log.Printf("documents: failed to delete vectors for document %s: %v", id, err)
		}
	}

	if s.blobs != nil && doc.StorageKey != "" {
		if err := s.blobs.DeleteObject(ctx, doc.StorageKey); err != nil {
			log.Printf("documents: failed to delete stored text %s: %v", doc.StorageKey, err)
		}
	}

	return nil
}
