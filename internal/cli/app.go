// Package cli implements the doclens commands and their wiring.
package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/doclens/doclens/internal/config"
	"github.com/doclens/doclens/internal/database"
	"github.com/doclens/doclens/internal/openai"
	"github.com/doclens/doclens/internal/repository"
	"github.com/doclens/doclens/internal/service"
	"github.com/doclens/doclens/internal/storage"
	"github.com/doclens/doclens/internal/telemetry"
	"github.com/doclens/doclens/internal/vectorstore"
)

// App bundles the wired services a command needs. Close must be called
// once the command finishes.
type App struct {
	Config    *config.Config
	Pool      *pgxpool.Pool
	Documents *service.DocumentService
	Analyses  *service.AnalysisService
	Chats     *service.ChatService

	shutdownTelemetry func()
}

// NewApp loads configuration, connects to the database, and wires the
// full service graph. Migrations run unless skipMigrations is set.
func NewApp(ctx context.Context, skipMigrations bool) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	shutdownTelemetry, err := telemetry.Init(telemetry.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Environment,
		Debug:       cfg.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	if !skipMigrations {
		if err := database.Migrate(cfg.DatabaseURL, "file://migrations"); err != nil {
			shutdownTelemetry()
			return nil, err
		}
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		shutdownTelemetry()
		return nil, err
	}

	documentRepo := repository.NewDocumentRepository(pool)
	chunkRepo := repository.NewChunkRepository(pool)
	analysisRepo := repository.NewAnalysisRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	aiClient := openai.NewClientWithConfig(openai.ClientConfig{
		APIKey:              cfg.OpenAIAPIKey,
		EmbeddingModel:      cfg.EmbeddingModel,
		CompletionModel:     cfg.CompletionModel,
		EmbeddingDimensions: cfg.EmbeddingDimensions,
	})

	index := &vectorIndexAdapter{store: vectorstore.NewStore(pool)}

	var blobs service.BlobStore
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			pool.Close()
			shutdownTelemetry()
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			log.Printf("storage: bucket check failed, continuing with inline content: %v", err)
		} else {
			blobs = s3Client
		}
	}

	documents := service.NewDocumentService(documentRepo, analysisRepo, index, blobs)
	analyses := service.NewAnalysisService(
		documentRepo, chunkRepo, analysisRepo, txRunner,
		aiClient, index, aiClient, blobs,
		service.AnalysisServiceConfig{
			ChunkSize:      cfg.ChunkSize,
			ChunkOverlap:   cfg.ChunkOverlap,
			AnalysisModel:  cfg.CompletionModel,
			EmbeddingModel: cfg.EmbeddingModel,
		},
	)
	retriever := service.NewRetrievalEngineWithLimits(aiClient, index, chunkRepo, cfg.RetrievalTopK, cfg.FallbackChunks)
	chats := service.NewChatServiceWithContextLimit(documentRepo, analysisRepo, retriever, aiClient, cfg.ContextMaxChars)

	return &App{
		Config:            cfg,
		Pool:              pool,
		Documents:         documents,
		Analyses:          analyses,
		Chats:             chats,
		shutdownTelemetry: shutdownTelemetry,
	}, nil
}

// Close releases the database pool and flushes telemetry
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
	if a.shutdownTelemetry != nil {
		a.shutdownTelemetry()
	}
}

// vectorIndexAdapter bridges the pgvector store to the service-side
// vector index interface.
type vectorIndexAdapter struct {
	store *vectorstore.Store
}

func (a *vectorIndexAdapter) Upsert(ctx context.Context, documentID string, items []service.VectorIndexItem) error {
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

func (a *vectorIndexAdapter) Query(ctx context.Context, documentID string, queryVector []float32, topK int) ([]service.VectorIndexMatch, error) {
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

func (a *vectorIndexAdapter) DeleteByDocument(ctx context.Context, documentID string) error {
	return a.store.DeleteByDocument(ctx, documentID)
}
