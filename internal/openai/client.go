package openai

import (
	"context"
	"errors"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/doclens/doclens/internal/domain"
)

const (
	// DefaultCompletionModel is the model used for analysis and chat completions
	DefaultCompletionModel = "gpt-4.1-mini"
	// DefaultEmbeddingModel is the OpenAI model used for generating embeddings
	DefaultEmbeddingModel = string(openai.SmallEmbedding3)
	// DefaultEmbeddingDimensions is the expected dimension of text-embedding-3-small vectors
	DefaultEmbeddingDimensions = 1536
)

var (
	// ErrNoTexts is returned when an embedding request carries no input
	ErrNoTexts = errors.New("texts cannot be empty")
	// ErrWrongDimensions is returned when an embedding has unexpected dimensions
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
	// ErrNoAPIKey is returned when the OpenAI API key is not set
	ErrNoAPIKey = errors.New("OPENAI_API_KEY environment variable not set")
)

// EmbeddingAPI defines the interface for embedding generation
type EmbeddingAPI interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// CompletionAPI defines the interface for chat completion generation
type CompletionAPI interface {
	CreateCompletion(ctx context.Context, messages []domain.ChatMessage, systemBlocks []string) (string, domain.TokenUsage, error)
}

// Client wraps the OpenAI API for embeddings and completions
type Client struct {
	embeddings  EmbeddingAPI
	completions CompletionAPI
	dimensions  int
}

// OpenAIAdapter implements EmbeddingAPI and CompletionAPI against the real API
type OpenAIAdapter struct {
	client          *openai.Client
	embeddingModel  openai.EmbeddingModel
	completionModel string
}

func NewOpenAIAdapter(apiKey string, embeddingModel openai.EmbeddingModel, completionModel string) *OpenAIAdapter {
	if embeddingModel == "" {
		embeddingModel = openai.EmbeddingModel(DefaultEmbeddingModel)
	}
	if completionModel == "" {
		completionModel = DefaultCompletionModel
	}
	return &OpenAIAdapter{
		client:          openai.NewClient(apiKey),
		embeddingModel:  embeddingModel,
		completionModel: completionModel,
	}
}

// CreateEmbeddings calls the OpenAI API to embed a batch of texts.
// The response preserves input order, one vector per text.
func (a *OpenAIAdapter) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: a.embeddingModel,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

// CreateCompletion calls the OpenAI chat completion API with the given
// system blocks followed by the conversation history.
func (a *OpenAIAdapter) CreateCompletion(ctx context.Context, messages []domain.ChatMessage, systemBlocks []string) (string, domain.TokenUsage, error) {
	input := make([]openai.ChatCompletionMessage, 0, len(systemBlocks)+len(messages))
	for _, block := range systemBlocks {
		input = append(input, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: block,
		})
	}
	for _, m := range messages {
		input = append(input, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    a.completionModel,
		Messages: input,
	})
	if err != nil {
		return "", domain.TokenUsage{}, err
	}

	var text string
	if len(resp.Choices) > 0 {
		text = resp.Choices[0].Message.Content
	}

	usage := domain.TokenUsage{}
	if resp.Usage.PromptTokens > 0 {
		prompt := resp.Usage.PromptTokens
		usage.PromptTokens = &prompt
	}
	if resp.Usage.CompletionTokens > 0 {
		completion := resp.Usage.CompletionTokens
		usage.CompletionTokens = &completion
	}

	return text, usage, nil
}

type ClientConfig struct {
	APIKey              string
	EmbeddingModel      string
	CompletionModel     string
	EmbeddingDimensions int
}

// NewClient creates a new OpenAI client using defaults.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(ClientConfig{APIKey: apiKey})
}

// NewClientWithConfig creates a new OpenAI client with explicit configuration.
func NewClientWithConfig(cfg ClientConfig) *Client {
	dimensions := cfg.EmbeddingDimensions
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	adapter := NewOpenAIAdapter(cfg.APIKey, openai.EmbeddingModel(cfg.EmbeddingModel), cfg.CompletionModel)
	return &Client{
		embeddings:  adapter,
		completions: adapter,
		dimensions:  dimensions,
	}
}

// NewClientFromEnv creates a new OpenAI client using the OPENAI_API_KEY environment variable
func NewClientFromEnv() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return NewClient(apiKey), nil
}

// EmbedTexts generates one embedding per input text, order preserved.
// Failures surface as ErrEmbeddingUnavailable so callers can distinguish
// collaborator outages from bad input.
func (c *Client) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrNoTexts
	}

	vectors, err := c.embeddings.CreateEmbeddings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}

	for _, v := range vectors {
		if len(v) != c.dimensions {
			return nil, ErrWrongDimensions
		}
	}

	return vectors, nil
}

// Complete generates a chat completion for the given system blocks and history
func (c *Client) Complete(ctx context.Context, messages []domain.ChatMessage, systemBlocks []string) (string, domain.TokenUsage, error) {
	return c.completions.CreateCompletion(ctx, messages, systemBlocks)
}
