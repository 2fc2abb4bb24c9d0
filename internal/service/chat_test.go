package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/doclens/doclens/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newChatFixture() (*MockDocumentRepository, *MockAnalysisRepository, *MockRetriever, *MockCompletionClient, *ChatService) {
	mockDocs := new(MockDocumentRepository)
	mockAnalyses := new(MockAnalysisRepository)
	mockRetriever := new(MockRetriever)
	mockCompleter := new(MockCompletionClient)
	svc := NewChatService(mockDocs, mockAnalyses, mockRetriever, mockCompleter)
	return mockDocs, mockAnalyses, mockRetriever, mockCompleter, svc
}

func chatDoc(status domain.DocumentStatus) *domain.Document {
	now := time.Now().UTC()
	return &domain.Document{
		ID:         "doc-1",
		Filename:   "report.txt",
		MimeType:   "text/plain",
		Status:     status,
		UploadedAt: now,
		UpdatedAt:  now,
	}
}

func userTurn(content string) []domain.ChatMessage {
	return []domain.ChatMessage{{Role: domain.ChatRoleUser, Content: content}}
}

func TestChatService_Chat_Success(t *testing.T) {
	mockDocs, mockAnalyses, mockRetriever, mockCompleter, svc := newChatFixture()

	ctx := context.Background()
	score := float32(0.88)
	sources := []domain.RetrievedSource{
		{ChunkIndex: 2, Text: "relevant passage", Score: &score},
	}

	mockDocs.On("GetByID", mock.Anything, "doc-1").Return(chatDoc(domain.DocumentStatusAnalyzed), nil)
	mockAnalyses.On("GetLatestByDocument", mock.Anything, "doc-1").Return(&domain.DocumentAnalysis{
		ID:         "analysis-1",
		DocumentID: "doc-1",
		Summary:    "The document covers quarterly results.",
	}, nil)
	mockRetriever.On("Retrieve", mock.Anything, "doc-1", "What are the results?").Return(sources, nil)

	var systemBlocks []string
	ten := 10
	mockCompleter.On("Complete", mock.Anything, mock.Anything, mock.AnythingOfType("[]string")).
		Run(func(args mock.Arguments) {
			systemBlocks = args.Get(2).([]string)
		}).
		Return("Revenue grew 12%.", domain.TokenUsage{PromptTokens: &ten}, nil)

	result, err := svc.Chat(ctx, "doc-1", userTurn("What are the results?"))

	require.NoError(t, err)
	assert.Equal(t, domain.ChatRoleAssistant, result.Message.Role)
	assert.Equal(t, "Revenue grew 12%.", result.Message.Content)
	assert.Equal(t, sources, result.Sources)
	require.NotNil(t, result.Usage.PromptTokens)
	assert.Equal(t, 10, *result.Usage.PromptTokens)

	// System blocks: document framing, latest summary, assembled context.
	require.Len(t, systemBlocks, 3)
	assert.Contains(t, systemBlocks[0], "report.txt")
	assert.Contains(t, systemBlocks[1], "The document covers quarterly results.")
	assert.Contains(t, systemBlocks[2], "Chunk #2:\nrelevant passage")
}

func TestChatService_Chat_NoUserMessage(t *testing.T) {
	mockDocs, _, _, _, svc := newChatFixture()

	ctx := context.Background()
	messages := []domain.ChatMessage{{Role: domain.ChatRoleAssistant, Content: "hello"}}

	_, err := svc.Chat(ctx, "doc-1", messages)

	assert.ErrorIs(t, err, domain.ErrNoUserMessage)
	mockDocs.AssertNotCalled(t, "GetByID")
}

func TestChatService_Chat_UsesLatestUserMessage(t *testing.T) {
	mockDocs, mockAnalyses, mockRetriever, mockCompleter, svc := newChatFixture()

	ctx := context.Background()
	messages := []domain.ChatMessage{
		{Role: domain.ChatRoleUser, Content: "first question"},
		{Role: domain.ChatRoleAssistant, Content: "first answer"},
		{Role: domain.ChatRoleUser, Content: "second question"},
	}

	mockDocs.On("GetByID", mock.Anything, "doc-1").Return(chatDoc(domain.DocumentStatusAnalyzed), nil)
	mockAnalyses.On("GetLatestByDocument", mock.Anything, "doc-1").Return(nil, domain.ErrAnalysisNotFound)
	mockRetriever.On("Retrieve", mock.Anything, "doc-1", "second question").Return([]domain.RetrievedSource{}, nil)
	mockCompleter.On("Complete", mock.Anything, messages, mock.Anything).Return("answer", domain.TokenUsage{}, nil)

	_, err := svc.Chat(ctx, "doc-1", messages)

	require.NoError(t, err)
	mockRetriever.AssertCalled(t, "Retrieve", mock.Anything, "doc-1", "second question")
}

func TestChatService_Chat_DocumentNotFound(t *testing.T) {
	mockDocs, _, mockRetriever, _, svc := newChatFixture()

	ctx := context.Background()
	mockDocs.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrDocumentNotFound)

	_, err := svc.Chat(ctx, "missing", userTurn("question"))

	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	mockRetriever.AssertNotCalled(t, "Retrieve")
}

func TestChatService_Chat_DocumentNotAnalyzed(t *testing.T) {
	for _, status := range []domain.DocumentStatus{
		domain.DocumentStatusUploaded,
		domain.DocumentStatusAnalyzing,
		domain.DocumentStatusFailed,
	} {
		t.Run(string(status), func(t *testing.T) {
			mockDocs, _, mockRetriever, _, svc := newChatFixture()

			ctx := context.Background()
			mockDocs.On("GetByID", mock.Anything, "doc-1").Return(chatDoc(status), nil)

			_, err := svc.Chat(ctx, "doc-1", userTurn("question"))

			assert.ErrorIs(t, err, domain.ErrDocumentNotAnalyzed)
			mockRetriever.AssertNotCalled(t, "Retrieve")
		})
	}
}

func TestChatService_Chat_RetrievalFailureStillAnswers(t *testing.T) {
	mockDocs, mockAnalyses, mockRetriever, mockCompleter, svc := newChatFixture()

	ctx := context.Background()
	mockDocs.On("GetByID", mock.Anything, "doc-1").Return(chatDoc(domain.DocumentStatusAnalyzed), nil)
	mockAnalyses.On("GetLatestByDocument", mock.Anything, "doc-1").Return(nil, domain.ErrAnalysisNotFound)
	mockRetriever.On("Retrieve", mock.Anything, "doc-1", "question").Return(nil, domain.ErrEmbeddingUnavailable)

	var systemBlocks []string
	mockCompleter.On("Complete", mock.Anything, mock.Anything, mock.AnythingOfType("[]string")).
		Run(func(args mock.Arguments) {
			systemBlocks = args.Get(2).([]string)
		}).
		Return("General knowledge answer.", domain.TokenUsage{}, nil)

	result, err := svc.Chat(ctx, "doc-1", userTurn("question"))

	require.NoError(t, err)
	assert.Equal(t, "General knowledge answer.", result.Message.Content)
	assert.Empty(t, result.Sources)

	// Without sources the assembler hands the model its sentinel.
	require.Len(t, systemBlocks, 2)
	assert.Contains(t, systemBlocks[1], NoContextSentinel)
}

func TestChatService_Chat_EmptyCompletionUsesSentinel(t *testing.T) {
	mockDocs, mockAnalyses, mockRetriever, mockCompleter, svc := newChatFixture()

	ctx := context.Background()
	mockDocs.On("GetByID", mock.Anything, "doc-1").Return(chatDoc(domain.DocumentStatusAnalyzed), nil)
	mockAnalyses.On("GetLatestByDocument", mock.Anything, "doc-1").Return(nil, domain.ErrAnalysisNotFound)
	mockRetriever.On("Retrieve", mock.Anything, "doc-1", "question").Return([]domain.RetrievedSource{}, nil)
	mockCompleter.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("  \n ", domain.TokenUsage{}, nil)

	result, err := svc.Chat(ctx, "doc-1", userTurn("question"))

	require.NoError(t, err)
	assert.Equal(t, NoResponseSentinel, result.Message.Content)
}

func TestChatService_Chat_CompletionErrorPropagates(t *testing.T) {
	mockDocs, mockAnalyses, mockRetriever, mockCompleter, svc := newChatFixture()

	ctx := context.Background()
	completionErr := errors.New("rate limited")

	mockDocs.On("GetByID", mock.Anything, "doc-1").Return(chatDoc(domain.DocumentStatusAnalyzed), nil)
	mockAnalyses.On("GetLatestByDocument", mock.Anything, "doc-1").Return(nil, domain.ErrAnalysisNotFound)
	mockRetriever.On("Retrieve", mock.Anything, "doc-1", "question").Return([]domain.RetrievedSource{}, nil)
	mockCompleter.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("", domain.TokenUsage{}, completionErr)

	_, err := svc.Chat(ctx, "doc-1", userTurn("question"))

	assert.ErrorIs(t, err, completionErr)
}

func TestChatService_GenerateOverview(t *testing.T) {
	mockDocs, mockAnalyses, mockRetriever, mockCompleter, svc := newChatFixture()

	ctx := context.Background()
	mockDocs.On("GetByID", mock.Anything, "doc-1").Return(chatDoc(domain.DocumentStatusAnalyzed), nil)
	mockAnalyses.On("GetLatestByDocument", mock.Anything, "doc-1").Return(nil, domain.ErrAnalysisNotFound)

	var query string
	mockRetriever.On("Retrieve", mock.Anything, "doc-1", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			query = args.Get(2).(string)
		}).
		Return([]domain.RetrievedSource{}, nil)
	mockCompleter.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("# Overview", domain.TokenUsage{}, nil)

	result, err := svc.GenerateOverview(ctx, "doc-1")

	require.NoError(t, err)
	assert.Equal(t, "# Overview", result.Message.Content)
	assert.Contains(t, query, "Executive summary")
}
