package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/doclens/doclens/internal/domain"
	"github.com/doclens/doclens/internal/telemetry"
)

// NoResponseSentinel is returned when the completion service produced no text
const NoResponseSentinel = "I could not generate a response at this time."

const overviewPrompt = `Provide a rich yet concise overview for readers who have not seen the document.

Include the following sections:
1. Title suggestion
2. Executive summary (3-4 sentences)
3. Key themes (unordered list)
4. Keywords (comma separated)
5. Recommended next steps or questions to consider

Base everything strictly on the provided document context.`

// ChatResult is the outcome of one chat turn
type ChatResult struct {
	Message domain.ChatMessage
	Sources []domain.RetrievedSource
	Usage   domain.TokenUsage
}

// Retriever fetches grounding sources for a query
type Retriever interface {
	Retrieve(ctx context.Context, documentID, query string) ([]domain.RetrievedSource, error)
}

// ChatService answers questions about an analyzed document, grounding the
// model in retrieved chunk text and the latest analysis summary. Chat is
// stateless: the full conversation history arrives with every call.
type ChatService struct {
	documentRepo    DocumentRepositoryInterface
	analysisRepo    AnalysisRepositoryInterface
	retriever       Retriever
	completer       CompletionClient
	contextMaxChars int
}

func NewChatService(
	documentRepo DocumentRepositoryInterface,
	analysisRepo AnalysisRepositoryInterface,
	retriever Retriever,
	completer CompletionClient,
) *ChatService {
	return NewChatServiceWithContextLimit(documentRepo, analysisRepo, retriever, completer, DefaultContextMaxChars)
}

func NewChatServiceWithContextLimit(
	documentRepo DocumentRepositoryInterface,
	analysisRepo AnalysisRepositoryInterface,
	retriever Retriever,
	completer CompletionClient,
	contextMaxChars int,
) *ChatService {
	if contextMaxChars <= 0 {
		contextMaxChars = DefaultContextMaxChars
	}
	return &ChatService{
		documentRepo:    documentRepo,
		analysisRepo:    analysisRepo,
		retriever:       retriever,
		completer:       completer,
		contextMaxChars: contextMaxChars,
	}
}

// Chat runs one retrieval-grounded conversation turn. The document must
// be ANALYZED; the latest user message drives retrieval.
func (s *ChatService) Chat(ctx context.Context, documentID string, messages []domain.ChatMessage) (*ChatResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "ChatService.Chat", telemetry.SpanAttributes{
		DocumentID: documentID,
		Operation:  "chat",
	})
	defer span.End()

	lastUser, ok := lastUserMessage(messages)
	if !ok {
		return nil, domain.ErrNoUserMessage
	}

	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Status != domain.DocumentStatusAnalyzed {
		return nil, domain.ErrDocumentNotAnalyzed
	}

	analysis, err := s.analysisRepo.GetLatestByDocument(ctx, documentID)
	if err != nil && !errors.Is(err, domain.ErrAnalysisNotFound) {
		return nil, err
	}

	sources, err := s.retriever.Retrieve(ctx, documentID, lastUser.Content)
	if err != nil {
		// Context is unavailable, not the chat itself. The assembler's
		// sentinel tells the model to answer from general knowledge.
		log.Printf("chat: retrieval failed for document %s: %v", documentID, err)
		sources = nil
	}

	contextBlock := AssembleContext(sources, s.contextMaxChars)

	systemBlocks := []string{
		fmt.Sprintf("You are an AI assistant that answers questions about a document titled %q. "+
			"Use the provided context verbatim when possible, and be explicit when the information is not available.", doc.Filename),
	}
	if analysis != nil && analysis.Summary != "" {
		systemBlocks = append(systemBlocks, "Latest summary:\n"+analysis.Summary)
	}
	systemBlocks = append(systemBlocks, "Document context:\n"+contextBlock)

	text, usage, err := s.completer.Complete(ctx, messages, systemBlocks)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		text = NoResponseSentinel
	}

	return &ChatResult{
		Message: domain.ChatMessage{
			Role:    domain.ChatRoleAssistant,
			Content: text,
		},
		Sources: sources,
		Usage:   usage,
	}, nil
}

// GenerateOverview is Chat with a single synthesized user message asking
// for a structured overview of the document.
func (s *ChatService) GenerateOverview(ctx context.Context, documentID string) (*ChatResult, error) {
	return s.Chat(ctx, documentID, []domain.ChatMessage{
		{
			Role:    domain.ChatRoleUser,
			Content: overviewPrompt,
		},
	})
}

// lastUserMessage finds the most recent user-authored message
func lastUserMessage(messages []domain.ChatMessage) (domain.ChatMessage, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == domain.ChatRoleUser {
			return messages[i], true
		}
	}
	return domain.ChatMessage{}, false
}
