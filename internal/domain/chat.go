package domain

import "fmt"

// ChatRole identifies the author of a conversation message
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one turn of a conversation. History is not persisted;
// the full message list is supplied on every chat call.
type ChatMessage struct {
	Role    ChatRole
	Content string
}

// RetrievedSource is a chunk used to ground a chat answer. Score is nil
// when the chunk came from fallback retrieval rather than the vector index.
type RetrievedSource struct {
	ChunkIndex int
	Text       string
	Score      *float32
}

// TokenUsage carries token accounting from a completion call. Fields are
// nil when the underlying service does not report them.
type TokenUsage struct {
	PromptTokens     *int
	CompletionTokens *int
}

// ValidateChatMessage validates a ChatMessage instance
func ValidateChatMessage(m *ChatMessage) error {
	if m == nil {
		return fmt.Errorf("chat message cannot be nil")
	}

	if m.Role != ChatRoleUser && m.Role != ChatRoleAssistant {
		return fmt.Errorf("chat message Role is invalid: %s", m.Role)
	}

	if m.Content == "" {
		return fmt.Errorf("chat message Content is required")
	}

	return nil
}
