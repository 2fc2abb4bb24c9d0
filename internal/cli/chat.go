package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doclens/doclens/internal/domain"
)

// historyMessage is the JSON shape of one prior conversation message
type historyMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCmd creates the chat command
func ChatCmd() *cobra.Command {
	var historyFile string

	cmd := &cobra.Command{
		Use:   "chat <document-id> <question>",
		Short: "Ask a question about an analyzed document",
		Long: `Ask a question about a document, grounded in retrieved chunk text and
the latest analysis summary. The document must be in the ANALYZED state.

Prior conversation turns can be supplied with --history, a JSON array of
{"role": "user"|"assistant", "content": "..."} objects.

Examples:
  doclens chat 3f2a... "What are the key findings?"
  doclens chat 3f2a... "And the second one?" --history turns.json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			messages, err := loadHistory(historyFile)
			if err != nil {
				return err
			}
			messages = append(messages, domain.ChatMessage{
				Role:    domain.ChatRoleUser,
				Content: args[1],
			})

			ctx := cmd.Context()
			skipMigrations, _ := cmd.Flags().GetBool("skip-migrations")
			app, err := NewApp(ctx, skipMigrations)
			if err != nil {
				return err
			}
			defer app.Close()

			result, err := app.Chats.Chat(ctx, args[0], messages)
			if err != nil {
				return err
			}

			return printJSON(chatOutput(result.Message.Content, result.Sources, result.Usage))
		},
	}

	cmd.Flags().StringVar(&historyFile, "history", "", "JSON file with prior conversation messages")

	return cmd
}

// loadHistory reads and validates prior conversation turns from a JSON file
func loadHistory(path string) ([]domain.ChatMessage, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	var raw []historyMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse history file: %w", err)
	}

	messages := make([]domain.ChatMessage, 0, len(raw))
	for i, m := range raw {
		msg := domain.ChatMessage{
			Role:    domain.ChatRole(strings.ToLower(m.Role)),
			Content: m.Content,
		}
		if err := domain.ValidateChatMessage(&msg); err != nil {
			return nil, fmt.Errorf("invalid history message at index %d: %w", i, err)
		}
		messages = append(messages, msg)
	}

	return messages, nil
}

// chatOutput shapes a chat result for JSON printing
func chatOutput(message string, sources []domain.RetrievedSource, usage domain.TokenUsage) map[string]interface{} {
	outSources := make([]map[string]interface{}, 0, len(sources))
	for _, s := range sources {
		entry := map[string]interface{}{
			"chunk_index": s.ChunkIndex,
			"text":        s.Text,
		}
		if s.Score != nil {
			entry["score"] = *s.Score
		}
		outSources = append(outSources, entry)
	}

	out := map[string]interface{}{
		"message": message,
		"sources": outSources,
	}
	if usage.PromptTokens != nil {
		out["prompt_tokens"] = *usage.PromptTokens
	}
	if usage.CompletionTokens != nil {
		out["completion_tokens"] = *usage.CompletionTokens
	}
	return out
}
