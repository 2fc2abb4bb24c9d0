package service

import (
	"fmt"
	"strings"

	"github.com/doclens/doclens/internal/domain"
)

// DefaultContextMaxChars bounds the assembled context handed to the model.
const DefaultContextMaxChars = 4000

// NoContextSentinel is returned when retrieval produced nothing usable,
// steering the model toward general knowledge instead of invented grounding.
const NoContextSentinel = "No document context was retrieved. Base your answer on prior knowledge."

const contextSeparatorCost = 2 // "\n\n" between blocks

// AssembleContext concatenates retrieved sources into a bounded prompt
// context. Sources are taken in the order given; each is formatted as a
// labeled block. A block that would exceed the remaining budget is
// dropped entirely and assembly stops at that point; blocks are never
// truncated mid-text.
func AssembleContext(sources []domain.RetrievedSource, maxChars int) string {
	if len(sources) == 0 {
		return NoContextSentinel
	}
	if maxChars <= 0 {
		maxChars = DefaultContextMaxChars
	}

	parts := make([]string, 0, len(sources))
	remaining := maxChars

	for _, source := range sources {
		block := strings.TrimSpace(fmt.Sprintf("Chunk #%d:\n%s", source.ChunkIndex, source.Text))

		if len([]rune(block)) > remaining {
			break
		}

		parts = append(parts, block)
		remaining -= len([]rune(block)) + contextSeparatorCost

		if remaining <= 0 {
			break
		}
	}

	if len(parts) == 0 {
		return NoContextSentinel
	}

	return strings.Join(parts, "\n\n")
}
