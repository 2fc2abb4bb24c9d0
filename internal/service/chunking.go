package service

import (
	"strings"

	"github.com/doclens/doclens/internal/domain"
)

// Default chunking configuration. Character-offset slicing is a
// deliberate choice for determinism; chunks are the unit of embedding
// and retrieval, not linguistic units.
const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 80
)

// ChunkText splits text into overlapping windows of chunkSize runes,
// advancing by chunkSize-overlap. The final window is clipped to the end
// of the input. Each piece is trimmed of surrounding whitespace; pieces
// that trim to nothing are dropped.
func ChunkText(text string, chunkSize, overlap int) ([]string, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	// The advance step must stay positive or the loop would never terminate.
	if overlap >= chunkSize {
		return nil, domain.ErrInvalidChunkConfig
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return []string{}, nil
	}

	step := chunkSize - overlap
	chunks := make([]string, 0, (len(runes)+step-1)/step)

	for start := 0; start < len(runes); start += step {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}

		piece := strings.TrimSpace(string(runes[start:end]))
		if piece != "" {
			chunks = append(chunks, piece)
		}

		if end == len(runes) {
			break
		}
	}

	return chunks, nil
}
