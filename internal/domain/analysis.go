package domain

import (
	"fmt"
	"time"
)

// DocumentAnalysis is a point-in-time analysis artifact for a document.
// Analyses are immutable once created; consumers read the most recent one.
type DocumentAnalysis struct {
	ID                string
	DocumentID        string
	Summary           string
	WordCount         int
	PageCount         int
	ReadingTime       string
	Readability       int
	Language          string
	SentimentPositive int
	SentimentNeutral  int
	SentimentNegative int
	KeyTopics         []string
	Entities          []string
	AnalysisModel     string
	EmbeddingModel    string
	PromptTokens      *int
	CompletionTokens  *int
	VectorID          string
	CreatedAt         time.Time
}

// ValidateAnalysis validates a DocumentAnalysis instance
func ValidateAnalysis(a *DocumentAnalysis) error {
	if a == nil {
		return fmt.Errorf("analysis cannot be nil")
	}

	if a.ID == "" {
		return fmt.Errorf("analysis ID is required")
	}

	if a.DocumentID == "" {
		return fmt.Errorf("analysis DocumentID is required")
	}

	if a.Summary == "" {
		return fmt.Errorf("analysis Summary is required")
	}

	return nil
}
