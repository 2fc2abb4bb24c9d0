//go:build e2e

package e2e

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doclens/doclens/internal/domain"
	"github.com/doclens/doclens/internal/service"
)

func documentText() string {
	var sb strings.Builder
	for i := 0; i < 20; i++ {
		sb.WriteString(fmt.Sprintf("Section %d discusses quarterly revenue growth and regional market share. ", i))
	}
	return sb.String() // ~1500 chars, spans multiple chunks
}

func TestPipeline_UploadAnalyzeChat(t *testing.T) {
	env := SetupPipelineEnv(t)
	defer env.Cleanup()

	doc, err := env.Documents.Upload(env.Ctx, service.UploadInput{
		Filename:  "quarterly-report.txt",
		MimeType:  "text/plain",
		SizeBytes: int64(len(documentText())),
		Content:   documentText(),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentStatusUploaded, doc.Status)

	t.Run("chat before analysis is rejected", func(t *testing.T) {
		_, err := env.Chats.Chat(env.Ctx, doc.ID, []domain.ChatMessage{
			{Role: domain.ChatRoleUser, Content: "What does it say?"},
		})
		assert.ErrorIs(t, err, domain.ErrDocumentNotAnalyzed)
	})

	t.Run("analyze", func(t *testing.T) {
		env.Completer.Response = "The report covers quarterly revenue growth."

		analysis, err := env.Analyses.Analyze(env.Ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, "The report covers quarterly revenue growth.", analysis.Summary)
		assert.True(t, analysis.WordCount > 0)
		require.NotNil(t, analysis.PromptTokens)

		got, err := env.Documents.Get(env.Ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.DocumentStatusAnalyzed, got.Status)

		chunks, err := env.Chunks.ListByDocument(env.Ctx, doc.ID, 0)
		require.NoError(t, err)
		require.True(t, len(chunks) > 1)
		assert.Equal(t, fmt.Sprintf("%s-0", doc.ID), chunks[0].VectorID)
	})

	t.Run("chat grounded in indexed chunks", func(t *testing.T) {
		env.Completer.Response = "Revenue grew across all regions."

		result, err := env.Chats.Chat(env.Ctx, doc.ID, []domain.ChatMessage{
			{Role: domain.ChatRoleUser, Content: "Section 3 discusses quarterly revenue growth and regional market share."},
		})
		require.NoError(t, err)
		assert.Equal(t, "Revenue grew across all regions.", result.Message.Content)
		assert.Equal(t, domain.ChatRoleAssistant, result.Message.Role)

		require.NotEmpty(t, result.Sources)
		// Index-backed sources carry similarity scores.
		require.NotNil(t, result.Sources[0].Score)
		assert.Greater(t, *result.Sources[0].Score, float32(0))
		require.NotNil(t, result.Usage.PromptTokens)
	})

	t.Run("overview", func(t *testing.T) {
		env.Completer.Response = "# Quarterly Report Overview"

		result, err := env.Chats.GenerateOverview(env.Ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, "# Quarterly Report Overview", result.Message.Content)
	})

	t.Run("list shows document with latest analysis", func(t *testing.T) {
		out, err := env.Documents.List(env.Ctx, service.ListDocumentsInput{Limit: 10})
		require.NoError(t, err)
		require.Len(t, out.Items, 1)
		assert.Equal(t, doc.ID, out.Items[0].Document.ID)
		require.NotNil(t, out.Items[0].LatestAnalysis)
	})
}

func TestPipeline_FailedAnalysisCanBeRetried(t *testing.T) {
	env := SetupPipelineEnv(t)
	defer env.Cleanup()

	doc, err := env.Documents.Upload(env.Ctx, service.UploadInput{
		Filename:  "flaky.txt",
		MimeType:  "text/plain",
		SizeBytes: 20,
		Content:   "short document text",
	})
	require.NoError(t, err)

	// First run fails at the completion step and marks the document FAILED.
	env.Completer.Fail = true
	_, err = env.Analyses.Analyze(env.Ctx, doc.ID)
	require.Error(t, err)

	got, err := env.Documents.Get(env.Ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentStatusFailed, got.Status)

	// Retry succeeds and the document recovers.
	env.Completer.Fail = false
	env.Completer.Response = "A short document."
	analysis, err := env.Analyses.Analyze(env.Ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "A short document.", analysis.Summary)

	got, err = env.Documents.Get(env.Ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentStatusAnalyzed, got.Status)
}

func TestPipeline_ReanalysisReplacesChunks(t *testing.T) {
	env := SetupPipelineEnv(t)
	defer env.Cleanup()

	doc, err := env.Documents.Upload(env.Ctx, service.UploadInput{
		Filename:  "rewrite.txt",
		MimeType:  "text/plain",
		SizeBytes: int64(len(documentText())),
		Content:   documentText(),
	})
	require.NoError(t, err)

	env.Completer.Response = "summary"
	_, err = env.Analyses.Analyze(env.Ctx, doc.ID)
	require.NoError(t, err)

	first, err := env.Chunks.ListByDocument(env.Ctx, doc.ID, 0)
	require.NoError(t, err)

	_, err = env.Analyses.Analyze(env.Ctx, doc.ID)
	require.NoError(t, err)

	second, err := env.Chunks.ListByDocument(env.Ctx, doc.ID, 0)
	require.NoError(t, err)

	// Same content chunks the same way, but every row is a fresh insert.
	require.Len(t, second, len(first))
	assert.NotEqual(t, first[0].ID, second[0].ID)
	assert.Equal(t, first[0].VectorID, second[0].VectorID)
}
