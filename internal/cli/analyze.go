package cli

import (
	"github.com/spf13/cobra"
)

// AnalyzeCmd creates the analyze command
func AnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <document-id>",
		Short: "Run the analysis pipeline for a document",
		Long: `Chunk, embed, and index the document text, then generate and persist
the analysis artifact. The document moves to ANALYZED on success or
FAILED on error; a failed document can be re-submitted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			skipMigrations, _ := cmd.Flags().GetBool("skip-migrations")
			app, err := NewApp(ctx, skipMigrations)
			if err != nil {
				return err
			}
			defer app.Close()

			analysis, err := app.Analyses.Analyze(ctx, args[0])
			if err != nil {
				return err
			}

			return printJSON(map[string]interface{}{
				"id":          analysis.ID,
				"document_id": analysis.DocumentID,
				"summary":     analysis.Summary,
				"word_count":  analysis.WordCount,
				"page_count":  analysis.PageCount,
				"key_topics":  analysis.KeyTopics,
				"entities":    analysis.Entities,
				"created_at":  analysis.CreatedAt,
			})
		},
	}

	return cmd
}
