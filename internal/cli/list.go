package cli

import (
	"github.com/spf13/cobra"

	"github.com/doclens/doclens/internal/service"
)

// ListCmd creates the list command
func ListCmd() *cobra.Command {
	var (
		cursor string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents, newest first",
		Long: `List documents with their latest analysis, newest first. Pass the
cursor from a previous page to continue.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			skipMigrations, _ := cmd.Flags().GetBool("skip-migrations")
			app, err := NewApp(ctx, skipMigrations)
			if err != nil {
				return err
			}
			defer app.Close()

			out, err := app.Documents.List(ctx, service.ListDocumentsInput{
				Cursor: cursor,
				Limit:  limit,
			})
			if err != nil {
				return err
			}

			items := make([]map[string]interface{}, 0, len(out.Items))
			for _, item := range out.Items {
				entry := map[string]interface{}{
					"id":          item.Document.ID,
					"filename":    item.Document.Filename,
					"status":      item.Document.Status,
					"size_bytes":  item.Document.SizeBytes,
					"uploaded_at": item.Document.UploadedAt,
				}
				if item.LatestAnalysis != nil {
					entry["summary"] = item.LatestAnalysis.Summary
					entry["word_count"] = item.LatestAnalysis.WordCount
					entry["analyzed_at"] = item.LatestAnalysis.CreatedAt
				}
				items = append(items, entry)
			}

			return printJSON(map[string]interface{}{
				"items":    items,
				"cursor":   out.Cursor,
				"has_more": out.HasMore,
			})
		},
	}

	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from a previous page")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of documents to return")

	return cmd
}
