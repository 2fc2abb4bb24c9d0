package cli

import (
	"github.com/spf13/cobra"
)

// DeleteCmd creates the delete command
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <document-id>",
		Short: "Delete a document and its derived data",
		Long: `Remove a document together with its chunks, analyses, indexed vectors,
and stored text.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			skipMigrations, _ := cmd.Flags().GetBool("skip-migrations")
			app, err := NewApp(ctx, skipMigrations)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Documents.Delete(ctx, args[0]); err != nil {
				return err
			}

			return printJSON(map[string]interface{}{
				"id":      args[0],
				"deleted": true,
			})
		},
	}

	return cmd
}
