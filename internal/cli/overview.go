package cli

import (
	"github.com/spf13/cobra"
)

// OverviewCmd creates the overview command
func OverviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "overview <document-id>",
		Short: "Generate a structured overview of an analyzed document",
		Long: `Generate a structured overview (title suggestion, executive summary,
key themes, keywords, next steps) grounded in the document's indexed
content. The document must be in the ANALYZED state.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			skipMigrations, _ := cmd.Flags().GetBool("skip-migrations")
			app, err := NewApp(ctx, skipMigrations)
			if err != nil {
				return err
			}
			defer app.Close()

			result, err := app.Chats.GenerateOverview(ctx, args[0])
			if err != nil {
				return err
			}

			return printJSON(chatOutput(result.Message.Content, result.Sources, result.Usage))
		},
	}

	return cmd
}
