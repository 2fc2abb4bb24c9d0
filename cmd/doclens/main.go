package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doclens/doclens/internal/cli"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "doclens",
		Short: "Doclens - document analysis and retrieval-grounded chat",
		Long: `Doclens ingests plain-text documents, chunks and embeds them into a
pgvector index, generates an analysis artifact, and answers questions
grounded in the indexed content.

Environment variables (all prefixed DOCLENS_):
  DOCLENS_DATABASE_URL     PostgreSQL connection string (required)
  DOCLENS_OPENAI_API_KEY   OpenAI API key for embeddings and completions
  DOCLENS_S3_ENDPOINT      Optional S3-compatible storage for document text`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("skip-migrations", false, "Skip automatic database migrations")

	rootCmd.AddCommand(cli.UploadCmd())
	rootCmd.AddCommand(cli.AnalyzeCmd())
	rootCmd.AddCommand(cli.ChatCmd())
	rootCmd.AddCommand(cli.OverviewCmd())
	rootCmd.AddCommand(cli.ListCmd())
	rootCmd.AddCommand(cli.DeleteCmd())
	rootCmd.AddCommand(cli.MigrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
