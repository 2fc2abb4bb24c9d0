package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/doclens/doclens/internal/service"
)

// UploadCmd creates the upload command
func UploadCmd() *cobra.Command {
	var (
		file     string
		mimeType string
	)

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Register a document for analysis",
		Long: `Register a document in the UPLOADED state. The document text is read
from --file or from stdin.

Examples:
  # Upload a text file
  doclens upload --file report.txt

  # Upload from stdin with an explicit name
  cat notes.md | doclens upload --file notes.md --stdin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			useStdin, _ := cmd.Flags().GetBool("stdin")

			var content []byte
			var err error
			if useStdin {
				content, err = io.ReadAll(os.Stdin)
			} else {
				if file == "" {
					return fmt.Errorf("either --file or --stdin is required")
				}
				content, err = os.ReadFile(file)
			}
			if err != nil {
				return fmt.Errorf("failed to read document: %w", err)
			}

			filename := filepath.Base(file)
			if filename == "" || filename == "." {
				filename = "document.txt"
			}

			ctx := cmd.Context()
			skipMigrations, _ := cmd.Flags().GetBool("skip-migrations")
			app, err := NewApp(ctx, skipMigrations)
			if err != nil {
				return err
			}
			defer app.Close()

			doc, err := app.Documents.Upload(ctx, service.UploadInput{
				Filename:  filename,
				MimeType:  mimeType,
				SizeBytes: int64(len(content)),
				Content:   string(content),
			})
			if err != nil {
				return err
			}

			return printJSON(map[string]interface{}{
				"id":          doc.ID,
				"filename":    doc.Filename,
				"status":      doc.Status,
				"size_bytes":  doc.SizeBytes,
				"storage_key": doc.StorageKey,
				"uploaded_at": doc.UploadedAt,
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Document file to upload")
	cmd.Flags().StringVar(&mimeType, "mime-type", "text/plain", "MIME type of the document")
	cmd.Flags().Bool("stdin", false, "Read document text from stdin (--file then only names the document)")

	return cmd
}
