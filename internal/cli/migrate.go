package cli

import (
	"github.com/spf13/cobra"

	"github.com/doclens/doclens/internal/config"
	"github.com/doclens/doclens/internal/database"
)

// MigrateCmd creates the migrate command
func MigrateCmd() *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return database.Migrate(cfg.DatabaseURL, source)
		},
	}

	cmd.Flags().StringVar(&source, "source", "file://migrations", "Migration source URL")

	return cmd
}
