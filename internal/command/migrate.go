package command

import (
	"github.com/spf13/cobra"

	"github.com/isdelr/fuego-api/internal/database"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "apply pending database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := configFrom(cmd.Context())
			db, err := database.New(cmd.Context(), cfg.DatabaseDriver, cfg.DatabaseURL, cfg.DBMaxOpenConns)
			if err != nil {
				return err
			}
			defer db.Close()
			return database.Migrate(cmd.Context(), db, cfg.DatabaseDriver)
		},
	}
}
