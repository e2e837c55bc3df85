package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diakonovmakar/yatube-final/internal/app/migrations"
	"github.com/diakonovmakar/yatube-final/internal/config"
	"github.com/diakonovmakar/yatube-final/internal/db"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long: `Apply every embedded SQL migration that is not yet recorded in
schema_migrations. Only the postgres driver has a schema to migrate.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, lgr, err := rootOpts.load()
			if err != nil {
				return err
			}
			if cfg.Database.Driver != config.DriverPostgres {
				return fmt.Errorf("migrate needs the %s driver, got %q", config.DriverPostgres, cfg.Database.Driver)
			}

			database, err := db.NewPostgresDB(cmd.Context(), cfg, lgr)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := migrations.NewMigrator(database.Pool, lgr).Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
