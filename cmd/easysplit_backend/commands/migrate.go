package commands

import (
	"github.com/SscSPs/easysplit_backend/pkg/database"
	"github.com/spf13/cobra"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Run the embedded database migrations against PGSQL_URL.

Subcommands:
  up      - Apply pending migrations
  down    - Roll back the last migration`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate(database.MigrateUp)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the last migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate(database.MigrateDown)
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
}

func runMigrate(direction database.MigrateDirection) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	return database.RunMigrations(cfg.DatabaseURL, direction, logger)
}
