package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/SscSPs/easysplit_backend/internal/platform/config"
	"github.com/SscSPs/easysplit_backend/internal/platform/logging"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "easysplit_backend",
	Short: "EasySplit backend - shared expense ledger API",
	Long: `EasySplit backend serves the group expense API and manages its schema.

Subcommands:
  serve    - Run the HTTP API
  migrate  - Apply or roll back database migrations`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
	// no subcommand means serve
	rootCmd.RunE = serveCmd.RunE
}

// bootstrap loads config and builds the process logger shared by all commands.
func bootstrap() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := logging.New(os.Stdout, cfg.IsProduction, cfg.LogLevel)
	slog.SetDefault(logger)
	return cfg, logger, nil
}
