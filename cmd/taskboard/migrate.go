package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/phrazzld/taskboard/internal/config"
	"github.com/phrazzld/taskboard/internal/platform/logger"
	"github.com/phrazzld/taskboard/internal/platform/sqlstore"
	"github.com/spf13/cobra"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [" + strings.Join(sqlstore.MigrationCommands, "|") + "]",
		Short:     "Run database migrations for the configured SQL backend",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: sqlstore.MigrationCommands,
		RunE: func(cmd *cobra.Command, args []string) error {
			command := "up"
			if len(args) == 1 {
				command = args[0]
			}
			if !slices.Contains(sqlstore.MigrationCommands, command) {
				return fmt.Errorf("unknown migration command %q (expected %s)",
					command, strings.Join(sqlstore.MigrationCommands, ", "))
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if cfg.Store.Backend == config.BackendMemory {
				return fmt.Errorf("migrations need a SQL backend; store.backend is %q", cfg.Store.Backend)
			}

			log, err := logger.Setup(cfg.Server)
			if err != nil {
				return fmt.Errorf("failed to set up logger: %w", err)
			}

			s, err := openSQLStore(cmd.Context(), cfg, log, false)
			if err != nil {
				return err
			}
			defer func() {
				if err := s.Close(); err != nil {
					log.Error("failed to close database", "error", err)
				}
			}()

			runCtx := logger.WithLogger(cmd.Context(), log)
			if err := sqlstore.Migrate(runCtx, s.DB(), s.Dialect(), command); err != nil {
				return err
			}
			log.Info("migration command completed", "command", command)
			return nil
		},
	}
}
