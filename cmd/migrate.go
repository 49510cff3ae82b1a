package main

import (
	"context"

	"userdir/internal/config"
	"userdir/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// migrateCommand constructs the 'migrate' subcommand that applies database
// migrations to the latest version using goose.
func migrateCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrates the configured storage to the latest version",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			if cfg.Storage.Driver != config.DriverPostgres {
				// sqlite applies the migrations when it is opened
				_, closeStrg := getStorage(ctx, cfg)
				closeStrg()
				logger.Info(ctx, "sqlite storage migrated", zap.String("path", cfg.SQLite.Path))

				return
			}

			pgsql, err := getPostgres(ctx, cfg)
			if err != nil {
				logger.Fatal(ctx, "could not create postgres storage", zap.Error(err))
			}
			defer func() { _ = pgsql.Close() }()

			if err := pgsql.Migrate(ctx); err != nil {
				logger.Fatal(ctx, "could not migrate pgsql", zap.Error(err))
			}
			logger.Info(ctx, "postgres storage migrated")
		},
	}

	return cmd
}
