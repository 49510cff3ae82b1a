// Package main provides the CLI entrypoint for the user directory service.
// It wires subcommands (serve, migrate), loads configuration, and initializes logging.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"userdir/internal/config"
	"userdir/pkg/logger"
	"userdir/pkg/storage"
	"userdir/pkg/storage/postgres"
	"userdir/pkg/storage/sqlite"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// getPostgres creates a PostgreSQL client using configuration values.
func getPostgres(ctx context.Context, cfg *config.Config) (*postgres.PgSQL, error) {
	return postgres.New(ctx, postgres.Options{
		Username:           cfg.Database.Username,
		Password:           cfg.Database.Password,
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		Database:           cfg.Database.DatabaseName,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime:    cfg.Database.ConnMaxIdleTime,
		MaxOpenConnections: cfg.Database.MaxOpenConnections,
		MaxIdleConnections: cfg.Database.MaxIdleConnections,
		SslMode:            cfg.Database.SslMode,
	})
}

// getStorage opens the configured backend and returns it along with a cleanup
// function closing it. The sqlite backend is migrated on open.
func getStorage(ctx context.Context, cfg *config.Config) (storage.Storage, func()) {
	var (
		strg storage.Storage
		err  error
	)
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		strg, err = getPostgres(ctx, cfg)
	default:
		strg, err = sqlite.Open(ctx, sqlite.Options{
			Path:              cfg.SQLite.Path,
			BusyTimeoutMillis: int(cfg.SQLite.BusyTimeout / time.Millisecond),
		})
	}
	if err != nil {
		logger.Fatal(ctx, "could not open storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}

	return strg, func() {
		logger.Info(ctx, "closing storage...", zap.String("driver", cfg.Storage.Driver))
		if err := strg.Close(); err != nil {
			logger.Warn(ctx, "could not close storage", zap.Error(err))
		}
	}
}

// main sets up the root Cobra command, loads configuration and logging, and
// registers subcommands before executing the CLI.
func main() {
	rootCmd := &cobra.Command{
		Use:   "userdir",
		Short: "User directory service",
	}

	// there is no way to access flags before command execution in cobra.
	// configPath here is parsed using the standard flags package.
	// following line is just added to prevent errors when Cobra is parsing the flags.
	rootCmd.PersistentFlags().StringP("config", "c", "config.yml", "Config File Path")

	configPath := flag.String("c", "config.yml", "The config file path")
	flag.Parse()

	log.Println("loading config ...")
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("could not load config file: ", err)
	}

	if err = logger.Setup(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatal("could not set up logger: ", err)
	}

	ctx := context.Background()

	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "captured panic, exiting...", zap.Any("panic", p))
			_ = logger.Get(ctx).Sync()

			panic(p)
		}
	}()

	rootCmd.AddCommand(
		migrateCommand(cfg),
		serveCommand(cfg),
	)

	err = rootCmd.Execute()
	_ = logger.Get(ctx).Sync()
	if err != nil {
		os.Exit(1) //nolint: gocritic
	}
}
