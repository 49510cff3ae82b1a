package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"userdir/internal/api"
	"userdir/internal/config"
	"userdir/internal/directory"
	"userdir/pkg/logger"
	"userdir/pkg/storage"
	"userdir/pkg/tracing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func setupServer(ctx context.Context, cfg *config.Config, strg storage.Storage) func(ctx context.Context) {
	tp, err := tracing.NewProvider(ctx, tracing.Options{
		ServiceName: cfg.Tracing.ServiceName,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		logger.Fatal(ctx, "could not create tracer provider", zap.Error(err))
	}

	opts := api.NewOptions(cfg)
	opts.TracerProvider = tp
	server, err := api.NewServer(api.Deps{
		Directory: directory.New(strg),
		Storage:   strg,
	}, opts)
	if err != nil {
		logger.Fatal(ctx, "could not create webserver", zap.Error(err))
	}

	go func() {
		logger.Info(ctx, "starting webserver...", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn(ctx, "could not flush traces", zap.Error(err))
		}
	}
}

func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts the API server",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			strg, closeStrg := getStorage(ctx, cfg)
			defer closeStrg()

			stopWebserver := setupServer(ctx, cfg, strg)

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			stopWebserver(shutdownCtx)
		},
	}

	return cmd
}
