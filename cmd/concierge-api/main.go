// README: API entrypoint; loads config, builds services and serves HTTP until SIGINT/SIGTERM.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"concierge/internal/app"
	"concierge/internal/config"
	httptransport "concierge/internal/http"
	"concierge/internal/infra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx)
	stop()
	os.Exit(code)
}

// run returns the process exit code; every resource it opens is released before it returns.
func run(ctx context.Context) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}

	logger, err := infra.NewLogger(cfg.IsDevelopment(), cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	a, cleanup, err := app.Build(ctx, cfg, logger)
	defer cleanup()
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		return 1
	}

	server := httptransport.NewServer(cfg.HTTP.Addr, httptransport.ServerDeps{
		Chat:        a.Concierge,
		Catalog:     a.Catalog,
		Sessions:    a.Sessions,
		Metrics:     a.Metrics,
		Logger:      logger,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		ChatTimeout: cfg.HTTP.ChatTimeout,
	})

	logger.Info("server listening",
		zap.String("addr", cfg.HTTP.Addr),
		zap.String("env", cfg.AppEnv),
		zap.String("llm", cfg.LLM.Provider),
	)
	if err := server.Run(ctx, 10*time.Second); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return 1
	}
	logger.Info("server stopped")
	return 0
}
