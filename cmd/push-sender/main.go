package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/TechHookDev/trialwatch/internal/app/pushsender"
	"github.com/TechHookDev/trialwatch/internal/config"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger.Info("starting push sender", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := pushsender.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize push sender app", slog.Any("err", err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("push sender app stopped with error", slog.Any("err", err))
		os.Exit(1)
	}

	logger.Info("push sender app stopped gracefully")
}
