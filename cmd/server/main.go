package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"PodcastCreator/internal/app/pipeline"
	"PodcastCreator/internal/config"
	"PodcastCreator/internal/server"

	"go.uber.org/zap"
)

// HTTP API генератора подкастов. Останавливается по Ctrl+C / SIGTERM.
func main() {
	cfg := config.NewConfig()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	sugar := logger.Sugar()
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sugar.Infow("Starting podcast server",
		"DebugMode", cfg.DebugMode,
		"TTSService", cfg.TTSService,
		"LLMService", cfg.LLMService,
		"OutputDir", cfg.Audio.OutputDir,
	)

	p, err := pipeline.New(ctx, cfg, sugar)
	if err != nil {
		sugar.Errorw("failed to build pipeline", "error", err)
		return
	}
	defer func() {
		if err := p.Close(); err != nil {
			sugar.Warnw("failed to close tts client", "error", err)
		}
	}()

	srv := server.New(cfg.Server, cfg.Audio, p.Personas, p.Producer, sugar)
	if err := srv.Run(ctx); err != nil {
		sugar.Errorw("server error", "error", err)
		return
	}
	sugar.Infow("server stopped")
}
