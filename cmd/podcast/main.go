package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"PodcastCreator/internal/app/pipeline"
	"PodcastCreator/internal/config"
	"PodcastCreator/internal/persona"
	"PodcastCreator/internal/podcast"
	"PodcastCreator/internal/service/tts/player"

	"go.uber.org/zap"
)

// Генерация одного подкаста из консоли:
//
//	podcast -document notes.pdf -persona "Historian" -play
func main() {
	os.Exit(run())
}

func run() int {
	document := flag.String("document", "", "PDF или TXT документ; пусто — случайная история")
	personaName := flag.String("persona", persona.Default, "персона ведущего")
	output := flag.String("output", "", "имя итогового файла без расширения")
	play := flag.Bool("play", false, "воспроизвести подкаст после сборки")
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := pipeline.New(ctx, cfg, sugar)
	if err != nil {
		sugar.Errorw("failed to build pipeline", "error", err)
		return 1
	}
	defer func() {
		if err := p.Close(); err != nil {
			sugar.Warnw("failed to close tts client", "error", err)
		}
	}()

	res, err := p.Producer.Produce(ctx, podcast.Request{
		DocumentPath: *document,
		Persona:      *personaName,
		OutputName:   *output,
	}, func(e podcast.Event) {
		if e.Stage == podcast.StageSpeech {
			sugar.Infow("Synthesizing", "line", e.Line, "total", e.Total, "speaker", e.Speaker)
		}
	})
	if err != nil {
		sugar.Errorw("podcast generation failed", "error", err)
		return 1
	}

	if cfg.DebugMode {
		for _, ts := range res.Timestamps {
			sugar.Debugw("Timestamp", "start", ts.Start.String(), "end", ts.End.String(), "speaker", ts.Speaker)
		}
	}

	fmt.Println(res.Readable)
	fmt.Println()
	fmt.Printf("Audio: %s (%s)\nMetadata: %s\n", res.AudioPath, res.Duration.Round(time.Millisecond), res.MetadataPath)

	if *play {
		if err := player.New().PlayFile(res.AudioPath); err != nil {
			sugar.Errorw("playback failed", "error", err)
			return 1
		}
	}
	return 0
}
