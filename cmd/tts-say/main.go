package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"PodcastCreator/internal/config"
	"PodcastCreator/internal/service/tts/player"
	"PodcastCreator/internal/service/tts/provider"

	"go.uber.org/zap"
)

// Небольшая утилита: синтезирует одну реплику выбранным провайдером (-tts-service),
// сохраняет в файл и по желанию проигрывает. Удобно для подбора голосов персон.
func main() {
	os.Exit(run())
}

func run() int {
	text := flag.String("text", "Hello! This is a voice check for the podcast.", "текст реплики")
	voice := flag.String("voice", "", "голос провайдера; пусто — голос по умолчанию")
	out := flag.String("out", "", "путь для сохранения; пусто — tts_check.<формат>")
	play := flag.Bool("play", true, "воспроизвести результат")
	cfg := config.NewConfig()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	sugar := logger.Sugar()
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeoutCause(context.Background(), 60*time.Second, errors.New("tts request timeout"))
	defer cancel()

	synth, defaultVoice, err := provider.New(ctx, cfg, sugar)
	if err != nil {
		fmt.Println("не удалось создать клиента TTS:", err)
		return 1
	}
	if c, ok := synth.(io.Closer); ok {
		defer c.Close()
	}
	if strings.TrimSpace(*voice) == "" {
		*voice = defaultVoice
	}

	started := time.Now()
	audio, err := synth.Synthesize(ctx, *text, *voice)
	if err != nil {
		fmt.Println("ошибка синтеза:", err)
		return 1
	}
	sugar.Infow("Synthesized", "service", cfg.TTSService, "voice", *voice, "bytes", len(audio.Data), "took", time.Since(started).String())

	path := *out
	if path == "" {
		path = "tts_check." + audio.Format
	}
	if err := os.WriteFile(path, audio.Data, 0o644); err != nil {
		fmt.Println("не удалось сохранить файл:", err)
		return 1
	}
	fmt.Println("Saved:", path)

	if *play {
		if err := player.New().PlayFile(path); err != nil {
			fmt.Println("ошибка воспроизведения:", err)
			return 1
		}
	}
	return 0
}
