package provider

import (
	"context"
	"fmt"
	"net/http"

	"PodcastCreator/internal/config"
	"PodcastCreator/internal/service/tts"
	"PodcastCreator/internal/service/tts/elevenlabs"
	"PodcastCreator/internal/service/tts/gemini"
	"PodcastCreator/internal/service/tts/google"
	"PodcastCreator/internal/service/tts/stub"
	"PodcastCreator/internal/service/tts/yandex"

	"go.uber.org/zap"
)

// New выбирает клиента TTS по cfg.TTSService и возвращает голос провайдера по умолчанию.
// Клиенты с соединением (google) реализуют io.Closer.
func New(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (tts.Synthesizer, string, error) {
	var (
		synth tts.Synthesizer
		voice string
		err   error
	)
	switch cfg.TTSService {
	case config.TTSElevenLabs, "":
		synth, err = elevenlabs.New(http.DefaultClient, cfg.ElevenLabs, logger)
		voice = cfg.ElevenLabs.DefaultVoice
	case config.TTSGoogle:
		synth, err = google.New(ctx, cfg.GoogleTTS, logger)
		voice = cfg.GoogleTTS.Voice
	case config.TTSGemini:
		synth = gemini.New(nil, cfg.GeminiTTS, logger)
		voice = cfg.GeminiTTS.VoiceName
	case config.TTSYandex:
		synth = yandex.New(nil, cfg.YandexTTS)
		voice = cfg.YandexTTS.Voice
	case config.TTSStub:
		synth = stub.New(logger)
		voice = cfg.ElevenLabs.DefaultVoice
	default:
		return nil, "", fmt.Errorf("%w: %q", config.ErrUnknownTTSService, cfg.TTSService)
	}
	if err != nil {
		return nil, "", err
	}
	logger.Infow("TTS selected", "service", cfg.TTSService, "default_voice", voice)
	return synth, voice, nil
}

// UsesPersonaVoices сообщает, понимает ли провайдер идентификаторы голосов из встроенной таблицы персон.
// Встроенная таблица содержит voice id ElevenLabs; остальным провайдерам нужен свой файл голосов.
func UsesPersonaVoices(service string, voicesFile bool) bool {
	switch service {
	case config.TTSElevenLabs, config.TTSStub, "":
		return true
	default:
		return voicesFile
	}
}
