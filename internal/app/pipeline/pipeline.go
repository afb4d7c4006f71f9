package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"

	"PodcastCreator/internal/ai"
	"PodcastCreator/internal/config"
	"PodcastCreator/internal/persona"
	"PodcastCreator/internal/podcast"
	"PodcastCreator/internal/service/tts/provider"
	"PodcastCreator/internal/transcript"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
)

// Pipeline собранные зависимости приложения: реестр персон и сборщик подкастов.
type Pipeline struct {
	Personas *persona.Registry
	Producer *podcast.Producer

	closers []io.Closer
}

// New собирает пайплайн по конфигурации: LLM, TTS, таблицу голосов.
func New(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (*Pipeline, error) {
	personas, err := persona.Load(cfg.Prompts.Dir, cfg.VoicesPath)
	if err != nil {
		return nil, err
	}

	llm, err := newLLM(cfg, logger)
	if err != nil {
		return nil, err
	}
	generator := transcript.NewGenerator(llm, cfg.Prompts.GuidelinesPath, logger)

	synth, defaultVoice, err := provider.New(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	p := &Pipeline{Personas: personas}
	if c, ok := synth.(io.Closer); ok {
		p.closers = append(p.closers, c)
	}

	voice := func(string, string) string { return defaultVoice }
	if provider.UsesPersonaVoices(cfg.TTSService, strings.TrimSpace(cfg.VoicesPath) != "") {
		voice = func(name, speaker string) string { return personas.Voice(name, speaker, defaultVoice) }
	} else {
		logger.Warnw("Persona voice table is for ElevenLabs, all speakers use the default voice",
			"service", cfg.TTSService, "voice", defaultVoice)
	}

	p.Producer = podcast.NewProducer(personas, generator, synth, voice, cfg.Audio, logger)
	return p, nil
}

// Close освобождает соединения провайдеров.
func (p *Pipeline) Close() error {
	var first error
	for _, c := range p.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func newLLM(cfg *config.Config, logger *zap.SugaredLogger) (ai.Client, error) {
	switch cfg.LLMService {
	case config.LLMStub:
		logger.Infow("LLM selected", "service", "stub")
		return ai.NewStubClient(), nil
	case config.LLMOpenAI, "":
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownLLMService, cfg.LLMService)
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.OpenAI.APIKey)}
	if base := strings.TrimSpace(cfg.OpenAI.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	client := openai.NewClient(opts...)
	logger.Infow("LLM selected", "service", "openai", "model", cfg.OpenAI.Model)
	return ai.NewJSONClient(&client, cfg.OpenAI.Model, cfg.OpenAI.MaxTokens, cfg.OpenAI.Temperature, logger), nil
}
