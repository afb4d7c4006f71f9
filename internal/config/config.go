package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Поддерживаемые сервисы TTS.
const (
	TTSElevenLabs = "elevenlabs"
	TTSGoogle     = "google"
	TTSGemini     = "gemini"
	TTSYandex     = "yandex"
	TTSStub       = "stub"
)

// Поддерживаемые генераторы сценария.
const (
	LLMOpenAI = "openai"
	LLMStub   = "stub"
)

var (
	ErrOpenAIKeyMissing     = errors.New("OPENAI_API_KEY is missing. Add it to your environment variables or .env file")
	ErrElevenLabsKeyMissing = errors.New("ELEVENLABS_API_KEY is missing. Add it to your environment variables or .env file")
	ErrUnknownTTSService    = errors.New("unknown tts service")
	ErrUnknownLLMService    = errors.New("unknown llm service")
)

type Config struct {
	DebugMode  bool   `env:"DEBUG_MODE"`  // Режим дебага (подробные логи, таймкоды в консоль)
	LLMService string `env:"LLM_SERVICE"` // openai|stub, по умолчанию openai
	TTSService string `env:"TTS_SERVICE"` // elevenlabs|google|gemini|yandex|stub, по умолчанию elevenlabs
	VoicesPath string `env:"VOICES_PATH"` // YAML с таблицей голосов персон; пусто — встроенная таблица

	OpenAI     OpenAIConfig
	Prompts    PromptsConfig
	ElevenLabs ElevenLabsConfig
	GoogleTTS  GoogleTTSConfig
	GeminiTTS  GeminiTTSConfig
	YandexTTS  YandexTTSConfig
	Audio      AudioConfig
	Server     ServerConfig
}

// OpenAIConfig параметры генерации сценария.
type OpenAIConfig struct {
	APIKey      string  `env:"OPENAI_API_KEY"`
	BaseURL     string  `env:"OPENAI_BASE_URL"` // Совместимый endpoint; пусто — api.openai.com
	Model       string  `env:"OPENAI_MODEL"`
	MaxTokens   int64   `env:"OPENAI_MAX_TOKENS"`
	Temperature float64 `env:"OPENAI_TEMPERATURE"`
}

// PromptsConfig пути к файлам промптов.
type PromptsConfig struct {
	Dir            string `env:"PROMPTS_DIR"`             // Корень, внутри personas/<persona>_prompt.txt
	GuidelinesPath string `env:"PROMPTS_GUIDELINES_PATH"` // Общие правила формата сценария
}

// ElevenLabsConfig конфигурация синтеза через ElevenLabs.
type ElevenLabsConfig struct {
	APIKey                   string  `env:"ELEVENLABS_API_KEY"`
	BaseURL                  string  `env:"ELEVENLABS_BASE_URL"`
	ModelID                  string  `env:"ELEVENLABS_MODEL_ID"`
	OutputFormat             string  `env:"ELEVENLABS_OUTPUT_FORMAT"` // mp3_22050_32 и т.п.
	OptimizeStreamingLatency int     `env:"ELEVENLABS_OPTIMIZE_STREAMING_LATENCY"`
	Stability                float64 `env:"ELEVENLABS_STABILITY"`
	SimilarityBoost          float64 `env:"ELEVENLABS_SIMILARITY_BOOST"`
	Style                    float64 `env:"ELEVENLABS_STYLE"`
	UseSpeakerBoost          bool    `env:"ELEVENLABS_USE_SPEAKER_BOOST"`
	DefaultVoice             string  `env:"ELEVENLABS_DEFAULT_VOICE"` // Голос, если персона/спикер не найдены в таблице
}

// GoogleTTSConfig конфигурация для синтеза речи через Google Cloud Text-to-Speech.
type GoogleTTSConfig struct {
	// Путь к файлу ключа сервисного аккаунта. Фактически читается из ENV GOOGLE_APPLICATION_CREDENTIALS.
	CredentialsPath string  `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	Language        string  `env:"GOOGLE_TTS_LANGUAGE"`
	Voice           string  `env:"GOOGLE_TTS_VOICE"` // Голос по умолчанию
	SpeakingRate    float64 `env:"GOOGLE_TTS_SPEAKING_RATE"`
	Pitch           float64 `env:"GOOGLE_TTS_PITCH"`
	VolumeGainDb    float64 `env:"GOOGLE_TTS_VOLUME_DB"`
	// Эффект профиля устройства воспроизведения, напр. large-home-entertainment-class-device
	EffectsProfileID string `env:"GOOGLE_TTS_EFFECTS_PROFILE_ID"`
}

// GeminiTTSConfig конфигурация Cloud TTS с моделями Gemini (v1beta1, авторизация через ADC).
type GeminiTTSConfig struct {
	Endpoint     string  `env:"GEMINI_TTS_ENDPOINT"`
	ModelName    string  `env:"GEMINI_TTS_MODEL"`
	Language     string  `env:"GEMINI_TTS_LANGUAGE"`
	VoiceName    string  `env:"GEMINI_TTS_VOICE"`
	Prompt       string  `env:"GEMINI_TTS_PROMPT"` // Стилевой промпт, отправляется вместе с текстом реплики
	SpeakingRate float64 `env:"GEMINI_TTS_SPEAKING_RATE"`
}

// YandexTTSConfig конфигурация для синтеза речи через Yandex SpeechKit.
type YandexTTSConfig struct {
	APIKey   string `env:"YC_TTS_API_KEY"`
	Endpoint string `env:"YC_TTS_ENDPOINT"`
	Voice    string `env:"YC_TTS_VOICE"`   // Голос по умолчанию
	Speed    string `env:"YC_TTS_SPEED"`   // 1.0 — обычная скорость
	Emotion  string `env:"YC_TTS_EMOTION"` // neutral|good|evil
}

// AudioConfig параметры сборки итогового файла.
type AudioConfig struct {
	IntroPath         string        `env:"AUDIO_INTRO_PATH"`          // Заставка перед первой репликой; пусто — без заставки
	PauseAfterIntro   time.Duration `env:"AUDIO_PAUSE_AFTER_INTRO"`   // Тишина после заставки
	PauseBetweenLines time.Duration `env:"AUDIO_PAUSE_BETWEEN_LINES"` // Тишина после каждой реплики
	SampleRate        int           `env:"AUDIO_SAMPLE_RATE"`         // Частота итогового файла
	OutputDir         string        `env:"AUDIO_OUTPUT_DIR"`
	RetentionTTL      time.Duration `env:"AUDIO_RETENTION_TTL"` // Сервер удаляет готовые файлы старше TTL; 0 — хранить всегда
}

// ServerConfig HTTP API.
type ServerConfig struct {
	BindAddr       string        `env:"SERVER_BIND_ADDR"`
	MaxUploadBytes int64         `env:"SERVER_MAX_UPLOAD_BYTES"`
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT"`
}

// Defaults возвращает конфигурацию с предустановленными значениями по умолчанию.
// Эти значения перекрываются .env, переменными окружения и флагами CLI.
func Defaults() *Config {
	return &Config{
		DebugMode:  false,
		LLMService: LLMOpenAI,
		TTSService: TTSElevenLabs,
		OpenAI: OpenAIConfig{
			Model:       "gpt-4o-mini",
			MaxTokens:   4096,
			Temperature: 0.7,
		},
		Prompts: PromptsConfig{
			Dir:            "prompts",
			GuidelinesPath: "prompts/guidelines_prompt.txt",
		},
		ElevenLabs: ElevenLabsConfig{
			BaseURL:                  "https://api.elevenlabs.io",
			ModelID:                  "eleven_flash_v2_5",
			OutputFormat:             "mp3_22050_32",
			OptimizeStreamingLatency: 0,
			Stability:                0.0,
			SimilarityBoost:          1.0,
			Style:                    0.0,
			UseSpeakerBoost:          true,
			DefaultVoice:             "aFqHDefrsNkoISstIlMU", // Brian
		},
		GoogleTTS: GoogleTTSConfig{
			CredentialsPath:  "service-account.json",
			Language:         "en-US",
			Voice:            "en-US-Standard-D",
			SpeakingRate:     1.0,
			EffectsProfileID: "large-home-entertainment-class-device",
		},
		GeminiTTS: GeminiTTSConfig{
			ModelName:    "gemini-2.5-flash-tts",
			Language:     "en-US",
			VoiceName:    "Charon",
			SpeakingRate: 1.0,
		},
		YandexTTS: YandexTTSConfig{
			Voice:   "john",
			Speed:   "1.0",
			Emotion: "neutral",
		},
		Audio: AudioConfig{
			IntroPath:       "assets/podcast_intro.mp3",
			PauseAfterIntro: time.Second,
			SampleRate:      44100,
			OutputDir:       "output",
			RetentionTTL:    24 * time.Hour,
		},
		Server: ServerConfig{
			BindAddr:       "127.0.0.1:8080",
			MaxUploadBytes: 32 << 20,
			RequestTimeout: 10 * time.Minute,
		},
	}
}

// NewConfig загружает конфигурацию приложения из .env, окружения и флагов командной строки.
// При ошибке валидации паникует: без ключей пайплайн всё равно не запустится.
func NewConfig() *Config {
	cfg, err := Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load — то же, что NewConfig, но с явным набором флагов и аргументами.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	_ = godotenv.Load()

	// Стартуем с дефолтов, затем перекрываем .env/окружением и флагами
	cfg := Defaults()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	fs.BoolVar(&cfg.DebugMode, "debug-mode", cfg.DebugMode, "включить режим дебага")
	fs.StringVar(&cfg.LLMService, "llm-service", cfg.LLMService, "генератор сценария: openai|stub")
	fs.StringVar(&cfg.TTSService, "tts-service", cfg.TTSService, "сервис TTS: elevenlabs|google|gemini|yandex|stub")
	fs.StringVar(&cfg.VoicesPath, "voices-path", cfg.VoicesPath, "YAML с таблицей голосов персон")
	// OpenAI
	fs.StringVar(&cfg.OpenAI.Model, "openai-model", cfg.OpenAI.Model, "модель OpenAI для генерации сценария")
	fs.Int64Var(&cfg.OpenAI.MaxTokens, "openai-max-tokens", cfg.OpenAI.MaxTokens, "максимум токенов ответа")
	fs.Float64Var(&cfg.OpenAI.Temperature, "openai-temperature", cfg.OpenAI.Temperature, "температура генерации")
	// Промпты
	fs.StringVar(&cfg.Prompts.Dir, "prompts-dir", cfg.Prompts.Dir, "каталог с промптами персон (personas/*.txt)")
	fs.StringVar(&cfg.Prompts.GuidelinesPath, "guidelines-path", cfg.Prompts.GuidelinesPath, "файл с общими правилами сценария")
	// ElevenLabs
	fs.StringVar(&cfg.ElevenLabs.ModelID, "elevenlabs-model", cfg.ElevenLabs.ModelID, "модель ElevenLabs")
	fs.StringVar(&cfg.ElevenLabs.OutputFormat, "elevenlabs-output-format", cfg.ElevenLabs.OutputFormat, "формат аудио ElevenLabs (mp3_*)")
	fs.StringVar(&cfg.ElevenLabs.DefaultVoice, "elevenlabs-default-voice", cfg.ElevenLabs.DefaultVoice, "голос по умолчанию")
	// Google TTS
	fs.StringVar(&cfg.GoogleTTS.CredentialsPath, "google-tts-credentials", cfg.GoogleTTS.CredentialsPath, "путь к service-account.json")
	fs.StringVar(&cfg.GoogleTTS.Language, "google-tts-language", cfg.GoogleTTS.Language, "язык синтеза, напр. en-US")
	fs.StringVar(&cfg.GoogleTTS.Voice, "google-tts-voice", cfg.GoogleTTS.Voice, "голос по умолчанию, напр. en-US-Standard-D")
	// Аудио
	fs.StringVar(&cfg.Audio.IntroPath, "intro-path", cfg.Audio.IntroPath, "заставка (mp3|wav); пусто — без заставки")
	fs.DurationVar(&cfg.Audio.PauseAfterIntro, "pause-after-intro", cfg.Audio.PauseAfterIntro, "пауза после заставки, напр. 1s")
	fs.DurationVar(&cfg.Audio.PauseBetweenLines, "pause-between-lines", cfg.Audio.PauseBetweenLines, "пауза между репликами, напр. 300ms")
	fs.IntVar(&cfg.Audio.SampleRate, "sample-rate", cfg.Audio.SampleRate, "частота дискретизации итогового файла")
	fs.StringVar(&cfg.Audio.OutputDir, "output-dir", cfg.Audio.OutputDir, "каталог для готовых подкастов")
	fs.DurationVar(&cfg.Audio.RetentionTTL, "retention-ttl", cfg.Audio.RetentionTTL, "срок хранения готовых подкастов на сервере; 0 — без очистки")
	// Сервер
	fs.StringVar(&cfg.Server.BindAddr, "bind-addr", cfg.Server.BindAddr, "адрес HTTP API")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.TTSService = strings.ToLower(strings.TrimSpace(cfg.TTSService))
	cfg.LLMService = strings.ToLower(strings.TrimSpace(cfg.LLMService))
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LLMService {
	case LLMOpenAI, "":
		if strings.TrimSpace(c.OpenAI.APIKey) == "" {
			return ErrOpenAIKeyMissing
		}
	case LLMStub:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownLLMService, c.LLMService)
	}
	if c.OpenAI.MaxTokens <= 0 {
		return fmt.Errorf("openai max tokens must be positive, got %d", c.OpenAI.MaxTokens)
	}
	if c.OpenAI.Temperature < 0 || c.OpenAI.Temperature > 2 {
		return fmt.Errorf("openai temperature must be between 0 and 2, got %.2f", c.OpenAI.Temperature)
	}
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", c.Audio.SampleRate)
	}
	if c.Audio.PauseAfterIntro < 0 || c.Audio.PauseBetweenLines < 0 || c.Audio.RetentionTTL < 0 {
		return errors.New("pauses and retention ttl must be non-negative")
	}

	switch c.TTSService {
	case TTSElevenLabs:
		if strings.TrimSpace(c.ElevenLabs.APIKey) == "" {
			return ErrElevenLabsKeyMissing
		}
	case TTSGoogle:
		// Если ENV пуст, но в конфиге указан путь — устанавливаем ENV для SDK.
		cred := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
		if cred == "" {
			if cp := strings.TrimSpace(c.GoogleTTS.CredentialsPath); cp != "" {
				_ = os.Setenv("GOOGLE_APPLICATION_CREDENTIALS", cp)
				cred = cp
			}
		}
		if cred == "" {
			return errors.New("google tts: GOOGLE_APPLICATION_CREDENTIALS is not set; use ENV or -google-tts-credentials")
		}
		if _, err := os.Stat(cred); err != nil {
			return fmt.Errorf("google tts: credentials file not found: %s", cred)
		}
	case TTSYandex:
		if strings.TrimSpace(c.YandexTTS.APIKey) == "" {
			return errors.New("yandex tts: empty API key (set YC_TTS_API_KEY in .env/ENV)")
		}
	case TTSGemini, TTSStub:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTTSService, c.TTSService)
	}
	return nil
}
