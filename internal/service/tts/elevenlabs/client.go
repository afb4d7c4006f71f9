package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"PodcastCreator/internal/config"
	"PodcastCreator/internal/service/tts"

	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.elevenlabs.io"

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

type requestPayload struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// Client синтез речи через ElevenLabs text-to-speech (REST).
type Client struct {
	http   *http.Client
	cfg    config.ElevenLabsConfig
	format string
	logger *zap.SugaredLogger
}

// New создаёт клиента. Поддерживаются только форматы вывода mp3_* и wav_*: их умеет декодировать сборщик.
func New(httpClient *http.Client, cfg config.ElevenLabsConfig, logger *zap.SugaredLogger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("elevenlabs tts: empty API key (set ELEVENLABS_API_KEY)")
	}
	var format string
	switch {
	case strings.HasPrefix(cfg.OutputFormat, "mp3_"):
		format = tts.FormatMP3
	case strings.HasPrefix(cfg.OutputFormat, "wav_"):
		format = tts.FormatWAV
	default:
		return nil, fmt.Errorf("elevenlabs tts: unsupported output format %q (use mp3_* or wav_*)", cfg.OutputFormat)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Client{http: httpClient, cfg: cfg, format: format, logger: logger}, nil
}

// Synthesize выполняет запрос к ElevenLabs и возвращает аудио целиком.
func (c *Client) Synthesize(ctx context.Context, text string, voice string) (*tts.Audio, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("elevenlabs tts: empty text")
	}
	if strings.TrimSpace(voice) == "" {
		voice = c.cfg.DefaultVoice
	}
	if voice == "" {
		return nil, errors.New("elevenlabs tts: voice id is required")
	}

	body, err := json.Marshal(&requestPayload{
		Text:    text,
		ModelID: c.cfg.ModelID,
		VoiceSettings: voiceSettings{
			Stability:       c.cfg.Stability,
			SimilarityBoost: c.cfg.SimilarityBoost,
			Style:           c.cfg.Style,
			UseSpeakerBoost: c.cfg.UseSpeakerBoost,
		},
	})
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("output_format", c.cfg.OutputFormat)
	q.Set("optimize_streaming_latency", strconv.Itoa(c.cfg.OptimizeStreamingLatency))
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1/text-to-speech/" + url.PathEscape(voice) + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", c.cfg.APIKey)

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if len(b) == 0 {
			b = []byte(resp.Status)
		}
		return nil, fmt.Errorf("elevenlabs tts error: status=%d, body=%s", resp.StatusCode, bytes.TrimSpace(b))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs tts: read audio: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("elevenlabs tts: empty audio in response")
	}
	c.logger.Infow("ElevenLabs TTS synthesize completed", "voice", voice, "bytes", len(data), "took", time.Since(started).String())
	return &tts.Audio{Data: data, Format: c.format}, nil
}
