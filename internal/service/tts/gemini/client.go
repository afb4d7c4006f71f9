package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"PodcastCreator/internal/config"
	"PodcastCreator/internal/service/tts"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
)

// По умолчанию используем Cloud TTS v1beta1 text:synthesize, совместимый с Generative AI TTS.
const defaultEndpoint = "https://texttospeech.googleapis.com/v1beta1/text:synthesize"

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// Client реализует синтез речи через Cloud Text-to-Speech: Gemini‑TTS.
type Client struct {
	cfg    config.GeminiTTSConfig
	logger *zap.SugaredLogger

	mu   sync.Mutex
	http *http.Client
}

// New создаёт клиента. httpClient == nil — OAuth2 клиент через ADC создаётся при первом запросе.
func New(httpClient *http.Client, cfg config.GeminiTTSConfig, logger *zap.SugaredLogger) *Client {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		cfg.Endpoint = defaultEndpoint
	}
	return &Client{http: httpClient, cfg: cfg, logger: logger}
}

// requestPayload — максимально нейтральная структура, покрывающая input.prompt и voice.model_name.
type requestPayload struct {
	Input struct {
		Prompt string `json:"prompt,omitempty"`
		Text   string `json:"text,omitempty"`
	} `json:"input"`
	Voice struct {
		ModelName    string `json:"modelName,omitempty"`
		LanguageCode string `json:"languageCode,omitempty"`
		VoiceName    string `json:"name,omitempty"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding string  `json:"audioEncoding,omitempty"`
		SpeakingRate  float64 `json:"speakingRate,omitempty"`
	} `json:"audioConfig"`
}

type jsonAudioResponse struct {
	AudioContent string `json:"audioContent"`
}

func (c *Client) httpClient(ctx context.Context) (*http.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.http != nil {
		return c.http, nil
	}
	// Только ADC/metadata, API Key не используется
	hc, err := google.DefaultClient(ctx, cloudPlatformScope)
	if err != nil {
		return nil, errors.New("gemini tts: ADC credentials not found. Set GOOGLE_APPLICATION_CREDENTIALS to a service account JSON or run in GCE/GKE with default credentials")
	}
	c.http = hc
	return hc, nil
}

// Synthesize выполняет запрос к Gemini‑TTS. voice — имя голоса (Charon, Kore...); пусто — из конфига.
func (c *Client) Synthesize(ctx context.Context, text string, voice string) (*tts.Audio, error) {
	// Cloud TTS ожидает непустой text, иначе 400
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("gemini tts: empty input text")
	}

	var rp requestPayload
	rp.Input.Text = text
	if p := strings.TrimSpace(c.cfg.Prompt); p != "" {
		rp.Input.Prompt = p
	}
	rp.Voice.ModelName = strings.TrimSpace(c.cfg.ModelName)
	rp.Voice.LanguageCode = strings.TrimSpace(c.cfg.Language)
	rp.Voice.VoiceName = strings.TrimSpace(voice)
	if rp.Voice.VoiceName == "" {
		rp.Voice.VoiceName = strings.TrimSpace(c.cfg.VoiceName)
	}
	rp.AudioConfig.AudioEncoding = "MP3"
	rp.AudioConfig.SpeakingRate = c.cfg.SpeakingRate

	body, err := json.Marshal(&rp)
	if err != nil {
		return nil, err
	}

	hc, err := c.httpClient(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	c.logger.Infow("Gemini TTS request completed", "status", resp.StatusCode, "voice", rp.Voice.VoiceName, "took", time.Since(started).String())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if len(b) == 0 {
			b = []byte(resp.Status)
		}
		return nil, fmt.Errorf("gemini tts error: status=%d, body=%s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	// JSON с base64 полем audioContent
	var jr jsonAudioResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 20<<20)).Decode(&jr); err != nil {
		return nil, fmt.Errorf("gemini tts: decode json response: %w", err)
	}
	if strings.TrimSpace(jr.AudioContent) == "" {
		return nil, errors.New("gemini tts: empty audioContent in response")
	}
	data, err := base64.StdEncoding.DecodeString(jr.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("gemini tts: base64 decode: %w", err)
	}
	return &tts.Audio{Data: data, Format: tts.FormatMP3}, nil
}
