package yandex

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"PodcastCreator/internal/config"
	"PodcastCreator/internal/service/tts"
)

const defaultEndpoint = "https://tts.api.cloud.yandex.net/speech/v1/tts:synthesize"

// Client реализует синтез речи через Yandex SpeechKit.
type Client struct {
	http *http.Client
	cfg  config.YandexTTSConfig
}

func New(httpClient *http.Client, cfg config.YandexTTSConfig) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		cfg.Endpoint = defaultEndpoint
	}
	return &Client{http: httpClient, cfg: cfg}
}

// Synthesize выполняет запрос к Yandex TTS. Формат фиксирован — mp3. voice пустой — голос из конфига.
func (c *Client) Synthesize(ctx context.Context, text string, voice string) (*tts.Audio, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return nil, errors.New("yandex tts: empty API key (set YC_TTS_API_KEY in .env/ENV)")
	}
	if strings.TrimSpace(voice) == "" {
		voice = c.cfg.Voice
	}

	form := url.Values{}
	form.Set("text", text)
	form.Set("voice", voice)
	form.Set("format", tts.FormatMP3)
	form.Set("speed", c.cfg.Speed)
	form.Set("emotion", strings.ToLower(c.cfg.Emotion))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Api-Key "+c.cfg.APIKey)

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
		return nil, fmt.Errorf("yandex tts error: status=%d, body=%s", resp.StatusCode, bytes.TrimSpace(b))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &tts.Audio{Data: data, Format: tts.FormatMP3}, nil
}
