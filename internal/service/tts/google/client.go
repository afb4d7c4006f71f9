package google

import (
	"context"
	"errors"
	"strings"
	"time"

	"PodcastCreator/internal/config"
	"PodcastCreator/internal/service/tts"

	gctts "cloud.google.com/go/texttospeech/apiv1"
	ttspb "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"go.uber.org/zap"
)

// Client реализует синтез речи через Google Cloud Text-to-Speech.
type Client struct {
	tts    *gctts.Client
	cfg    config.GoogleTTSConfig
	logger *zap.SugaredLogger
}

// New создаёт клиента SDK. Учётные данные берутся из GOOGLE_APPLICATION_CREDENTIALS (ADC).
func New(ctx context.Context, cfg config.GoogleTTSConfig, logger *zap.SugaredLogger) (*Client, error) {
	ttsClient, err := gctts.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &Client{tts: ttsClient, cfg: cfg, logger: logger}, nil
}

// Close закрывает соединение SDK.
func (c *Client) Close() error { return c.tts.Close() }

// Synthesize выполняет запрос к Google TTS. voice — имя голоса (en-US-Wavenet-D); пусто — голос из конфига.
func (c *Client) Synthesize(ctx context.Context, text string, voice string) (*tts.Audio, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("google tts: empty text")
	}
	req := buildRequest(c.cfg, text, voice)
	started := time.Now()
	resp, err := c.tts.SynthesizeSpeech(ctx, req)
	if err != nil {
		return nil, err
	}
	c.logger.Infow("Google TTS synthesize completed", "voice", req.GetVoice().GetName(), "took", time.Since(started).String())

	if len(resp.GetAudioContent()) == 0 {
		return nil, errors.New("google tts: empty audio content")
	}
	return &tts.Audio{Data: resp.GetAudioContent(), Format: tts.FormatMP3}, nil
}

func buildRequest(gc config.GoogleTTSConfig, text string, voice string) *ttspb.SynthesizeSpeechRequest {
	name := strings.TrimSpace(voice)
	if name == "" {
		name = gc.Voice
	}
	// Текст в <speak> отправляем как SSML
	var input *ttspb.SynthesisInput
	if strings.HasPrefix(strings.TrimSpace(text), "<speak>") {
		input = &ttspb.SynthesisInput{InputSource: &ttspb.SynthesisInput_Ssml{Ssml: text}}
	} else {
		input = &ttspb.SynthesisInput{InputSource: &ttspb.SynthesisInput_Text{Text: text}}
	}

	// Только MP3
	audio := &ttspb.AudioConfig{
		AudioEncoding: ttspb.AudioEncoding_MP3,
		SpeakingRate:  gc.SpeakingRate,
		Pitch:         gc.Pitch,
		VolumeGainDb:  gc.VolumeGainDb,
	}
	if ep := strings.TrimSpace(gc.EffectsProfileID); ep != "" {
		audio.EffectsProfileId = []string{ep}
	}

	return &ttspb.SynthesizeSpeechRequest{
		Input:       input,
		Voice:       &ttspb.VoiceSelectionParams{LanguageCode: gc.Language, Name: name},
		AudioConfig: audio,
	}
}
