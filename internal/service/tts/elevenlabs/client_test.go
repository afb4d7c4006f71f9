package elevenlabs

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"PodcastCreator/internal/config"
	"PodcastCreator/internal/service/tts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testConfig(baseURL string) config.ElevenLabsConfig {
	cfg := config.Defaults().ElevenLabs
	cfg.APIKey = "xi-test"
	cfg.BaseURL = baseURL
	return cfg
}

func TestSynthesize(t *testing.T) {
	var got requestPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/text-to-speech/voice-123", r.URL.Path)
		assert.Equal(t, "mp3_22050_32", r.URL.Query().Get("output_format"))
		assert.Equal(t, "0", r.URL.Query().Get("optimize_streaming_latency"))
		assert.Equal(t, "xi-test", r.Header.Get("xi-api-key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = io.WriteString(w, "ID3fake-mp3")
	}))
	defer srv.Close()

	c, err := New(srv.Client(), testConfig(srv.URL), zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)

	audio, err := c.Synthesize(context.Background(), "Hello world", "voice-123")
	require.NoError(t, err)
	assert.Equal(t, tts.FormatMP3, audio.Format)
	assert.Equal(t, []byte("ID3fake-mp3"), audio.Data)

	assert.Equal(t, "Hello world", got.Text)
	assert.Equal(t, "eleven_flash_v2_5", got.ModelID)
	assert.InDelta(t, 0.0, got.VoiceSettings.Stability, 1e-9)
	assert.InDelta(t, 1.0, got.VoiceSettings.SimilarityBoost, 1e-9)
	assert.True(t, got.VoiceSettings.UseSpeakerBoost)
}

func TestSynthesize_DefaultVoice(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = io.WriteString(w, "audio")
	}))
	defer srv.Close()

	c, err := New(srv.Client(), testConfig(srv.URL), zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)

	_, err = c.Synthesize(context.Background(), "Hi", "")
	require.NoError(t, err)
	assert.Equal(t, "/v1/text-to-speech/aFqHDefrsNkoISstIlMU", path)
}

func TestSynthesize_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail":"invalid api key"}`)
	}))
	defer srv.Close()

	c, err := New(srv.Client(), testConfig(srv.URL), zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)

	_, err = c.Synthesize(context.Background(), "Hi", "v")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=401")
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestNew_Validation(t *testing.T) {
	cfg := testConfig("")
	cfg.APIKey = ""
	_, err := New(nil, cfg, zaptest.NewLogger(t).Sugar())
	require.Error(t, err)

	cfg = testConfig("")
	cfg.OutputFormat = "pcm_16000"
	_, err = New(nil, cfg, zaptest.NewLogger(t).Sugar())
	require.Error(t, err)

	cfg = testConfig("")
	cfg.OutputFormat = "wav_44100"
	c, err := New(nil, cfg, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	assert.Equal(t, tts.FormatWAV, c.format)
}
