package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"PodcastCreator/internal/config"
	"PodcastCreator/internal/persona"
	"PodcastCreator/internal/podcast"
	"PodcastCreator/internal/transcript"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeProducer struct {
	mu        sync.Mutex
	outputDir string
	got       []podcast.Request
	err       error
}

func (f *fakeProducer) Produce(_ context.Context, req podcast.Request, progress func(podcast.Event)) (*podcast.Result, error) {
	f.mu.Lock()
	f.got = append(f.got, req)
	err := f.err
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if progress != nil {
		progress(podcast.Event{Stage: podcast.StageScript})
		progress(podcast.Event{Stage: podcast.StageSpeech, Line: 1, Total: 1, Speaker: "Host"})
	}
	return &podcast.Result{
		Persona:      req.Persona,
		Transcript:   &transcript.Transcript{Podcast: []transcript.Line{{Speaker: "<Host>", Dialogue: "Hi"}}},
		Readable:     "Host: Hi",
		AudioPath:    filepath.Join(f.outputDir, req.OutputName+".wav"),
		MetadataPath: filepath.Join(f.outputDir, req.OutputName+".json"),
		Timestamps:   []podcast.Timestamp{{Start: time.Second, End: 2 * time.Second, Speaker: "<Host>", Dialogue: "Hi"}},
		Duration:     2 * time.Second,
	}, nil
}

func (f *fakeProducer) fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeProducer) requests() []podcast.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]podcast.Request(nil), f.got...)
}

func newTestServer(t *testing.T) (*httptest.Server, *fakeProducer, string) {
	t.Helper()
	dir := t.TempDir()
	fp := &fakeProducer{outputDir: dir}
	defaults := config.Defaults()
	defaults.Audio.OutputDir = dir
	s := New(defaults.Server, defaults.Audio, persona.New("prompts"), fp, zaptest.NewLogger(t).Sugar())
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv, fp, dir
}

func multipartBody(t *testing.T, personaName, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("persona", personaName))
	if filename != "" {
		fw, err := mw.CreateFormFile("document", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestPersonas(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/personas")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Personas []string `json:"personas"`
		Default  string   `json:"default"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Personas, 10)
	assert.Equal(t, "Podcast Host", body.Default)
	assert.Equal(t, "Podcast Host", body.Personas[0])
}

func TestCreatePodcast(t *testing.T) {
	srv, fp, _ := newTestServer(t)

	body, ct := multipartBody(t, "Historian", "notes.txt", "Rome was not built in a day.")
	resp, err := http.Post(srv.URL+"/podcasts", ct, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var view resultView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.NotEmpty(t, view.ID)
	assert.Equal(t, "Host: Hi", view.Transcript)
	assert.Equal(t, "/podcasts/Historian_podcast_audio_"+view.ID+".wav", view.AudioURL)
	assert.InDelta(t, 2.0, view.DurationSeconds, 1e-9)

	reqs := fp.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "Historian", reqs[0].Persona)
	assert.Equal(t, "Rome was not built in a day.", reqs[0].DocumentText)
	assert.True(t, strings.HasPrefix(reqs[0].OutputName, "Historian_podcast_audio_"))
}

func TestCreatePodcast_WithoutDocument(t *testing.T) {
	srv, fp, _ := newTestServer(t)

	body, ct := multipartBody(t, "", "", "")
	resp, err := http.Post(srv.URL+"/podcasts", ct, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	reqs := fp.requests()
	require.Len(t, reqs, 1)
	assert.Empty(t, reqs[0].DocumentText)
	assert.True(t, strings.HasPrefix(reqs[0].OutputName, "PodcastHost_podcast_audio_"))
}

func TestCreatePodcast_Errors(t *testing.T) {
	srv, fp, _ := newTestServer(t)

	body, ct := multipartBody(t, "Historian", "notes.docx", "binary")
	resp, err := http.Post(srv.URL+"/podcasts", ct, body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Empty(t, fp.requests())

	fp.fail(errors.New("elevenlabs tts error: status=401"))
	body, ct = multipartBody(t, "Historian", "", "")
	resp, err = http.Post(srv.URL+"/podcasts", ct, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var e map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	assert.Contains(t, e["error"], "status=401")
}

func TestServeFile(t *testing.T) {
	srv, _, dir := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ep.wav"), []byte("RIFF"), 0o644))

	resp, err := http.Get(srv.URL + "/podcasts/ep.wav")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "audio/wav", resp.Header.Get("Content-Type"))

	resp, err = http.Get(srv.URL + "/podcasts/ep.txt")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/podcasts/.env.wav")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/podcasts/missing.wav")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebsocket(t *testing.T) {
	srv, fp, _ := newTestServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(wsRequest{Persona: "Detective", Document: []byte("A body in the library."), Filename: "case.txt"}))

	var msgs []wsMessage
	for {
		var m wsMessage
		require.NoError(t, conn.ReadJSON(&m))
		msgs = append(msgs, m)
		if m.Type != "progress" {
			break
		}
	}
	require.Len(t, msgs, 3)
	assert.Equal(t, podcast.StageScript, msgs[0].Event.Stage)
	assert.Equal(t, 1, msgs[1].Event.Line)
	require.Equal(t, "result", msgs[2].Type)
	assert.Equal(t, "Detective", msgs[2].Result.Persona)

	reqs := fp.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "A body in the library.", reqs[0].DocumentText)
}

func TestWebsocket_Error(t *testing.T) {
	srv, fp, _ := newTestServer(t)
	fp.fail(errors.New("boom"))

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(wsRequest{Text: "hello"}))
	var m wsMessage
	require.NoError(t, conn.ReadJSON(&m))
	assert.Equal(t, "error", m.Type)
	assert.Equal(t, "boom", m.Error)
}

func TestRun_Shutdown(t *testing.T) {
	cfg := config.Defaults()
	cfg.Server.BindAddr = "127.0.0.1:0"
	cfg.Audio.OutputDir = t.TempDir()
	s := New(cfg.Server, cfg.Audio, persona.New("prompts"), &fakeProducer{}, zaptest.NewLogger(t).Sugar())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
