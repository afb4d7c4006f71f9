package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"PodcastCreator/internal/config"
	"PodcastCreator/internal/persona"
	"PodcastCreator/internal/podcast"
	"PodcastCreator/internal/service/retention"
	"PodcastCreator/internal/transcript"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Producer запускает пайплайн подкаста.
type Producer interface {
	Produce(ctx context.Context, req podcast.Request, progress func(podcast.Event)) (*podcast.Result, error)
}

// Server HTTP API поверх пайплайна: список персон, создание подкаста, выдача файлов, прогресс по websocket.
type Server struct {
	cfg       config.ServerConfig
	outputDir string
	personas  *persona.Registry
	producer  Producer
	logger    *zap.SugaredLogger

	srv      *http.Server
	upgrader websocket.Upgrader
	cleaner  *retention.Cleaner
	running  atomic.Bool
}

// New создаёт сервер. Файлы выдаются и очищаются по TTL в audio.OutputDir.
func New(cfg config.ServerConfig, audio config.AudioConfig, personas *persona.Registry, producer Producer, logger *zap.SugaredLogger) *Server {
	if cfg.BindAddr == "" {
		cfg.BindAddr = "127.0.0.1:8080"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Minute
	}
	s := &Server{
		cfg:       cfg,
		outputDir: audio.OutputDir,
		personas:  personas,
		producer:  producer,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		cleaner: retention.NewCleaner(audio.OutputDir, audio.RetentionTTL, logger),
	}

	s.srv = &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Minute,
		// Генерация идёт минуты: ответ POST /podcasts пишется после неё
		WriteTimeout: cfg.RequestTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler маршруты API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /personas", s.handlePersonas)
	mux.HandleFunc("POST /podcasts", s.handleCreate)
	mux.HandleFunc("GET /podcasts/{name}", s.handleFile)
	mux.HandleFunc("GET /ws", s.handleWS)
	return mux
}

func (s *Server) Addr() string { return s.cfg.BindAddr }

// Run слушает адрес до отмены контекста, затем делает graceful shutdown.
func (s *Server) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return errors.New("server already running")
	}
	defer s.running.Store(false)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Infow("Podcast API listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		s.logger.Infow("Podcast API stopped")
		return nil
	})
	g.Go(func() error {
		return s.cleaner.Run(gctx, 0)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeoutCause(context.WithoutCancel(ctx), 5*time.Second, errors.New("podcast api shutdown timeout"))
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warnw("graceful shutdown error", "error", err)
			return s.srv.Close()
		}
		return nil
	})
	return g.Wait()
}

func (s *Server) handlePersonas(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"personas": s.personas.Choices(),
		"default":  persona.Default,
	})
}

// resultView ответ API: пути заменены на ссылки /podcasts/{name}.
type resultView struct {
	ID              string              `json:"id"`
	Persona         string              `json:"persona"`
	Transcript      string              `json:"transcript"`
	Lines           []transcript.Line   `json:"lines"`
	AudioURL        string              `json:"audio_url"`
	MetadataURL     string              `json:"metadata_url"`
	Timestamps      []podcast.Timestamp `json:"timestamps"`
	DurationSeconds float64             `json:"duration_seconds"`
}

func newResultView(id string, res *podcast.Result) resultView {
	return resultView{
		ID:              id,
		Persona:         res.Persona,
		Transcript:      res.Readable,
		Lines:           res.Transcript.Podcast,
		AudioURL:        "/podcasts/" + filepath.Base(res.AudioPath),
		MetadataURL:     "/podcasts/" + filepath.Base(res.MetadataPath),
		Timestamps:      res.Timestamps,
		DurationSeconds: res.Duration.Seconds(),
	}
}

// newOutputName уникальное имя файла: параллельные запросы одной персоны не перезаписывают друг друга.
func newOutputName(personaName string) (id string, name string) {
	if strings.TrimSpace(personaName) == "" {
		personaName = persona.Default
	}
	id = uuid.NewString()
	return id, persona.FileName(personaName) + "_podcast_audio_" + id
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		writeError(w, http.StatusBadRequest, "invalid file name")
		return
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".wav":
		w.Header().Set("Content-Type", "audio/wav")
	case ".json":
		w.Header().Set("Content-Type", "application/json")
	default:
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	http.ServeFile(w, r, filepath.Join(s.outputDir, name))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
