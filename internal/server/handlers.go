package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"PodcastCreator/internal/document"
	"PodcastCreator/internal/podcast"

	"github.com/gorilla/websocket"
)

// handleCreate POST /podcasts, multipart: persona, document (необязательный PDF/TXT).
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if s.cfg.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	}
	if err := r.ParseMultipartForm(8 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeError(w, http.StatusBadRequest, "invalid form: "+err.Error())
		return
	}
	personaName := strings.TrimSpace(r.FormValue("persona"))

	var text string
	file, header, err := r.FormFile("document")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case err != nil:
		writeError(w, http.StatusBadRequest, "invalid document: "+err.Error())
		return
	default:
		text, err = document.ExtractReader(file, header.Filename)
		_ = file.Close()
		if err != nil {
			s.logger.Warnw("Document extraction failed", "file", header.Filename, "error", err)
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()

	id, name := newOutputName(personaName)
	s.logger.Infow("Podcast requested", "id", id, "persona", personaName, "document_chars", len(text))
	res, err := s.producer.Produce(ctx, podcast.Request{
		DocumentText: text,
		Persona:      personaName,
		OutputName:   name,
	}, nil)
	if err != nil {
		s.logger.Errorw("Podcast generation failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, newResultView(id, res))
}

// wsRequest первое сообщение клиента по websocket. Document — содержимое файла (base64 в JSON).
type wsRequest struct {
	Persona  string `json:"persona"`
	Text     string `json:"text"`
	Document []byte `json:"document"`
	Filename string `json:"filename"`
}

// wsMessage сообщение сервера: progress ... затем result или error.
type wsMessage struct {
	Type   string         `json:"type"`
	Event  *podcast.Event `json:"event,omitempty"`
	Result *resultView    `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// handleWS GET /ws: один запрос на соединение, прогресс отправляется по мере синтеза реплик.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	if s.cfg.MaxUploadBytes > 0 {
		conn.SetReadLimit(s.cfg.MaxUploadBytes)
	}

	var req wsRequest
	if err := conn.ReadJSON(&req); err != nil {
		_ = conn.WriteJSON(wsMessage{Type: "error", Error: "invalid request: " + err.Error()})
		return
	}

	text := req.Text
	if len(req.Document) > 0 {
		name := req.Filename
		if name == "" {
			name = "document.pdf"
		}
		if text, err = document.ExtractReader(bytes.NewReader(req.Document), name); err != nil {
			_ = conn.WriteJSON(wsMessage{Type: "error", Error: err.Error()})
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()

	// Читаем входящие кадры только чтобы заметить закрытие соединения клиентом
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()

	id, name := newOutputName(req.Persona)
	s.logger.Infow("Podcast requested over websocket", "id", id, "persona", req.Persona, "document_chars", len(text))

	res, err := s.producer.Produce(ctx, podcast.Request{
		DocumentText: text,
		Persona:      req.Persona,
		OutputName:   name,
	}, func(e podcast.Event) {
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(wsMessage{Type: "progress", Event: &e}); err != nil {
			s.logger.Debugw("progress write failed", "id", id, "error", err)
		}
	})
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err != nil {
		s.logger.Errorw("Podcast generation failed", "id", id, "error", err)
		_ = conn.WriteJSON(wsMessage{Type: "error", Error: err.Error()})
		return
	}
	view := newResultView(id, res)
	_ = conn.WriteJSON(wsMessage{Type: "result", Result: &view})
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))
}
