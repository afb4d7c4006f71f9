package transcript

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidTranscript ответ модели не удалось разобрать как сценарий.
var ErrInvalidTranscript = errors.New("invalid transcript json")

// Line одна реплика сценария.
type Line struct {
	Speaker  string `json:"speaker"`
	Dialogue string `json:"dialogue"`
}

// Transcript сценарий подкаста в порядке реплик.
type Transcript struct {
	Podcast []Line `json:"podcast"`
}

// Parse разбирает JSON-ответ модели. Допускается обёртка в markdown-блок ```json ... ```.
func Parse(raw string) (*Transcript, error) {
	s := stripFences(raw)
	var t Transcript
	if err := json.Unmarshal([]byte(s), &t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTranscript, err)
	}
	return &t, nil
}

// Readable форматирует сценарий для чтения: "Спикер: реплика", реплики разделены пустой строкой.
func (t *Transcript) Readable() string {
	var sb strings.Builder
	for _, l := range t.Podcast {
		sb.WriteString(strings.Trim(l.Speaker, "<>"))
		sb.WriteString(": ")
		sb.WriteString(l.Dialogue)
		sb.WriteString("\n\n")
	}
	return strings.TrimSpace(sb.String())
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// язык блока (```json) до конца первой строки
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
