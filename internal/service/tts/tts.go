package tts

import "context"

// Форматы аудио, которые умеет декодировать сборщик.
const (
	FormatMP3 = "mp3"
	FormatWAV = "wav"
)

// Audio синтезированная реплика.
type Audio struct {
	Data   []byte
	Format string // mp3|wav
}

// Synthesizer абстракция TTS. Возвращает аудио реплики, ничего не воспроизводит.
// voice — идентификатор голоса провайдера (voice id ElevenLabs, имя голоса Google и т.п.).
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voice string) (*Audio, error)
}
