package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"PodcastCreator/internal/service/tts"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
)

// Качество ресемплинга beep: 4 — компромисс скорость/качество, рекомендованный в документации.
const resampleQuality = 4

var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Decode декодирует синтезированную реплику в поток PCM.
func Decode(a *tts.Audio) (beep.StreamSeekCloser, beep.Format, error) {
	if a == nil || len(a.Data) == 0 {
		return nil, beep.Format{}, errors.New("empty audio")
	}
	switch strings.ToLower(a.Format) {
	case tts.FormatMP3:
		return mp3.Decode(bytesReadCloser{bytes.NewReader(a.Data)})
	case tts.FormatWAV:
		return wav.Decode(bytes.NewReader(a.Data))
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, a.Format)
	}
}

// ReadFile читает аудиофайл с диска; формат определяется по расширению.
func ReadFile(path string) (*tts.Audio, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return &tts.Audio{Data: data, Format: format}, nil
}

// Track накапливает итоговую дорожку в памяти в едином формате.
// Не потокобезопасен: один Track — один подкаст.
type Track struct {
	format beep.Format
	buf    *beep.Buffer
}

// NewTrack создаёт пустую стерео дорожку 16 бит с заданной частотой.
func NewTrack(sampleRate int) *Track {
	format := beep.Format{
		SampleRate:  beep.SampleRate(sampleRate),
		NumChannels: 2,
		Precision:   2,
	}
	return &Track{format: format, buf: beep.NewBuffer(format)}
}

func (t *Track) Format() beep.Format { return t.format }

// Position текущая длина дорожки, т.е. время начала следующего фрагмента.
func (t *Track) Position() time.Duration {
	return t.format.SampleRate.D(t.buf.Len())
}

// AppendClip дописывает реплику в конец дорожки и возвращает её длительность.
func (t *Track) AppendClip(a *tts.Audio) (time.Duration, error) {
	streamer, format, err := Decode(a)
	if err != nil {
		return 0, err
	}
	defer streamer.Close()

	var s beep.Streamer = streamer
	if format.SampleRate != t.format.SampleRate {
		s = beep.Resample(resampleQuality, format.SampleRate, t.format.SampleRate, streamer)
	}

	before := t.buf.Len()
	t.buf.Append(s)
	if err := streamer.Err(); err != nil {
		return 0, fmt.Errorf("decode %s: %w", a.Format, err)
	}
	return t.format.SampleRate.D(t.buf.Len() - before), nil
}

// AppendFile дописывает аудиофайл (mp3|wav) с диска.
func (t *Track) AppendFile(path string) (time.Duration, error) {
	a, err := ReadFile(path)
	if err != nil {
		return 0, err
	}
	return t.AppendClip(a)
}

// AppendSilence дописывает тишину заданной длительности.
func (t *Track) AppendSilence(d time.Duration) {
	if d <= 0 {
		return
	}
	t.buf.Append(beep.Silence(t.format.SampleRate.N(d)))
}

// Export сохраняет дорожку в WAV, создавая каталог при необходимости.
func (t *Track) Export(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := wav.Encode(f, t.buf.Streamer(0, t.buf.Len()), t.format); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode wav: %w", err)
	}
	return f.Close()
}

// EncodeWAV кодирует поток в WAV в памяти.
func EncodeWAV(s beep.Streamer, format beep.Format) ([]byte, error) {
	var ws writeSeeker
	if err := wav.Encode(&ws, s, format); err != nil {
		return nil, err
	}
	return ws.buf, nil
}

// writeSeeker буфер в памяти для wav.Encode, которому нужен Seek для заголовка.
type writeSeeker struct {
	buf []byte
	pos int
}

func (w *writeSeeker) Write(p []byte) (int, error) {
	if end := w.pos + len(p); end > len(w.buf) {
		w.buf = append(w.buf, make([]byte, end-len(w.buf))...)
	}
	n := copy(w.buf[w.pos:], p)
	w.pos += n
	return n, nil
}

func (w *writeSeeker) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(w.pos) + offset
	case io.SeekEnd:
		abs = int64(len(w.buf)) + offset
	default:
		return 0, errors.New("invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("negative position")
	}
	w.pos = int(abs)
	return abs, nil
}

// bytesReadCloser оставляет декодеру mp3 io.Seeker: без него длина клипа неизвестна.
type bytesReadCloser struct {
	*bytes.Reader
}

func (bytesReadCloser) Close() error { return nil }
