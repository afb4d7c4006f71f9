package player

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"PodcastCreator/internal/service/tts"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
)

var ErrUnsupportedFormat = errors.New("unsupported format for direct playback; use mp3 or wav")

// Player воспроизводит аудио потоком в зависимости от формата.
type Player interface {
	Play(format string, r io.ReadCloser) error
}

// Default реализует Player и поддерживает mp3 и wav.
type Default struct{ volumeDB float64 }

// New создаёт плеер без изменения громкости (0 dB).
func New() *Default { return &Default{volumeDB: 0} }

// NewWithVolume создаёт плеер с предустановленной громкостью в dB (отрицательные — тише).
func NewWithVolume(db float64) *Default { return &Default{volumeDB: db} }

// PlayFile воспроизводит готовый файл подкаста; формат по расширению.
func (d *Default) PlayFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	return d.Play(strings.TrimPrefix(filepath.Ext(path), "."), f)
}

func (d *Default) Play(format string, r io.ReadCloser) error {
	var (
		streamer beep.StreamSeekCloser
		fmtInfo  beep.Format
		err      error
	)
	switch strings.ToLower(format) {
	case tts.FormatWAV:
		streamer, fmtInfo, err = wav.Decode(r)
	case tts.FormatMP3:
		streamer, fmtInfo, err = mp3.Decode(r)
	default:
		_ = r.Close()
		return ErrUnsupportedFormat
	}
	if err != nil {
		_ = r.Close()
		return err
	}
	defer streamer.Close()
	return play(streamer, fmtInfo, d.volumeDB)
}

func play(s beep.Streamer, format beep.Format, volDB float64) error {
	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		return err
	}
	vol := &effects.Volume{
		Streamer: s,
		Base:     2,
		Volume:   volDB,
		Silent:   false,
	}
	done := make(chan struct{})
	speaker.Play(beep.Seq(vol, beep.Callback(func() { close(done) })))
	<-done
	return nil
}
