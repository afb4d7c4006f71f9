package stub

import (
	"context"
	"strings"
	"time"

	"PodcastCreator/internal/audio"
	"PodcastCreator/internal/service/tts"

	"github.com/faiface/beep"
	"go.uber.org/zap"
)

const (
	sampleRate  = 22050
	perWord     = 250 * time.Millisecond
	minDuration = 500 * time.Millisecond
)

// Synthesizer — офлайн TTS для тестов и прогонов без ключей: тишина длиной пропорционально тексту.
type Synthesizer struct {
	logger *zap.SugaredLogger
}

func New(logger *zap.SugaredLogger) *Synthesizer {
	return &Synthesizer{logger: logger}
}

// ClipDuration длительность, которую stub выдаст для текста.
func ClipDuration(text string) time.Duration {
	d := time.Duration(len(strings.Fields(text))) * perWord
	if d < minDuration {
		d = minDuration
	}
	return d
}

func (s *Synthesizer) Synthesize(ctx context.Context, text string, voice string) (*tts.Audio, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	format := beep.Format{SampleRate: sampleRate, NumChannels: 1, Precision: 2}
	d := ClipDuration(text)
	data, err := audio.EncodeWAV(beep.Silence(format.SampleRate.N(d)), format)
	if err != nil {
		return nil, err
	}
	s.logger.Debugw("stub tts synthesized", "voice", voice, "duration", d.String())
	return &tts.Audio{Data: data, Format: tts.FormatWAV}, nil
}
