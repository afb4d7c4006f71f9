package stub

import (
	"context"
	"testing"
	"time"

	"PodcastCreator/internal/audio"
	"PodcastCreator/internal/service/tts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestClipDuration(t *testing.T) {
	assert.Equal(t, minDuration, ClipDuration(""))
	assert.Equal(t, minDuration, ClipDuration("hi"))
	assert.Equal(t, 2*time.Second, ClipDuration("one two three four five six seven eight"))
}

func TestSynthesize(t *testing.T) {
	s := New(zaptest.NewLogger(t).Sugar())
	a, err := s.Synthesize(context.Background(), "one two three four", "voice")
	require.NoError(t, err)
	assert.Equal(t, tts.FormatWAV, a.Format)

	streamer, format, err := audio.Decode(a)
	require.NoError(t, err)
	defer streamer.Close()
	assert.InDelta(t, float64(time.Second), float64(format.SampleRate.D(streamer.Len())), float64(time.Millisecond))
}

func TestSynthesize_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(zaptest.NewLogger(t).Sugar()).Synthesize(ctx, "hi", "")
	require.ErrorIs(t, err, context.Canceled)
}
