package podcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"PodcastCreator/internal/audio"
	"PodcastCreator/internal/config"
	"PodcastCreator/internal/document"
	"PodcastCreator/internal/persona"
	"PodcastCreator/internal/service/tts"
	"PodcastCreator/internal/transcript"

	"go.uber.org/zap"
)

// Суффикс имени итогового файла: <Persona>_podcast_audio.wav
const fileSuffix = "_podcast_audio"

var ErrNoSpeech = errors.New("transcript has no lines to synthesize")

// VoiceFunc возвращает голос провайдера TTS для спикера персоны.
type VoiceFunc func(personaName, speaker string) string

// Request один запуск пайплайна. DocumentText имеет приоритет над DocumentPath.
type Request struct {
	DocumentPath string
	DocumentText string
	Persona      string
	OutputName   string // Без расширения; пусто — <Persona>_podcast_audio
}

// Timestamp положение реплики в итоговой дорожке.
type Timestamp struct {
	Start    time.Duration
	End      time.Duration
	Speaker  string
	Dialogue string
}

type timestampJSON struct {
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Speaker  string  `json:"speaker"`
	Dialogue string  `json:"dialogue"`
}

// MarshalJSON отдаёт время в секундах.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(timestampJSON{
		Start:    t.Start.Seconds(),
		End:      t.End.Seconds(),
		Speaker:  t.Speaker,
		Dialogue: t.Dialogue,
	})
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw timestampJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.Start = time.Duration(raw.Start * float64(time.Second))
	t.End = time.Duration(raw.End * float64(time.Second))
	t.Speaker = raw.Speaker
	t.Dialogue = raw.Dialogue
	return nil
}

// Result итог генерации подкаста.
type Result struct {
	Persona      string                 `json:"persona"`
	Transcript   *transcript.Transcript `json:"transcript"`
	Readable     string                 `json:"readable"`
	AudioPath    string                 `json:"audio_path"`
	MetadataPath string                 `json:"metadata_path"`
	Timestamps   []Timestamp            `json:"timestamps"`
	Duration     time.Duration          `json:"duration_ns"`
}

// Producer собирает подкаст: документ -> сценарий -> речь -> файл.
// Реплики синтезируются последовательно, первая ошибка прерывает запуск.
type Producer struct {
	personas  *persona.Registry
	generator *transcript.Generator
	synth     tts.Synthesizer
	voice     VoiceFunc
	cfg       config.AudioConfig
	logger    *zap.SugaredLogger
}

func NewProducer(personas *persona.Registry, generator *transcript.Generator, synth tts.Synthesizer, voice VoiceFunc, cfg config.AudioConfig, logger *zap.SugaredLogger) *Producer {
	return &Producer{
		personas:  personas,
		generator: generator,
		synth:     synth,
		voice:     voice,
		cfg:       cfg,
		logger:    logger,
	}
}

// Produce выполняет весь пайплайн. progress может быть nil.
func (p *Producer) Produce(ctx context.Context, req Request, progress func(Event)) (*Result, error) {
	notify := func(e Event) {
		if progress != nil {
			progress(e)
		}
	}

	personaName := strings.TrimSpace(req.Persona)
	if personaName == "" {
		personaName = persona.Default
	}
	if !p.personas.Known(personaName) {
		p.logger.Warnw("Unknown persona, using default prompt", "persona", personaName, "default", persona.Default)
	}

	// 1. Текст документа
	notify(Event{Stage: StageExtract})
	text := req.DocumentText
	if strings.TrimSpace(text) == "" && req.DocumentPath != "" {
		var err error
		if text, err = document.ExtractText(req.DocumentPath); err != nil {
			return nil, fmt.Errorf("extract document: %w", err)
		}
	}
	text = strings.TrimSpace(text)
	p.logger.Infow("Document text ready", "chars", len(text), "random_story", text == "")

	// 2. Сценарий
	notify(Event{Stage: StageScript})
	script, err := p.generator.Generate(ctx, p.personas.PromptPath(personaName), text)
	if err != nil {
		return nil, fmt.Errorf("generate transcript: %w", err)
	}

	// 3. Заставка и пауза
	track := audio.NewTrack(p.cfg.SampleRate)
	notify(Event{Stage: StageIntro})
	if err := p.appendIntro(track); err != nil {
		return nil, fmt.Errorf("intro: %w", err)
	}
	track.AppendSilence(p.cfg.PauseAfterIntro)

	// 4. Реплики
	total := len(script.Podcast)
	timestamps := make([]Timestamp, 0, total)
	for i, line := range script.Podcast {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		speaker := strings.TrimSpace(line.Speaker)
		dialogue := strings.TrimSpace(line.Dialogue)
		if speaker == "" || dialogue == "" {
			p.logger.Warnw("Skipping incomplete line", "index", i, "speaker", speaker)
			continue
		}
		notify(Event{Stage: StageSpeech, Line: i + 1, Total: total, Speaker: persona.StripTag(speaker)})

		voice := p.voice(personaName, speaker)
		clip, err := p.synth.Synthesize(ctx, dialogue, voice)
		if err != nil {
			return nil, fmt.Errorf("synthesize line %d (%s): %w", i, speaker, err)
		}
		start := track.Position()
		if _, err := track.AppendClip(clip); err != nil {
			return nil, fmt.Errorf("decode line %d (%s): %w", i, speaker, err)
		}
		ts := Timestamp{Start: start, End: track.Position(), Speaker: speaker, Dialogue: dialogue}
		timestamps = append(timestamps, ts)
		p.logger.Debugw("Line appended", "index", i, "speaker", speaker, "voice", voice,
			"start", ts.Start.String(), "end", ts.End.String())

		track.AppendSilence(p.cfg.PauseBetweenLines)
	}
	if len(timestamps) == 0 {
		return nil, ErrNoSpeech
	}

	// 5. Экспорт
	notify(Event{Stage: StageExport})
	name := outputName(req.OutputName, personaName)
	res := &Result{
		Persona:      personaName,
		Transcript:   script,
		Readable:     script.Readable(),
		AudioPath:    filepath.Join(p.cfg.OutputDir, name+".wav"),
		MetadataPath: filepath.Join(p.cfg.OutputDir, name+".json"),
		Timestamps:   timestamps,
		Duration:     track.Position(),
	}
	if err := track.Export(res.AudioPath); err != nil {
		return nil, fmt.Errorf("export audio: %w", err)
	}
	if err := writeMetadata(res); err != nil {
		return nil, fmt.Errorf("export metadata: %w", err)
	}

	p.logger.Infow("Podcast created", "persona", personaName, "audio", res.AudioPath,
		"lines", len(timestamps), "duration", res.Duration.String())
	notify(Event{Stage: StageDone, Line: len(timestamps), Total: total})
	return res, nil
}

// appendIntro дописывает заставку. Отсутствующий файл — не ошибка: подкаст без заставки.
func (p *Producer) appendIntro(track *audio.Track) error {
	if strings.TrimSpace(p.cfg.IntroPath) == "" {
		return nil
	}
	d, err := track.AppendFile(p.cfg.IntroPath)
	if errors.Is(err, fs.ErrNotExist) {
		p.logger.Warnw("Intro file not found, skipping", "path", p.cfg.IntroPath)
		return nil
	}
	if err != nil {
		return err
	}
	p.logger.Debugw("Intro appended", "path", p.cfg.IntroPath, "duration", d.String())
	return nil
}

func outputName(requested, personaName string) string {
	name := strings.TrimSpace(requested)
	if name != "" {
		name = filepath.Base(name)
		// точки в имени персоны не расширение: срезаем только свои расширения
		switch ext := filepath.Ext(name); strings.ToLower(ext) {
		case ".wav", ".json":
			name = strings.TrimSuffix(name, ext)
		}
	}
	if name == "" || strings.HasPrefix(name, ".") || name == string(filepath.Separator) {
		name = persona.FileName(personaName) + fileSuffix
	}
	return name
}

func writeMetadata(res *Result) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(res.MetadataPath, data, 0o644)
}
