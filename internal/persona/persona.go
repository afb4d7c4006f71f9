package persona

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default персона по умолчанию: её промпт используется для неизвестных имён.
const Default = "Podcast Host"

// Persona описывает одного рассказчика: имя для выбора, файл промпта и голоса спикеров.
type Persona struct {
	Name       string            `yaml:"name"`
	PromptFile string            `yaml:"prompt_file"` // Относительно <prompts>/personas
	Voices     map[string]string `yaml:"voices"`      // speaker -> voice id
}

// builtin — порядок совпадает с порядком выбора в интерфейсе.
var builtin = []Persona{
	{Name: "Podcast Host", PromptFile: "podcastHost_prompt.txt", Voices: map[string]string{
		"Host": "aFqHDefrsNkoISstIlMU", "Guest": "EXAVITQu4vr4xnSDxMaL",
	}},
	{Name: "A 10 year old", PromptFile: "tenYearOld_prompt.txt", Voices: map[string]string{
		"Kid": "jBpfuIE2acCO8z3wKNLl", "Friend": "MF3mGyEYCl7XYWbV9V6O",
	}},
	{Name: "Historian", PromptFile: "historian_prompt.txt", Voices: map[string]string{
		"Historian": "onwK4e9ZLuTAKqWW03F9", "Host": "aFqHDefrsNkoISstIlMU",
	}},
	{Name: "Motivational Life Coach", PromptFile: "motivationalLifeCoach_prompt.txt", Voices: map[string]string{
		"Coach": "TxGEqnHWrfWFTfGW9XjX", "Listener": "EXAVITQu4vr4xnSDxMaL",
	}},
	{Name: "Detective", PromptFile: "detective_prompt.txt", Voices: map[string]string{
		"Detective": "VR6AewLTigWG4xSOukaG", "Narrator": "pNInz6obpgDQGcFmaJgB", "Suspect": "yoZ06aMxZJJ28mfd3POQ",
	}},
	{Name: "Fitness Coach", PromptFile: "fitnessCoach_prompt.txt", Voices: map[string]string{
		"Coach": "TxGEqnHWrfWFTfGW9XjX", "Trainee": "MF3mGyEYCl7XYWbV9V6O",
	}},
	{Name: "Journalist", PromptFile: "journalist_prompt.txt", Voices: map[string]string{
		"Journalist": "21m00Tcm4TlvDq8ikWAM", "Expert": "onwK4e9ZLuTAKqWW03F9",
	}},
	{Name: "Time Traveler", PromptFile: "timeTraveler_prompt.txt", Voices: map[string]string{
		"Traveler": "yoZ06aMxZJJ28mfd3POQ", "Host": "aFqHDefrsNkoISstIlMU",
	}},
	{Name: "Magical Storyteller", PromptFile: "magicalStoryteller_prompt.txt", Voices: map[string]string{
		"Storyteller": "XB0fDUnXU5powFXDhCwa", "Narrator": "pNInz6obpgDQGcFmaJgB",
	}},
	{Name: "Stand-Up Comedian", PromptFile: "standUpComedian_prompt.txt", Voices: map[string]string{
		"Comedian": "N2lVS1w4EtoT3dr4eOWO", "Audience": "EXAVITQu4vr4xnSDxMaL",
	}},
}

// Registry хранит персоны и разрешает пути промптов и голоса спикеров.
type Registry struct {
	promptsDir string
	personas   []Persona
	byName     map[string]int
}

// New создаёт реестр со встроенной таблицей персон.
func New(promptsDir string) *Registry {
	r := &Registry{promptsDir: promptsDir, byName: make(map[string]int, len(builtin))}
	for _, p := range builtin {
		r.put(clonePersona(p))
	}
	return r
}

// Load создаёт реестр и накладывает поверх встроенной таблицы YAML-файл голосов (если путь задан).
// Персоны из файла с известным именем заменяют голоса выборочно, новые — добавляются в конец.
func Load(promptsDir, voicesPath string) (*Registry, error) {
	r := New(promptsDir)
	if strings.TrimSpace(voicesPath) == "" {
		return r, nil
	}
	data, err := os.ReadFile(voicesPath)
	if err != nil {
		return nil, fmt.Errorf("read voices file: %w", err)
	}
	var file struct {
		Personas []Persona `yaml:"personas"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse voices file %s: %w", voicesPath, err)
	}
	for _, p := range file.Personas {
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("voices file %s: persona without name", voicesPath)
		}
		idx, ok := r.byName[p.Name]
		if !ok {
			r.put(clonePersona(p))
			continue
		}
		cur := &r.personas[idx]
		if p.PromptFile != "" {
			cur.PromptFile = p.PromptFile
		}
		for speaker, voice := range p.Voices {
			cur.Voices[speaker] = voice
		}
	}
	return r, nil
}

func (r *Registry) put(p Persona) {
	if p.Voices == nil {
		p.Voices = map[string]string{}
	}
	r.byName[p.Name] = len(r.personas)
	r.personas = append(r.personas, p)
}

// Choices возвращает имена персон в порядке отображения. Первая — персона по умолчанию.
func (r *Registry) Choices() []string {
	out := make([]string, 0, len(r.personas))
	for _, p := range r.personas {
		out = append(out, p.Name)
	}
	return out
}

// Known сообщает, есть ли персона в реестре.
func (r *Registry) Known(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// PromptPath возвращает путь к файлу промпта персоны; для неизвестных — промпт персоны по умолчанию.
func (r *Registry) PromptPath(name string) string {
	idx, ok := r.byName[name]
	if !ok {
		idx = r.byName[Default]
	}
	return filepath.Join(r.promptsDir, "personas", r.personas[idx].PromptFile)
}

// Voice возвращает голос для спикера персоны. Теги вида <Host> допускаются.
// Если персона или спикер не найдены — возвращается fallback.
func (r *Registry) Voice(name, speaker, fallback string) string {
	idx, ok := r.byName[name]
	if !ok {
		return fallback
	}
	if v, ok := r.personas[idx].Voices[StripTag(speaker)]; ok && v != "" {
		return v
	}
	return fallback
}

// StripTag убирает угловые скобки вокруг имени спикера: "<Host>" -> "Host".
func StripTag(speaker string) string {
	return strings.Trim(strings.TrimSpace(speaker), "<>")
}

var fileNameReplacer = strings.NewReplacer(" ", "", "/", "-", "\\", "-")

// FileName превращает имя персоны в часть имени файла: "Podcast Host" -> "PodcastHost".
// Разделители пути заменяются на "-".
func FileName(name string) string {
	return fileNameReplacer.Replace(name)
}

func clonePersona(p Persona) Persona {
	voices := make(map[string]string, len(p.Voices))
	for k, v := range p.Voices {
		voices[k] = v
	}
	p.Voices = voices
	return p
}
