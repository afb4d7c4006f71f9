package podcast

// Stage этап пайплайна для уведомлений о прогрессе.
type Stage string

const (
	StageExtract Stage = "extract"
	StageScript  Stage = "script"
	StageIntro   Stage = "intro"
	StageSpeech  Stage = "speech"
	StageExport  Stage = "export"
	StageDone    Stage = "done"
)

// Event уведомление о прогрессе. Line/Total заполняются на этапе speech (Line с 1).
type Event struct {
	Stage   Stage  `json:"stage"`
	Line    int    `json:"line,omitempty"`
	Total   int    `json:"total,omitempty"`
	Speaker string `json:"speaker,omitempty"`
}
