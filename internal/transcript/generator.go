package transcript

import (
	"context"
	"fmt"

	"PodcastCreator/internal/ai"

	"go.uber.org/zap"
)

// Generator строит промпты и запрашивает сценарий у модели.
type Generator struct {
	client         ai.Client
	guidelinesPath string
	logger         *zap.SugaredLogger
}

func NewGenerator(client ai.Client, guidelinesPath string, logger *zap.SugaredLogger) *Generator {
	return &Generator{client: client, guidelinesPath: guidelinesPath, logger: logger}
}

// Generate читает промпт персоны и правила, отправляет запрос и разбирает сценарий.
// Пустой documentText — модель сочиняет случайную историю в стиле персоны.
func (g *Generator) Generate(ctx context.Context, personaPromptPath string, documentText string) (*Transcript, error) {
	g.logger.Infow("Reading file", "path", personaPromptPath)
	personaText, err := readPrompt(personaPromptPath)
	if err != nil {
		return nil, err
	}
	g.logger.Infow("Reading file", "path", g.guidelinesPath)
	guidelinesText, err := readPrompt(g.guidelinesPath)
	if err != nil {
		return nil, err
	}

	system := BuildSystemPrompt(personaText, guidelinesText)
	human := BuildHumanPrompt(documentText)
	g.logger.Debugw("Formatted prompt", "system", system, "human", human)

	raw, err := g.client.Complete(ctx, system, human)
	if err != nil {
		return nil, fmt.Errorf("error generating podcast transcript: %w", err)
	}
	t, err := Parse(raw)
	if err != nil {
		g.logger.Errorw("Failed to parse podcast transcript", "error", err)
		return nil, err
	}
	g.logger.Infow("Transcript generation successful", "lines", len(t.Podcast))
	return t, nil
}
