package transcript

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrPromptNotFound файл промпта персоны или правил отсутствует.
var ErrPromptNotFound = errors.New("prompt file not found")

const documentTemplate = `Below is the document text you should base the podcast conversation on:

"%s"

Please create a podcast-style transcript as described.`

const randomStoryPrompt = `Using the provided persona description, create a random, engaging story that aligns with the persona's characteristics and style.
The story should be immersive, creative, and suitable for a podcast-style transcript.`

// BuildSystemPrompt склеивает инструкции персоны и общие правила через пустую строку.
func BuildSystemPrompt(personaText, guidelinesText string) string {
	return strings.TrimSpace(personaText) + "\n\n" + strings.TrimSpace(guidelinesText)
}

// BuildHumanPrompt возвращает запрос пользователя: по тексту документа или случайная история, если текста нет.
func BuildHumanPrompt(documentText string) string {
	if strings.TrimSpace(documentText) == "" {
		return randomStoryPrompt
	}
	return fmt.Sprintf(documentTemplate, documentText)
}

func readPrompt(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrPromptNotFound, path)
		}
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
