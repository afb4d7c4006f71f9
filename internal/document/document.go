package document

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

var ErrUnsupportedFormat = errors.New("unsupported document format")

// ExtractText возвращает текст документа. Пустой путь — пустой текст (сценарий будет случайной историей).
// PDF читается постранично, текстовые файлы (.txt, .md) — как есть.
func ExtractText(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extractPDF(path)
	case ".txt", ".md":
		b, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ExtractReader сохраняет поток во временный файл и извлекает текст. Нужен для загрузок по HTTP:
// библиотеке PDF требуется io.ReaderAt с известным размером.
func ExtractReader(r io.Reader, name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = ".pdf"
	}
	tmp, err := os.CreateTemp("", "podcast-document-*"+ext)
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("save upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	return ExtractText(tmp.Name())
}

func extractPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := pageText(page)
		if err != nil {
			return "", fmt.Errorf("extract pdf page %d: %w", i, err)
		}
		if sb.Len() > 0 && text != "" {
			sb.WriteString("\n")
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

const (
	// доля размера шрифта: больший зазор между глифами считается пробелом
	wordGap = 0.15
	// смещение по Y больше этого (в пунктах) — новая строка
	lineShift = 1.0
)

// pageText собирает текст страницы по позициям глифов. LaTeX и многие генераторы
// не пишут пробелы в поток, слова разделены только координатами.
func pageText(page pdf.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%v", r)
		}
	}()

	var sb strings.Builder
	var prev pdf.Text
	for i, t := range page.Content().Text {
		if i > 0 {
			switch {
			case math.Abs(t.Y-prev.Y) > lineShift:
				sb.WriteString("\n")
			case t.X-(prev.X+prev.W) > wordGap*math.Max(t.FontSize, prev.FontSize) &&
				!strings.HasSuffix(prev.S, " ") && !strings.HasPrefix(t.S, " "):
				sb.WriteString(" ")
			}
		}
		sb.WriteString(t.S)
		prev = t
	}
	return sb.String(), nil
}
