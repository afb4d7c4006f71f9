package document

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractText_EmptyPath(t *testing.T) {
	text, err := ExtractText("")
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestExtractText_PlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("Attention is all you need."), 0o644))

	text, err := ExtractText(path)
	require.NoError(t, err)
	assert.Equal(t, "Attention is all you need.", text)
}

func TestExtractText_Unsupported(t *testing.T) {
	_, err := ExtractText("slides.pptx")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExtractText_MissingPDF(t *testing.T) {
	_, err := ExtractText(filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
}

func TestExtractReader_Markdown(t *testing.T) {
	text, err := ExtractReader(strings.NewReader("# Title\nbody"), "upload.md")
	require.NoError(t, err)
	assert.Equal(t, "# Title\nbody", text)
}

func TestExtractText_PDFKeepsWordBoundaries(t *testing.T) {
	text, err := ExtractText(filepath.Join("testdata", "shared-mime-info-spec.pdf"))
	require.NoError(t, err)

	assert.Contains(t, text, "MIME-info Database")
	assert.Contains(t, text, "\n")
	assert.Greater(t, len(strings.Fields(text)), 2000)
}
