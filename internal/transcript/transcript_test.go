package transcript

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeClient struct {
	response string
	err      error
	system   string
	user     string
}

func (f *fakeClient) Complete(_ context.Context, systemText, userText string) (string, error) {
	f.system = systemText
	f.user = userText
	return f.response, f.err
}

func writePrompts(t *testing.T) (personaPath, guidelinesPath string) {
	t.Helper()
	dir := t.TempDir()
	personaPath = filepath.Join(dir, "historian_prompt.txt")
	guidelinesPath = filepath.Join(dir, "guidelines_prompt.txt")
	require.NoError(t, os.WriteFile(personaPath, []byte("  You are a historian.\n"), 0o644))
	require.NoError(t, os.WriteFile(guidelinesPath, []byte("\nReturn JSON with a podcast array.  "), 0o644))
	return personaPath, guidelinesPath
}

func TestParse(t *testing.T) {
	tr, err := Parse(`{"podcast":[{"speaker":"<Host>","dialogue":"Hello"},{"speaker":"<Guest>","dialogue":"Hi"}]}`)
	require.NoError(t, err)
	require.Len(t, tr.Podcast, 2)
	assert.Equal(t, Line{Speaker: "<Host>", Dialogue: "Hello"}, tr.Podcast[0])
	assert.Equal(t, "<Guest>", tr.Podcast[1].Speaker)
}

func TestParse_CodeFence(t *testing.T) {
	tr, err := Parse("```json\n{\"podcast\":[{\"speaker\":\"Host\",\"dialogue\":\"Hi\"}]}\n```")
	require.NoError(t, err)
	require.Len(t, tr.Podcast, 1)
}

func TestParse_MissingPodcastKey(t *testing.T) {
	tr, err := Parse(`{"title":"nothing"}`)
	require.NoError(t, err)
	assert.Empty(t, tr.Podcast)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse("sorry, I can't do that")
	require.ErrorIs(t, err, ErrInvalidTranscript)
}

func TestReadable(t *testing.T) {
	tr := &Transcript{Podcast: []Line{
		{Speaker: "<Host>", Dialogue: "Welcome!"},
		{Speaker: "Guest", Dialogue: "Glad to be here."},
	}}
	assert.Equal(t, "Host: Welcome!\n\nGuest: Glad to be here.", tr.Readable())
	assert.Equal(t, "", (&Transcript{}).Readable())
}

func TestBuildPrompts(t *testing.T) {
	assert.Equal(t, "persona\n\nrules", BuildSystemPrompt("  persona \n", "\nrules\n"))

	human := BuildHumanPrompt("Transformers are great.")
	assert.Contains(t, human, `"Transformers are great."`)
	assert.Contains(t, human, "Please create a podcast-style transcript as described.")

	story := BuildHumanPrompt("")
	assert.Contains(t, story, "random, engaging story")
	assert.Equal(t, story, BuildHumanPrompt(" \n\t"))
}

func TestGenerator_Generate(t *testing.T) {
	personaPath, guidelinesPath := writePrompts(t)
	client := &fakeClient{response: `{"podcast":[{"speaker":"<Historian>","dialogue":"In 1066..."}]}`}
	g := NewGenerator(client, guidelinesPath, zaptest.NewLogger(t).Sugar())

	tr, err := g.Generate(context.Background(), personaPath, "Battle of Hastings")
	require.NoError(t, err)
	require.Len(t, tr.Podcast, 1)

	assert.Equal(t, "You are a historian.\n\nReturn JSON with a podcast array.", client.system)
	assert.Contains(t, client.user, "Battle of Hastings")
}

func TestGenerator_RandomStory(t *testing.T) {
	personaPath, guidelinesPath := writePrompts(t)
	client := &fakeClient{response: `{"podcast":[]}`}
	g := NewGenerator(client, guidelinesPath, zaptest.NewLogger(t).Sugar())

	_, err := g.Generate(context.Background(), personaPath, "")
	require.NoError(t, err)
	assert.Equal(t, randomStoryPrompt, client.user)
}

func TestGenerator_MissingPersonaPrompt(t *testing.T) {
	_, guidelinesPath := writePrompts(t)
	g := NewGenerator(&fakeClient{}, guidelinesPath, zaptest.NewLogger(t).Sugar())

	_, err := g.Generate(context.Background(), filepath.Join(t.TempDir(), "nope.txt"), "")
	require.ErrorIs(t, err, ErrPromptNotFound)
}

func TestGenerator_ClientError(t *testing.T) {
	personaPath, guidelinesPath := writePrompts(t)
	boom := errors.New("boom")
	g := NewGenerator(&fakeClient{err: boom}, guidelinesPath, zaptest.NewLogger(t).Sugar())

	_, err := g.Generate(context.Background(), personaPath, "text")
	require.ErrorIs(t, err, boom)
}
