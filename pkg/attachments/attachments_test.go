package attachments

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_PlainTextFileIsInlined(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))

	a, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, KindText, a.Kind)
	assert.Equal(t, "hello world", a.Text)
}

func TestLoad_ImageIsBase64Encoded(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "diagram.png")
	require.NoError(t, os.WriteFile(path, []byte{0x89, 0x50, 0x4e, 0x47}, 0o644))

	a, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, KindImage, a.Kind)
	assert.Equal(t, "image/png", a.MimeType)
	assert.NotEmpty(t, a.Base64)
}

func TestLoadAll_CollectsPerFileErrorsWithoutAborting(t *testing.T) {
	dir := t.TempDir()
	goodPath := filepath.Join(dir, "good.txt")
	require.NoError(t, os.WriteFile(goodPath, []byte("fine"), 0o644))
	missingPath := filepath.Join(dir, "missing.txt")

	results := LoadAll([]string{goodPath, missingPath})
	require.Len(t, results, 2)
	assert.Equal(t, KindText, results[0].Kind)
	assert.Equal(t, KindError, results[1].Kind)
}

func TestRender_RendersTextAndErrorEntries(t *testing.T) {
	out := Render([]Attachment{
		{Path: "a.txt", Kind: KindText, Text: "content"},
		{Path: "b.bin", Kind: KindError, Text: "boom"},
		{Path: "c.png", Kind: KindImage, MimeType: "image/png"},
	})
	assert.Contains(t, out, "a.txt")
	assert.Contains(t, out, "content")
	assert.Contains(t, out, "failed to load: boom")
	assert.Contains(t, out, "vision-capable models")
}

func TestColumnLabel_MatchesSpreadsheetNotation(t *testing.T) {
	assert.Equal(t, "A", columnLabel(0))
	assert.Equal(t, "Z", columnLabel(25))
	assert.Equal(t, "AA", columnLabel(26))
}
