package query

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pustynsky/search-index-sub001/internal/content"
)

// writeAndIndex writes content to a real file under dir (phrase search
// re-reads the file from disk to verify the candidate set) and indexes it.
func writeAndIndex(t *testing.T, idx *content.Index, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	idx.IndexFile(path, body)
	return path
}

func TestPhrase_MatchesAcrossWhitespace(t *testing.T) {
	dir := t.TempDir()
	idx := content.New(dir, []string{".go"}, 0, 2)
	a := writeAndIndex(t, idx, dir, "a.go", "// Open Connection to the database\nfunc Dial() error {\n\treturn nil\n}\n")
	writeAndIndex(t, idx, dir, "b.go", "var Connection int\nvar Open bool\n")

	matches, err := Phrase(idx, PhraseOptions{Phrase: "open connection", ShowLines: true})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, a, matches[0].Path)
	assert.Equal(t, []uint32{1}, matches[0].Lines)
}

func TestPhrase_NoCandidateReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	idx := content.New(dir, []string{".go"}, 0, 2)
	writeAndIndex(t, idx, dir, "a.go", "func Open() {}\n")

	matches, err := Phrase(idx, PhraseOptions{Phrase: "never happens"})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestPhrase_EmptyPhraseErrors(t *testing.T) {
	dir := t.TempDir()
	idx := content.New(dir, []string{".go"}, 0, 2)
	_, err := Phrase(idx, PhraseOptions{Phrase: "   "})
	assert.Error(t, err)
}

// TestPhrase_PunctuationMatchesLiterally verifies that a punctuation-bearing
// phrase like "ILogger<string>" only matches the file containing that exact
// text, not a file where the same words appear separated by whitespace
// instead of the angle brackets.
func TestPhrase_PunctuationMatchesLiterally(t *testing.T) {
	dir := t.TempDir()
	idx := content.New(dir, []string{".cs"}, 0, 2)
	literal := writeAndIndex(t, idx, dir, "Logger.cs", "class Config {\n\tILogger<string> logger;\n}\n")
	writeAndIndex(t, idx, dir, "Other.cs", "class Config {\n\tILogger string adapter;\n}\n")

	matches, err := Phrase(idx, PhraseOptions{Phrase: "ILogger<string>"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, literal, matches[0].Path)
}
