package sentiment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLexicon(t *testing.T) {
	lex := DefaultLexicon()
	assert.Len(t, lex.Positive(), 15)
	assert.Len(t, lex.Negative(), 15)
	assert.Contains(t, lex.Positive(), "grateful")
	assert.Contains(t, lex.Negative(), "overwhelmed")
}

func TestNewLexicon_NormalizesAndCopies(t *testing.T) {
	positive := []string{" Sunny ", "", "BRIGHT"}
	lex := NewLexicon(positive, nil)

	positive[0] = "mutated"
	assert.Equal(t, []string{"sunny", "bright"}, lex.Positive())

	got := lex.Positive()
	got[0] = "mutated"
	assert.Equal(t, []string{"sunny", "bright"}, lex.Positive())
}

func TestParseLexicon(t *testing.T) {
	lex, err := ParseLexicon([]byte("positive: [feliz]\nnegative: [triste]\n"))
	require.NoError(t, err)

	s := NewScorer(lex)
	assert.Equal(t, LabelPositive, s.Score("estoy feliz").Label)
	assert.Equal(t, LabelNegative, s.Score("estoy triste").Label)
	// the English defaults no longer apply
	assert.Equal(t, LabelNeutral, s.Score("happy").Label)
}

func TestParseLexicon_Errors(t *testing.T) {
	_, err := ParseLexicon([]byte("positive: [unclosed"))
	assert.Error(t, err)

	_, err = ParseLexicon([]byte("positive: []\nnegative: ['  ']\n"))
	assert.Error(t, err)
}

func TestLoadLexicon(t *testing.T) {
	lex, err := LoadLexicon("")
	require.NoError(t, err)
	assert.Equal(t, DefaultLexicon(), lex)

	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("positive: [sunny]\nnegative: [gloomy]\n"), 0o600))

	lex, err = LoadLexicon(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"sunny"}, lex.Positive())

	_, err = LoadLexicon(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
