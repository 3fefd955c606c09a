package sentiment

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed lexicon.yaml
var defaultLexiconYAML []byte

// Lexicon holds the positive and negative indicator words. A Lexicon is
// read-only once constructed; use NewLexicon to build one.
type Lexicon struct {
	positive []string
	negative []string
}

type lexiconFile struct {
	Positive []string `yaml:"positive"`
	Negative []string `yaml:"negative"`
}

// NewLexicon copies and lower-cases the given word lists. Blank entries are
// dropped since an empty indicator would match every token.
func NewLexicon(positive, negative []string) Lexicon {
	return Lexicon{
		positive: normalizeWords(positive),
		negative: normalizeWords(negative),
	}
}

// DefaultLexicon returns the built-in English lexicon.
func DefaultLexicon() Lexicon {
	lex, err := ParseLexicon(defaultLexiconYAML)
	if err != nil {
		panic(fmt.Sprintf("sentiment: embedded lexicon is invalid: %v", err))
	}
	return lex
}

// LoadLexicon reads a YAML lexicon from path. An empty path yields the default lexicon.
func LoadLexicon(path string) (Lexicon, error) {
	if path == "" {
		return DefaultLexicon(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Lexicon{}, fmt.Errorf("read lexicon %s: %w", path, err)
	}
	return ParseLexicon(data)
}

// ParseLexicon decodes a YAML document with "positive" and "negative" lists.
func ParseLexicon(data []byte) (Lexicon, error) {
	var file lexiconFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Lexicon{}, fmt.Errorf("parse lexicon: %w", err)
	}
	lex := NewLexicon(file.Positive, file.Negative)
	if len(lex.positive) == 0 && len(lex.negative) == 0 {
		return Lexicon{}, fmt.Errorf("parse lexicon: no indicator words")
	}
	return lex, nil
}

// Positive returns a copy of the positive indicators.
func (l Lexicon) Positive() []string {
	return append([]string(nil), l.positive...)
}

// Negative returns a copy of the negative indicators.
func (l Lexicon) Negative() []string {
	return append([]string(nil), l.negative...)
}

func normalizeWords(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

func containsAny(token string, words []string) bool {
	for _, w := range words {
		if strings.Contains(token, w) {
			return true
		}
	}
	return false
}
