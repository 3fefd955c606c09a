package sentiment

import (
	"context"
	"errors"
	"strings"
)

// ErrEmptyContent is returned for input that is empty after trimming.
var ErrEmptyContent = errors.New("content is required")

// Analyzer names reported in Analysis.Source.
const (
	SourceLocal  = "local"
	SourceRemote = "remote"
)

// Analysis is a complete classification, optionally enriched by a remote model.
type Analysis struct {
	Result
	Summary         string   `json:"summary,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
	Source          string   `json:"-"`
}

// Analyzer classifies mood text. Implementations either return a complete
// Analysis or an error, never a partial result.
type Analyzer interface {
	Analyze(ctx context.Context, content string) (Analysis, error)
}

// LocalAnalyzer runs the keyword Scorer without any network access.
type LocalAnalyzer struct {
	scorer *Scorer
}

// NewLocalAnalyzer returns an Analyzer backed by scorer.
func NewLocalAnalyzer(scorer *Scorer) *LocalAnalyzer {
	return &LocalAnalyzer{scorer: scorer}
}

// Analyze rejects blank content and scores the rest.
func (a *LocalAnalyzer) Analyze(_ context.Context, content string) (Analysis, error) {
	if strings.TrimSpace(content) == "" {
		return Analysis{}, ErrEmptyContent
	}
	return Analysis{
		Result: a.scorer.Score(content),
		Source: SourceLocal,
	}, nil
}
