package sentiment

import "strings"

// Label is the overall emotional valence of a text.
type Label string

const (
	LabelPositive Label = "positive"
	LabelNeutral  Label = "neutral"
	LabelNegative Label = "negative"
)

// Valid reports whether l is one of the known labels.
func (l Label) Valid() bool {
	return l == LabelPositive || l == LabelNeutral || l == LabelNegative
}

// Severity is the coarse level of concern derived from a score.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
)

// Valid reports whether s is one of the known severity levels.
func (s Severity) Valid() bool {
	return s == SeverityLow || s == SeverityModerate || s == SeverityHigh
}

const (
	positiveThreshold = 0.6
	neutralThreshold  = 0.4
	highThreshold     = 0.2
)

// Result is the classification of a single text.
type Result struct {
	Score    float64  `json:"sentiment_score"`
	Label    Label    `json:"sentiment_label"`
	Severity Severity `json:"severity_level"`

	PositiveCount int `json:"-"`
	NegativeCount int `json:"-"`
}

// Scorer is a keyword-counting classifier. It holds no mutable state and is
// safe for concurrent use.
type Scorer struct {
	lexicon Lexicon
}

// NewScorer returns a Scorer bound to lex.
func NewScorer(lex Lexicon) *Scorer {
	return &Scorer{lexicon: lex}
}

// Score classifies text. Text without any indicator scores 0.5 (neutral).
func (s *Scorer) Score(text string) Result {
	var positive, negative int
	for _, token := range strings.Fields(strings.ToLower(text)) {
		if containsAny(token, s.lexicon.positive) {
			positive++
		}
		if containsAny(token, s.lexicon.negative) {
			negative++
		}
	}

	total := positive + negative
	if total == 0 {
		total = 1
	}
	// ((p-n)/total + 1) / 2 folded into one division so ratios such as 2/5
	// land exactly on the thresholds.
	score := float64(total+positive-negative) / float64(2*total)

	label, severity := Classify(score)
	return Result{
		Score:         score,
		Label:         label,
		Severity:      severity,
		PositiveCount: positive,
		NegativeCount: negative,
	}
}

// Classify maps a normalized score in [0,1] to a label and severity.
func Classify(score float64) (Label, Severity) {
	switch {
	case score >= positiveThreshold:
		return LabelPositive, SeverityLow
	case score >= neutralThreshold:
		return LabelNeutral, SeverityModerate
	case score < highThreshold:
		return LabelNegative, SeverityHigh
	default:
		return LabelNegative, SeverityModerate
	}
}
