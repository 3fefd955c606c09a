package assessment

import (
	"context"
	"time"

	"github.com/pathakanu/mindwell/internal/model"
	"github.com/pathakanu/mindwell/internal/sentiment"
)

// Bucket is one slice of a distribution chart.
type Bucket struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// TrendPoint is one assessment on the score timeline.
type TrendPoint struct {
	CreatedAt time.Time       `json:"created_at"`
	Score     float64         `json:"sentiment_score"`
	Label     sentiment.Label `json:"sentiment_label"`
}

// PersonalAnalytics summarizes the recent assessments of one user.
type PersonalAnalytics struct {
	Total     int          `json:"total"`
	Sentiment []Bucket     `json:"sentiment"`
	Severity  []Bucket     `json:"severity"`
	Trend     []TrendPoint `json:"trend"`
}

// PersonalAnalytics aggregates the last DefaultRecentLimit assessments of userID.
func (s *Service) PersonalAnalytics(ctx context.Context, userID string) (*PersonalAnalytics, error) {
	records, err := s.Recent(ctx, userID, DefaultRecentLimit)
	if err != nil {
		return nil, err
	}
	return Summarize(records), nil
}

// Summarize builds distributions with fixed bucket order and an oldest-first
// trend. Unknown labels or severities are left out of the distributions.
func Summarize(records []model.Assessment) *PersonalAnalytics {
	labels := []sentiment.Label{sentiment.LabelPositive, sentiment.LabelNeutral, sentiment.LabelNegative}
	severities := []sentiment.Severity{sentiment.SeverityLow, sentiment.SeverityModerate, sentiment.SeverityHigh}

	labelCounts := make(map[sentiment.Label]int, len(labels))
	severityCounts := make(map[sentiment.Severity]int, len(severities))
	trend := make([]TrendPoint, len(records))

	for i, r := range records {
		labelCounts[r.SentimentLabel]++
		severityCounts[r.SeverityLevel]++
		trend[len(records)-1-i] = TrendPoint{CreatedAt: r.CreatedAt, Score: r.SentimentScore, Label: r.SentimentLabel}
	}

	out := &PersonalAnalytics{Total: len(records), Trend: trend}
	for _, l := range labels {
		out.Sentiment = append(out.Sentiment, Bucket{Name: string(l), Value: labelCounts[l]})
	}
	for _, s := range severities {
		out.Severity = append(out.Severity, Bucket{Name: string(s), Value: severityCounts[s]})
	}
	return out
}
