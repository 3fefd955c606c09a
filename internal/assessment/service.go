// Package assessment records classified mood entries and aggregates them
// into personal analytics.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pathakanu/mindwell/internal/model"
	myopenai "github.com/pathakanu/mindwell/internal/openai"
	"github.com/pathakanu/mindwell/internal/sentiment"
	"gorm.io/gorm"
)

// DefaultRecentLimit is the analytics window used by the web client.
const DefaultRecentLimit = 10

// MaxRecentLimit caps caller supplied limits.
const MaxRecentLimit = 100

// ErrAnalyzer wraps every failure of the configured analyzer except blank input.
var ErrAnalyzer = errors.New("analysis failed")

// SupportMessage is attached to high severity results.
const SupportMessage = "If you're struggling, please consider reaching out to a mental health professional or calling a helpline. You're not alone."

// Observer receives assessment events; metrics.DomainMetrics implements it.
type Observer interface {
	AssessmentRecorded(label, severity, analyzer string)
	AnalyzerFailed(kind string)
}

type noopObserver struct{}

func (noopObserver) AssessmentRecorded(string, string, string) {}
func (noopObserver) AnalyzerFailed(string)                     {}

// Service classifies and stores assessments.
type Service struct {
	db       *gorm.DB
	analyzer sentiment.Analyzer
	observer Observer
}

// NewService creates a Service. A nil observer disables event reporting.
func NewService(db *gorm.DB, analyzer sentiment.Analyzer, observer Observer) *Service {
	if observer == nil {
		observer = noopObserver{}
	}
	return &Service{db: db, analyzer: analyzer, observer: observer}
}

// Analyze classifies content without storing it.
func (s *Service) Analyze(ctx context.Context, content string) (sentiment.Analysis, error) {
	analysis, err := s.analyzer.Analyze(ctx, strings.TrimSpace(content))
	if err != nil {
		s.observer.AnalyzerFailed(ErrorKind(err))
		if errors.Is(err, sentiment.ErrEmptyContent) {
			return sentiment.Analysis{}, err
		}
		return sentiment.Analysis{}, fmt.Errorf("%w: %w", ErrAnalyzer, err)
	}
	return analysis, nil
}

// Submit classifies content and persists the result for userID.
func (s *Service) Submit(ctx context.Context, userID, content string) (*model.Assessment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, sentiment.ErrEmptyContent
	}

	analysis, err := s.Analyze(ctx, content)
	if err != nil {
		return nil, err
	}

	record := &model.Assessment{
		UserID:          userID,
		Content:         content,
		AssessmentType:  model.AssessmentTypeText,
		SentimentLabel:  analysis.Label,
		SentimentScore:  analysis.Score,
		SeverityLevel:   analysis.Severity,
		Summary:         analysis.Summary,
		Recommendations: analysis.Recommendations,
		Analyzer:        analysis.Source,
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, fmt.Errorf("save assessment: %w", err)
	}

	s.observer.AssessmentRecorded(string(record.SentimentLabel), string(record.SeverityLevel), record.Analyzer)
	slog.InfoContext(ctx, "assessment recorded",
		"user_id", userID,
		"assessment_id", record.ID,
		"label", record.SentimentLabel,
		"severity", record.SeverityLevel,
		"analyzer", record.Analyzer)
	return record, nil
}

// Recent returns the newest assessments of userID, newest first.
func (s *Service) Recent(ctx context.Context, userID string, limit int) ([]model.Assessment, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}

	var records []model.Assessment
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	return records, nil
}

// ErrorKind names an analyzer failure for metrics and logs.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, sentiment.ErrEmptyContent):
		return "validation"
	case errors.Is(err, myopenai.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, myopenai.ErrQuotaExhausted):
		return "quota_exhausted"
	case errors.Is(err, myopenai.ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, myopenai.ErrClientNotInitialised):
		return "not_configured"
	default:
		return "transport"
	}
}
