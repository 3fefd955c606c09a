package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pathakanu/mindwell/internal/sentiment"
	"gorm.io/gorm"
)

// AssessmentTypeText marks assessments produced from a free-text entry.
const AssessmentTypeText = "text_analysis"

// Assessment is an immutable record of one classified mood entry.
type Assessment struct {
	ID              uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          string             `gorm:"index;not null" json:"user_id"`
	Content         string             `gorm:"type:text;not null" json:"content"`
	AssessmentType  string             `gorm:"size:32;not null" json:"assessment_type"`
	SentimentLabel  sentiment.Label    `gorm:"size:16;not null;index" json:"sentiment_label"`
	SentimentScore  float64            `gorm:"not null" json:"sentiment_score"`
	SeverityLevel   sentiment.Severity `gorm:"size:16;not null;index" json:"severity_level"`
	Summary         string             `gorm:"type:text" json:"summary,omitempty"`
	Recommendations []string           `gorm:"type:text;serializer:json" json:"recommendations,omitempty"`
	Analyzer        string             `gorm:"size:16" json:"analyzer"`
	CreatedAt       time.Time          `gorm:"autoCreateTime;index" json:"created_at"`
}

// BeforeCreate assigns an id.
func (a *Assessment) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.AssessmentType == "" {
		a.AssessmentType = AssessmentTypeText
	}
	return nil
}

// BeforeUpdate rejects modification of stored assessments.
func (a *Assessment) BeforeUpdate(*gorm.DB) error {
	return ErrImmutable
}
