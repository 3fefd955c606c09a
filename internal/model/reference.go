package model

import "errors"

// ErrImmutable is returned when code tries to update an assessment.
var ErrImmutable = errors.New("assessments are immutable")

// GlobalMentalHealthData is one country row of the global reference dataset.
type GlobalMentalHealthData struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	Country        string  `gorm:"size:128;not null;uniqueIndex" json:"country"`
	DepressionRate float64 `json:"depression_rate"`
	AnxietyRate    float64 `json:"anxiety_rate"`
	SuicideRate    float64 `json:"suicide_rate"`
	Year           int     `json:"year"`
}

// TableName keeps the table name used by the web client's dataset.
func (GlobalMentalHealthData) TableName() string {
	return "global_mental_health_data"
}

// RegionalMentalHealthData is one state or province row of a national dataset.
type RegionalMentalHealthData struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	StateName      string  `gorm:"size:128;not null;uniqueIndex" json:"state_name"`
	DepressionRate float64 `json:"depression_rate"`
	AnxietyRate    float64 `json:"anxiety_rate"`
	StressRate     float64 `json:"stress_rate"`
}

// TableName keeps the table name used by the web client's dataset.
func (RegionalMentalHealthData) TableName() string {
	return "regional_mental_health_data"
}
