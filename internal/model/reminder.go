package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Platform is the channel a reminder is delivered through.
type Platform string

const (
	PlatformApp      Platform = "app"
	PlatformWhatsApp Platform = "whatsapp"
	PlatformEmail    Platform = "email"
)

// Valid reports whether p is a known delivery platform.
func (p Platform) Valid() bool {
	switch p {
	case PlatformApp, PlatformWhatsApp, PlatformEmail:
		return true
	}
	return false
}

// ReminderStatus tracks delivery of a reminder.
type ReminderStatus string

const (
	ReminderPending ReminderStatus = "pending"
	ReminderSent    ReminderStatus = "sent"
	ReminderFailed  ReminderStatus = "failed"
)

// Layouts for the date and time columns of a reminder.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Reminder is a medication or appointment reminder owned by a user.
type Reminder struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string         `gorm:"index;not null" json:"user_id"`
	Title        string         `gorm:"type:text;not null" json:"title"`
	ReminderDate string         `gorm:"size:10;not null;index" json:"reminder_date"`
	ReminderTime string         `gorm:"size:5;not null" json:"reminder_time"`
	Platform     Platform       `gorm:"size:16;not null;default:app" json:"platform"`
	ContactInfo  string         `gorm:"type:text" json:"contact_info"`
	Status       ReminderStatus `gorm:"size:16;not null;default:pending;index" json:"status"`
	SentAt       *time.Time     `json:"sent_at,omitempty"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

// BeforeCreate assigns an id and the initial status.
func (r *Reminder) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Status == "" {
		r.Status = ReminderPending
	}
	return nil
}

// DueAt combines the reminder date and time in loc.
func (r *Reminder) DueAt(loc *time.Location) (time.Time, error) {
	due, err := time.ParseInLocation(DateLayout+" "+TimeLayout, r.ReminderDate+" "+r.ReminderTime, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse due time of reminder %s: %w", r.ID, err)
	}
	return due, nil
}
