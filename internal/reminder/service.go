// Package reminder stores medication and appointment reminders and delivers
// them when they fall due.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pathakanu/mindwell/internal/logging"
	"github.com/pathakanu/mindwell/internal/model"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a reminder does not exist or is owned by another user.
	ErrNotFound = errors.New("reminder not found")
	// ErrInvalid wraps every input validation failure.
	ErrInvalid = errors.New("invalid reminder")
)

const maxTitleLength = 200

// CreateInput is the user supplied part of a reminder.
type CreateInput struct {
	Title        string `json:"title"`
	ReminderDate string `json:"reminder_date"`
	ReminderTime string `json:"reminder_time"`
	Platform     string `json:"platform"`
	ContactInfo  string `json:"contact_info"`
}

// Service manages reminders of authenticated users.
type Service struct {
	db *gorm.DB
}

// NewService creates a Service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Create validates in and stores a pending reminder for userID. An empty
// contact falls back to userEmail.
func (s *Service) Create(ctx context.Context, userID, userEmail string, in CreateInput) (*model.Reminder, error) {
	r, err := buildReminder(userID, userEmail, in)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, fmt.Errorf("save reminder: %w", err)
	}

	logging.WithUser(userID).InfoContext(ctx, "reminder created",
		"reminder_id", r.ID,
		"platform", r.Platform,
		"due", r.ReminderDate+" "+r.ReminderTime)
	return r, nil
}

// List returns the reminders of userID ordered by date then time.
func (s *Service) List(ctx context.Context, userID string) ([]model.Reminder, error) {
	var reminders []model.Reminder
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("reminder_date ASC, reminder_time ASC, created_at ASC").
		Find(&reminders).Error; err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	return reminders, nil
}

// Delete removes one reminder of userID.
func (s *Service) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Reminder{})
	if res.Error != nil {
		return fmt.Errorf("delete reminder: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func buildReminder(userID, userEmail string, in CreateInput) (*model.Reminder, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if len(title) > maxTitleLength {
		return nil, fmt.Errorf("%w: title must be at most %d characters", ErrInvalid, maxTitleLength)
	}

	date := strings.TrimSpace(in.ReminderDate)
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: reminder_date must be YYYY-MM-DD", ErrInvalid)
	}
	clock := strings.TrimSpace(in.ReminderTime)
	// browsers may submit HH:MM:SS
	if len(clock) == len("15:04:05") {
		clock = clock[:len(model.TimeLayout)]
	}
	if _, err := time.Parse(model.TimeLayout, clock); err != nil {
		return nil, fmt.Errorf("%w: reminder_time must be HH:MM", ErrInvalid)
	}

	platform := model.Platform(strings.ToLower(strings.TrimSpace(in.Platform)))
	if platform == "" {
		platform = model.PlatformApp
	}
	if !platform.Valid() {
		return nil, fmt.Errorf("%w: platform must be app, whatsapp or email", ErrInvalid)
	}

	contact := strings.TrimSpace(in.ContactInfo)
	if contact == "" {
		contact = strings.TrimSpace(userEmail)
	}
	switch platform {
	case model.PlatformEmail:
		if !strings.Contains(contact, "@") {
			return nil, fmt.Errorf("%w: contact_info must be an email address", ErrInvalid)
		}
	case model.PlatformWhatsApp:
		if contact == "" || strings.Contains(contact, "@") {
			return nil, fmt.Errorf("%w: contact_info must be a phone number", ErrInvalid)
		}
	}

	return &model.Reminder{
		UserID:       userID,
		Title:        title,
		ReminderDate: date,
		ReminderTime: clock,
		Platform:     platform,
		ContactInfo:  contact,
		Status:       model.ReminderPending,
	}, nil
}
