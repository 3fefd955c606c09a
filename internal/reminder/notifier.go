package reminder

import (
	"context"
	"fmt"

	"github.com/pathakanu/mindwell/internal/model"
)

// Notifier delivers one due reminder over a single platform.
type Notifier interface {
	Notify(ctx context.Context, r *model.Reminder) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, r *model.Reminder) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, r *model.Reminder) error {
	return f(ctx, r)
}

// AppNotifier delivers in-app reminders. The web client polls for sent
// reminders, so there is nothing to push.
type AppNotifier struct{}

func (AppNotifier) Notify(context.Context, *model.Reminder) error { return nil }

// WhatsAppSender is implemented by twilio.Client.
type WhatsAppSender interface {
	SendWhatsAppMessage(ctx context.Context, to, body string) (string, error)
}

// WhatsAppNotifier delivers reminders as WhatsApp messages.
type WhatsAppNotifier struct {
	Sender WhatsAppSender
}

func (n WhatsAppNotifier) Notify(ctx context.Context, r *model.Reminder) error {
	if _, err := n.Sender.SendWhatsAppMessage(ctx, r.ContactInfo, MessageText(r)); err != nil {
		return fmt.Errorf("whatsapp: %w", err)
	}
	return nil
}

// Mailer is implemented by email.Sender.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// EmailNotifier delivers reminders by email.
type EmailNotifier struct {
	Mailer Mailer
}

func (n EmailNotifier) Notify(ctx context.Context, r *model.Reminder) error {
	subject := "Reminder: " + r.Title
	if err := n.Mailer.Send(ctx, r.ContactInfo, subject, MessageText(r)); err != nil {
		return fmt.Errorf("email: %w", err)
	}
	return nil
}

// MessageText renders the body sent for r.
func MessageText(r *model.Reminder) string {
	return fmt.Sprintf("Reminder: %s (scheduled for %s at %s)", r.Title, r.ReminderDate, r.ReminderTime)
}
