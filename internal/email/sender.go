// Package email delivers plain-text notifications through an SMTP relay.
package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
)

const (
	defaultPort    = 587
	defaultTimeout = 15 * time.Second
)

// ErrNotConfigured is returned when no SMTP relay is set up.
var ErrNotConfigured = errors.New("smtp relay not configured")

// Options configures the SMTP relay.
type Options struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// Timeout bounds dialing and each SMTP command.
	Timeout time.Duration
}

// sendFunc hands a composed message to the relay.
type sendFunc func(ctx context.Context, msg *mail.Msg) error

// Sender sends mail through one relay.
type Sender struct {
	opts Options
	send sendFunc
	now  func() time.Time
}

// NewSender creates a Sender. An empty host leaves the sender inert.
func NewSender(opts Options) *Sender {
	if opts.Port == 0 {
		opts.Port = defaultPort
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	s := &Sender{opts: opts, now: time.Now}
	s.send = s.dialAndSend
	return s
}

// Send delivers a plain-text message to a single recipient. It returns once
// ctx is done even if the relay stops answering.
func (s *Sender) Send(ctx context.Context, to, subject, body string) error {
	if s.opts.Host == "" || s.opts.From == "" {
		return ErrNotConfigured
	}
	to = strings.TrimSpace(to)
	if to == "" || strings.ContainsAny(to, "\r\n") || !strings.Contains(to, "@") {
		return fmt.Errorf("invalid recipient %q", to)
	}
	if strings.ContainsAny(subject, "\r\n") {
		return errors.New("subject must be a single line")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := s.message(to, subject, body)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() { done <- s.send(ctx, msg) }()
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	slog.DebugContext(ctx, "email sent", "to", to, "subject", subject)
	return nil
}

func (s *Sender) message(to, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(s.opts.From); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", s.opts.From, err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetDateWithValue(s.now())
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}

func (s *Sender) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(s.opts.Port),
		mail.WithTimeout(s.opts.Timeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if s.opts.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.opts.Username),
			mail.WithPassword(s.opts.Password),
		)
	}

	client, err := mail.NewClient(s.opts.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}
