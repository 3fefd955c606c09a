package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pathakanu/mindwell/internal/logging"
	"github.com/pathakanu/mindwell/internal/model"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const (
	// dispatchTimeout bounds a single scheduled run.
	dispatchTimeout = 50 * time.Second
	// deliveryTimeout bounds one notifier call inside a run.
	deliveryTimeout = 20 * time.Second
)

// Observer receives delivery outcomes; metrics.DomainMetrics implements it.
type Observer interface {
	ReminderDelivered(platform, outcome string)
}

type noopObserver struct{}

func (noopObserver) ReminderDelivered(string, string) {}

// DispatcherOptions are the optional collaborators of a Dispatcher.
type DispatcherOptions struct {
	Claimer         Claimer
	Clock           clockwork.Clock
	Location        *time.Location
	Observer        Observer
	DeliveryTimeout time.Duration
}

// Dispatcher periodically delivers pending reminders that are due.
type Dispatcher struct {
	db        *gorm.DB
	notifiers map[model.Platform]Notifier
	claimer   Claimer
	clock     clockwork.Clock
	loc       *time.Location
	observer  Observer
	timeout   time.Duration
	cron      *cron.Cron
}

// NewDispatcher creates a Dispatcher. Platforms without a notifier fail on delivery.
func NewDispatcher(db *gorm.DB, notifiers map[model.Platform]Notifier, opts DispatcherOptions) *Dispatcher {
	if opts.Claimer == nil {
		opts.Claimer = NewMemoryClaimer()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Observer == nil {
		opts.Observer = noopObserver{}
	}
	if opts.DeliveryTimeout <= 0 {
		opts.DeliveryTimeout = deliveryTimeout
	}

	logger := cronLogger{}
	return &Dispatcher{
		db:        db,
		notifiers: notifiers,
		claimer:   opts.Claimer,
		clock:     opts.Clock,
		loc:       opts.Location,
		observer:  opts.Observer,
		timeout:   opts.DeliveryTimeout,
		cron: cron.New(
			cron.WithLocation(opts.Location),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
	}
}

// Start registers the dispatch job on schedule and starts the scheduler loop.
func (d *Dispatcher) Start(schedule string) error {
	_, err := d.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(logging.WithCorrelationID(context.Background(), logging.NewCorrelationID()), dispatchTimeout)
		defer cancel()
		if _, err := d.DispatchDue(ctx); err != nil {
			slog.ErrorContext(ctx, "reminder dispatch failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", schedule, err)
	}
	d.cron.Start()
	slog.Info("reminder dispatcher started", "schedule", schedule, "timezone", d.loc.String())
	return nil
}

// Stop stops the scheduler and waits for a running dispatch to finish.
func (d *Dispatcher) Stop() {
	ctx := d.cron.Stop()
	<-ctx.Done()
}

// DispatchDue delivers every pending reminder whose date and time are not in
// the future and returns how many were sent.
func (d *Dispatcher) DispatchDue(ctx context.Context) (int, error) {
	now := d.clock.Now().In(d.loc)

	var due []model.Reminder
	if err := d.db.WithContext(ctx).
		Where("status = ? AND reminder_date <= ?", model.ReminderPending, now.Format(model.DateLayout)).
		Order("reminder_date ASC, reminder_time ASC").
		Find(&due).Error; err != nil {
		return 0, fmt.Errorf("load due reminders: %w", err)
	}

	sent := 0
	for i := range due {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		r := &due[i]

		at, err := r.DueAt(d.loc)
		if err == nil && at.After(now) {
			continue
		}

		ok, claimErr := d.claimer.Claim(ctx, r.ID)
		if claimErr != nil {
			slog.WarnContext(ctx, "reminder claim failed", "reminder_id", r.ID, "error", claimErr)
			continue
		}
		if !ok {
			continue
		}

		if d.process(ctx, r, err) {
			sent++
		}
	}
	return sent, nil
}

// process delivers a claimed reminder and records the outcome. Once delivery
// was attempted the claim is left to expire with claimTTL, so no other
// dispatcher can notify the same reminder again.
func (d *Dispatcher) process(ctx context.Context, r *model.Reminder, dueErr error) bool {
	pending, err := d.stillPending(ctx, r)
	if err != nil {
		slog.WarnContext(ctx, "reminder reload failed", "reminder_id", r.ID, "error", err)
		d.release(ctx, r)
		return false
	}
	if !pending {
		return false
	}

	if dueErr == nil {
		dueErr = d.deliver(ctx, r)
	}
	return d.finish(ctx, r, dueErr) && dueErr == nil
}

// stillPending re-reads the row after a claim; another dispatcher may have
// finished it since the due list was loaded.
func (d *Dispatcher) stillPending(ctx context.Context, r *model.Reminder) (bool, error) {
	var n int64
	err := d.db.WithContext(ctx).
		Model(&model.Reminder{}).
		Where("id = ? AND status = ?", r.ID, model.ReminderPending).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (d *Dispatcher) release(ctx context.Context, r *model.Reminder) {
	if err := d.claimer.Release(ctx, r.ID); err != nil {
		slog.WarnContext(ctx, "reminder release failed", "reminder_id", r.ID, "error", err)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, r *model.Reminder) error {
	notifier, ok := d.notifiers[r.Platform]
	if !ok {
		return fmt.Errorf("no notifier for platform %q", r.Platform)
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	// A notifier that ignores ctx must not stall the run.
	done := make(chan error, 1)
	go func() { done <- notifier.Notify(ctx, r) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("deliver via %s: %w", r.Platform, ctx.Err())
	}
}

// finish records the delivery outcome. It reports whether the row was still
// pending and got updated.
func (d *Dispatcher) finish(ctx context.Context, r *model.Reminder, deliveryErr error) bool {
	updates := map[string]any{"status": model.ReminderSent}
	outcome := string(model.ReminderSent)
	if deliveryErr != nil {
		updates["status"] = model.ReminderFailed
		outcome = string(model.ReminderFailed)
	} else {
		updates["sent_at"] = d.clock.Now()
	}

	res := d.db.WithContext(ctx).
		Model(&model.Reminder{}).
		Where("id = ? AND status = ?", r.ID, model.ReminderPending).
		Updates(updates)
	if res.Error != nil {
		slog.ErrorContext(ctx, "reminder status update failed", "reminder_id", r.ID, "error", res.Error)
		return false
	}
	if res.RowsAffected == 0 {
		return false
	}

	d.observer.ReminderDelivered(string(r.Platform), outcome)
	attrs := []any{"reminder_id", r.ID, "user_id", r.UserID, "platform", r.Platform}
	if deliveryErr != nil {
		slog.WarnContext(ctx, "reminder delivery failed", append(attrs, "error", deliveryErr)...)
	} else {
		slog.InfoContext(ctx, "reminder delivered", attrs...)
	}
	return true
}

// cronLogger routes scheduler messages to slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	if errors.Is(err, context.Canceled) {
		return
	}
	slog.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
