// Package scheduler drives reminder notification dispatch: it polls the
// store for due, unsent reminders and hands rendered payloads to the
// external notifier. Marking is exactly-once; delivery is at-least-once.
package scheduler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/brunte71/mymaintlog/internal/config"
	"github.com/brunte71/mymaintlog/internal/models"
	"github.com/brunte71/mymaintlog/internal/notify"
	"github.com/brunte71/mymaintlog/internal/storage"
)

// Store is the slice of the DAL the scheduler needs.
type Store interface {
	DueReminders(ctx context.Context, now time.Time) ([]models.Reminder, error)
	MarkReminderSent(ctx context.Context, id string) error
	GetUser(ctx context.Context, id string) (models.User, error)
	GetObject(ctx context.Context, id string) (models.Object, error)
	GetObjectType(ctx context.Context, id string) (models.ObjectType, error)
}

type DispatchStatus string

const (
	// StatusSent: notifier confirmed delivery and the flag was persisted.
	StatusSent DispatchStatus = "sent"
	// StatusDisabled: the reminder was due but the notification capability
	// is switched off. The flag stays clear so enabling later resumes
	// delivery.
	StatusDisabled DispatchStatus = "disabled"
	// StatusFailed: the notifier reported failure. The flag stays clear
	// and the reminder is retried on the next poll.
	StatusFailed DispatchStatus = "failed"
	// StatusAlreadyMarked: a concurrent poll won the optimistic race and
	// flipped the flag first.
	StatusAlreadyMarked DispatchStatus = "already_marked"
)

type Dispatch struct {
	ReminderID string
	To         string
	Status     DispatchStatus
	Err        error
}

type Scheduler struct {
	store    Store
	notifier notify.Notifier
	cfg      config.Notify
	log      *zap.Logger
}

func New(store Store, notifier notify.Notifier, cfg config.Notify, log *zap.Logger) *Scheduler {
	return &Scheduler{store: store, notifier: notifier, cfg: cfg, log: log}
}

// Poll selects every reminder that is due at now and drives one dispatch
// attempt per reminder. Safe to call repeatedly and concurrently: the
// guarded flag flip means a reminder is marked sent exactly once, though
// two racing pollers may both reach the notifier.
func (s *Scheduler) Poll(ctx context.Context, now time.Time) ([]Dispatch, error) {
	due, err := s.store.DueReminders(ctx, now)
	if err != nil {
		return nil, err
	}
	out := make([]Dispatch, 0, len(due))
	for _, r := range due {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		out = append(out, s.dispatch(ctx, r))
	}
	return out, nil
}

func (s *Scheduler) dispatch(ctx context.Context, r models.Reminder) Dispatch {
	if !s.cfg.Enabled() {
		return Dispatch{ReminderID: r.ID, Status: StatusDisabled}
	}
	fields, to := s.payloadFields(ctx, r)
	subject, body := renderTemplate(s.cfg.Template, fields)
	if err := s.notifier.Send(ctx, to, subject, body); err != nil {
		s.log.Warn("notifier failed, will retry on next poll",
			zap.String("reminder_id", r.ID),
			zap.Error(err))
		return Dispatch{ReminderID: r.ID, To: to, Status: StatusFailed, Err: err}
	}
	// The flag flip is the immediate next action after notifier success,
	// so a crash in between costs at most one duplicate send on the next
	// poll and never a silent loss.
	if err := s.store.MarkReminderSent(ctx, r.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Dispatch{ReminderID: r.ID, To: to, Status: StatusAlreadyMarked}
		}
		return Dispatch{ReminderID: r.ID, To: to, Status: StatusFailed, Err: err}
	}
	s.log.Info("reminder notification sent",
		zap.String("reminder_id", r.ID),
		zap.String("to", to))
	return Dispatch{ReminderID: r.ID, To: to, Status: StatusSent}
}

// payloadFields assembles the template fields. Lookups that miss leave
// their fields empty; rendering must never fail a send.
func (s *Scheduler) payloadFields(ctx context.Context, r models.Reminder) (map[string]string, string) {
	fields := map[string]string{
		"service_name":  r.ServiceName,
		"reminder_date": r.ReminderDate,
		"notes":         r.Notes,
	}
	var to string
	if u, err := s.store.GetUser(ctx, r.UserID); err == nil {
		fields["user_name"] = u.Name
		to = u.Email
	}
	if obj, err := s.store.GetObject(ctx, r.ObjectID); err == nil {
		fields["object_name"] = obj.Name
		if obj.TypeID != "" {
			if t, err := s.store.GetObjectType(ctx, obj.TypeID); err == nil {
				fields["object_type"] = t.Name
			}
		}
	}
	return fields, to
}

// Run polls at the given interval until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			dispatches, err := s.Poll(ctx, now)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.log.Error("poll failed", zap.Error(err))
				continue
			}
			var sent, failed int
			for _, d := range dispatches {
				switch d.Status {
				case StatusSent:
					sent++
				case StatusFailed:
					failed++
				}
			}
			if len(dispatches) > 0 {
				s.log.Info("poll complete",
					zap.Int("due", len(dispatches)),
					zap.Int("sent", sent),
					zap.Int("failed", failed))
			}
		}
	}
}
