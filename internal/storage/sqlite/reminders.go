package sqlite

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/brunte71/mymaintlog/internal/models"
	"github.com/brunte71/mymaintlog/internal/storage"
)

type ReminderFilter struct {
	UserID     string
	ObjectID   string
	NotifyOnly bool
	UnsentOnly bool
}

const reminderColumns = `reminder_id, user_id, object_id, service_name, reminder_date,
	notify, notification_time, email_sent, notes, created_at`

func (o ops) InsertReminder(ctx context.Context, r models.Reminder) (models.Reminder, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.NotificationTime == "" {
		r.NotificationTime = models.DefaultNotificationTime
	}
	if r.CreatedAt == "" {
		r.CreatedAt = models.FormatDateTime(time.Now())
	}
	_, err := o.c.ExecContext(ctx,
		`INSERT INTO reminders(`+reminderColumns+`) VALUES(?,?,?,?,?,?,?,?,?,?)`,
		r.ID, r.UserID, r.ObjectID, r.ServiceName, r.ReminderDate,
		boolToInt(r.Notify), r.NotificationTime, boolToInt(r.EmailSent), r.Notes, r.CreatedAt)
	if err != nil {
		return models.Reminder{}, mapError(err)
	}
	return r, nil
}

func (o ops) GetReminder(ctx context.Context, id string) (models.Reminder, error) {
	row := o.c.QueryRowContext(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE reminder_id = ?`, id)
	r, err := scanReminder(row)
	if err != nil {
		return models.Reminder{}, mapError(err)
	}
	return r, nil
}

// UpdateReminder replaces every field except email_sent. The sent flag is
// one-way and only moves through MarkReminderSent / ResetReminderSent so
// the never-regress invariant is enforced in one place.
func (o ops) UpdateReminder(ctx context.Context, r models.Reminder) error {
	if r.NotificationTime == "" {
		r.NotificationTime = models.DefaultNotificationTime
	}
	res, err := o.c.ExecContext(ctx,
		`UPDATE reminders SET user_id = ?, object_id = ?, service_name = ?, reminder_date = ?,
		   notify = ?, notification_time = ?, notes = ?
		 WHERE reminder_id = ?`,
		r.UserID, r.ObjectID, r.ServiceName, r.ReminderDate,
		boolToInt(r.Notify), r.NotificationTime, r.Notes, r.ID)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (o ops) DeleteReminder(ctx context.Context, id string) error {
	res, err := o.c.ExecContext(ctx, `DELETE FROM reminders WHERE reminder_id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (o ops) DeleteRemindersByUser(ctx context.Context, userID string) (int64, error) {
	res, err := o.c.ExecContext(ctx, `DELETE FROM reminders WHERE user_id = ?`, userID)
	if err != nil {
		return 0, mapError(err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (o ops) ListReminders(ctx context.Context, f ReminderFilter) ([]models.Reminder, error) {
	var out []models.Reminder
	err := o.ForEachReminder(ctx, f, func(r models.Reminder) error {
		out = append(out, r)
		return nil
	})
	return out, err
}

// ForEachReminder streams matching reminders row by row. The filter is
// applied inside the store; the sequence restarts by calling again.
// Returning an error from fn abandons the scan without disturbing the
// shared handle.
func (o ops) ForEachReminder(ctx context.Context, f ReminderFilter, fn func(models.Reminder) error) error {
	var clauses []string
	var args []any
	if f.UserID != "" {
		clauses = append(clauses, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.ObjectID != "" {
		clauses = append(clauses, "object_id = ?")
		args = append(args, f.ObjectID)
	}
	if f.NotifyOnly {
		clauses = append(clauses, "notify = 1")
	}
	if f.UnsentOnly {
		clauses = append(clauses, "email_sent = 0")
	}
	rows, err := o.c.QueryContext(ctx,
		`SELECT `+reminderColumns+` FROM reminders`+whereClause(clauses)+
			` ORDER BY reminder_date, notification_time`, args...)
	if err != nil {
		return mapError(err)
	}
	defer rows.Close()
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return err
		}
		if err := fn(r); err != nil {
			return err
		}
	}
	return rows.Err()
}

// DueReminders returns reminders whose notify flag is set, whose email has
// not been sent, and whose date plus notification time has passed. The
// comparison happens in SQL on the lexicographically ordered text layout.
func (o ops) DueReminders(ctx context.Context, now time.Time) ([]models.Reminder, error) {
	cutoff := now.Format(models.DateLayout + " " + models.ClockLayout)
	rows, err := o.c.QueryContext(ctx,
		`SELECT `+reminderColumns+` FROM reminders
		 WHERE notify = 1 AND email_sent = 0
		   AND reminder_date || ' ' || notification_time <= ?
		 ORDER BY reminder_date, notification_time`, cutoff)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	var out []models.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// MarkReminderSent flips email_sent false -> true. The guard on the
// current flag value makes the flip idempotent: a second mark (or a racing
// poller that lost) gets ErrNotFound and must treat it as already done.
func (o ops) MarkReminderSent(ctx context.Context, id string) error {
	res, err := o.c.ExecContext(ctx,
		`UPDATE reminders SET email_sent = 1 WHERE reminder_id = ? AND email_sent = 0`, id)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ResetReminderSent is the only sanctioned true -> false transition, used
// when a reminder is rescheduled and should notify again.
func (o ops) ResetReminderSent(ctx context.Context, id string) error {
	res, err := o.c.ExecContext(ctx,
		`UPDATE reminders SET email_sent = 0 WHERE reminder_id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanReminder(s scanner) (models.Reminder, error) {
	var r models.Reminder
	var notify, sent int
	if err := s.Scan(&r.ID, &r.UserID, &r.ObjectID, &r.ServiceName, &r.ReminderDate,
		&notify, &r.NotificationTime, &sent, &r.Notes, &r.CreatedAt); err != nil {
		return models.Reminder{}, err
	}
	r.Notify = notify != 0
	r.EmailSent = sent != 0
	return r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
