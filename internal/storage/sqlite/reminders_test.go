package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brunte71/mymaintlog/internal/models"
	"github.com/brunte71/mymaintlog/internal/storage"
)

func TestDueRemindersBoundary(t *testing.T) {
	s := newMemStore(t, "due_boundary")
	ctx := context.Background()

	seed := []models.Reminder{
		{ID: "past", ReminderDate: "2026-03-09", Notify: true, NotificationTime: "09:00"},
		{ID: "exact", ReminderDate: "2026-03-10", Notify: true, NotificationTime: "09:00"},
		{ID: "future", ReminderDate: "2026-03-10", Notify: true, NotificationTime: "09:01"},
		{ID: "muted", ReminderDate: "2026-03-09", Notify: false, NotificationTime: "09:00"},
		{ID: "sent", ReminderDate: "2026-03-09", Notify: true, NotificationTime: "09:00", EmailSent: true},
	}
	for _, r := range seed {
		if _, err := s.InsertReminder(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)
	due, err := s.DueReminders(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]bool{"past": true, "exact": true}
	if len(due) != len(want) {
		t.Fatalf("due = %d reminders, want %d", len(due), len(want))
	}
	for _, r := range due {
		if !want[r.ID] {
			t.Errorf("unexpected due reminder %q", r.ID)
		}
	}
}

func TestMarkReminderSentIsOneWay(t *testing.T) {
	s := newMemStore(t, "mark_sent")
	ctx := context.Background()

	r, err := s.InsertReminder(ctx, models.Reminder{ID: "r1", ReminderDate: "2026-01-01", Notify: true})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.MarkReminderSent(ctx, r.ID); err != nil {
		t.Fatal(err)
	}
	// A second mark is a no-op signalled as ErrNotFound; callers treat it
	// as already done.
	if err := s.MarkReminderSent(ctx, r.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("second mark: got %v, want ErrNotFound", err)
	}

	// UpdateReminder must not move the flag in either direction.
	r.Notes = "changed"
	if err := s.UpdateReminder(ctx, r); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetReminder(ctx, r.ID)
	if err != nil || !got.EmailSent {
		t.Fatalf("update regressed email_sent: %+v %v", got, err)
	}

	if err := s.ResetReminderSent(ctx, r.ID); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetReminder(ctx, r.ID)
	if got.EmailSent {
		t.Fatal("reset did not clear email_sent")
	}

	if err := s.MarkReminderSent(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("mark missing: got %v", err)
	}
}

func TestReminderDefaultsAndFilters(t *testing.T) {
	s := newMemStore(t, "reminder_filters")
	ctx := context.Background()

	r, err := s.InsertReminder(ctx, models.Reminder{UserID: "u1", ObjectID: "V1", ReminderDate: "2026-05-01", Notify: true})
	if err != nil {
		t.Fatal(err)
	}
	if r.ID == "" || r.NotificationTime != models.DefaultNotificationTime {
		t.Fatalf("defaults not applied: %+v", r)
	}
	if _, err := s.InsertReminder(ctx, models.Reminder{ID: "r2", UserID: "u2", ObjectID: "V1", ReminderDate: "2026-05-02"}); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkReminderSent(ctx, r.ID); err != nil {
		t.Fatal(err)
	}

	byUser, err := s.ListReminders(ctx, ReminderFilter{UserID: "u1"})
	if err != nil || len(byUser) != 1 || byUser[0].ID != r.ID {
		t.Fatalf("user filter: %+v %v", byUser, err)
	}
	byObject, err := s.ListReminders(ctx, ReminderFilter{ObjectID: "V1"})
	if err != nil || len(byObject) != 2 {
		t.Fatalf("object filter: %d %v", len(byObject), err)
	}
	unsent, err := s.ListReminders(ctx, ReminderFilter{UnsentOnly: true})
	if err != nil || len(unsent) != 1 || unsent[0].ID != "r2" {
		t.Fatalf("unsent filter: %+v %v", unsent, err)
	}
	notify, err := s.ListReminders(ctx, ReminderFilter{NotifyOnly: true})
	if err != nil || len(notify) != 1 || notify[0].ID != r.ID {
		t.Fatalf("notify filter: %+v %v", notify, err)
	}
}

func TestForEachReminderOrdering(t *testing.T) {
	s := newMemStore(t, "reminder_order")
	ctx := context.Background()

	// Inserted out of order on purpose.
	for _, r := range []models.Reminder{
		{ID: "c", ReminderDate: "2026-07-01", NotificationTime: "18:00"},
		{ID: "a", ReminderDate: "2026-06-30", NotificationTime: "09:00"},
		{ID: "b", ReminderDate: "2026-07-01", NotificationTime: "08:00"},
	} {
		if _, err := s.InsertReminder(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	var order []string
	err := s.ForEachReminder(ctx, ReminderFilter{}, func(r models.Reminder) error {
		order = append(order, r.ID)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Fatalf("order = %v", order)
	}
}
