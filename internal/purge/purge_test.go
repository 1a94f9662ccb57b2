package purge

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/brunte71/mymaintlog/internal/models"
	"github.com/brunte71/mymaintlog/internal/storage"
	"github.com/brunte71/mymaintlog/internal/storage/sqlite"
)

func newStore(t *testing.T, name string) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open("file:purge_"+name+"?mode=memory&cache=shared", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// seedUserData creates one user with a fault report (two photos), a second
// user with their own fault report and photo, and a reminder for each.
func seedUserData(t *testing.T, s *sqlite.Store) {
	t.Helper()
	ctx := context.Background()
	for _, u := range []models.User{
		{ID: "u1", Name: "Ada", Email: "ada@example.com"},
		{ID: "u2", Name: "Grace", Email: "grace@example.com"},
	} {
		if _, err := s.InsertUser(ctx, u); err != nil {
			t.Fatal(err)
		}
	}
	for _, f := range []models.FaultReport{
		{ID: "F1", ObjectID: "V1", ReporterID: "u1", Description: "flat tire"},
		{ID: "F2", ObjectID: "V1", ReporterID: "u2", Description: "oil leak"},
	} {
		if _, err := s.InsertFaultReport(ctx, f); err != nil {
			t.Fatal(err)
		}
	}
	for _, p := range []models.FaultPhoto{
		{ID: "P1", FaultID: "F1", Filename: "a.jpg"},
		{ID: "P2", FaultID: "F1", Filename: "b.jpg"},
		{ID: "P3", FaultID: "F2", Filename: "c.jpg"},
	} {
		if _, err := s.InsertFaultPhoto(ctx, p); err != nil {
			t.Fatal(err)
		}
	}
	for _, r := range []models.Reminder{
		{ID: "R1", UserID: "u1", ReminderDate: "2026-03-10"},
		{ID: "R2", UserID: "u2", ReminderDate: "2026-03-11"},
	} {
		if _, err := s.InsertReminder(ctx, r); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDeleteUserDataCascades(t *testing.T) {
	s := newStore(t, "user_cascade")
	seedUserData(t, s)
	ctx := context.Background()

	if err := New(s, zap.NewNop()).DeleteUserData(ctx, "u1"); err != nil {
		t.Fatal(err)
	}

	if _, err := s.GetUser(ctx, "u1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("user survived: %v", err)
	}
	if _, err := s.GetFaultReport(ctx, "F1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("fault report survived: %v", err)
	}
	photos, err := s.ListFaultPhotos(ctx, "F1")
	if err != nil || len(photos) != 0 {
		t.Fatalf("photos survived: %d %v", len(photos), err)
	}
	reminders, err := s.ListReminders(ctx, sqlite.ReminderFilter{UserID: "u1"})
	if err != nil || len(reminders) != 0 {
		t.Fatalf("reminders survived: %d %v", len(reminders), err)
	}

	// The other user's rows are untouched.
	if _, err := s.GetUser(ctx, "u2"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetFaultReport(ctx, "F2"); err != nil {
		t.Fatal(err)
	}
	if photos, _ := s.ListFaultPhotos(ctx, "F2"); len(photos) != 1 {
		t.Fatalf("other user's photos = %d", len(photos))
	}
	if _, err := s.GetReminder(ctx, "R2"); err != nil {
		t.Fatal(err)
	}
}

func TestDeleteUserDataMissingUserRollsBack(t *testing.T) {
	s := newStore(t, "user_missing")
	seedUserData(t, s)
	ctx := context.Background()

	// Orphaned rows referencing a user that never existed: the final user
	// delete fails, so none of them may disappear.
	if _, err := s.InsertFaultReport(ctx, models.FaultReport{ID: "F9", ObjectID: "V1", ReporterID: "ghost"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.InsertReminder(ctx, models.Reminder{ID: "R9", UserID: "ghost", ReminderDate: "2026-01-01"}); err != nil {
		t.Fatal(err)
	}

	err := New(s, zap.NewNop()).DeleteUserData(ctx, "ghost")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if _, err := s.GetFaultReport(ctx, "F9"); err != nil {
		t.Fatalf("orphan fault deleted despite rollback: %v", err)
	}
	if _, err := s.GetReminder(ctx, "R9"); err != nil {
		t.Fatalf("orphan reminder deleted despite rollback: %v", err)
	}
}

func TestDeleteFaultReportCascades(t *testing.T) {
	s := newStore(t, "fault_cascade")
	seedUserData(t, s)
	ctx := context.Background()

	if err := New(s, zap.NewNop()).DeleteFaultReport(ctx, "F1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetFaultReport(ctx, "F1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("fault survived: %v", err)
	}
	if photos, _ := s.ListFaultPhotos(ctx, "F1"); len(photos) != 0 {
		t.Fatalf("photos survived: %d", len(photos))
	}
	if photos, _ := s.ListFaultPhotos(ctx, "F2"); len(photos) != 1 {
		t.Fatalf("other fault's photos = %d", len(photos))
	}
}

func TestDeleteFaultReportMissing(t *testing.T) {
	s := newStore(t, "fault_missing")
	seedUserData(t, s)
	ctx := context.Background()

	err := New(s, zap.NewNop()).DeleteFaultReport(ctx, "F9")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	// Photo counts are unchanged after the rolled-back attempt.
	if photos, _ := s.ListFaultPhotos(ctx, "F1"); len(photos) != 2 {
		t.Fatalf("photos after failed delete = %d", len(photos))
	}
}
