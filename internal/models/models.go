package models

import "time"

// Timestamp layouts used everywhere a value is written to or compared in
// the store. All three sort lexicographically in chronological order, which
// the due-reminder query depends on.
const (
	DateTimeLayout = "2006-01-02 15:04:05"
	DateLayout     = "2006-01-02"
	ClockLayout    = "15:04"
)

// DefaultNotificationTime is used when a reminder carries no explicit
// notification time.
const DefaultNotificationTime = "09:00"

func FormatDateTime(t time.Time) string { return t.Format(DateTimeLayout) }
func FormatDate(t time.Time) string     { return t.Format(DateLayout) }

type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

type ObjectType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MeterUnit   string `json:"meter_unit"`
	Description string `json:"description"`
}

// Object is a maintained thing: a vehicle, a facility, a piece of
// equipment. TypeID is empty when the legacy type value could not be
// mapped onto a known object type.
type Object struct {
	ID          string `json:"id"`
	TypeID      string `json:"type_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type ServiceRecord struct {
	ID           string   `json:"id"`
	ObjectID     string   `json:"object_id"`
	ServiceName  string   `json:"service_name"`
	ServiceDate  string   `json:"service_date"`
	Notes        string   `json:"notes"`
	MeterReading *float64 `json:"meter_reading,omitempty"`
	MeterUnit    string   `json:"meter_unit"`
	CreatedAt    string   `json:"created_at"`
}

type FaultReport struct {
	ID              string   `json:"id"`
	ObjectID        string   `json:"object_id"`
	ReporterID      string   `json:"reporter_id"`
	Description     string   `json:"description"`
	Status          string   `json:"status"`
	ObservationDate string   `json:"observation_date"`
	MeterReading    *float64 `json:"meter_reading,omitempty"`
	MeterUnit       string   `json:"meter_unit"`
	CreatedAt       string   `json:"created_at"`
}

type FaultPhoto struct {
	ID        string `json:"id"`
	FaultID   string `json:"fault_id"`
	Filename  string `json:"filename"`
	MimeType  string `json:"mime_type"`
	Data      []byte `json:"data"`
	CreatedAt string `json:"created_at"`
}

type Reminder struct {
	ID               string `json:"id"`
	UserID           string `json:"user_id"`
	ObjectID         string `json:"object_id"`
	ServiceName      string `json:"service_name"`
	ReminderDate     string `json:"reminder_date"`
	Notify           bool   `json:"notify"`
	NotificationTime string `json:"notification_time"`
	EmailSent        bool   `json:"email_sent"`
	Notes            string `json:"notes"`
	CreatedAt        string `json:"created_at"`
}

// ReminderState is the per-reminder delivery state machine:
// Scheduled -> Due once the wall clock reaches reminder_date plus
// notification_time, Due -> Sent only after the notifier confirmed
// delivery and the email_sent flag was persisted.
type ReminderState string

const (
	ReminderScheduled ReminderState = "scheduled"
	ReminderDue       ReminderState = "due"
	ReminderSent      ReminderState = "sent"
)

// DueAt combines reminder_date and notification_time into the moment the
// reminder becomes due. A missing or malformed notification time falls
// back to DefaultNotificationTime; a malformed date makes the reminder
// never due rather than due immediately.
func (r Reminder) DueAt() (time.Time, bool) {
	clock := r.NotificationTime
	if _, err := time.Parse(ClockLayout, clock); err != nil {
		clock = DefaultNotificationTime
	}
	due, err := time.ParseInLocation(DateTimeLayout, r.ReminderDate+" "+clock+":00", time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return due, true
}

// State reports where the reminder sits in the delivery state machine at
// the given instant. EmailSent wins unconditionally: the flag is one-way
// and never regresses by observation.
func (r Reminder) State(now time.Time) ReminderState {
	if r.EmailSent {
		return ReminderSent
	}
	due, ok := r.DueAt()
	if !ok || now.Before(due) {
		return ReminderScheduled
	}
	return ReminderDue
}
