// Package importer performs the one-shot migration of legacy flat-file
// records into the datastore. Re-running it is safe: rows whose primary
// key already exists are skipped on DuplicateKey, never overwritten.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/brunte71/mymaintlog/internal/models"
	"github.com/brunte71/mymaintlog/internal/storage"
)

// Store is the slice of the DAL the importer needs.
type Store interface {
	InsertUser(ctx context.Context, u models.User) (models.User, error)
	InsertObjectType(ctx context.Context, t models.ObjectType) (models.ObjectType, error)
	GetObjectTypeByName(ctx context.Context, name string) (models.ObjectType, error)
	InsertObject(ctx context.Context, o models.Object) (models.Object, error)
	InsertServiceRecord(ctx context.Context, r models.ServiceRecord) (models.ServiceRecord, error)
	InsertFaultReport(ctx context.Context, f models.FaultReport) (models.FaultReport, error)
	InsertReminder(ctx context.Context, r models.Reminder) (models.Reminder, error)
}

// ParseError marks a malformed legacy row. Recorded and skipped; never
// aborts the remaining rows of the batch.
type ParseError struct {
	File string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s line %d: %v", e.File, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Report summarises one entity file after a run.
type Report struct {
	Entity   string
	Imported int
	Skipped  int
	Failed   int
	Errors   []string
}

type Importer struct {
	store Store
	log   *zap.Logger
}

func New(store Store, log *zap.Logger) *Importer {
	return &Importer{store: store, log: log}
}

type entityFile struct {
	filename string
	entity   string
	insert   func(im *Importer, ctx context.Context, rec record) error
}

// Import order matters: referenced entities load before referencing ones.
var entityFiles = []entityFile{
	{"users.csv", "users", (*Importer).insertUser},
	{"object_types.csv", "object_types", (*Importer).insertObjectType},
	{"objects.csv", "objects", (*Importer).insertObject},
	{"service_records.csv", "service_records", (*Importer).insertServiceRecord},
	{"fault_reports.csv", "fault_reports", (*Importer).insertFaultReport},
	{"reminders.csv", "reminders", (*Importer).insertReminder},
}

// Run imports every legacy file found under dir. Missing files are
// skipped, duplicate keys are counted as already-migrated, parse failures
// are recorded per row. Any other storage error aborts the run.
func (im *Importer) Run(ctx context.Context, dir string) ([]Report, error) {
	reports := make([]Report, 0, len(entityFiles))
	for _, f := range entityFiles {
		rep, err := im.importFile(ctx, filepath.Join(dir, f.filename), f)
		reports = append(reports, rep)
		if err != nil {
			return reports, err
		}
	}
	return reports, nil
}

func (im *Importer) importFile(ctx context.Context, path string, ef entityFile) (Report, error) {
	rep := Report{Entity: ef.entity}
	fh, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		im.log.Debug("legacy file not present, skipping", zap.String("path", path))
		return rep, nil
	}
	if err != nil {
		return rep, fmt.Errorf("open %s: %w", path, err)
	}
	defer fh.Close()

	r := csv.NewReader(fh)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return rep, nil
	}
	if err != nil {
		return rep, fmt.Errorf("read %s header: %w", path, err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	for line := 2; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				rep.Failed++
				rep.Errors = append(rep.Errors, (&ParseError{File: ef.filename, Line: line, Err: err}).Error())
				continue
			}
			return rep, fmt.Errorf("read %s: %w", path, err)
		}
		rec := record{file: ef.filename, line: line, cols: map[string]string{}}
		for i, v := range row {
			if i < len(header) {
				rec.cols[header[i]] = strings.TrimSpace(v)
			}
		}
		switch err := ef.insert(im, ctx, rec); {
		case err == nil:
			rep.Imported++
		case errors.Is(err, storage.ErrDuplicateKey):
			rep.Skipped++
		default:
			var pe *ParseError
			if errors.As(err, &pe) {
				rep.Failed++
				rep.Errors = append(rep.Errors, pe.Error())
				continue
			}
			return rep, fmt.Errorf("import %s line %d: %w", ef.filename, line, err)
		}
	}
	im.log.Info("legacy file imported",
		zap.String("entity", ef.entity),
		zap.Int("imported", rep.Imported),
		zap.Int("skipped", rep.Skipped),
		zap.Int("failed", rep.Failed))
	return rep, nil
}

// record is one parsed CSV row keyed by lowercased header name.
type record struct {
	file string
	line int
	cols map[string]string
}

// get returns the first non-empty value among the given column aliases, so
// both current and legacy header names are accepted.
func (r record) get(aliases ...string) string {
	for _, a := range aliases {
		if v := r.cols[a]; v != "" {
			return v
		}
	}
	return ""
}

func (r record) parseErr(format string, args ...any) error {
	return &ParseError{File: r.file, Line: r.line, Err: fmt.Errorf(format, args...)}
}

func (r record) float(aliases ...string) (*float64, error) {
	v := r.get(aliases...)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, r.parseErr("bad number %q in %s", v, aliases[0])
	}
	return &f, nil
}

func (r record) boolean(aliases ...string) bool {
	switch strings.ToLower(r.get(aliases...)) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}

func (im *Importer) insertUser(ctx context.Context, rec record) error {
	id := rec.get("user_id", "id")
	if id == "" {
		return rec.parseErr("missing user_id")
	}
	_, err := im.store.InsertUser(ctx, models.User{
		ID:        id,
		Name:      rec.get("name"),
		Email:     rec.get("email", "user_email"),
		CreatedAt: rec.get("created_at", "created_date"),
	})
	return err
}

func (im *Importer) insertObjectType(ctx context.Context, rec record) error {
	id := rec.get("type_id", "id")
	name := rec.get("name", "type_name")
	if id == "" && name == "" {
		return rec.parseErr("missing type_id and name")
	}
	_, err := im.store.InsertObjectType(ctx, models.ObjectType{
		ID:          id,
		Name:        name,
		MeterUnit:   rec.get("meter_unit", "unit"),
		Description: rec.get("description"),
	})
	return err
}

func (im *Importer) insertObject(ctx context.Context, rec record) error {
	id := rec.get("object_id", "id")
	if id == "" {
		return rec.parseErr("missing object_id")
	}
	typeID := rec.get("type_id")
	if typeID == "" {
		// Legacy files carry a free-text object_type column. Resolve it
		// against known types; unresolvable values import as a null
		// reference, same as the type-normalisation migration.
		if legacy := rec.get("object_type"); legacy != "" {
			if t, err := im.store.GetObjectTypeByName(ctx, legacy); err == nil {
				typeID = t.ID
			}
		}
	}
	_, err := im.store.InsertObject(ctx, models.Object{
		ID:          id,
		TypeID:      typeID,
		Name:        rec.get("name"),
		Description: rec.get("description"),
		Status:      rec.get("status"),
		CreatedAt:   rec.get("created_at", "created_date"),
		UpdatedAt:   rec.get("updated_at", "last_updated"),
	})
	return err
}

func (im *Importer) insertServiceRecord(ctx context.Context, rec record) error {
	id := rec.get("service_id", "id")
	if id == "" {
		return rec.parseErr("missing service_id")
	}
	reading, err := rec.float("meter_reading", "actual_meter_reading")
	if err != nil {
		return err
	}
	_, err = im.store.InsertServiceRecord(ctx, models.ServiceRecord{
		ID:           id,
		ObjectID:     rec.get("object_id"),
		ServiceName:  rec.get("service_name", "title"),
		ServiceDate:  rec.get("service_date", "completion_date", "last_service_date"),
		Notes:        rec.get("notes"),
		MeterReading: reading,
		MeterUnit:    rec.get("meter_unit"),
		CreatedAt:    rec.get("created_at", "created_date"),
	})
	return err
}

func (im *Importer) insertFaultReport(ctx context.Context, rec record) error {
	id := rec.get("fault_id", "id")
	if id == "" {
		return rec.parseErr("missing fault_id")
	}
	reading, err := rec.float("meter_reading", "actual_meter_reading")
	if err != nil {
		return err
	}
	_, err = im.store.InsertFaultReport(ctx, models.FaultReport{
		ID:              id,
		ObjectID:        rec.get("object_id"),
		ReporterID:      rec.get("reporter_id", "user_email"),
		Description:     rec.get("description"),
		Status:          rec.get("status"),
		ObservationDate: rec.get("observation_date"),
		MeterReading:    reading,
		MeterUnit:       rec.get("meter_unit"),
		CreatedAt:       rec.get("created_at", "created_date"),
	})
	return err
}

func (im *Importer) insertReminder(ctx context.Context, rec record) error {
	id := rec.get("reminder_id", "id")
	if id == "" {
		return rec.parseErr("missing reminder_id")
	}
	date := rec.get("reminder_date")
	if date == "" {
		return rec.parseErr("missing reminder_date")
	}
	_, err := im.store.InsertReminder(ctx, models.Reminder{
		ID:               id,
		UserID:           rec.get("user_id", "user_email"),
		ObjectID:         rec.get("object_id"),
		ServiceName:      rec.get("service_name", "service_id"),
		ReminderDate:     date,
		Notify:           rec.boolean("notify", "email_notification"),
		NotificationTime: rec.get("notification_time"),
		EmailSent:        rec.boolean("email_sent"),
		Notes:            rec.get("notes"),
		CreatedAt:        rec.get("created_at", "created_date"),
	})
	return err
}
