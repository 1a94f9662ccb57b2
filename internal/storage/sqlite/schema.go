package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/brunte71/mymaintlog/internal/models"
)

// The schema version lives in PRAGMA user_version, inside the datastore
// itself. Each migration runs in its own transaction with the version bump
// included, so a failed step leaves the prior version intact and re-running
// a completed step is a no-op by version check alone.

type migration struct {
	version int
	name    string
	apply   func(ctx context.Context, tx *sql.Tx) error
}

var migrations = []migration{
	{1, "base schema", applyBaseSchema},
	{2, "fault photos", applyFaultPhotos},
	{3, "normalize object types", applyNormalizeObjectTypes},
}

func migrate(ctx context.Context, db *sql.DB) error {
	var current int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if err := m.apply(ctx, tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s): record version: %w", m.version, m.name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d (%s): commit: %w", m.version, m.name, err)
		}
	}
	return nil
}

const baseSchema = `
	CREATE TABLE IF NOT EXISTS users (
		user_id    TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		email      TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS object_types (
		type_id     TEXT PRIMARY KEY,
		name        TEXT NOT NULL UNIQUE,
		meter_unit  TEXT DEFAULT '',
		description TEXT DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS objects (
		object_id   TEXT PRIMARY KEY,
		type_id     TEXT,
		name        TEXT NOT NULL,
		description TEXT DEFAULT '',
		status      TEXT DEFAULT 'Active',
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS service_records (
		service_id    TEXT PRIMARY KEY,
		object_id     TEXT NOT NULL,
		service_name  TEXT NOT NULL,
		service_date  TEXT DEFAULT '',
		notes         TEXT DEFAULT '',
		meter_reading REAL,
		meter_unit    TEXT DEFAULT '',
		created_at    TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS fault_reports (
		fault_id         TEXT PRIMARY KEY,
		object_id        TEXT NOT NULL,
		reporter_id      TEXT DEFAULT '',
		description      TEXT DEFAULT '',
		status           TEXT DEFAULT 'Open',
		observation_date TEXT DEFAULT '',
		meter_reading    REAL,
		meter_unit       TEXT DEFAULT '',
		created_at       TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS reminders (
		reminder_id       TEXT PRIMARY KEY,
		user_id           TEXT DEFAULT '',
		object_id         TEXT DEFAULT '',
		service_name      TEXT DEFAULT '',
		reminder_date     TEXT NOT NULL,
		notify            INTEGER DEFAULT 0,
		notification_time TEXT DEFAULT '09:00',
		email_sent        INTEGER DEFAULT 0,
		notes             TEXT DEFAULT '',
		created_at        TEXT NOT NULL
	);
`

func applyBaseSchema(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, baseSchema); err != nil {
		return err
	}
	// Seed the canonical object types the way the legacy store seeded
	// meter units on first run.
	seeds := []models.ObjectType{
		{ID: "vehicle", Name: "Vehicle", MeterUnit: "km"},
		{ID: "facility", Name: "Facility", MeterUnit: "kWh"},
		{ID: "other", Name: "Other"},
	}
	for _, t := range seeds {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO object_types(type_id, name, meter_unit, description) VALUES(?,?,?,?)`,
			t.ID, t.Name, t.MeterUnit, t.Description); err != nil {
			return err
		}
	}
	return nil
}

func applyFaultPhotos(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS fault_photos (
			photo_id   TEXT PRIMARY KEY,
			fault_id   TEXT NOT NULL,
			filename   TEXT DEFAULT '',
			mime_type  TEXT DEFAULT 'image/jpeg',
			data       BLOB,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_fault_photos_fault ON fault_photos(fault_id);
	`)
	return err
}

// applyNormalizeObjectTypes rewrites legacy free-text type values onto
// object_types rows. Values that map to no known type become NULL so the
// reference invariant holds after the upgrade.
func applyNormalizeObjectTypes(ctx context.Context, tx *sql.Tx) error {
	rows, err := tx.QueryContext(ctx,
		`SELECT object_id, type_id FROM objects WHERE type_id IS NOT NULL AND type_id != ''`)
	if err != nil {
		return err
	}
	type pair struct{ objectID, raw string }
	var pairs []pair
	for rows.Next() {
		var p pair
		if err := rows.Scan(&p.objectID, &p.raw); err != nil {
			_ = rows.Close()
			return err
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	_ = rows.Close()

	for _, p := range pairs {
		canon := models.CanonicalTypeName(p.raw)
		var typeID string
		err := tx.QueryRowContext(ctx,
			`SELECT type_id FROM object_types WHERE type_id = ? OR lower(name) = lower(?)`,
			p.raw, canon).Scan(&typeID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if _, err := tx.ExecContext(ctx,
				`UPDATE objects SET type_id = NULL WHERE object_id = ?`, p.objectID); err != nil {
				return err
			}
		case err != nil:
			return err
		case typeID != p.raw:
			if _, err := tx.ExecContext(ctx,
				`UPDATE objects SET type_id = ? WHERE object_id = ?`, typeID, p.objectID); err != nil {
				return err
			}
		}
	}
	return nil
}
