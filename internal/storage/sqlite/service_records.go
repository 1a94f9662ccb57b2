package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/brunte71/mymaintlog/internal/models"
	"github.com/brunte71/mymaintlog/internal/storage"
)

type ServiceFilter struct {
	ObjectID string
}

func (o ops) InsertServiceRecord(ctx context.Context, r models.ServiceRecord) (models.ServiceRecord, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.ServiceDate == "" {
		r.ServiceDate = models.FormatDate(time.Now())
	}
	if r.CreatedAt == "" {
		r.CreatedAt = models.FormatDateTime(time.Now())
	}
	_, err := o.c.ExecContext(ctx,
		`INSERT INTO service_records(service_id, object_id, service_name, service_date, notes, meter_reading, meter_unit, created_at)
		 VALUES(?,?,?,?,?,?,?,?)`,
		r.ID, r.ObjectID, r.ServiceName, r.ServiceDate, r.Notes, nullFloat(r.MeterReading), r.MeterUnit, r.CreatedAt)
	if err != nil {
		return models.ServiceRecord{}, mapError(err)
	}
	return r, nil
}

func (o ops) GetServiceRecord(ctx context.Context, id string) (models.ServiceRecord, error) {
	row := o.c.QueryRowContext(ctx,
		`SELECT service_id, object_id, service_name, service_date, notes, meter_reading, meter_unit, created_at
		 FROM service_records WHERE service_id = ?`, id)
	r, err := scanServiceRecord(row)
	if err != nil {
		return models.ServiceRecord{}, mapError(err)
	}
	return r, nil
}

func (o ops) UpdateServiceRecord(ctx context.Context, r models.ServiceRecord) error {
	res, err := o.c.ExecContext(ctx,
		`UPDATE service_records SET object_id = ?, service_name = ?, service_date = ?, notes = ?, meter_reading = ?, meter_unit = ?
		 WHERE service_id = ?`,
		r.ObjectID, r.ServiceName, r.ServiceDate, r.Notes, nullFloat(r.MeterReading), r.MeterUnit, r.ID)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (o ops) DeleteServiceRecord(ctx context.Context, id string) error {
	res, err := o.c.ExecContext(ctx, `DELETE FROM service_records WHERE service_id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (o ops) ListServiceRecords(ctx context.Context, f ServiceFilter) ([]models.ServiceRecord, error) {
	var clauses []string
	var args []any
	if f.ObjectID != "" {
		clauses = append(clauses, "object_id = ?")
		args = append(args, f.ObjectID)
	}
	rows, err := o.c.QueryContext(ctx,
		`SELECT service_id, object_id, service_name, service_date, notes, meter_reading, meter_unit, created_at
		 FROM service_records`+whereClause(clauses)+` ORDER BY service_date DESC`, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	var out []models.ServiceRecord
	for rows.Next() {
		r, err := scanServiceRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanServiceRecord(s scanner) (models.ServiceRecord, error) {
	var r models.ServiceRecord
	var reading sql.NullFloat64
	if err := s.Scan(&r.ID, &r.ObjectID, &r.ServiceName, &r.ServiceDate, &r.Notes,
		&reading, &r.MeterUnit, &r.CreatedAt); err != nil {
		return models.ServiceRecord{}, err
	}
	if reading.Valid {
		v := reading.Float64
		r.MeterReading = &v
	}
	return r, nil
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
