package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/brunte71/mymaintlog/internal/models"
	"github.com/brunte71/mymaintlog/internal/storage"
)

type FaultFilter struct {
	ObjectID   string
	ReporterID string
	Status     string
}

func (o ops) InsertFaultReport(ctx context.Context, f models.FaultReport) (models.FaultReport, error) {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.Status == "" {
		f.Status = "Open"
	}
	if f.CreatedAt == "" {
		f.CreatedAt = models.FormatDateTime(time.Now())
	}
	_, err := o.c.ExecContext(ctx,
		`INSERT INTO fault_reports(fault_id, object_id, reporter_id, description, status, observation_date, meter_reading, meter_unit, created_at)
		 VALUES(?,?,?,?,?,?,?,?,?)`,
		f.ID, f.ObjectID, f.ReporterID, f.Description, f.Status, f.ObservationDate,
		nullFloat(f.MeterReading), f.MeterUnit, f.CreatedAt)
	if err != nil {
		return models.FaultReport{}, mapError(err)
	}
	return f, nil
}

func (o ops) GetFaultReport(ctx context.Context, id string) (models.FaultReport, error) {
	row := o.c.QueryRowContext(ctx,
		`SELECT fault_id, object_id, reporter_id, description, status, observation_date, meter_reading, meter_unit, created_at
		 FROM fault_reports WHERE fault_id = ?`, id)
	f, err := scanFaultReport(row)
	if err != nil {
		return models.FaultReport{}, mapError(err)
	}
	return f, nil
}

func (o ops) UpdateFaultReport(ctx context.Context, f models.FaultReport) error {
	res, err := o.c.ExecContext(ctx,
		`UPDATE fault_reports SET object_id = ?, reporter_id = ?, description = ?, status = ?, observation_date = ?, meter_reading = ?, meter_unit = ?
		 WHERE fault_id = ?`,
		f.ObjectID, f.ReporterID, f.Description, f.Status, f.ObservationDate,
		nullFloat(f.MeterReading), f.MeterUnit, f.ID)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteFaultReport removes only the report row. Cascading removal of the
// attached photos is the deletion orchestrator's job, inside one
// transaction.
func (o ops) DeleteFaultReport(ctx context.Context, id string) error {
	res, err := o.c.ExecContext(ctx, `DELETE FROM fault_reports WHERE fault_id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (o ops) DeleteFaultReportsByUser(ctx context.Context, userID string) (int64, error) {
	res, err := o.c.ExecContext(ctx, `DELETE FROM fault_reports WHERE reporter_id = ?`, userID)
	if err != nil {
		return 0, mapError(err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (o ops) ListFaultReports(ctx context.Context, f FaultFilter) ([]models.FaultReport, error) {
	var clauses []string
	var args []any
	if f.ObjectID != "" {
		clauses = append(clauses, "object_id = ?")
		args = append(args, f.ObjectID)
	}
	if f.ReporterID != "" {
		clauses = append(clauses, "reporter_id = ?")
		args = append(args, f.ReporterID)
	}
	if f.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, f.Status)
	}
	rows, err := o.c.QueryContext(ctx,
		`SELECT fault_id, object_id, reporter_id, description, status, observation_date, meter_reading, meter_unit, created_at
		 FROM fault_reports`+whereClause(clauses)+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	var out []models.FaultReport
	for rows.Next() {
		fr, err := scanFaultReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, fr)
	}
	return out, rows.Err()
}

func scanFaultReport(s scanner) (models.FaultReport, error) {
	var f models.FaultReport
	var reading sql.NullFloat64
	if err := s.Scan(&f.ID, &f.ObjectID, &f.ReporterID, &f.Description, &f.Status,
		&f.ObservationDate, &reading, &f.MeterUnit, &f.CreatedAt); err != nil {
		return models.FaultReport{}, err
	}
	if reading.Valid {
		v := reading.Float64
		f.MeterReading = &v
	}
	return f, nil
}

// Fault photos

func (o ops) InsertFaultPhoto(ctx context.Context, p models.FaultPhoto) (models.FaultPhoto, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.MimeType == "" {
		p.MimeType = "image/jpeg"
	}
	if p.CreatedAt == "" {
		p.CreatedAt = models.FormatDateTime(time.Now())
	}
	_, err := o.c.ExecContext(ctx,
		`INSERT INTO fault_photos(photo_id, fault_id, filename, mime_type, data, created_at)
		 VALUES(?,?,?,?,?,?)`,
		p.ID, p.FaultID, p.Filename, p.MimeType, p.Data, p.CreatedAt)
	if err != nil {
		return models.FaultPhoto{}, mapError(err)
	}
	return p, nil
}

func (o ops) ListFaultPhotos(ctx context.Context, faultID string) ([]models.FaultPhoto, error) {
	rows, err := o.c.QueryContext(ctx,
		`SELECT photo_id, fault_id, filename, mime_type, data, created_at
		 FROM fault_photos WHERE fault_id = ? ORDER BY created_at`, faultID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	var out []models.FaultPhoto
	for rows.Next() {
		var p models.FaultPhoto
		if err := rows.Scan(&p.ID, &p.FaultID, &p.Filename, &p.MimeType, &p.Data, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (o ops) DeleteFaultPhoto(ctx context.Context, id string) error {
	res, err := o.c.ExecContext(ctx, `DELETE FROM fault_photos WHERE photo_id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (o ops) DeleteFaultPhotosByFault(ctx context.Context, faultID string) (int64, error) {
	res, err := o.c.ExecContext(ctx, `DELETE FROM fault_photos WHERE fault_id = ?`, faultID)
	if err != nil {
		return 0, mapError(err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (o ops) DeleteFaultPhotosByReporter(ctx context.Context, userID string) (int64, error) {
	res, err := o.c.ExecContext(ctx,
		`DELETE FROM fault_photos WHERE fault_id IN
		   (SELECT fault_id FROM fault_reports WHERE reporter_id = ?)`, userID)
	if err != nil {
		return 0, mapError(err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
