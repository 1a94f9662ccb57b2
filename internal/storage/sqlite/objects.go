package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/brunte71/mymaintlog/internal/models"
	"github.com/brunte71/mymaintlog/internal/storage"
)

// ObjectFilter narrows ListObjects. Zero-value fields are not applied;
// filtering always happens inside the store, never in caller memory.
type ObjectFilter struct {
	TypeID string
	Status string
}

func (o ops) InsertObject(ctx context.Context, obj models.Object) (models.Object, error) {
	if obj.ID == "" {
		obj.ID = uuid.NewString()
	}
	if obj.Status == "" {
		obj.Status = "Active"
	}
	now := models.FormatDateTime(time.Now())
	if obj.CreatedAt == "" {
		obj.CreatedAt = now
	}
	if obj.UpdatedAt == "" {
		obj.UpdatedAt = obj.CreatedAt
	}
	_, err := o.c.ExecContext(ctx,
		`INSERT INTO objects(object_id, type_id, name, description, status, created_at, updated_at)
		 VALUES(?,?,?,?,?,?,?)`,
		obj.ID, nullable(obj.TypeID), obj.Name, obj.Description, obj.Status, obj.CreatedAt, obj.UpdatedAt)
	if err != nil {
		return models.Object{}, mapError(err)
	}
	return obj, nil
}

func (o ops) GetObject(ctx context.Context, id string) (models.Object, error) {
	row := o.c.QueryRowContext(ctx,
		`SELECT object_id, type_id, name, description, status, created_at, updated_at
		 FROM objects WHERE object_id = ?`, id)
	obj, err := scanObject(row)
	if err != nil {
		return models.Object{}, mapError(err)
	}
	return obj, nil
}

func (o ops) UpdateObject(ctx context.Context, obj models.Object) error {
	res, err := o.c.ExecContext(ctx,
		`UPDATE objects SET type_id = ?, name = ?, description = ?, status = ?, updated_at = ?
		 WHERE object_id = ?`,
		nullable(obj.TypeID), obj.Name, obj.Description, obj.Status,
		models.FormatDateTime(time.Now()), obj.ID)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (o ops) DeleteObject(ctx context.Context, id string) error {
	res, err := o.c.ExecContext(ctx, `DELETE FROM objects WHERE object_id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (o ops) ListObjects(ctx context.Context, f ObjectFilter) ([]models.Object, error) {
	var clauses []string
	var args []any
	if f.TypeID != "" {
		clauses = append(clauses, "type_id = ?")
		args = append(args, f.TypeID)
	}
	if f.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, f.Status)
	}
	rows, err := o.c.QueryContext(ctx,
		`SELECT object_id, type_id, name, description, status, created_at, updated_at
		 FROM objects`+whereClause(clauses)+` ORDER BY name`, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	var out []models.Object
	for rows.Next() {
		obj, err := scanObject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanObject(s scanner) (models.Object, error) {
	var obj models.Object
	var typeID sql.NullString
	if err := s.Scan(&obj.ID, &typeID, &obj.Name, &obj.Description, &obj.Status,
		&obj.CreatedAt, &obj.UpdatedAt); err != nil {
		return models.Object{}, err
	}
	obj.TypeID = typeID.String
	return obj, nil
}

// nullable turns the empty string into NULL so an object whose legacy type
// could not be mapped stores a real NULL reference.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
