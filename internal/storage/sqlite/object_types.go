package sqlite

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/brunte71/mymaintlog/internal/models"
	"github.com/brunte71/mymaintlog/internal/storage"
)

func (o ops) InsertObjectType(ctx context.Context, t models.ObjectType) (models.ObjectType, error) {
	if t.ID == "" {
		if canon := models.CanonicalTypeName(t.Name); canon != "" {
			t.ID = strings.ToLower(canon)
		} else {
			t.ID = uuid.NewString()
		}
	}
	_, err := o.c.ExecContext(ctx,
		`INSERT INTO object_types(type_id, name, meter_unit, description) VALUES(?,?,?,?)`,
		t.ID, t.Name, t.MeterUnit, t.Description)
	if err != nil {
		return models.ObjectType{}, mapError(err)
	}
	return t, nil
}

func (o ops) GetObjectType(ctx context.Context, id string) (models.ObjectType, error) {
	var t models.ObjectType
	err := o.c.QueryRowContext(ctx,
		`SELECT type_id, name, meter_unit, description FROM object_types WHERE type_id = ?`, id).
		Scan(&t.ID, &t.Name, &t.MeterUnit, &t.Description)
	if err != nil {
		return models.ObjectType{}, mapError(err)
	}
	return t, nil
}

func (o ops) GetObjectTypeByName(ctx context.Context, name string) (models.ObjectType, error) {
	var t models.ObjectType
	err := o.c.QueryRowContext(ctx,
		`SELECT type_id, name, meter_unit, description FROM object_types WHERE lower(name) = lower(?)`,
		models.CanonicalTypeName(name)).
		Scan(&t.ID, &t.Name, &t.MeterUnit, &t.Description)
	if err != nil {
		return models.ObjectType{}, mapError(err)
	}
	return t, nil
}

func (o ops) UpdateObjectType(ctx context.Context, t models.ObjectType) error {
	res, err := o.c.ExecContext(ctx,
		`UPDATE object_types SET name = ?, meter_unit = ?, description = ? WHERE type_id = ?`,
		t.Name, t.MeterUnit, t.Description, t.ID)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (o ops) DeleteObjectType(ctx context.Context, id string) error {
	res, err := o.c.ExecContext(ctx, `DELETE FROM object_types WHERE type_id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (o ops) ListObjectTypes(ctx context.Context) ([]models.ObjectType, error) {
	rows, err := o.c.QueryContext(ctx,
		`SELECT type_id, name, meter_unit, description FROM object_types ORDER BY name`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	var out []models.ObjectType
	for rows.Next() {
		var t models.ObjectType
		if err := rows.Scan(&t.ID, &t.Name, &t.MeterUnit, &t.Description); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
