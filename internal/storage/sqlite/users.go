package sqlite

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/brunte71/mymaintlog/internal/models"
	"github.com/brunte71/mymaintlog/internal/storage"
)

func (o ops) InsertUser(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt == "" {
		u.CreatedAt = models.FormatDateTime(time.Now())
	}
	_, err := o.c.ExecContext(ctx,
		`INSERT INTO users(user_id, name, email, created_at) VALUES(?,?,?,?)`,
		u.ID, u.Name, u.Email, u.CreatedAt)
	if err != nil {
		return models.User{}, mapError(err)
	}
	return u, nil
}

func (o ops) GetUser(ctx context.Context, id string) (models.User, error) {
	var u models.User
	err := o.c.QueryRowContext(ctx,
		`SELECT user_id, name, email, created_at FROM users WHERE user_id = ?`, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt)
	if err != nil {
		return models.User{}, mapError(err)
	}
	return u, nil
}

func (o ops) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := o.c.QueryRowContext(ctx,
		`SELECT user_id, name, email, created_at FROM users WHERE email = ?`, email).
		Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt)
	if err != nil {
		return models.User{}, mapError(err)
	}
	return u, nil
}

func (o ops) UpdateUser(ctx context.Context, u models.User) error {
	res, err := o.c.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ? WHERE user_id = ?`,
		u.Name, u.Email, u.ID)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (o ops) DeleteUser(ctx context.Context, id string) error {
	res, err := o.c.ExecContext(ctx, `DELETE FROM users WHERE user_id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (o ops) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := o.c.QueryContext(ctx,
		`SELECT user_id, name, email, created_at FROM users ORDER BY name`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	var out []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
