// Package postgres implements user.Directory on PostgreSQL through pgx.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrEthical07/goAccount/user"
)

//go:embed schema.sql
var schema string

const uniqueViolation = "23505"

const userColumns = `id, email, password, first_name, last_name, type, social_id,
	addr, addr_post_no, drop_yn, temp_yn, register_time, modify_time`

// Migrate applies the users schema. It is idempotent.
func Migrate(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply users schema: %w", err)
	}
	return nil
}

// Directory is a PostgreSQL user.Directory.
type Directory struct {
	db  DB
	now func() time.Time
}

var _ user.Directory = (*Directory)(nil)

// New wraps db. A nil now uses time.Now.
func New(db DB, now func() time.Time) *Directory {
	if now == nil {
		now = time.Now
	}
	return &Directory{db: db, now: now}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Type, &u.SocialID,
		&u.Address, &u.AddressPostNo, &u.DropFlag, &u.TempFlag, &u.RegisterTime, &u.ModifyTime,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (d *Directory) FindByID(ctx context.Context, id int64) (*user.User, error) {
	u, err := scanUser(d.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil && !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, err
}

// FindByEmail prefers the password account when a social account shares the
// address.
func (d *Directory) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	u, err := scanUser(d.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)
		ORDER BY (type = $2) DESC, id LIMIT 1`, email, user.TypeEmail))
	if err != nil && !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, err
}

func (d *Directory) FindBySocialID(ctx context.Context, socialID string) (*user.User, bool, error) {
	if socialID == "" {
		return nil, false, nil
	}
	u, err := scanUser(d.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE social_id = $1`, socialID))
	if errors.Is(err, user.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("find user by social id: %w", err)
	}
	return u, true, nil
}

func (d *Directory) Save(ctx context.Context, draft user.Draft) (int64, error) {
	now := d.now()
	var id int64
	err := d.db.QueryRow(ctx,
		`INSERT INTO users (email, password, first_name, last_name, type, social_id,
			addr, addr_post_no, temp_yn, register_time, modify_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		draft.Email, draft.PasswordHash, draft.FirstName, draft.LastName, draft.Type, draft.SocialID,
		draft.Address, draft.AddressPostNo, draft.TempFlag, now, now,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, user.ErrDuplicate
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

func (d *Directory) CountByEmailAndType(ctx context.Context, email, accountType string) (int64, error) {
	var n int64
	err := d.db.QueryRow(ctx,
		`SELECT count(*) FROM users WHERE lower(email) = lower($1) AND type = $2`,
		email, accountType,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (d *Directory) List(ctx context.Context, offset, limit int) ([]user.User, int64, error) {
	var total int64
	if err := d.db.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	rows, err := d.db.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY register_time DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]user.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

func (d *Directory) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return d.update(ctx, `UPDATE users SET password = $1, modify_time = $2 WHERE id = $3`, passwordHash, d.now(), id)
}

func (d *Directory) UpdateAddress(ctx context.Context, id int64, address, postNo string) error {
	return d.update(ctx, `UPDATE users SET addr = $1, addr_post_no = $2, modify_time = $3 WHERE id = $4`, address, postNo, d.now(), id)
}

func (d *Directory) UpdateName(ctx context.Context, id int64, firstName, lastName string) error {
	return d.update(ctx, `UPDATE users SET first_name = $1, last_name = $2, modify_time = $3 WHERE id = $4`, firstName, lastName, d.now(), id)
}

func (d *Directory) UpdateDropFlag(ctx context.Context, id int64, drop bool) error {
	return d.update(ctx, `UPDATE users SET drop_yn = $1, modify_time = $2 WHERE id = $3`, drop, d.now(), id)
}

func (d *Directory) UpdateTempFlag(ctx context.Context, id int64, temp bool) error {
	return d.update(ctx, `UPDATE users SET temp_yn = $1, modify_time = $2 WHERE id = $3`, temp, d.now(), id)
}

func (d *Directory) update(ctx context.Context, query string, args ...any) error {
	tag, err := d.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}
