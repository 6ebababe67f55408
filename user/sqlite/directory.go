package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/goAccount/user"
)

const userColumns = `id, email, password, first_name, last_name, type, social_id,
	addr, addr_post_no, drop_yn, temp_yn, register_time, modify_time`

// Directory is a SQLite user.Directory. Times are stored as unix nanoseconds.
type Directory struct {
	db  *sql.DB
	now func() time.Time
}

var _ user.Directory = (*Directory)(nil)

// New wraps an opened database. A nil now uses time.Now.
func New(db *sql.DB, now func() time.Time) *Directory {
	if now == nil {
		now = time.Now
	}
	return &Directory{db: db, now: now}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*user.User, error) {
	var (
		u                  user.User
		registered, modify int64
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Type, &u.SocialID,
		&u.Address, &u.AddressPostNo, &u.DropFlag, &u.TempFlag, &registered, &modify,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	u.RegisterTime = time.Unix(0, registered).UTC()
	u.ModifyTime = time.Unix(0, modify).UTC()
	return &u, nil
}

func (d *Directory) FindByID(ctx context.Context, id int64) (*user.User, error) {
	u, err := scanUser(d.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil && !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, err
}

func (d *Directory) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	u, err := scanUser(d.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower(?)
		ORDER BY (type = ?) DESC, id LIMIT 1`, email, user.TypeEmail))
	if err != nil && !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, err
}

func (d *Directory) FindBySocialID(ctx context.Context, socialID string) (*user.User, bool, error) {
	if socialID == "" {
		return nil, false, nil
	}
	u, err := scanUser(d.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE social_id = ?`, socialID))
	if errors.Is(err, user.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("find user by social id: %w", err)
	}
	return u, true, nil
}

func (d *Directory) Save(ctx context.Context, draft user.Draft) (int64, error) {
	now := d.now().UnixNano()
	res, err := d.db.ExecContext(ctx,
		`INSERT INTO users (email, password, first_name, last_name, type, social_id,
			addr, addr_post_no, temp_yn, register_time, modify_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		draft.Email, draft.PasswordHash, draft.FirstName, draft.LastName, draft.Type, draft.SocialID,
		draft.Address, draft.AddressPostNo, draft.TempFlag, now, now,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return 0, user.ErrDuplicate
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

func (d *Directory) CountByEmailAndType(ctx context.Context, email, accountType string) (int64, error) {
	var n int64
	err := d.db.QueryRowContext(ctx,
		`SELECT count(*) FROM users WHERE lower(email) = lower(?) AND type = ?`,
		email, accountType,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (d *Directory) List(ctx context.Context, offset, limit int) ([]user.User, int64, error) {
	var total int64
	if err := d.db.QueryRowContext(ctx, `SELECT count(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY register_time DESC, id DESC LIMIT ? OFFSET ?`,
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
	return d.update(ctx, `UPDATE users SET password = ?, modify_time = ? WHERE id = ?`, passwordHash, d.now().UnixNano(), id)
}

func (d *Directory) UpdateAddress(ctx context.Context, id int64, address, postNo string) error {
	return d.update(ctx, `UPDATE users SET addr = ?, addr_post_no = ?, modify_time = ? WHERE id = ?`, address, postNo, d.now().UnixNano(), id)
}

func (d *Directory) UpdateName(ctx context.Context, id int64, firstName, lastName string) error {
	return d.update(ctx, `UPDATE users SET first_name = ?, last_name = ?, modify_time = ? WHERE id = ?`, firstName, lastName, d.now().UnixNano(), id)
}

func (d *Directory) UpdateDropFlag(ctx context.Context, id int64, drop bool) error {
	return d.update(ctx, `UPDATE users SET drop_yn = ?, modify_time = ? WHERE id = ?`, drop, d.now().UnixNano(), id)
}

func (d *Directory) UpdateTempFlag(ctx context.Context, id int64, temp bool) error {
	return d.update(ctx, `UPDATE users SET temp_yn = ?, modify_time = ? WHERE id = ?`, temp, d.now().UnixNano(), id)
}

func (d *Directory) update(ctx context.Context, query string, args ...any) error {
	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}
