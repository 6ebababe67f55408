package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrEthical07/goAccount/user"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

var columns = []string{
	"id", "email", "password", "first_name", "last_name", "type", "social_id",
	"addr", "addr_post_no", "drop_yn", "temp_yn", "register_time", "modify_time",
}

func newTestDirectory(t *testing.T) (*Directory, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return New(mock, func() time.Time { return fixedNow }), mock
}

func userRow(id int64, email, typ string) *pgxmock.Rows {
	return pgxmock.NewRows(columns).AddRow(
		id, email, "hash", "Ann", "Lee", typ, "", "", "", false, false, fixedNow, fixedNow,
	)
}

func TestFindByID(t *testing.T) {
	dir, mock := newTestDirectory(t)

	mock.ExpectQuery(`SELECT .* FROM users WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(userRow(7, "a@x.com", user.TypeEmail))

	u, err := dir.FindByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", u.Email)
	assert.Equal(t, "Ann Lee", u.DisplayName())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDNotFound(t *testing.T) {
	dir, mock := newTestDirectory(t)

	mock.ExpectQuery(`SELECT .* FROM users WHERE id = \$1`).
		WithArgs(int64(8)).
		WillReturnRows(pgxmock.NewRows(columns))

	_, err := dir.FindByID(context.Background(), 8)
	assert.ErrorIs(t, err, user.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByEmailPrefersPasswordAccount(t *testing.T) {
	dir, mock := newTestDirectory(t)

	mock.ExpectQuery(`SELECT .* FROM users WHERE lower\(email\) = lower\(\$1\)`).
		WithArgs("A@x.com", user.TypeEmail).
		WillReturnRows(userRow(1, "a@x.com", user.TypeEmail))

	u, err := dir.FindByEmail(context.Background(), "A@x.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindBySocialID(t *testing.T) {
	dir, mock := newTestDirectory(t)
	ctx := context.Background()

	mock.ExpectQuery(`WHERE social_id = \$1`).
		WithArgs("s-missing").
		WillReturnRows(pgxmock.NewRows(columns))

	_, found, err := dir.FindBySocialID(ctx, "s-missing")
	require.NoError(t, err)
	assert.False(t, found)

	// Empty ids never reach the database.
	_, found, err = dir.FindBySocialID(ctx, "")
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave(t *testing.T) {
	dir, mock := newTestDirectory(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("a@x.com", "hash", "Ann", "Lee", user.TypeEmail, "", "", "", false, fixedNow, fixedNow).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(11)))

	id, err := dir.Save(context.Background(), user.Draft{
		Email: "a@x.com", PasswordHash: "hash", FirstName: "Ann", LastName: "Lee", Type: user.TypeEmail,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveMapsUniqueViolation(t *testing.T) {
	dir, mock := newTestDirectory(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := dir.Save(context.Background(), user.Draft{Email: "a@x.com", Type: user.TypeEmail})
	assert.ErrorIs(t, err, user.ErrDuplicate)
}

func TestCountByEmailAndType(t *testing.T) {
	dir, mock := newTestDirectory(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM users WHERE`).
		WithArgs("a@x.com", user.TypeSocial).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))

	n, err := dir.CountByEmailAndType(context.Background(), "a@x.com", user.TypeSocial)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestList(t *testing.T) {
	dir, mock := newTestDirectory(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM users$`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))
	mock.ExpectQuery(`ORDER BY register_time DESC, id DESC LIMIT \$1 OFFSET \$2`).
		WithArgs(2, 0).
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow(int64(3), "c@x.com", "", "", "", user.TypeEmail, "", "", "", false, false, fixedNow, fixedNow).
			AddRow(int64(2), "b@x.com", "", "", "", user.TypeEmail, "", "", "", false, false, fixedNow, fixedNow))

	users, total, err := dir.List(context.Background(), 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, users, 2)
	assert.Equal(t, "c@x.com", users[0].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatesStampModifyTime(t *testing.T) {
	dir, mock := newTestDirectory(t)
	ctx := context.Background()

	mock.ExpectExec(`UPDATE users SET password = \$1, modify_time = \$2 WHERE id = \$3`).
		WithArgs("new-hash", fixedNow, int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE users SET addr = \$1, addr_post_no = \$2`).
		WithArgs("1 Main St", "12345", fixedNow, int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE users SET first_name = \$1, last_name = \$2`).
		WithArgs("Ann", "Lee", fixedNow, int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE users SET drop_yn = \$1`).
		WithArgs(true, fixedNow, int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE users SET temp_yn = \$1`).
		WithArgs(true, fixedNow, int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, dir.UpdatePassword(ctx, 1, "new-hash"))
	require.NoError(t, dir.UpdateAddress(ctx, 1, "1 Main St", "12345"))
	require.NoError(t, dir.UpdateName(ctx, 1, "Ann", "Lee"))
	require.NoError(t, dir.UpdateDropFlag(ctx, 1, true))
	require.NoError(t, dir.UpdateTempFlag(ctx, 1, true))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMissingRow(t *testing.T) {
	dir, mock := newTestDirectory(t)

	mock.ExpectExec(`UPDATE users SET drop_yn`).
		WithArgs(true, fixedNow, int64(99)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := dir.UpdateDropFlag(context.Background(), 99, true)
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestMigrate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS users`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	require.NoError(t, Migrate(context.Background(), mock))

	mock.ExpectExec(`CREATE TABLE`).WillReturnError(errors.New("permission denied"))
	assert.Error(t, Migrate(context.Background(), mock))
}
