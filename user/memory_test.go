package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tickingClock struct{ t time.Time }

func (c *tickingClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func TestMemorySaveAndFind(t *testing.T) {
	dir := NewMemory(nil)
	ctx := context.Background()

	id, err := dir.Save(ctx, Draft{Email: "a@x.com", FirstName: "A", Type: TypeEmail, PasswordHash: "h"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	byID, err := dir.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", byID.Email)

	byEmail, err := dir.FindByEmail(ctx, "A@X.com")
	require.NoError(t, err)
	assert.Equal(t, id, byEmail.ID)

	_, err = dir.FindByID(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = dir.FindByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemorySaveRejectsDuplicateEmailAndType(t *testing.T) {
	dir := NewMemory(nil)
	ctx := context.Background()

	_, err := dir.Save(ctx, Draft{Email: "a@x.com", Type: TypeEmail})
	require.NoError(t, err)
	_, err = dir.Save(ctx, Draft{Email: "a@x.com", Type: TypeEmail})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = dir.Save(ctx, Draft{Email: "a@x.com", Type: TypeSocial, SocialID: "s-1"})
	require.NoError(t, err)

	n, err := dir.CountByEmailAndType(ctx, "a@x.com", TypeSocial)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	u, err := dir.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, TypeEmail, u.Type)
}

func TestMemoryFindBySocialID(t *testing.T) {
	dir := NewMemory(nil)
	ctx := context.Background()

	_, found, err := dir.FindBySocialID(ctx, "s-1")
	require.NoError(t, err)
	assert.False(t, found)

	id, err := dir.Save(ctx, Draft{Email: "a@x.com", Type: TypeSocial, SocialID: "s-1"})
	require.NoError(t, err)

	u, found, err := dir.FindBySocialID(ctx, "s-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, id, u.ID)
}

func TestMemoryListNewestFirst(t *testing.T) {
	clock := &tickingClock{t: time.Unix(1_700_000_000, 0)}
	dir := NewMemory(clock.Now)
	ctx := context.Background()

	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		_, err := dir.Save(ctx, Draft{Email: email, Type: TypeEmail})
		require.NoError(t, err)
	}

	page, total, err := dir.List(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 2)
	assert.Equal(t, "c@x.com", page[0].Email)
	assert.Equal(t, "b@x.com", page[1].Email)

	page, _, err = dir.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "a@x.com", page[0].Email)

	page, _, err = dir.List(ctx, 10, 2)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestMemoryUpdatesStampModifyTime(t *testing.T) {
	clock := &tickingClock{t: time.Unix(1_700_000_000, 0)}
	dir := NewMemory(clock.Now)
	ctx := context.Background()

	id, err := dir.Save(ctx, Draft{Email: "a@x.com", Type: TypeEmail})
	require.NoError(t, err)
	before, _ := dir.FindByID(ctx, id)

	require.NoError(t, dir.UpdateName(ctx, id, "Ann", "Lee"))
	require.NoError(t, dir.UpdateAddress(ctx, id, "1 Main St", "12345"))
	require.NoError(t, dir.UpdatePassword(ctx, id, "new-hash"))
	require.NoError(t, dir.UpdateTempFlag(ctx, id, true))
	require.NoError(t, dir.UpdateDropFlag(ctx, id, true))

	after, err := dir.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", after.DisplayName())
	assert.Equal(t, "1 Main St", after.Address)
	assert.Equal(t, "12345", after.AddressPostNo)
	assert.Equal(t, "new-hash", after.PasswordHash)
	assert.True(t, after.TempFlag)
	assert.True(t, after.DropFlag)
	assert.True(t, after.ModifyTime.After(before.ModifyTime))

	assert.ErrorIs(t, dir.UpdateName(ctx, 42, "x", "y"), ErrNotFound)
}
