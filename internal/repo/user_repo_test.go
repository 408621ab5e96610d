package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/vocabnote/internal/model"
	appErr "github.com/xxxsen/vocabnote/internal/pkg/errors"
	"github.com/xxxsen/vocabnote/internal/pkg/timeutil"
	"github.com/xxxsen/vocabnote/internal/repo"
	"github.com/xxxsen/vocabnote/test/testutil"
)

func TestUserRepoCreateAndGet(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	users := repo.NewUserRepo(db)
	ctx := context.Background()
	handle := "user-" + uuid.NewString()[:8]
	t.Cleanup(func() { _, _ = db.Exec("DELETE FROM users WHERE user_id = $1", handle) })

	user := &model.User{ID: uuid.NewString(), UserID: handle, PasswordHash: "hash-1", Ctime: timeutil.NowUnix()}
	require.NoError(t, users.Create(ctx, user))

	got, err := users.GetByUserID(ctx, handle)
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
	require.Equal(t, "hash-1", got.PasswordHash)
}

func TestUserRepoDuplicateHandle(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	users := repo.NewUserRepo(db)
	ctx := context.Background()
	handle := "dup-" + uuid.NewString()[:8]
	t.Cleanup(func() { _, _ = db.Exec("DELETE FROM users WHERE user_id = $1", handle) })

	first := &model.User{ID: uuid.NewString(), UserID: handle, PasswordHash: "original", Ctime: timeutil.NowUnix()}
	require.NoError(t, users.Create(ctx, first))

	second := &model.User{ID: uuid.NewString(), UserID: handle, PasswordHash: "other", Ctime: timeutil.NowUnix()}
	err := users.Create(ctx, second)
	require.ErrorIs(t, err, appErr.ErrConflict)

	got, err := users.GetByUserID(ctx, handle)
	require.NoError(t, err)
	require.Equal(t, first.ID, got.ID)
	require.Equal(t, "original", got.PasswordHash)
}

func TestUserRepoNotFound(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	_, err := repo.NewUserRepo(db).GetByUserID(context.Background(), "missing-"+uuid.NewString())
	require.ErrorIs(t, err, appErr.ErrNotFound)
}
